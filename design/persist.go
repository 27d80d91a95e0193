package design

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	ms "github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/wiless/patcharray/antenna"
)

// Params is the flat parameter bag written to and read from disk: user
// inputs and calculated fields side by side under their snake_case keys.
type Params map[string]interface{}

// record flattens inputs and state into one JSON object
type record struct {
	Inputs
	antenna.PatchGeometry
	antenna.ArrayLayout
	antenna.SubstrateFootprint
	antenna.FeedParameters
}

func newRecord(s *State) record {
	return record{
		Inputs:             s.Inputs,
		PatchGeometry:      s.Patch,
		ArrayLayout:        s.Layout,
		SubstrateFootprint: s.Footprint,
		FeedParameters:     s.Feed,
	}
}

// Params returns the state as a flat parameter bag
func (s *State) Params() (Params, error) {
	data, err := json.Marshal(newRecord(s))
	if err != nil {
		return nil, err
	}
	var p Params
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	return p, nil
}

// Params returns the inputs alone as a flat parameter bag
func (in Inputs) Params() (Params, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeInputs fills in from a generic map such as a viper settings map or
// a loaded parameter bag. Keys missing from m keep their current value.
func DecodeInputs(m map[string]interface{}, in *Inputs) error {
	return decode(m, in)
}

func decode(m map[string]interface{}, out interface{}) error {
	cfg := &ms.DecoderConfig{
		DecodeHook:       ms.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		Squash:           true,
		TagName:          "json",
		Result:           out,
	}
	dec, err := ms.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return dec.Decode(m)
}

// FromParams rebuilds a state from a parameter bag. Inputs absent from the
// bag take their defaults; the calculated fields are taken as stored so a
// tuned design survives a round trip.
func FromParams(p Params) (*State, error) {
	r := record{Inputs: *NewInputs()}
	if err := decode(p, &r); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	if err := r.Inputs.Validate(); err != nil {
		return nil, err
	}
	s := &State{
		Inputs:    r.Inputs,
		Patch:     r.PatchGeometry,
		Layout:    r.ArrayLayout,
		Footprint: r.SubstrateFootprint,
		Feed:      r.FeedParameters,
	}
	s.Patch.EpsEff = antenna.SynthesizePatch(s.Inputs.FrequencyGHz, s.Inputs.Er, s.Inputs.ThicknessMM).EpsEff
	return s, nil
}

// Save writes the state as one indented flat JSON object
func Save(w io.Writer, s *State) error {
	p, err := s.Params()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(p)
}

// Load reads a flat JSON object written by Save
func Load(r io.Reader) (*State, error) {
	var p Params
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("read parameters: %w", err)
	}
	return FromParams(p)
}

// SaveFile writes the state to fname
func SaveFile(fname string, s *State) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := Save(f, s); err != nil {
		f.Close()
		return err
	}
	log.WithField("file", fname).Info("parameters saved")
	return f.Close()
}

// LoadFile reads a state saved with SaveFile
func LoadFile(fname string) (*State, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	log.WithField("file", fname).Info("parameters loaded")
	return s, nil
}
