// Package design holds the typed user inputs of a patch-array design, their
// validation, the synthesised design state and its persistence.
package design

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wiless/patcharray/antenna"
	"github.com/wiless/vlib"
)

// ErrInvalidInput is wrapped by every *ValidationError
var ErrInvalidInput = errors.New("invalid parameters")

// Substrate describes the dielectric board
type Substrate struct {
	Material    string  `json:"substrate_material"`
	Er          float64 `json:"er"`
	TanD        float64 `json:"tan_d"`
	ThicknessMM float64 `json:"substrate_thickness"`
}

// Inputs are the user entries of one synthesis pass. Frequencies are in
// GHz, lengths in mm, angles in degree.
type Inputs struct {
	FrequencyGHz  float64 `json:"frequency"`
	GainDbi       float64 `json:"gain"`
	SweepStartGHz float64 `json:"sweep_start"`
	SweepStopGHz  float64 `json:"sweep_stop"`
	SweepStepGHz  float64 `json:"sweep_step"`

	Substrate
	MetalThicknessMM float64 `json:"metal_thickness"`

	FeedPosition       antenna.FeedPosition `json:"feed_position"`
	InsetPolicy        antenna.InsetPolicy  `json:"inset_policy"`
	CoaxPolicy         antenna.CoaxPolicy   `json:"coax_policy"`
	FeedRelX           float64              `json:"feed_rel_x"`
	ProbeRadiusMM      float64              `json:"probe_radius"`
	CoaxBARatio        float64              `json:"coax_ba_ratio"`
	CoaxEr             float64              `json:"coax_er"`
	CoaxWallMM         float64              `json:"coax_wall_thickness"`
	CoaxPortLengthMM   float64              `json:"coax_port_length"`
	AntipadClearanceMM float64              `json:"antipad_clearance"`

	SpacingType    antenna.SpacingType `json:"spacing_type"`
	ElementGainDbi float64             `json:"element_gain"`

	ThetaStepDeg float64 `json:"theta_step"`
	PhiStepDeg   float64 `json:"phi_step"`
}

// SetDefault loads a 10 GHz, 12 dBi array on 0.5 mm Duroid with an
// inset air-coax feed.
func (in *Inputs) SetDefault() {
	in.FrequencyGHz = 10.0
	in.GainDbi = 12.0
	in.SweepStartGHz = 8.0
	in.SweepStopGHz = 12.0
	in.SweepStepGHz = 0.02
	in.Substrate = Substrate{Material: "Duroid (tm)", Er: 2.2, TanD: 0.0009, ThicknessMM: 0.5}
	in.MetalThicknessMM = 0.035
	in.FeedPosition = antenna.InsetFeed
	in.InsetPolicy = antenna.InsetFraction
	in.CoaxPolicy = antenna.CoaxRatio
	in.FeedRelX = 0.485
	in.ProbeRadiusMM = 0.40
	in.CoaxBARatio = 2.3
	in.CoaxEr = 1.0
	in.CoaxWallMM = 0.20
	in.CoaxPortLengthMM = 3.0
	in.AntipadClearanceMM = 0.10
	in.SpacingType = antenna.HalfLambda
	in.ElementGainDbi = antenna.DefaultElementGainDbi
	in.ThetaStepDeg = 10.0
	in.PhiStepDeg = 10.0
}

func NewInputs() *Inputs {
	result := new(Inputs)
	result.SetDefault()
	return result
}

// Set overrides fields from a JSON string, leaving the others untouched
func (in *Inputs) Set(str string) error {
	return json.Unmarshal([]byte(str), in)
}

// AngleGrid returns the far-field sampling grid: theta from 0 to 180 and
// phi from -180 up to, not including, 180 degree.
func (in Inputs) AngleGrid() (theta, phi vlib.VectorF) {
	nt := int(180/in.ThetaStepDeg+1e-9) + 1
	theta = vlib.NewVectorF(nt)
	for i := range theta {
		theta[i] = float64(i) * in.ThetaStepDeg
	}
	phi = vlib.NewVectorF(int(math.Ceil(360/in.PhiStepDeg - 1e-9)))
	for i := range phi {
		phi[i] = -180 + float64(i)*in.PhiStepDeg
	}
	return theta, phi
}

// FeedSetting extracts the feed related entries
func (in Inputs) FeedSetting() antenna.FeedSetting {
	return antenna.FeedSetting{
		Position:      in.FeedPosition,
		Inset:         in.InsetPolicy,
		Coax:          in.CoaxPolicy,
		RelX:          in.FeedRelX,
		ProbeRadiusMM: in.ProbeRadiusMM,
		BARatio:       in.CoaxBARatio,
		CoaxEr:        in.CoaxEr,
		WallMM:        in.CoaxWallMM,
		PortLengthMM:  in.CoaxPortLengthMM,
		AntipadMM:     in.AntipadClearanceMM,
	}
}

// FieldError names one rejected input
type FieldError struct {
	Field  string
	Reason string
}

func (f FieldError) String() string {
	return f.Field + " " + f.Reason
}

// ValidationError lists every rejected input of an Inputs value
type ValidationError struct {
	Fields []FieldError
}

func (v *ValidationError) Error() string {
	msgs := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		msgs[i] = f.String()
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(msgs, "; ")
}

func (v *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Has reports whether field was rejected
func (v *ValidationError) Has(field string) bool {
	for _, f := range v.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Validate checks every range constraint and returns a *ValidationError
// naming all offending fields, or nil.
func (in Inputs) Validate() error {
	var bad []FieldError
	reject := func(field, reason string) {
		bad = append(bad, FieldError{Field: field, Reason: reason})
	}
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	if !finite(in.FrequencyGHz) || in.FrequencyGHz <= 0 {
		reject("frequency", "must be > 0")
	}
	if !finite(in.GainDbi) {
		reject("gain", "must be a finite number")
	}
	if !finite(in.SweepStartGHz) || !finite(in.SweepStopGHz) || in.SweepStartGHz <= 0 || in.SweepStopGHz <= 0 {
		reject("sweep_start/stop", "must be > 0")
	} else if in.SweepStartGHz >= in.SweepStopGHz {
		reject("sweep_start", "must be < sweep_stop")
	}
	if !finite(in.SweepStepGHz) || in.SweepStepGHz <= 0 {
		reject("sweep_step", "must be > 0")
	}
	if !finite(in.Er) || in.Er < 1 {
		reject("er", "must be >= 1")
	}
	if !finite(in.TanD) || in.TanD < 0 {
		reject("tan_d", "must be >= 0")
	}
	if !finite(in.ThicknessMM) || in.ThicknessMM <= 0 {
		reject("substrate_thickness", "must be > 0")
	} else if finite(in.FrequencyGHz) && in.FrequencyGHz > 0 && finite(in.Er) && in.Er >= 1 {
		// the fringing extension 2*dL outgrows Leff on electrically thick boards
		p := antenna.SynthesizePatch(in.FrequencyGHz, in.Er, in.ThicknessMM)
		if !finite(p.LengthMM) || p.LengthMM <= 0 {
			reject("substrate_thickness", fmt.Sprintf("too thick for %g GHz (patch length %.3f mm)", in.FrequencyGHz, p.LengthMM))
		}
	}
	if !finite(in.MetalThicknessMM) || in.MetalThicknessMM < 0 {
		reject("metal_thickness", "must be >= 0")
	}
	if in.FeedPosition.String() == "Unknown-FeedPosition" {
		reject("feed_position", "must be inset or edge")
	}
	if in.InsetPolicy.String() == "Unknown-InsetPolicy" {
		reject("inset_policy", "must be fraction or cosine")
	}
	if in.CoaxPolicy.String() == "Unknown-CoaxPolicy" {
		reject("coax_policy", "must be ratio or dielectric")
	}
	if !finite(in.FeedRelX) || in.FeedRelX < 0 || in.FeedRelX > 1 {
		reject("feed_rel_x", "must be in [0,1]")
	}
	if !finite(in.ProbeRadiusMM) || in.ProbeRadiusMM <= 0 {
		reject("probe_radius", "must be > 0")
	}
	if in.CoaxPolicy == antenna.CoaxRatio && (!finite(in.CoaxBARatio) || in.CoaxBARatio <= 1.05) {
		reject("coax_ba_ratio", "must be > 1.05")
	}
	if in.CoaxPolicy == antenna.CoaxDielectric && (!finite(in.CoaxEr) || in.CoaxEr < 1) {
		reject("coax_er", "must be >= 1")
	}
	if !finite(in.CoaxWallMM) || in.CoaxWallMM < 0 {
		reject("coax_wall_thickness", "must be >= 0")
	}
	if !finite(in.CoaxPortLengthMM) || in.CoaxPortLengthMM <= 0 {
		reject("coax_port_length", "must be > 0")
	}
	if !finite(in.AntipadClearanceMM) || in.AntipadClearanceMM < 0 {
		reject("antipad_clearance", "must be >= 0")
	}
	if in.SpacingType.String() == "Unknown-SpacingType" {
		reject("spacing_type", "must be one of "+strings.Join(antenna.SpacingTypes[:], ", "))
	}
	if !finite(in.ElementGainDbi) {
		reject("element_gain", "must be a finite number")
	} else if finite(in.GainDbi) && antenna.ElementRatio(in.GainDbi, in.ElementGainDbi) > antenna.MaxElements {
		reject("gain", fmt.Sprintf("needs more than %d elements of %g dBi", antenna.MaxElements, in.ElementGainDbi))
	}
	if !finite(in.ThetaStepDeg) || !finite(in.PhiStepDeg) || in.ThetaStepDeg <= 0 || in.PhiStepDeg <= 0 {
		reject("theta_step/phi_step", "must be > 0")
	}

	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

func (in Inputs) String() string {
	return fmt.Sprintf("f0=%gGHz G=%gdBi %s er=%g h=%gmm feed=%s spacing=%s",
		in.FrequencyGHz, in.GainDbi, in.Material, in.Er, in.ThicknessMM, in.FeedPosition, in.SpacingType)
}
