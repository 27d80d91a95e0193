package patcharray

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/patcharray/antenna"
	"github.com/wiless/patcharray/design"
	"github.com/wiless/patcharray/tuning"
	"github.com/wiless/vlib"
)

// Snapshot is the persisted form of a Session: the current design, the
// untuned design when a correction was applied, the history and the port
// excitations.
type Snapshot struct {
	Params      design.Params        `json:"params"`
	Original    design.Params        `json:"original,omitempty"`
	History     []tuning.Record      `json:"history"`
	Excitations []antenna.Excitation `json:"excitations"`
}

// Snapshot captures the session for persistence
func (s *Session) Snapshot() (Snapshot, error) {
	if err := s.lock(); err != nil {
		return Snapshot{}, err
	}
	defer s.mu.Unlock()

	var snap Snapshot
	var err error
	if snap.Params, err = s.state.Params(); err != nil {
		return snap, err
	}
	if orig := s.tuner.Original(); orig != nil {
		if snap.Original, err = orig.Params(); err != nil {
			return snap, err
		}
	}
	snap.History = s.tuner.History()
	snap.Excitations = s.excite.Snapshot()
	return snap, nil
}

// Restore rebuilds a session from a snapshot
func Restore(snap Snapshot, opts ...Option) (*Session, error) {
	state, err := design.FromParams(snap.Params)
	if err != nil {
		return nil, fmt.Errorf("current design: %w", err)
	}
	s := &Session{
		state:  state,
		tuner:  tuning.NewTuner(),
		excite: antenna.NewExcitations(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if snap.Original != nil {
		orig, err := design.FromParams(snap.Original)
		if err != nil {
			return nil, fmt.Errorf("original design: %w", err)
		}
		s.tuner.Restore(orig, snap.History)
	}
	for _, ex := range snap.Excitations {
		s.excite.Set(ex.PortID, ex.Amplitude, ex.PhaseDeg)
	}
	s.discoverPorts()
	return s, nil
}

// Save writes the session snapshot as JSON
func (s *Session) Save(w io.Writer) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(snap)
}

// LoadSession reads a snapshot written by Save
func LoadSession(r io.Reader, opts ...Option) (*Session, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return Restore(snap, opts...)
}

// SaveFile stores the session snapshot in fname
func (s *Session) SaveFile(fname string) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	os.Remove(fname)
	vlib.SaveStructure(snap, fname, true)
	if _, err := os.Stat(fname); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	log.WithFields(log.Fields{"file": fname, "iterations": len(snap.History)}).Info("session saved")
	return nil
}

// LoadSessionFile reads a session stored with SaveFile
func LoadSessionFile(fname string, opts ...Option) (*Session, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := LoadSession(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return s, nil
}
