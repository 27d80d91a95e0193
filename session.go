// Package patcharray ties the synthesis, resonance analysis, tuning and
// excitation bookkeeping of a microstrip patch array into one session
// object owned by a single caller.
package patcharray

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/patcharray/antenna"
	"github.com/wiless/patcharray/design"
	"github.com/wiless/patcharray/resonance"
	"github.com/wiless/patcharray/tuning"
)

var (
	// ErrBusy is returned when a session method is called while another
	// one is still running
	ErrBusy        = errors.New("patcharray: session busy")
	ErrSolveFailed = errors.New("patcharray: solve failed")
)

// Option configures a Session
type Option func(*Session)

// WithTolerance sets the relative resonance error (percent) accepted as
// converged
func WithTolerance(percent float64) Option {
	return func(s *Session) { s.tuner.TolerancePercent = percent }
}

// WithFeedOffsetScaling selects whether tuning rescales the feed offsets
func WithFeedOffsetScaling(on bool) Option {
	return func(s *Session) { s.tuner.ScaleFeedOffset = on }
}

// WithMaxIterations caps the number of applied corrections, 0 for none
func WithMaxIterations(n int) Option {
	return func(s *Session) { s.tuner.MaxIterations = n }
}

// Session owns one design, its tuning history and the port excitations.
// Calls are not reentrant: a call made while another is in progress
// returns ErrBusy instead of blocking.
type Session struct {
	mu       sync.Mutex
	state    *design.State
	tuner    *tuning.Tuner
	excite   *antenna.Excitations
	last     resonance.Result
	failures int
}

// NewSession validates in and synthesises the initial design
func NewSession(in design.Inputs, opts ...Option) (*Session, error) {
	state, err := design.Synthesize(in)
	if err != nil {
		return nil, err
	}
	s := &Session{
		state:  state,
		tuner:  tuning.NewTuner(),
		excite: antenna.NewExcitations(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.discoverPorts()
	return s, nil
}

func (s *Session) lock() error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	return nil
}

func (s *Session) discoverPorts() {
	for _, site := range s.state.Sites() {
		s.excite.GetOrCreate(site.PortID)
	}
}

// State returns a copy of the current design
func (s *Session) State() (*design.State, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}

// History returns the applied corrections
func (s *Session) History() ([]tuning.Record, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.tuner.History(), nil
}

// Phase returns where the tuner is in its cycle
func (s *Session) Phase() (tuning.Phase, error) {
	if err := s.lock(); err != nil {
		return tuning.Idle, err
	}
	defer s.mu.Unlock()
	return s.tuner.Phase(), nil
}

// LastResult returns the resonance of the most recent ingested curve
func (s *Session) LastResult() (resonance.Result, error) {
	if err := s.lock(); err != nil {
		return resonance.Result{}, err
	}
	defer s.mu.Unlock()
	return s.last, nil
}

// Failures counts the solves reported as failed
func (s *Session) Failures() (int, error) {
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()
	return s.failures, nil
}

// Excitations returns the port excitations ordered by physical index
func (s *Session) Excitations() ([]antenna.Excitation, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.excite.Snapshot(), nil
}

// SetExcitation overrides amplitude and phase of one port
func (s *Session) SetExcitation(port string, amplitude, phaseDeg float64) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.excite.Set(port, amplitude, phaseDeg)
	return nil
}

// Steer points the main beam to (theta, phi) at the design frequency and
// returns the resulting excitations
func (s *Session) Steer(thetaDeg, phiDeg float64) ([]antenna.Excitation, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	s.excite.SteerTo(s.state.Sites(), s.state.Inputs.FrequencyGHz, thetaDeg, phiDeg)
	return s.excite.Snapshot(), nil
}

// ArrayFactorDb evaluates the array factor of the current excitations
func (s *Session) ArrayFactorDb(thetaDeg, phiDeg float64) (float64, error) {
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()
	return s.excite.ArrayFactorDb(s.state.Sites(), s.state.Inputs.FrequencyGHz, thetaDeg, phiDeg), nil
}

// ArrayPattern samples the array factor of the current excitations on the
// theta/phi grid of the design inputs
func (s *Session) ArrayPattern() (*antenna.FarField, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	theta, phi := s.state.Inputs.AngleGrid()
	return s.excite.Pattern(s.state.Sites(), s.state.Inputs.FrequencyGHz, theta, phi)
}

// Ingest analyses a solved S11 curve and, when the resonance is off target
// by more than the tolerance, applies one geometry correction. The record
// is nil when the design was left unchanged.
func (s *Session) Ingest(c resonance.Curve) (resonance.Result, *tuning.Record, error) {
	if err := s.lock(); err != nil {
		return resonance.Result{}, nil, err
	}
	defer s.mu.Unlock()

	r := resonance.Analyze(c)
	s.last = r
	rec, err := s.tuner.Step(s.state, r)
	if err != nil {
		return r, nil, err
	}
	if rec != nil {
		log.WithFields(log.Fields{"iteration": rec.Iteration, "scaling": rec.Scaling}).Info("design corrected, re-solve required")
	}
	return r, rec, nil
}

// SolveFailed records a failed external solve. The design is left as is.
func (s *Session) SolveFailed(cause error) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.failures++
	s.tuner.Resolve()
	log.WithField("cause", cause).Warn("solve failed, design unchanged")
	if cause == nil {
		return ErrSolveFailed
	}
	return fmt.Errorf("%w: %v", ErrSolveFailed, cause)
}

// Revert restores the design as it was before the first correction
func (s *Session) Revert() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	return s.tuner.Revert(s.state)
}

// Resynthesize replaces the design with a fresh synthesis of in. Tuning
// history and port excitations start over.
func (s *Session) Resynthesize(in design.Inputs) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	state, err := design.Synthesize(in)
	if err != nil {
		return err
	}
	s.state = state
	s.tuner.Reset()
	s.excite.Reset()
	s.last = resonance.Result{}
	s.discoverPorts()
	return nil
}

// Variables lists the model-builder variables of the current design
func (s *Session) Variables() ([]design.Variable, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.state.Variables(), nil
}
