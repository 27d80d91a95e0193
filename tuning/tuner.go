// Package tuning closes the loop between a solved S11 curve and the design:
// it turns the measured resonance into a uniform linear rescaling of the
// geometry, keeps the history of applied corrections and can roll back to
// the untuned design.
package tuning

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/patcharray/design"
	"github.com/wiless/patcharray/resonance"
)

const (
	DefaultTolerancePercent = 2.0
	MinScaling              = 0.6
	MaxScaling              = 1.4
)

var (
	ErrNoData          = errors.New("tuning: no resonance in the solved data")
	ErrNothingToRevert = errors.New("tuning: no correction applied yet")
	ErrNotProposed     = errors.New("tuning: no correction proposed")
	ErrIterationLimit  = errors.New("tuning: iteration limit reached")
)

// Phase is the position of the tuner in its cycle
type Phase int

const (
	Idle Phase = iota
	Analyzed
	Proposed
	Applied
	Reverted
)

var Phases = [...]string{
	"Idle",
	"Analyzed",
	"Proposed",
	"Applied",
	"Reverted",
}

func (p Phase) String() string {
	if int(p) < 0 || int(p) >= len(Phases) {
		return "Unknown-Phase"
	}
	return Phases[p]
}

// Outcome of analysing one resonance
type Outcome int

const (
	Converged Outcome = iota
	Correct
)

func (o Outcome) String() string {
	if o == Converged {
		return "converged"
	}
	return "correct"
}

// Record is one applied correction. Records are appended, never modified.
type Record struct {
	Iteration    int     `json:"iteration"`
	FresGHz      float64 `json:"f_res"`
	TargetGHz    float64 `json:"f_target"`
	ErrorPercent float64 `json:"error_percent"`
	S11MinDb     float64 `json:"s11_min_db"`
	Proposed     float64 `json:"proposed_scaling"`
	Scaling      float64 `json:"scaling_factor"`
	Clamped      bool    `json:"clamped"`
	PatchLMM     float64 `json:"patch_length"`
}

func (r Record) String() string {
	s := fmt.Sprintf("#%d fres=%.4f GHz target=%.4f GHz err=%.2f%% S11=%.2f dB s=%.4f", r.Iteration, r.FresGHz, r.TargetGHz, r.ErrorPercent, r.S11MinDb, r.Scaling)
	if r.Clamped {
		s += fmt.Sprintf(" (clamped from %.4f)", r.Proposed)
	}
	return s
}

// Tuner drives the correction cycle Idle -> Analyzed -> Proposed -> Applied
// -> Idle, with Revert (Reverted -> Idle) available once a correction has
// been applied. The zero value is not usable, create one with NewTuner.
type Tuner struct {
	TolerancePercent float64
	ScaleFeedOffset  bool
	MaxIterations    int // 0 means no limit

	phase    Phase
	last     resonance.Result
	target   float64
	scaling  float64
	errPct   float64
	original *design.State
	history  []Record
}

func (t *Tuner) SetDefault() {
	t.TolerancePercent = DefaultTolerancePercent
	t.ScaleFeedOffset = true
	t.MaxIterations = 0
	t.Reset()
}

func NewTuner() *Tuner {
	t := new(Tuner)
	t.SetDefault()
	return t
}

// Reset forgets history and snapshot, used on full re-synthesis
func (t *Tuner) Reset() {
	t.phase = Idle
	t.last = resonance.Result{}
	t.scaling, t.errPct, t.target = 0, 0, 0
	t.original = nil
	t.history = nil
}

func (t *Tuner) Phase() Phase {
	return t.phase
}

// Proposal returns the unclamped scaling factor and error of the last
// analysis
func (t *Tuner) Proposal() (scaling, errorPercent float64) {
	return t.scaling, t.errPct
}

// History returns a copy of the applied corrections in order
func (t *Tuner) History() []Record {
	result := make([]Record, len(t.history))
	copy(result, t.history)
	return result
}

// Iterations is the number of applied corrections
func (t *Tuner) Iterations() int {
	return len(t.history)
}

// CanRevert reports whether a pre-tuning snapshot exists
func (t *Tuner) CanRevert() bool {
	return t.original != nil
}

// ScalingFactor returns f_target/f_res and the relative error in percent
func ScalingFactor(fresGHz, targetGHz float64) (scaling, errorPercent float64) {
	return targetGHz / fresGHz, math.Abs(fresGHz-targetGHz) / targetGHz * 100
}

// Clamp limits a scaling factor to [MinScaling, MaxScaling]
func Clamp(s float64) (float64, bool) {
	switch {
	case s < MinScaling:
		return MinScaling, true
	case s > MaxScaling:
		return MaxScaling, true
	}
	return s, false
}

// Analyze evaluates a resonance against targetGHz. A NoData result keeps
// the tuner Idle and returns ErrNoData. Within tolerance the tuner returns
// to Idle with Converged; otherwise a correction is Proposed.
func (t *Tuner) Analyze(r resonance.Result, targetGHz float64) (Outcome, error) {
	if r.Status == resonance.NoData || !(r.FresGHz > 0) {
		t.phase = Idle
		log.WithField("reason", r.Reason).Warn("no resonance to tune against")
		return Converged, fmt.Errorf("%w: %s", ErrNoData, r.Reason)
	}
	if t.MaxIterations > 0 && len(t.history) >= t.MaxIterations {
		t.phase = Idle
		return Converged, ErrIterationLimit
	}
	t.last = r
	t.target = targetGHz
	t.scaling, t.errPct = ScalingFactor(r.FresGHz, targetGHz)
	t.phase = Analyzed

	fields := log.Fields{"fres": r.FresGHz, "target": targetGHz, "error%": fmt.Sprintf("%.2f", t.errPct)}
	if t.errPct <= t.TolerancePercent {
		t.phase = Idle
		log.WithFields(fields).Info("resonance within tolerance")
		return Converged, nil
	}
	t.phase = Proposed
	log.WithFields(fields).WithField("scaling", fmt.Sprintf("%.4f", t.scaling)).Info("correction proposed")
	return Correct, nil
}

// Apply scales s by the proposed factor, clamped to [0.6, 1.4]. The first
// application snapshots s for Revert.
func (t *Tuner) Apply(s *design.State) (Record, error) {
	if t.phase != Proposed {
		return Record{}, ErrNotProposed
	}
	if t.original == nil {
		t.original = s.Clone()
	}
	factor, clamped := Clamp(t.scaling)
	s.Scale(factor, t.ScaleFeedOffset)

	rec := Record{
		Iteration:    len(t.history) + 1,
		FresGHz:      t.last.FresGHz,
		TargetGHz:    t.target,
		ErrorPercent: t.errPct,
		S11MinDb:     t.last.S11MinDb,
		Proposed:     t.scaling,
		Scaling:      factor,
		Clamped:      clamped,
		PatchLMM:     s.Patch.LengthMM,
	}
	t.history = append(t.history, rec)
	t.phase = Applied

	entry := log.WithField("record", rec.String())
	if clamped {
		entry.Warn("scaling factor clamped")
	} else {
		entry.Info("correction applied")
	}
	return rec, nil
}

// Resolve marks that a new solve of the corrected design was requested
func (t *Tuner) Resolve() {
	if t.phase == Applied {
		t.phase = Idle
	}
}

// Revert restores the design captured before the first correction, clears
// the history and returns the tuner to Idle.
func (t *Tuner) Revert(s *design.State) error {
	if t.original == nil {
		return ErrNothingToRevert
	}
	*s = *t.original
	n := len(t.history)
	t.original = nil
	t.history = nil
	t.phase = Reverted
	log.WithFields(log.Fields{"iterations": n, "phase": t.phase}).Info("design reverted to the untuned geometry")
	t.phase = Idle
	return nil
}

// Step analyses r and applies the correction when it is out of tolerance.
// The returned record is nil when nothing was applied.
func (t *Tuner) Step(s *design.State, r resonance.Result) (*Record, error) {
	outcome, err := t.Analyze(r, s.Inputs.FrequencyGHz)
	if err != nil || outcome == Converged {
		return nil, err
	}
	rec, err := t.Apply(s)
	if err != nil {
		return nil, err
	}
	t.Resolve()
	return &rec, nil
}

// Original returns a copy of the pre-tuning snapshot, nil before the first
// correction
func (t *Tuner) Original() *design.State {
	if t.original == nil {
		return nil
	}
	return t.original.Clone()
}

// Restore reinstates a snapshot and history saved from an earlier session
func (t *Tuner) Restore(original *design.State, history []Record) {
	t.Reset()
	if original == nil {
		return
	}
	t.original = original.Clone()
	t.history = append([]Record(nil), history...)
}
