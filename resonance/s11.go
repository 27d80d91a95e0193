// Package resonance extracts the resonant frequency, return loss, VSWR and
// input impedance from a solved S11 curve.
package resonance

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/vlib"
	"gonum.org/v1/gonum/floats"
)

// Z0 is the reference impedance of the ports, ohm
const Z0 = 50.0

// maxReflection keeps VSWR finite for |S| -> 1
const maxReflection = 0.999999

// Curve is one solved S11 sweep. FreqGHz is strictly increasing; Re and Im
// are optional and, when present, parallel to MagDb.
type Curve struct {
	FreqGHz vlib.VectorF
	MagDb   vlib.VectorF
	Re      vlib.VectorF
	Im      vlib.VectorF
}

var (
	ErrEmptyCurve     = errors.New("resonance: empty curve")
	ErrLengthMismatch = errors.New("resonance: frequency and magnitude lengths differ")
	ErrNotIncreasing  = errors.New("resonance: frequency not strictly increasing")
)

func (c Curve) Len() int {
	return len(c.FreqGHz)
}

// HasComplex reports whether usable re/im channels are attached
func (c Curve) HasComplex() bool {
	n := len(c.MagDb)
	return n > 0 && len(c.Re) == n && len(c.Im) == n
}

// Validate checks the shape of the curve
func (c Curve) Validate() error {
	if len(c.FreqGHz) == 0 || len(c.MagDb) == 0 {
		return ErrEmptyCurve
	}
	if len(c.FreqGHz) != len(c.MagDb) {
		return ErrLengthMismatch
	}
	for i := 1; i < len(c.FreqGHz); i++ {
		if !(c.FreqGHz[i] > c.FreqGHz[i-1]) {
			return fmt.Errorf("%w at index %d", ErrNotIncreasing, i)
		}
	}
	return nil
}

// Status tags how complete a Result is
type Status int

const (
	NoData Status = iota
	Partial
	OK
)

var Statuses = [...]string{
	"NoData",
	"Partial",
	"OK",
}

func (s Status) String() string {
	if int(s) < 0 || int(s) >= len(Statuses) {
		return "Unknown-Status"
	}
	return Statuses[s]
}

// Result is the resonance found on a curve. Only Reason is meaningful for
// NoData; Impedance is meaningful for OK only and Missing lists what a
// Partial result lacks.
type Result struct {
	Status    Status
	Reason    string
	FresGHz   float64
	S11MinDb  float64
	Index     int
	Impedance complex128
	Missing   []string
}

// HasImpedance reports whether R+jX was computed
func (r Result) HasImpedance() bool {
	return r.Status == OK
}

func (r Result) String() string {
	switch r.Status {
	case NoData:
		return "no data: " + r.Reason
	case OK:
		return fmt.Sprintf("Min @ %.4g GHz, S11=%.2f dB, Z=%.1f%+.1fj ohm", r.FresGHz, r.S11MinDb, real(r.Impedance), imag(r.Impedance))
	default:
		return fmt.Sprintf("Min @ %.4g GHz, S11=%.2f dB", r.FresGHz, r.S11MinDb)
	}
}

// Impedance returns Z = Z0 (1+S)/(1-S)
func Impedance(s complex128) complex128 {
	return complex(Z0, 0) * (1 + s) / (1 - s)
}

// Reflection returns |S| for a magnitude in dB, clamped to [0, 0.999999]
func Reflection(magDb float64) float64 {
	s := math.Pow(10, magDb/20.0)
	return math.Min(math.Max(s, 0), maxReflection)
}

// VSWR converts S11 magnitudes in dB to VSWR
func VSWR(magDb vlib.VectorF) vlib.VectorF {
	result := vlib.NewVectorF(len(magDb))
	for i, m := range magDb {
		s := Reflection(m)
		result[i] = (1 + s) / (1 - s)
	}
	return result
}

func (c Curve) VSWR() vlib.VectorF {
	return VSWR(c.MagDb)
}

// Analyze locates the S11 minimum. An empty or malformed curve gives a
// NoData result; missing or mismatched re/im channels give a Partial one.
func Analyze(c Curve) Result {
	if err := c.Validate(); err != nil && !errors.Is(err, ErrNotIncreasing) {
		log.WithField("reason", err).Warn("S11 analysis aborted")
		return Result{Status: NoData, Reason: err.Error()}
	}

	idx := floats.MinIdx(c.MagDb)
	result := Result{
		Status:   Partial,
		Index:    idx,
		FresGHz:  c.FreqGHz[idx],
		S11MinDb: c.MagDb[idx],
	}
	if c.HasComplex() {
		z := Impedance(complex(c.Re[idx], c.Im[idx]))
		if !cmplx.IsNaN(z) && !cmplx.IsInf(z) {
			result.Status = OK
			result.Impedance = z
		}
	}
	if result.Status == Partial {
		result.Missing = []string{"impedance"}
	}
	log.WithFields(log.Fields{"fres": result.FresGHz, "s11": result.S11MinDb, "status": result.Status}).Debug("S11 analysed")
	return result
}

// ImpedanceCurve returns |Z| over the sweep, nil without complex data
func (c Curve) ImpedanceCurve() vlib.VectorF {
	if !c.HasComplex() {
		return nil
	}
	result := vlib.NewVectorF(len(c.Re))
	for i := range c.Re {
		result[i] = cmplx.Abs(Impedance(complex(c.Re[i], c.Im[i])))
	}
	return result
}
