package resonance

import "errors"

// MatchLevelDb is the usual return-loss threshold of a matched antenna
const MatchLevelDb = -10.0

var ErrNotMatched = errors.New("resonance: S11 never crosses the match level")

// Band is the impedance bandwidth around the resonance. LowGHz/HighGHz are
// interpolated crossings of the match level; Open flags a band cut by the
// edge of the sweep.
type Band struct {
	LowGHz     float64
	HighGHz    float64
	Fractional float64 // percent of the resonance
	OpenLow    bool
	OpenHigh   bool
}

func (b Band) WidthGHz() float64 {
	return b.HighGHz - b.LowGHz
}

func crossing(f1, m1, f2, m2, level float64) float64 {
	if m2 == m1 {
		return f1
	}
	return f1 + (level-m1)*(f2-f1)/(m2-m1)
}

// Bandwidth walks out from the S11 minimum until the curve rises above
// levelDb on both sides.
func Bandwidth(c Curve, levelDb float64) (Band, error) {
	r := Analyze(c)
	if r.Status == NoData {
		return Band{}, ErrEmptyCurve
	}
	if r.S11MinDb > levelDb {
		return Band{}, ErrNotMatched
	}
	f, m := c.FreqGHz, c.MagDb
	var b Band

	lo := r.Index
	for lo > 0 && m[lo-1] <= levelDb {
		lo--
	}
	if lo == 0 {
		b.LowGHz, b.OpenLow = f[0], true
	} else {
		b.LowGHz = crossing(f[lo-1], m[lo-1], f[lo], m[lo], levelDb)
	}

	hi := r.Index
	for hi < len(m)-1 && m[hi+1] <= levelDb {
		hi++
	}
	if hi == len(m)-1 {
		b.HighGHz, b.OpenHigh = f[hi], true
	} else {
		b.HighGHz = crossing(f[hi], m[hi], f[hi+1], m[hi+1], levelDb)
	}

	b.Fractional = b.WidthGHz() / r.FresGHz * 100
	return b, nil
}
