package antenna

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/wiless/vlib"
)

// Wrap0To180 wraps the input angle to 0 to 180
func Wrap0To180(degree float64) float64 {
	if degree >= 0 && degree <= 180 {
		return degree
	}
	if degree < 0 {
		degree = -degree
	}
	if degree >= 360 {
		degree = math.Mod(degree, 360)
	}
	if degree > 180 {
		degree = 360 - degree
	}
	return degree
}

// Wrap180To180 wraps the input angle to -180 to 180
func Wrap180To180(degree float64) float64 {
	if degree >= -180 && degree <= 180 {
		return degree
	}
	degree = math.Mod(degree+180, 360)
	if degree < 0 {
		degree += 360
	}
	return degree - 180
}

// FarField is a sampled gain pattern from the solver. GainDb is indexed
// [theta][phi].
type FarField struct {
	ThetaDeg vlib.VectorF
	PhiDeg   vlib.VectorF
	GainDb   vlib.MatrixF
}

var ErrEmptyPattern = errors.New("antenna: empty far-field grid")

// PatternFloorDb is the lowest gain written to a sampled pattern
const PatternFloorDb = -100.0

// NewFarField checks the grid shape. Theta is wrapped to [0,180] and phi to
// [-180,180].
func NewFarField(theta, phi vlib.VectorF, gainDb vlib.MatrixF) (*FarField, error) {
	if len(theta) == 0 || len(phi) == 0 || len(gainDb) != len(theta) {
		return nil, ErrEmptyPattern
	}
	for _, row := range gainDb {
		if len(row) != len(phi) {
			return nil, ErrEmptyPattern
		}
	}
	ff := &FarField{
		ThetaDeg: vlib.NewVectorF(len(theta)),
		PhiDeg:   vlib.NewVectorF(len(phi)),
		GainDb:   gainDb,
	}
	for i, t := range theta {
		ff.ThetaDeg[i] = Wrap0To180(t)
	}
	for i, p := range phi {
		ff.PhiDeg[i] = Wrap180To180(p)
	}
	return ff, nil
}

// Normalized converts the grid to linear field gain 10^(dB/20), shifted so
// the minimum is 0 and scaled so the maximum is 1. A flat pattern maps to 0.
func (f *FarField) Normalized() vlib.MatrixF {
	nt, np := len(f.ThetaDeg), len(f.PhiDeg)
	result := vlib.NewMatrixF(nt, np)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < nt; i++ {
		for j := 0; j < np; j++ {
			v := math.Pow(10, f.GainDb[i][j]/20.0)
			result[i][j] = v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	span := hi - lo
	for i := 0; i < nt; i++ {
		for j := 0; j < np; j++ {
			if span > 0 {
				result[i][j] = (result[i][j] - lo) / span
			} else {
				result[i][j] = 0
			}
		}
	}
	return result
}

// Surface returns the cartesian points of the display surface with radius
// 0.2 + 0.8 * normalised gain.
func (f *FarField) Surface() []vlib.Location3D {
	norm := f.Normalized()
	pts := make([]vlib.Location3D, 0, len(f.ThetaDeg)*len(f.PhiDeg))
	for i, th := range f.ThetaDeg {
		for j, ph := range f.PhiDeg {
			r := 0.2 + 0.8*norm[i][j]
			t, p := Radian(th), Radian(ph)
			pts = append(pts, vlib.Location3D{
				X: r * math.Sin(t) * math.Cos(p),
				Y: r * math.Sin(t) * math.Sin(p),
				Z: r * math.Cos(t),
			})
		}
	}
	return pts
}

// Peak returns the maximum gain and where it occurs
func (f *FarField) Peak() (gainDb, thetaDeg, phiDeg float64) {
	gainDb = math.Inf(-1)
	for i := range f.ThetaDeg {
		for j := range f.PhiDeg {
			if f.GainDb[i][j] > gainDb {
				gainDb, thetaDeg, phiDeg = f.GainDb[i][j], f.ThetaDeg[i], f.PhiDeg[j]
			}
		}
	}
	return gainDb, thetaDeg, phiDeg
}

// ReadFarField reads a solver far-field export with one "theta, phi,
// gain_dB" sample per line. Samples may come in any order but must cover
// the full theta x phi grid. Non-numeric header lines are skipped.
func ReadFarField(r io.Reader) (*FarField, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true
	rd.Comment = '#'

	type key struct{ t, p float64 }
	samples := make(map[key]float64)
	var thetas, phis []float64
	seenT := make(map[float64]bool)
	seenP := make(map[float64]bool)
	for line := 1; ; line++ {
		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("line %d: want theta, phi, gain", line)
		}
		var v [3]float64
		bad := false
		for i := range v {
			if v[i], err = strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); err != nil {
				bad = true
				break
			}
		}
		if bad {
			if len(samples) == 0 {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples[key{v[0], v[1]}] = v[2]
		if !seenT[v[0]] {
			seenT[v[0]] = true
			thetas = append(thetas, v[0])
		}
		if !seenP[v[1]] {
			seenP[v[1]] = true
			phis = append(phis, v[1])
		}
	}
	sort.Float64s(thetas)
	sort.Float64s(phis)

	gain := vlib.NewMatrixF(len(thetas), len(phis))
	for i, t := range thetas {
		for j, p := range phis {
			g, ok := samples[key{t, p}]
			if !ok {
				return nil, fmt.Errorf("%w: no sample at theta=%g phi=%g", ErrEmptyPattern, t, p)
			}
			gain[i][j] = g
		}
	}
	return NewFarField(vlib.VectorF(thetas), vlib.VectorF(phis), gain)
}

// WriteFarField writes ff in the format read by ReadFarField, theta major
func WriteFarField(w io.Writer, ff *FarField) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"theta", "phi", "gain_db"}); err != nil {
		return err
	}
	ftoa := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i, t := range ff.ThetaDeg {
		for j, p := range ff.PhiDeg {
			if err := cw.Write([]string{ftoa(t), ftoa(p), ftoa(ff.GainDb[i][j])}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
