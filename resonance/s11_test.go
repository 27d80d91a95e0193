package resonance_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/wiless/patcharray/resonance"
	"github.com/wiless/vlib"
)

func TestAnalyzeEmpty(t *testing.T) {
	cases := []resonance.Curve{
		{},
		{FreqGHz: vlib.VectorF{8, 9}},
		{FreqGHz: vlib.VectorF{8, 9}, MagDb: vlib.VectorF{-3}},
	}
	for i, c := range cases {
		r := resonance.Analyze(c)
		if r.Status != resonance.NoData {
			t.Errorf("case %d: status %v, want NoData", i, r.Status)
		}
		t.Log(r)
	}
}

func TestAnalyzeMagnitudeOnly(t *testing.T) {
	c := resonance.Curve{
		FreqGHz: vlib.VectorF{9.9, 10.0, 10.1, 10.2, 10.3, 10.4},
		MagDb:   vlib.VectorF{-4, -6, -9, -14, -22, -12},
	}
	r := resonance.Analyze(c)
	if r.Status != resonance.Partial {
		t.Fatalf("status %v, want Partial", r.Status)
	}
	if r.FresGHz != 10.3 || r.S11MinDb != -22 || r.Index != 4 {
		t.Errorf("got %+v", r)
	}
	if len(r.Missing) != 1 || r.Missing[0] != "impedance" {
		t.Errorf("missing = %v", r.Missing)
	}

	// re/im of the wrong length are ignored
	c.Re = vlib.VectorF{0.1, 0.2}
	c.Im = vlib.VectorF{0.1, 0.2}
	if r := resonance.Analyze(c); r.Status != resonance.Partial {
		t.Errorf("mismatched re/im: status %v", r.Status)
	}
}

func TestAnalyzeImpedance(t *testing.T) {
	c := resonance.Curve{
		FreqGHz: vlib.VectorF{9, 10, 11},
		MagDb:   vlib.VectorF{-3, -20, -5},
		Re:      vlib.VectorF{0.5, 0.1, 0.4},
		Im:      vlib.VectorF{0.2, 0.0, -0.3},
	}
	r := resonance.Analyze(c)
	if r.Status != resonance.OK {
		t.Fatalf("status %v", r.Status)
	}
	// 50 * 1.1/0.9
	want := 50 * 1.1 / 0.9
	if math.Abs(real(r.Impedance)-want) > 1e-9 || math.Abs(imag(r.Impedance)) > 1e-9 {
		t.Errorf("Z = %v, want %v", r.Impedance, want)
	}
	if z := resonance.Impedance(0); z != complex(50, 0) {
		t.Errorf("matched load Z = %v", z)
	}
}

func TestVSWR(t *testing.T) {
	v := resonance.VSWR(vlib.VectorF{-200, -20, 0, 3})
	if math.Abs(v[0]-1) > 1e-9 {
		t.Errorf("VSWR(-200dB) = %v", v[0])
	}
	if want := (1 + 0.1) / (1 - 0.1); math.Abs(v[1]-want) > 1e-9 {
		t.Errorf("VSWR(-20dB) = %v, want %v", v[1], want)
	}
	for _, x := range v[2:] {
		if math.IsInf(x, 0) || math.IsNaN(x) || x < 1e5 {
			t.Errorf("total reflection not clamped: %v", x)
		}
	}
}

func TestBandwidth(t *testing.T) {
	c := resonance.Curve{
		FreqGHz: vlib.VectorF{9.6, 9.8, 10.0, 10.2, 10.4},
		MagDb:   vlib.VectorF{-2, -8, -20, -12, -4},
	}
	b, err := resonance.Bandwidth(c, resonance.MatchLevelDb)
	if err != nil {
		t.Fatal(err)
	}
	// -8 -> -20 crosses -10 at 9.8 + 2/12*0.2; -12 -> -4 at 10.2 + 2/8*0.2
	lo, hi := 9.8+0.2*2.0/12.0, 10.2+0.2*2.0/8.0
	if math.Abs(b.LowGHz-lo) > 1e-9 || math.Abs(b.HighGHz-hi) > 1e-9 {
		t.Errorf("band %+v, want %v..%v", b, lo, hi)
	}
	if math.Abs(b.Fractional-(hi-lo)/10.0*100) > 1e-9 {
		t.Errorf("fractional %v", b.Fractional)
	}
	if b.OpenLow || b.OpenHigh {
		t.Error("band flagged open")
	}

	if _, err := resonance.Bandwidth(c, -25); !errors.Is(err, resonance.ErrNotMatched) {
		t.Errorf("err = %v, want ErrNotMatched", err)
	}
	if _, err := resonance.Bandwidth(resonance.Curve{}, -10); !errors.Is(err, resonance.ErrEmptyCurve) {
		t.Errorf("err = %v, want ErrEmptyCurve", err)
	}

	edge := resonance.Curve{FreqGHz: vlib.VectorF{1, 2, 3}, MagDb: vlib.VectorF{-15, -12, -3}}
	b, _ = resonance.Bandwidth(edge, -10)
	if !b.OpenLow || b.LowGHz != 1 || b.OpenHigh {
		t.Errorf("edge band %+v", b)
	}
}

func TestCSV(t *testing.T) {
	src := `Freq [GHz],dB(S(1,1))
8.0,-1.5
9.0,-6.25
10.0,-18
# trailing comment
11.0,-3
`
	c, err := resonance.ReadCSV(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 4 || c.HasComplex() {
		t.Fatalf("read %+v", c)
	}
	if r := resonance.Analyze(c); r.FresGHz != 10 {
		t.Errorf("fres %v", r.FresGHz)
	}

	c.Re = vlib.VectorF{0.8, 0.4, 0.1, 0.6}
	c.Im = vlib.VectorF{0.1, -0.2, 0.05, 0.3}
	var buf bytes.Buffer
	if err := resonance.WriteCSV(&buf, c); err != nil {
		t.Fatal(err)
	}
	got, err := resonance.ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !got.HasComplex() {
		t.Fatal("complex channels lost")
	}
	for i := range c.FreqGHz {
		if got.FreqGHz[i] != c.FreqGHz[i] || got.MagDb[i] != c.MagDb[i] || got.Re[i] != c.Re[i] || got.Im[i] != c.Im[i] {
			t.Errorf("row %d changed", i)
		}
	}

	if _, err := resonance.ReadCSV(strings.NewReader("8,-1\n9,abc\n")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestSynthetic(t *testing.T) {
	c := resonance.Synthetic(8, 12, 0.01, 10.3, 0.15, -25)
	if c.Len() != 401 {
		t.Errorf("%d points", c.Len())
	}
	r := resonance.Analyze(c)
	if math.Abs(r.FresGHz-10.3) > 1e-9 || math.Abs(r.S11MinDb+25) > 1e-9 {
		t.Errorf("got %v", r)
	}
}
