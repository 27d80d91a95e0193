package antenna_test

import (
	"math"
	"testing"

	"github.com/wiless/patcharray/antenna"
	"github.com/wiless/patcharray/design"
)

func TestSynthesizePatchDuroid(t *testing.T) {
	p := antenna.SynthesizePatch(10, 2.2, 0.5)
	t.Logf("10GHz er=2.2 h=0.5mm : L=%.3f W=%.3f lambda_g=%.3f eeff=%.4f", p.LengthMM, p.WidthMM, p.LambdaGMM, p.EpsEff)

	check := func(name string, got, want, tol float64) {
		if math.Abs(got-want) > tol {
			t.Errorf("%s = %.4f, want %.4f +/- %.3f", name, got, want, tol)
		}
	}
	check("W", p.WidthMM, 11.850, 0.005)
	check("L", p.LengthMM, 9.846, 0.005)
	check("lambda_g", p.LambdaGMM, 20.74, 0.02)
	check("eeff", p.EpsEff, 2.089, 0.002)
}

func TestSynthesizePatchBounds(t *testing.T) {
	rejected := 0
	for _, f := range []float64{1, 2.4, 5.8, 10, 24, 60} {
		for _, er := range []float64{1, 2.2, 3.38, 4.4, 10.2} {
			for _, h := range []float64{0.127, 0.5, 1.6, 3.2} {
				in := design.NewInputs()
				in.FrequencyGHz, in.Er, in.ThicknessMM = f, er, h
				in.SweepStartGHz, in.SweepStopGHz = 0.8*f, 1.2*f
				if err := in.Validate(); err != nil {
					rejected++
					continue
				}
				p := antenna.SynthesizePatch(f, er, h)
				if !(p.LengthMM > 0) || !(p.WidthMM > 0) || math.IsInf(p.LengthMM, 0) || math.IsInf(p.WidthMM, 0) {
					t.Errorf("f=%v er=%v h=%v: non positive geometry %+v", f, er, h, p)
				}
				if p.EpsEff < 1-1e-12 || p.EpsEff > er+1e-12 {
					t.Errorf("f=%v er=%v h=%v: eeff %v outside [1,er]", f, er, h, p.EpsEff)
				}
			}
		}
	}
	// 3.2 mm is more than half a wavelength at 60 GHz
	if rejected != 5 {
		t.Errorf("%d substrates rejected, want 5", rejected)
	}
}

func TestEdgeResistance(t *testing.T) {
	p := antenna.SynthesizePatch(10, 2.2, 0.5)
	r := antenna.EdgeResistance(10, p.WidthMM, 0.5)
	t.Log("edge resistance ", r)
	if r < 100 || r > 500 {
		t.Errorf("edge resistance %v ohm out of the expected 100-500 ohm range", r)
	}
}

func TestSizeArrayScenario(t *testing.T) {
	a := antenna.SizeArray(12, 8, 10, antenna.HalfLambda)
	if a.Required != 4 || a.Rows != 2 || a.Cols != 2 || a.NumPatches != 4 {
		t.Errorf("12 dBi layout = %+v, want 2x2 with N_req 4", a)
	}
	if math.Abs(a.SpacingMM-14.9896) > 1e-3 {
		t.Errorf("lambda/2 spacing = %v mm, want 14.99", a.SpacingMM)
	}
}

func TestSizeArrayInvariants(t *testing.T) {
	prev := 0
	for g := 0.0; g <= 35; g += 0.25 {
		a := antenna.SizeArray(g, antenna.DefaultElementGainDbi, 10, antenna.Lambda08)
		if a.Rows < 2 || a.Cols < 2 || a.Rows%2 != 0 || a.Cols%2 != 0 {
			t.Fatalf("gain %v: layout %dx%d is not even >=2", g, a.Rows, a.Cols)
		}
		if a.NumPatches != a.Rows*a.Cols || a.NumPatches < a.Required {
			t.Fatalf("gain %v: %d patches for %d required", g, a.NumPatches, a.Required)
		}
		if a.Required != antenna.RequiredElements(g, antenna.DefaultElementGainDbi) {
			t.Fatalf("gain %v: Required mismatch", g)
		}
		if a.NumPatches < prev {
			t.Fatalf("gain %v: %d patches, fewer than %d at lower gain", g, a.NumPatches, prev)
		}
		prev = a.NumPatches
	}
}

func TestRequiredElementsFloor(t *testing.T) {
	if n := antenna.RequiredElements(-40, 8); n != 2 {
		t.Errorf("RequiredElements for a tiny gain = %d, want 2", n)
	}
}

func TestRequiredElementsSaturates(t *testing.T) {
	prev := 0
	for g := 0.0; g <= 400; g += 0.5 {
		n := antenna.RequiredElements(g, antenna.DefaultElementGainDbi)
		if n < prev {
			t.Fatalf("gain %v: %d elements, fewer than %d at lower gain", g, n, prev)
		}
		if n > antenna.MaxElements {
			t.Fatalf("gain %v: %d elements above the cap", g, n)
		}
		prev = n
	}
	for _, g := range []float64{200, 300, math.Inf(1)} {
		if n := antenna.RequiredElements(g, 8); n != antenna.MaxElements {
			t.Errorf("gain %v: %d elements, want %d", g, n, antenna.MaxElements)
		}
	}
	a := antenna.SizeArray(300, 8, 10, antenna.HalfLambda)
	if a.NumPatches < antenna.MaxElements || a.Rows%2 != 0 || a.Cols%2 != 0 {
		t.Errorf("saturated layout %v", a)
	}
}

func TestSpacingType(t *testing.T) {
	for i, name := range antenna.SpacingTypes {
		s, err := antenna.ParseSpacingType(name)
		if err != nil || int(s) != i {
			t.Errorf("ParseSpacingType(%q) = %v, %v", name, s, err)
		}
	}
	if s, err := antenna.ParseSpacingType("0.7·lambda"); err != nil || s != antenna.Lambda07 {
		t.Errorf("ParseSpacingType with middle dot = %v, %v", s, err)
	}
	if _, err := antenna.ParseSpacingType("2*lambda"); err == nil {
		t.Error("expected an error for an unknown spacing type")
	}
	if f := antenna.SpacingType(42).Factor(); f != 0.5 {
		t.Errorf("unknown spacing factor = %v, want 0.5", f)
	}
}
