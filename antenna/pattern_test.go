package antenna_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/wiless/patcharray/antenna"
	"github.com/wiless/vlib"
)

func TestWrap(t *testing.T) {
	cases := []struct{ in, want0, want180 float64 }{
		{90, 90, 90},
		{-90, 90, -90},
		{270, 90, -90},
		{-270, 90, 90},
		{450, 90, 90},
	}
	for _, c := range cases {
		if got := antenna.Wrap0To180(c.in); math.Abs(got-c.want0) > 1e-9 {
			t.Errorf("Wrap0To180(%v) = %v, want %v", c.in, got, c.want0)
		}
		if got := antenna.Wrap180To180(c.in); math.Abs(got-c.want180) > 1e-9 {
			t.Errorf("Wrap180To180(%v) = %v, want %v", c.in, got, c.want180)
		}
	}
}

func TestFarFieldNormalized(t *testing.T) {
	theta := vlib.VectorF{0, 90, 180}
	phi := vlib.VectorF{-90, 0, 90}
	gain := vlib.MatrixF{
		{12, 10, 12},
		{0, -10, 0},
		{-20, -20, -20},
	}
	ff, err := antenna.NewFarField(theta, phi, gain)
	if err != nil {
		t.Fatal(err)
	}
	norm := ff.Normalized()
	if norm[0][0] != 1 || norm[2][1] != 0 {
		t.Errorf("normalised extremes = %v, %v, want 1, 0", norm[0][0], norm[2][1])
	}
	for i := range norm {
		for j := range norm[i] {
			if norm[i][j] < 0 || norm[i][j] > 1 {
				t.Errorf("norm[%d][%d] = %v outside [0,1]", i, j, norm[i][j])
			}
		}
	}
	g, th, ph := ff.Peak()
	if g != 12 || th != 0 || ph != -90 {
		t.Errorf("Peak = %v at (%v,%v)", g, th, ph)
	}
	if n := len(ff.Surface()); n != 9 {
		t.Errorf("surface has %d points, want 9", n)
	}
}

func TestFarFieldShape(t *testing.T) {
	if _, err := antenna.NewFarField(vlib.VectorF{0, 1}, vlib.VectorF{0}, vlib.MatrixF{{1}}); err == nil {
		t.Error("expected a shape error")
	}
}

func TestPlaceElements(t *testing.T) {
	patch := antenna.SynthesizePatch(10, 2.2, 0.5)
	layout := antenna.SizeArray(12, 8, 10, antenna.HalfLambda)
	feed := antenna.FeedGeometry(patch, defaultFeed())
	sites := antenna.PlaceElements(patch, layout, feed)
	if len(sites) != layout.NumPatches {
		t.Fatalf("%d sites for %d patches", len(sites), layout.NumPatches)
	}
	var cx, cy float64
	for i, s := range sites {
		if s.Index != i+1 || s.PortID != antenna.PortName(i+1) {
			t.Errorf("site %d: index %d port %s", i, s.Index, s.PortID)
		}
		cx += s.Centre.X
		cy += s.Centre.Y
		wantY := s.Centre.Y - patch.LengthMM/2 + feed.OffsetYMM
		if math.Abs(s.Feed.Y-wantY) > 1e-12 {
			t.Errorf("site %d feed y %v, want %v", i, s.Feed.Y, wantY)
		}
	}
	if math.Abs(cx) > 1e-9 || math.Abs(cy) > 1e-9 {
		t.Errorf("array not centred: (%v,%v)", cx, cy)
	}
	pitch := sites[1].Centre.X - sites[0].Centre.X
	if math.Abs(pitch-(patch.WidthMM+layout.SpacingMM)) > 1e-9 {
		t.Errorf("column pitch %v", pitch)
	}
}

func TestSizeSubstrate(t *testing.T) {
	patch := antenna.SynthesizePatch(10, 2.2, 0.5)
	for _, g := range []float64{9, 12, 15, 20, 26} {
		layout := antenna.SizeArray(g, 8, 10, antenna.OneLambda)
		sub := antenna.SizeSubstrate(patch, layout)
		w, l := antenna.ArrayExtent(patch, layout)
		if sub.MarginMM <= 0 || sub.WidthMM <= w || sub.LengthMM <= l {
			t.Errorf("gain %v: footprint %+v does not enclose %vx%v", g, sub, w, l)
		}
		if math.Abs(sub.MarginMM-0.2*math.Max(w, l)) > 1e-9 {
			t.Errorf("gain %v: margin %v", g, sub.MarginMM)
		}
	}
}

func TestReadFarField(t *testing.T) {
	src := `Theta[deg],Phi[deg],dB(GainTotal)
90,0,-3
0,90,8
0,0,8.5
90,90,-2.5
`
	ff, err := antenna.ReadFarField(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(ff.ThetaDeg) != 2 || len(ff.PhiDeg) != 2 {
		t.Fatalf("grid %v x %v", ff.ThetaDeg, ff.PhiDeg)
	}
	g, theta, phi := ff.Peak()
	if g != 8.5 || theta != 0 || phi != 0 {
		t.Errorf("peak %v at %v,%v", g, theta, phi)
	}
	if ff.GainDb[1][1] != -2.5 {
		t.Errorf("gain[90][90] = %v", ff.GainDb[1][1])
	}

	if _, err := antenna.ReadFarField(strings.NewReader("0,0,1\n0,90,2\n90,0,3\n")); !errors.Is(err, antenna.ErrEmptyPattern) {
		t.Errorf("incomplete grid: err = %v", err)
	}
}
