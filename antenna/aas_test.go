package antenna_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/wiless/patcharray/antenna"
	"github.com/wiless/vlib"
)

func TestExcitationDefaults(t *testing.T) {
	ex := antenna.NewExcitations()
	got := ex.GetOrCreate("P1_Lumped:1")
	if got.Amplitude != 1.0 || got.PhaseDeg != 0.0 {
		t.Errorf("default excitation = %+v, want (1,0)", got)
	}
	ex.Set("P1_Lumped:1", 2.0, 45)
	got = ex.GetOrCreate("P1_Lumped:1")
	if got.Amplitude != 2.0 || got.PhaseDeg != 45 {
		t.Errorf("GetOrCreate overwrote a known port: %+v", got)
	}
	if ex.Len() != 1 {
		t.Errorf("Len = %d, want 1", ex.Len())
	}
}

func TestSnapshotOrder(t *testing.T) {
	ex := antenna.NewExcitations()
	ex.Discover("P10_Lumped:1", "feed_extra", "P2_Lumped:1", "P1_Lumped:1", "other")
	snap := ex.Snapshot()
	want := []string{"P1_Lumped:1", "P2_Lumped:1", "P10_Lumped:1", "feed_extra", "other"}
	if len(snap) != len(want) {
		t.Fatalf("snapshot has %d entries, want %d", len(snap), len(want))
	}
	for i, w := range want {
		if snap[i].PortID != w {
			t.Errorf("snapshot[%d] = %s, want %s", i, snap[i].PortID, w)
		}
	}
	ex.Reset()
	if ex.Len() != 0 {
		t.Errorf("Reset left %d ports", ex.Len())
	}
}

func TestPortIndex(t *testing.T) {
	cases := []struct {
		id   string
		n    int
		isok bool
	}{
		{"P3_Lumped", 3, true},
		{"P12_Lumped:1", 12, true},
		{"Lumped", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		n, ok := antenna.PortIndex(c.id)
		if n != c.n || ok != c.isok {
			t.Errorf("PortIndex(%q) = %d,%v want %d,%v", c.id, n, ok, c.n, c.isok)
		}
	}
}

func TestArrayFactorBroadside(t *testing.T) {
	patch := antenna.SynthesizePatch(10, 2.2, 0.5)
	layout := antenna.SizeArray(12, antenna.DefaultElementGainDbi, 10, antenna.HalfLambda)
	sites := antenna.PlaceElements(patch, layout, antenna.FeedParameters{})

	ex := antenna.NewExcitations()
	af := ex.ArrayFactorDb(sites, 10, 0, 0)
	want := 10 * math.Log10(float64(len(sites)))
	if math.Abs(af-want) > 1e-9 {
		t.Errorf("broadside array factor = %v dB, want %v dB", af, want)
	}
}

func TestSteerTo(t *testing.T) {
	patch := antenna.SynthesizePatch(10, 2.2, 0.5)
	layout := antenna.SizeArray(18, antenna.DefaultElementGainDbi, 10, antenna.HalfLambda)
	sites := antenna.PlaceElements(patch, layout, antenna.FeedParameters{})

	ex := antenna.NewExcitations()
	ex.SteerTo(sites, 10, 30, 0)
	steered := ex.ArrayFactorDb(sites, 10, 30, 0)
	peak := 10 * math.Log10(float64(len(sites)))
	if math.Abs(steered-peak) > 1e-6 {
		t.Errorf("steered array factor = %v, want peak %v", steered, peak)
	}
	if broadside := ex.ArrayFactorDb(sites, 10, 0, 0); broadside >= steered {
		t.Errorf("broadside %v should be below the steered beam %v", broadside, steered)
	}
	for _, e := range ex.Snapshot() {
		if e.PhaseDeg < 0 || e.PhaseDeg >= 360 {
			t.Errorf("phase of %s out of range: %v", e.PortID, e.PhaseDeg)
		}
	}
}

func TestArrayPattern(t *testing.T) {
	patch := antenna.SynthesizePatch(10, 2.2, 0.5)
	layout := antenna.SizeArray(12, antenna.DefaultElementGainDbi, 10, antenna.HalfLambda)
	sites := antenna.PlaceElements(patch, layout, antenna.FeedParameters{})
	ex := antenna.NewExcitations()
	ex.SteerTo(sites, 10, 30, 0)

	theta, phi := vlib.NewVectorF(10), vlib.NewVectorF(36)
	for i := range theta {
		theta[i] = float64(i) * 10
	}
	for i := range phi {
		phi[i] = -180 + float64(i)*10
	}
	ff, err := ex.Pattern(sites, 10, theta, phi)
	if err != nil {
		t.Fatal(err)
	}
	g, th, ph := ff.Peak()
	if math.Abs(g-10*math.Log10(4)) > 1e-9 || th != 30 || ph != 0 {
		t.Errorf("peak %v dB at theta=%v phi=%v", g, th, ph)
	}
	for i := range ff.GainDb {
		for _, v := range ff.GainDb[i] {
			if v < antenna.PatternFloorDb || math.IsNaN(v) {
				t.Fatalf("sample %v below the floor", v)
			}
		}
	}

	var buf bytes.Buffer
	if err := antenna.WriteFarField(&buf, ff); err != nil {
		t.Fatal(err)
	}
	back, err := antenna.ReadFarField(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.ThetaDeg) != 10 || len(back.PhiDeg) != 36 {
		t.Fatalf("read back %dx%d grid", len(back.ThetaDeg), len(back.PhiDeg))
	}
	if g2, th2, ph2 := back.Peak(); g2 != g || th2 != th || ph2 != ph {
		t.Errorf("read back peak %v at %v/%v", g2, th2, ph2)
	}
}
