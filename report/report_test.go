package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/wiless/patcharray/antenna"
	"github.com/wiless/patcharray/design"
	"github.com/wiless/patcharray/report"
	"github.com/wiless/patcharray/resonance"
	"github.com/wiless/patcharray/tuning"
	"github.com/xuri/excelize/v2"
)

func TestSavePlots(t *testing.T) {
	dir := t.TempDir()
	c := resonance.Synthetic(8, 12, 0.02, 10.2, 0.2, -21)
	for _, name := range []string{"s11.png", "s11.svg"} {
		fname := filepath.Join(dir, name)
		if err := report.SaveS11(fname, c); err != nil {
			t.Fatal(err)
		}
		if st, err := os.Stat(fname); err != nil || st.Size() == 0 {
			t.Errorf("%s not written", name)
		}
	}
	if err := report.SaveVSWR(filepath.Join(dir, "vswr.png"), c); err != nil {
		t.Fatal(err)
	}
	if err := report.SaveS11(filepath.Join(dir, "empty.png"), resonance.Curve{}); err == nil {
		t.Error("plotted an empty curve")
	}
}

func TestWriteHistory(t *testing.T) {
	s, err := design.Synthesize(*design.NewInputs())
	if err != nil {
		t.Fatal(err)
	}
	tu := tuning.NewTuner()
	for _, f := range []float64{10.6, 10.3} {
		if _, err := tu.Step(s, resonance.Result{Status: resonance.Partial, FresGHz: f, S11MinDb: -14}); err != nil {
			t.Fatal(err)
		}
	}

	fname := filepath.Join(t.TempDir(), "history.xlsx")
	if err := report.WriteHistory(fname, tu.History(), s); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("History")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != "Iteration" || rows[2][0] != "2" {
		t.Errorf("history rows %v", rows)
	}
	vars, err := f.GetRows("Design")
	if err != nil {
		t.Fatal(err)
	}
	if len(vars) != len(s.Variables())+1 || vars[1][0] != "f0" {
		t.Errorf("design rows %v", vars)
	}
}

func TestExportMatlab(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	s, err := design.Synthesize(*design.NewInputs())
	if err != nil {
		t.Fatal(err)
	}
	report.ExportMatlab("patch", s, resonance.Synthetic(9, 11, 0.05, 10, 0.2, -20))
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Error("no Matlab script written")
	}
}

func TestDatasheet(t *testing.T) {
	s, err := design.Synthesize(*design.NewInputs())
	if err != nil {
		t.Fatal(err)
	}
	d := report.Datasheet{
		State: s,
		Curve: resonance.Synthetic(8, 12, 0.02, 10.2, 0.2, -21),
		History: []tuning.Record{
			{Iteration: 1, FresGHz: 10.2, TargetGHz: 10, ErrorPercent: 2, S11MinDb: -21, Scaling: 0.98},
		},
		Excitations: []antenna.Excitation{{PortID: "P1_Lumped", Amplitude: 1}},
	}
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
	if err := (report.Datasheet{}).Write(&buf); err == nil {
		t.Error("datasheet without a design accepted")
	}
}
