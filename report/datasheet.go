package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/phpdave11/gofpdf"
	log "github.com/sirupsen/logrus"
	"github.com/wiless/patcharray/antenna"
	"github.com/wiless/patcharray/design"
	"github.com/wiless/patcharray/resonance"
	"github.com/wiless/patcharray/tuning"
)

// Datasheet collects what goes into the PDF summary of a design. Curve,
// History and Excitations are optional.
type Datasheet struct {
	Title       string
	State       *design.State
	Curve       resonance.Curve
	History     []tuning.Record
	Excitations []antenna.Excitation
}

func tableRow(pdf *gofpdf.Fpdf, widths []float64, cells ...string) {
	for i, c := range cells {
		pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

// Write renders the datasheet as an A4 PDF
func (d Datasheet) Write(w io.Writer) error {
	if d.State == nil {
		return fmt.Errorf("datasheet: no design")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	title := d.Title
	if title == "" {
		title = "Patch array design"
	}
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(6)
	in := d.State.Inputs
	pdf.Cell(0, 6, fmt.Sprintf("%.4g GHz, %.1f dBi target, %s (er %.3g, h %.3g mm), %s feed",
		in.FrequencyGHz, in.GainDbi, in.Material, in.Er, in.ThicknessMM, in.FeedPosition))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Model variables")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	widths := []float64{40, 50}
	for _, v := range d.State.Variables() {
		tableRow(pdf, widths, v.Name, v.Value)
	}
	pdf.Ln(4)

	if d.Curve.Validate() == nil {
		p, err := S11Plot(d.Curve)
		if err != nil {
			return err
		}
		wt, err := p.WriterTo(PlotWidth, PlotHeight, "png")
		if err != nil {
			return err
		}
		var img bytes.Buffer
		if _, err := wt.WriteTo(&img); err != nil {
			return err
		}
		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("s11", opt, &img)
		pdf.ImageOptions("s11", 10, pdf.GetY(), 150, 0, true, opt, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 6, resonance.Analyze(d.Curve).String())
		pdf.Ln(8)
	}

	if len(d.History) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Tuning history")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		widths := []float64{12, 28, 28, 24, 28, 28}
		tableRow(pdf, widths, "#", "f_res (GHz)", "target (GHz)", "error (%)", "S11 (dB)", "scaling")
		for _, r := range d.History {
			s := fmt.Sprintf("%.4f", r.Scaling)
			if r.Clamped {
				s += " *"
			}
			tableRow(pdf, widths, fmt.Sprint(r.Iteration), fmt.Sprintf("%.4f", r.FresGHz), fmt.Sprintf("%.4f", r.TargetGHz),
				fmt.Sprintf("%.2f", r.ErrorPercent), fmt.Sprintf("%.2f", r.S11MinDb), s)
		}
		pdf.Ln(4)
	}

	if len(d.Excitations) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Port excitations")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		widths := []float64{40, 30, 30}
		tableRow(pdf, widths, "Port", "Amplitude", "Phase (deg)")
		for _, e := range d.Excitations {
			tableRow(pdf, widths, e.PortID, fmt.Sprintf("%.3f", e.Amplitude), fmt.Sprintf("%.2f", e.PhaseDeg))
		}
	}
	return pdf.Output(w)
}

// WriteFile renders the datasheet to fname
func (d Datasheet) WriteFile(fname string) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	log.WithField("file", fname).Info("datasheet saved")
	return f.Close()
}
