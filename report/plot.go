// Package report renders solved curves, designs and tuning histories to
// files for review: PNG plots, spreadsheets and Matlab scripts.
package report

import (
	"fmt"
	"image/color"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/patcharray/resonance"
	"github.com/wiless/vlib"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	curveColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	markerColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	levelColor  = color.RGBA{R: 127, G: 127, B: 127, A: 255}
)

// PlotWidth and PlotHeight size the saved images
var (
	PlotWidth  = 6 * vg.Inch
	PlotHeight = 4 * vg.Inch
)

func xys(x, y vlib.VectorF) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

// S11Plot draws the return loss with the -10 dB level and the resonance
// marked
func S11Plot(c resonance.Curve) (*plot.Plot, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := resonance.Analyze(c)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("S11 (min %.2f dB @ %.4g GHz)", r.S11MinDb, r.FresGHz)
	p.X.Label.Text = "Frequency (GHz)"
	p.Y.Label.Text = "S11 (dB)"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys(c.FreqGHz, c.MagDb))
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = curveColor
	line.LineStyle.Width = vg.Points(1.5)

	first, last := c.FreqGHz[0], c.FreqGHz[c.Len()-1]
	level, err := plotter.NewLine(plotter.XYs{{X: first, Y: resonance.MatchLevelDb}, {X: last, Y: resonance.MatchLevelDb}})
	if err != nil {
		return nil, err
	}
	level.LineStyle.Color = levelColor
	level.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	marker, err := plotter.NewScatter(plotter.XYs{{X: r.FresGHz, Y: r.S11MinDb}})
	if err != nil {
		return nil, err
	}
	marker.GlyphStyle.Color = markerColor
	marker.GlyphStyle.Radius = vg.Points(3)

	p.Add(line, level, marker)
	p.Legend.Add("S11", line)
	p.Legend.Add("-10 dB", level)
	p.Legend.Top = false
	return p, nil
}

// VSWRPlot draws the VSWR of the curve
func VSWRPlot(c resonance.Curve) (*plot.Plot, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = "VSWR"
	p.X.Label.Text = "Frequency (GHz)"
	p.Y.Label.Text = "VSWR"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys(c.FreqGHz, c.VSWR()))
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = curveColor
	p.Add(line)
	return p, nil
}

// SaveS11 writes the S11 plot to fname; the extension selects the format
// (png, svg, pdf)
func SaveS11(fname string, c resonance.Curve) error {
	p, err := S11Plot(c)
	if err != nil {
		return err
	}
	if err := p.Save(PlotWidth, PlotHeight, fname); err != nil {
		return err
	}
	log.WithField("file", fname).Info("S11 plot saved")
	return nil
}

// SaveVSWR writes the VSWR plot to fname
func SaveVSWR(fname string, c resonance.Curve) error {
	p, err := VSWRPlot(c)
	if err != nil {
		return err
	}
	if err := p.Save(PlotWidth, PlotHeight, fname); err != nil {
		return err
	}
	log.WithField("file", fname).Info("VSWR plot saved")
	return nil
}
