package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wiless/patcharray"
	"github.com/wiless/patcharray/antenna"
	"github.com/wiless/patcharray/design"
	"github.com/wiless/patcharray/report"
	"github.com/wiless/patcharray/resonance"
)

var (
	paramsFile  string
	matlabName  string
	s11File     string
	plotFile    string
	vswrFile    string
	historyFile string
	pdfFile     string
	ffFile      string
	thetaDeg    float64
	phiDeg      float64
	offsetPct   float64
	s11Out      string
	ffOut       string
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Synthesise a new design and start a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := ConfigInputs()
		if err != nil {
			return err
		}
		s, err := patcharray.NewSession(*in, appConfig.SessionOptions()...)
		if err != nil {
			return err
		}
		state, err := s.State()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		printDesign(w, state)
		if paramsFile != "" {
			if err := design.SaveFile(paramsFile, state); err != nil {
				return err
			}
		}
		if matlabName != "" {
			report.ExportMatlab(matlabName, state, resonance.Curve{})
		}
		if pdfFile != "" {
			if err := writeDatasheet(s, resonance.Curve{}); err != nil {
				return err
			}
		}
		if err := s.SaveFile(sessionFile); err != nil {
			return err
		}
		okColor.Fprintf(w, "session written to %s\n", sessionFile)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report resonance, bandwidth and impedance of a solved S11 curve",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resonance.ReadCSVFile(s11File)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		printResonance(w, c)
		return writePlots(c)
	},
}

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Apply one geometry correction from a solved S11 curve",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := patcharray.LoadSessionFile(sessionFile, appConfig.SessionOptions()...)
		if err != nil {
			return err
		}
		c, err := resonance.ReadCSVFile(s11File)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		r, rec, err := s.Ingest(c)
		if err != nil {
			return err
		}
		printResonance(w, c)
		if rec == nil {
			okColor.Fprintf(w, "converged: %.4g GHz within %.1f%%\n", r.FresGHz, appConfig.Tolerance)
		} else if rec.Clamped {
			warnColor.Fprintf(w, "applied %s\n", rec)
		} else {
			okColor.Fprintf(w, "applied %s\n", rec)
			fmt.Fprintln(w, "re-solve the corrected design")
		}
		if err := writePlots(c); err != nil {
			return err
		}
		if historyFile != "" {
			state, err := s.State()
			if err != nil {
				return err
			}
			history, err := s.History()
			if err != nil {
				return err
			}
			if err := report.WriteHistory(historyFile, history, state); err != nil {
				return err
			}
		}
		if pdfFile != "" {
			if err := writeDatasheet(s, c); err != nil {
				return err
			}
		}
		return saveSession(s)
	},
}

var revertCmd = &cobra.Command{
	Use:   "revert",
	Short: "Restore the design as synthesised, dropping the tuning history",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := patcharray.LoadSessionFile(sessionFile, appConfig.SessionOptions()...)
		if err != nil {
			return err
		}
		if err := s.Revert(); err != nil {
			return err
		}
		okColor.Fprintln(cmd.OutOrStdout(), "design reverted")
		return saveSession(s)
	},
}

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "List the model-builder variables of the session design",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := patcharray.LoadSessionFile(sessionFile)
		if err != nil {
			return err
		}
		vars, err := s.Variables()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, v := range vars {
			fmt.Fprintf(w, "%-8s %s\n", v.Name, v.Value)
		}
		return nil
	},
}

var steerCmd = &cobra.Command{
	Use:   "steer",
	Short: "Set progressive port phases for a beam direction",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := patcharray.LoadSessionFile(sessionFile)
		if err != nil {
			return err
		}
		ex, err := s.Steer(thetaDeg, phiDeg)
		if err != nil {
			return err
		}
		gain, err := s.ArrayFactorDb(thetaDeg, phiDeg)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, e := range ex {
			fmt.Fprintf(w, "%-14s %6.3f %8.2f deg\n", e.PortID, e.Amplitude, e.PhaseDeg)
		}
		okColor.Fprintf(w, "array factor %.2f dB towards theta=%.1f phi=%.1f\n", gain, thetaDeg, phiDeg)
		return saveSession(s)
	},
}

var patternCmd = &cobra.Command{
	Use:   "pattern",
	Short: "Summarise a solved far-field pattern",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(ffFile)
		if err != nil {
			return err
		}
		defer f.Close()
		ff, err := antenna.ReadFarField(f)
		if err != nil {
			return err
		}
		g, theta, phi := ff.Peak()
		okColor.Fprintf(cmd.OutOrStdout(), "peak %.2f dB at theta=%g phi=%g (%dx%d samples)\n", g, theta, phi, len(ff.ThetaDeg), len(ff.PhiDeg))
		if matlabName != "" {
			report.ExportFarField(matlabName, ff)
		}
		return nil
	},
}

var dryrunCmd = &cobra.Command{
	Use:   "dryrun",
	Short: "Write stand-in solver results for the session design",
	Long: `Write an S11 curve over the configured sweep with a single resonance
--offset percent away from the design frequency, and optionally the
array-factor pattern of the session excitations on the theta/phi grid.
The files feed tune and pattern without an EM solver.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := patcharray.LoadSessionFile(sessionFile)
		if err != nil {
			return err
		}
		state, err := s.State()
		if err != nil {
			return err
		}
		in := state.Inputs
		fres := in.FrequencyGHz * (1 + offsetPct/100)
		c := resonance.Synthetic(in.SweepStartGHz, in.SweepStopGHz, in.SweepStepGHz, fres, 0.02*in.FrequencyGHz, -18)
		if err := writeFile(s11Out, func(w io.Writer) error { return resonance.WriteCSV(w, c) }); err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "S11 with resonance at %.4f GHz written to %s\n", fres, s11Out)
		if ffOut != "" {
			ff, err := s.ArrayPattern()
			if err != nil {
				return err
			}
			if err := writeFile(ffOut, func(w io.Writer) error { return antenna.WriteFarField(w, ff) }); err != nil {
				return err
			}
			fmt.Fprintf(w, "array factor on %dx%d grid written to %s\n", len(ff.ThetaDeg), len(ff.PhiDeg), ffOut)
		}
		return nil
	},
}

func init() {
	synthCmd.Flags().StringVarP(&paramsFile, "out", "o", "antenna_parameters.json", "flat parameter file, empty to skip")
	synthCmd.Flags().StringVar(&matlabName, "matlab", "", "also write a Matlab script with the design variables")

	for _, c := range []*cobra.Command{analyzeCmd, tuneCmd} {
		c.Flags().StringVar(&s11File, "s11", "", "solved S11 curve (csv: freq GHz, dB[, re, im])")
		c.Flags().StringVar(&plotFile, "plot", "", "write the S11 plot (png, svg, pdf)")
		c.Flags().StringVar(&vswrFile, "vswr", "", "write the VSWR plot")
		c.MarkFlagRequired("s11")
	}
	tuneCmd.Flags().StringVar(&historyFile, "history", "", "write the tuning history workbook (xlsx)")
	tuneCmd.Flags().StringVar(&pdfFile, "datasheet", "", "write a PDF datasheet of the corrected design")
	synthCmd.Flags().StringVar(&pdfFile, "datasheet", "", "write a PDF datasheet of the design")

	steerCmd.Flags().Float64Var(&thetaDeg, "theta", 0, "beam elevation from broadside, degree")
	steerCmd.Flags().Float64Var(&phiDeg, "phi", 0, "beam azimuth, degree")

	patternCmd.Flags().StringVar(&ffFile, "ff", "", "far-field samples (csv: theta, phi, gain dB)")
	patternCmd.Flags().StringVar(&matlabName, "matlab", "", "write a Matlab script drawing the pattern surface")
	patternCmd.MarkFlagRequired("ff")

	dryrunCmd.Flags().StringVar(&s11Out, "s11", "s11.csv", "S11 curve to write")
	dryrunCmd.Flags().StringVar(&ffOut, "ff", "", "also write the array-factor pattern (csv)")
	dryrunCmd.Flags().Float64Var(&offsetPct, "offset", 3, "resonance shift from the design frequency, percent")

	rootCmd.AddCommand(synthCmd, analyzeCmd, tuneCmd, revertCmd, varsCmd, steerCmd, patternCmd, dryrunCmd)
}

func writeFile(fname string, write func(io.Writer) error) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func saveSession(s *patcharray.Session) error {
	return s.SaveFile(sessionFile)
}

func writeDatasheet(s *patcharray.Session, c resonance.Curve) error {
	var d report.Datasheet
	var err error
	if d.State, err = s.State(); err != nil {
		return err
	}
	if d.History, err = s.History(); err != nil {
		return err
	}
	if d.Excitations, err = s.Excitations(); err != nil {
		return err
	}
	d.Curve = c
	return d.WriteFile(pdfFile)
}

func writePlots(c resonance.Curve) error {
	if plotFile != "" {
		if err := report.SaveS11(plotFile, c); err != nil {
			return err
		}
	}
	if vswrFile != "" {
		if err := report.SaveVSWR(vswrFile, c); err != nil {
			return err
		}
	}
	return nil
}

func printDesign(w io.Writer, s *design.State) {
	fmt.Fprintf(w, "Patch    L=%.3f mm  W=%.3f mm  lambda_g=%.3f mm  eps_eff=%.3f\n", s.Patch.LengthMM, s.Patch.WidthMM, s.Patch.LambdaGMM, s.Patch.EpsEff)
	fmt.Fprintf(w, "Array    %s, %d required\n", s.Layout, s.Layout.Required)
	fmt.Fprintf(w, "Board    %.3f x %.3f mm (margin %.3f mm)\n", s.Footprint.WidthMM, s.Footprint.LengthMM, s.Footprint.MarginMM)
	fmt.Fprintf(w, "Feed     a=%.3f mm  b=%.3f mm  offset=(%.3f, %.3f) mm\n", s.Feed.InnerRadiusMM, s.Feed.OuterRadiusMM, s.Feed.OffsetXMM, s.Feed.OffsetYMM)
	if s.Feed.Clamped {
		warnColor.Fprintf(w, "coax gap clamped to %.2f mm\n", s.Feed.GapMM())
	}
}

func printResonance(w io.Writer, c resonance.Curve) {
	r := resonance.Analyze(c)
	if r.Status == resonance.NoData {
		warnColor.Fprintln(w, r)
		return
	}
	fmt.Fprintln(w, r)
	if r.Status == resonance.Partial {
		warnColor.Fprintf(w, "missing: %v\n", r.Missing)
	}
	if vswr := c.VSWR(); r.Index < len(vswr) {
		fmt.Fprintf(w, "VSWR at resonance %.3f\n", vswr[r.Index])
	}
	b, err := resonance.Bandwidth(c, resonance.MatchLevelDb)
	if err != nil {
		warnColor.Fprintln(w, err)
		return
	}
	fmt.Fprintf(w, "-10 dB band %.4f..%.4f GHz (%.2f%%)\n", b.LowGHz, b.HighGHz, b.Fractional)
}
