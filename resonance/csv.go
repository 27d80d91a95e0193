package resonance

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wiless/vlib"
)

// ReadCSV reads a solver export with columns freq(GHz), S11(dB) and
// optionally re(S11), im(S11). A header line is skipped when its first
// field is not a number.
func ReadCSV(r io.Reader) (Curve, error) {
	var c Curve
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true
	rd.Comment = '#'

	complexOK := true
	line := 0
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Curve{}, err
		}
		line++
		if len(rec) < 2 {
			return Curve{}, fmt.Errorf("line %d: want at least 2 columns, got %d", line, len(rec))
		}
		vals := make([]float64, len(rec))
		for i, field := range rec {
			v, perr := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if perr != nil {
				if line == 1 && i == 0 {
					vals = nil
					break
				}
				return Curve{}, fmt.Errorf("line %d column %d: %w", line, i+1, perr)
			}
			vals[i] = v
		}
		if vals == nil {
			continue
		}
		c.FreqGHz = append(c.FreqGHz, vals[0])
		c.MagDb = append(c.MagDb, vals[1])
		if len(vals) >= 4 {
			c.Re = append(c.Re, vals[2])
			c.Im = append(c.Im, vals[3])
		} else {
			complexOK = false
		}
	}
	if !complexOK {
		c.Re, c.Im = nil, nil
	}
	return c, nil
}

// ReadCSVFile opens fname and reads it with ReadCSV
func ReadCSVFile(fname string) (Curve, error) {
	f, err := os.Open(fname)
	if err != nil {
		return Curve{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes the curve in the format ReadCSV accepts
func WriteCSV(w io.Writer, c Curve) error {
	cw := csv.NewWriter(w)
	header := []string{"Frequency (GHz)", "S11 (dB)"}
	withComplex := c.HasComplex()
	if withComplex {
		header = append(header, "re(S11)", "im(S11)")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	ftoa := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i := range c.FreqGHz {
		rec := []string{ftoa(c.FreqGHz[i]), ftoa(c.MagDb[i])}
		if withComplex {
			rec = append(rec, ftoa(c.Re[i]), ftoa(c.Im[i]))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Synthetic builds a single-resonance curve for dry runs without a solver:
// a Lorentzian dip of depth minDb at fres with half-width hwGHz.
func Synthetic(startGHz, stopGHz, stepGHz, fres, hwGHz, minDb float64) Curve {
	n := int((stopGHz-startGHz)/stepGHz+1e-9) + 1
	c := Curve{FreqGHz: vlib.NewVectorF(n), MagDb: vlib.NewVectorF(n)}
	for i := 0; i < n; i++ {
		f := startGHz + float64(i)*stepGHz
		x := (f - fres) / hwGHz
		c.FreqGHz[i] = f
		c.MagDb[i] = minDb / (1 + x*x)
	}
	return c
}
