// Package antenna implements the closed-form design equations of a
// rectangular microstrip patch array: element size, array sizing, coaxial
// feed geometry, substrate footprint, element placement and the per-port
// excitation table used for beamforming.
package antenna

import (
	"math"
)

// CSpeed is the speed of light in vacuum, m/s
const CSpeed float64 = 299792458.0

// PatchGeometry holds the dimensions of a single radiating element. All
// lengths are in millimetres.
type PatchGeometry struct {
	LengthMM  float64 `json:"patch_length"`
	WidthMM   float64 `json:"patch_width"`
	LambdaGMM float64 `json:"lambda_g"`
	EpsEff    float64 `json:"-"` // intermediate, not persisted
}

// Lambda0MM returns the free-space wavelength in mm at fGHz
func Lambda0MM(fGHz float64) float64 {
	return CSpeed / (fGHz * 1e9) * 1000.0
}

// SynthesizePatch dimensions a rectangular patch with the Balanis transmission
// line model. h is the substrate thickness in mm. The inputs must be validated
// by the caller (f>0, er>=1, h>0).
func SynthesizePatch(fGHz, er, hMM float64) PatchGeometry {
	f := fGHz * 1e9
	h := hMM / 1000.0

	W := CSpeed / (2 * f) * math.Sqrt(2/(er+1))
	eeff := (er+1)/2 + (er-1)/2*math.Pow(1+12*h/W, -0.5)
	dL := 0.412 * h * ((eeff + 0.3) * (W/h + 0.264)) / ((eeff - 0.258) * (W/h + 0.8))
	Leff := CSpeed / (2 * f * math.Sqrt(eeff))
	L := Leff - 2*dL
	lambdaG := CSpeed / (f * math.Sqrt(eeff))

	return PatchGeometry{
		LengthMM:  L * 1000.0,
		WidthMM:   W * 1000.0,
		LambdaGMM: lambdaG * 1000.0,
		EpsEff:    eeff,
	}
}

// EdgeResistance estimates the input resistance (ohm) at the radiating edge
// of a patch of width wMM on a substrate of thickness hMM, using the slot
// conductance G = W/(120 λ0) (1 - (k0 h)^2/24) and Rin = 1/(2G).
func EdgeResistance(fGHz, wMM, hMM float64) float64 {
	lam0 := CSpeed / (fGHz * 1e9)
	W := wMM / 1000.0
	h := hMM / 1000.0
	k0h := 2 * math.Pi * h / lam0
	G := W / (120.0 * lam0) * (1.0 - k0h*k0h/24.0)
	if G <= 0 {
		return math.Inf(1)
	}
	return 1.0 / (2.0 * G)
}
