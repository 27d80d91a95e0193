package antenna

import "math"

// SubstrateMarginFraction is the margin added on each side of the array,
// as a fraction of its larger dimension.
const SubstrateMarginFraction = 0.20

// SubstrateFootprint is the board outline around the array, in mm
type SubstrateFootprint struct {
	WidthMM  float64 `json:"substrate_width"`
	LengthMM float64 `json:"substrate_length"`
	MarginMM float64 `json:"substrate_margin"`
}

// ArrayExtent returns the bounding box of the radiating elements
func ArrayExtent(patch PatchGeometry, layout ArrayLayout) (totalW, totalL float64) {
	c := float64(layout.Cols)
	r := float64(layout.Rows)
	totalW = c*patch.WidthMM + (c-1)*layout.SpacingMM
	totalL = r*patch.LengthMM + (r-1)*layout.SpacingMM
	return totalW, totalL
}

// SizeSubstrate sizes the board as the array bounding box plus a margin of
// 20% of the larger side on every edge.
func SizeSubstrate(patch PatchGeometry, layout ArrayLayout) SubstrateFootprint {
	totalW, totalL := ArrayExtent(patch, layout)
	margin := SubstrateMarginFraction * math.Max(totalW, totalL)
	return SubstrateFootprint{
		WidthMM:  totalW + 2*margin,
		LengthMM: totalL + 2*margin,
		MarginMM: margin,
	}
}
