package antenna

import (
	"fmt"

	"github.com/wiless/vlib"
)

// ElementSite is the position of one patch and its feed on the board. The
// array is centred on the origin; x runs along the patch width, y along
// its length. Units are mm.
type ElementSite struct {
	Index  int
	Row    int
	Col    int
	PortID string
	Centre vlib.Location3D
	Feed   vlib.Location3D
}

// PortName returns the solver port identifier of the n-th element (1 based)
func PortName(n int) string {
	return fmt.Sprintf("P%d_Lumped", n)
}

// PlaceElements lays out the array row-major starting at the lower-left
// element and returns every element with its feed point.
func PlaceElements(patch PatchGeometry, layout ArrayLayout, feed FeedParameters) []ElementSite {
	W, L, s := patch.WidthMM, patch.LengthMM, layout.SpacingMM
	totalW, totalL := ArrayExtent(patch, layout)
	startX := -totalW/2 + W/2
	startY := -totalL/2 + L/2

	sites := make([]ElementSite, 0, layout.Rows*layout.Cols)
	count := 0
	for r := 0; r < layout.Rows; r++ {
		for c := 0; c < layout.Cols; c++ {
			count++
			cx := startX + float64(c)*(W+s)
			cy := startY + float64(r)*(L+s)
			sites = append(sites, ElementSite{
				Index:  count,
				Row:    r,
				Col:    c,
				PortID: PortName(count),
				Centre: vlib.Location3D{X: cx, Y: cy},
				Feed:   vlib.Location3D{X: cx + feed.OffsetXMM, Y: cy - L/2 + feed.OffsetYMM},
			})
		}
	}
	return sites
}
