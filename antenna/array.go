package antenna

import (
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultElementGainDbi is the assumed gain of a single patch element
	DefaultElementGainDbi = 8.0
	// MaxElements bounds the element count of one array
	MaxElements = 1 << 16
)

type SpacingType int

const (
	HalfLambda SpacingType = iota
	OneLambda
	Lambda07
	Lambda08
	Lambda09
)

var SpacingTypes = [...]string{
	"lambda/2",
	"lambda",
	"0.7*lambda",
	"0.8*lambda",
	"0.9*lambda",
}

var spacingFactors = [...]float64{0.5, 1.0, 0.7, 0.8, 0.9}

func (s SpacingType) String() string {
	if int(s) < 0 || int(s) >= len(SpacingTypes) {
		return "Unknown-SpacingType"
	}
	return SpacingTypes[s]
}

// Factor returns the element spacing as a fraction of the free-space
// wavelength. Unknown types fall back to half a wavelength.
func (s SpacingType) Factor() float64 {
	if int(s) < 0 || int(s) >= len(spacingFactors) {
		return 0.5
	}
	return spacingFactors[s]
}

// ParseSpacingType accepts the names in SpacingTypes, also with the "·" or
// "x" multiplication glyphs some users type.
func ParseSpacingType(str string) (SpacingType, error) {
	key := strings.ToLower(strings.TrimSpace(str))
	key = strings.NewReplacer("·", "*", " ", "", "x", "*").Replace(key)
	for i, name := range SpacingTypes {
		if key == name {
			return SpacingType(i), nil
		}
	}
	return HalfLambda, fmt.Errorf("unknown spacing type %q", str)
}

func (s SpacingType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SpacingType) UnmarshalText(text []byte) error {
	v, err := ParseSpacingType(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ArrayLayout describes a rows x cols planar array
type ArrayLayout struct {
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	NumPatches int     `json:"num_patches"`
	Required   int     `json:"n_required"`
	SpacingMM  float64 `json:"spacing"`
}

// ElementRatio is the linear power ratio between target and element gain
func ElementRatio(targetDbi, elementDbi float64) float64 {
	return math.Pow(10, (targetDbi-elementDbi)/10.0)
}

// RequiredElements returns the number of elements needed to reach
// targetDbi with elements of elementDbi gain, rounded up to an even count
// and saturated at MaxElements.
func RequiredElements(targetDbi, elementDbi float64) int {
	x := ElementRatio(targetDbi, elementDbi)
	if !(x < MaxElements) {
		return MaxElements
	}
	n := int(math.Ceil(x))
	if n < 1 {
		n = 1
	}
	if n%2 == 1 {
		n++
	}
	return n
}

// SizeArray picks an even, near-square rows x cols grid holding at least the
// number of elements required for targetDbi, and the element spacing for
// the given spacing type at fGHz.
func SizeArray(targetDbi, elementDbi, fGHz float64, spacing SpacingType) ArrayLayout {
	nreq := RequiredElements(targetDbi, elementDbi)

	rows := int(math.Round(math.Sqrt(float64(nreq))))
	if rows < 2 {
		rows = 2
	}
	rows += rows % 2

	cols := int(math.Ceil(float64(nreq) / float64(rows)))
	if cols < 2 {
		cols = 2
	}
	cols += cols % 2

	for rows*cols < nreq {
		if rows <= cols {
			rows += 2
		} else {
			cols += 2
		}
	}

	return ArrayLayout{
		Rows:       rows,
		Cols:       cols,
		NumPatches: rows * cols,
		Required:   nreq,
		SpacingMM:  spacing.Factor() * Lambda0MM(fGHz),
	}
}

func (a ArrayLayout) String() string {
	return fmt.Sprintf("%dx%d (%d patches, spacing %.2f mm)", a.Rows, a.Cols, a.NumPatches, a.SpacingMM)
}
