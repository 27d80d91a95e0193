package antenna

import (
	"fmt"
	"math"
	"strings"
)

// MinCoaxGapMM is the smallest manufacturable gap between the probe and the
// inner wall of the coax shield.
const MinCoaxGapMM = 0.02

const (
	edgeFeedFraction  = 0.02
	insetFeedFraction = 0.30
	// edge admittance model used by InsetCosine
	edgeResistanceOhm = 240.0
	portImpedanceOhm  = 50.0
)

type FeedPosition int

const (
	InsetFeed FeedPosition = iota
	EdgeFeed
)

var FeedPositions = [...]string{
	"inset",
	"edge",
}

func (p FeedPosition) String() string {
	if int(p) < 0 || int(p) >= len(FeedPositions) {
		return "Unknown-FeedPosition"
	}
	return FeedPositions[p]
}

// InsetPolicy selects how the inset depth of an inset feed is derived
type InsetPolicy int

const (
	// InsetFraction places the probe at a flat 0.30 L from the edge
	InsetFraction InsetPolicy = iota
	// InsetCosine solves y0 = L/pi acos(sqrt(50/240)) from the cosine
	// current distribution of a 240 ohm edge.
	InsetCosine
)

var InsetPolicies = [...]string{
	"fraction",
	"cosine",
}

func (p InsetPolicy) String() string {
	if int(p) < 0 || int(p) >= len(InsetPolicies) {
		return "Unknown-InsetPolicy"
	}
	return InsetPolicies[p]
}

// CoaxPolicy selects how the outer radius of the coaxial feed is derived
type CoaxPolicy int

const (
	// CoaxRatio uses b = a * ratio (2.3 gives ~50 ohm in air)
	CoaxRatio CoaxPolicy = iota
	// CoaxDielectric uses b = a * exp(50 sqrt(er)/60)
	CoaxDielectric
)

var CoaxPolicies = [...]string{
	"ratio",
	"dielectric",
}

func (p CoaxPolicy) String() string {
	if int(p) < 0 || int(p) >= len(CoaxPolicies) {
		return "Unknown-CoaxPolicy"
	}
	return CoaxPolicies[p]
}

func parseName(kind, str string, names []string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(str))
	for i, n := range names {
		if key == n {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, str)
}

func (p FeedPosition) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p InsetPolicy) MarshalText() ([]byte, error)  { return []byte(p.String()), nil }
func (p CoaxPolicy) MarshalText() ([]byte, error)   { return []byte(p.String()), nil }

func (p *FeedPosition) UnmarshalText(text []byte) error {
	i, err := parseName("feed position", string(text), FeedPositions[:])
	if err != nil {
		return err
	}
	*p = FeedPosition(i)
	return nil
}

func (p *InsetPolicy) UnmarshalText(text []byte) error {
	i, err := parseName("inset policy", string(text), InsetPolicies[:])
	if err != nil {
		return err
	}
	*p = InsetPolicy(i)
	return nil
}

func (p *CoaxPolicy) UnmarshalText(text []byte) error {
	i, err := parseName("coax policy", string(text), CoaxPolicies[:])
	if err != nil {
		return err
	}
	*p = CoaxPolicy(i)
	return nil
}

// FeedSetting collects the user inputs that drive the feed geometry
type FeedSetting struct {
	Position      FeedPosition
	Inset         InsetPolicy
	Coax          CoaxPolicy
	RelX          float64
	ProbeRadiusMM float64
	BARatio       float64
	CoaxEr        float64
	WallMM        float64
	PortLengthMM  float64
	AntipadMM     float64
}

// FeedParameters is the realised coaxial probe feed of one element. Offsets
// are relative to the patch: X from the patch centre, Y from the lower
// radiating edge.
type FeedParameters struct {
	InnerRadiusMM float64 `json:"a"`
	OuterRadiusMM float64 `json:"b"`
	WallMM        float64 `json:"wall"`
	PortLengthMM  float64 `json:"port_length"`
	AntipadMM     float64 `json:"antipad"`
	OffsetXMM     float64 `json:"feed_offset_x"`
	OffsetYMM     float64 `json:"feed_offset"`
	LineStartMM   float64 `json:"line_start"`
	LineEndMM     float64 `json:"line_end"`
	Clamped       bool    `json:"clamped"`
}

// GapMM is the radial air gap between probe and shield
func (f FeedParameters) GapMM() float64 {
	return f.OuterRadiusMM - f.InnerRadiusMM
}

// CoaxImpedance returns the characteristic impedance of a coax line with
// inner radius a, outer radius b and dielectric er.
func CoaxImpedance(a, b, er float64) float64 {
	if er < 1 {
		er = 1
	}
	return 60.0 / math.Sqrt(er) * math.Log(b/a)
}

// OuterRadius returns the shield radius for probe radius a under the policy,
// and whether the manufacturability floor had to be applied.
func (s FeedSetting) OuterRadius() (b float64, clamped bool) {
	a := s.ProbeRadiusMM
	switch s.Coax {
	case CoaxDielectric:
		er := s.CoaxEr
		if er < 1 {
			er = 1
		}
		b = a * math.Exp(portImpedanceOhm*math.Sqrt(er)/60.0)
	default:
		b = a * s.BARatio
	}
	if b-a < MinCoaxGapMM {
		return a + MinCoaxGapMM, true
	}
	return b, false
}

// InsetDepth returns the probe distance from the radiating edge for a patch
// of length LMM.
func (s FeedSetting) InsetDepth(LMM float64) float64 {
	if s.Position == EdgeFeed {
		return edgeFeedFraction * LMM
	}
	if s.Inset == InsetCosine {
		return LMM / math.Pi * math.Acos(math.Sqrt(portImpedanceOhm/edgeResistanceOhm))
	}
	return insetFeedFraction * LMM
}

// IntegrationLine returns the radial start/end of the port integration line,
// kept strictly inside [a,b].
func IntegrationLine(a, b float64) (start, end float64) {
	eps := math.Min(0.1*(b-a), 0.05)
	start = a + eps
	end = b - eps
	if end <= start {
		end = a + 0.75*(b-a)
	}
	return start, end
}

// FeedGeometry derives the coax dimensions and the feed location of a patch
func FeedGeometry(patch PatchGeometry, s FeedSetting) FeedParameters {
	var result FeedParameters
	a := s.ProbeRadiusMM
	b, clamped := s.OuterRadius()

	result.InnerRadiusMM = a
	result.OuterRadiusMM = b
	result.Clamped = clamped
	result.WallMM = s.WallMM
	result.PortLengthMM = s.PortLengthMM
	result.AntipadMM = s.AntipadMM

	relx := math.Min(math.Max(s.RelX, 0), 1)
	result.OffsetXMM = -patch.WidthMM/2 + relx*patch.WidthMM
	result.OffsetYMM = s.InsetDepth(patch.LengthMM)

	result.LineStartMM, result.LineEndMM = IntegrationLine(a, b)
	return result
}
