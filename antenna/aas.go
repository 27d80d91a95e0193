// Per-port excitation table and phase steering of the patch array
package antenna

import (
	"math"
	"math/cmplx"
	"regexp"
	"sort"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/vlib"
)

var portIndexRe = regexp.MustCompile(`P(\d+)`)

// Excitation is the source setting of one port. Phase is in degree.
type Excitation struct {
	PortID    string  `json:"port"`
	Amplitude float64 `json:"amplitude"`
	PhaseDeg  float64 `json:"phase"`
}

// Weight returns the complex excitation a*exp(j phase)
func (e Excitation) Weight() complex128 {
	return complex(e.Amplitude, 0) * cmplx.Exp(complex(0, Radian(e.PhaseDeg)))
}

// Excitations keeps one Excitation per port in discovery order. It is not
// safe for concurrent use.
type Excitations struct {
	order []string
	table map[string]*Excitation
}

func NewExcitations() *Excitations {
	result := new(Excitations)
	result.Reset()
	return result
}

// Reset drops every port, used on a full re-synthesis
func (e *Excitations) Reset() {
	e.order = nil
	e.table = make(map[string]*Excitation)
}

func (e *Excitations) Len() int {
	return len(e.order)
}

// GetOrCreate returns the excitation of port, creating it with unit
// amplitude and zero phase on first sight.
func (e *Excitations) GetOrCreate(port string) Excitation {
	if e.table == nil {
		e.Reset()
	}
	if ex, ok := e.table[port]; ok {
		return *ex
	}
	ex := &Excitation{PortID: port, Amplitude: 1.0, PhaseDeg: 0.0}
	e.table[port] = ex
	e.order = append(e.order, port)
	return *ex
}

// Discover registers ports with default excitation, leaving known ports as
// they are.
func (e *Excitations) Discover(ports ...string) {
	for _, p := range ports {
		e.GetOrCreate(p)
	}
}

// Set overrides amplitude and phase of port, registering it if needed
func (e *Excitations) Set(port string, amplitude, phaseDeg float64) {
	e.GetOrCreate(port)
	ex := e.table[port]
	ex.Amplitude = amplitude
	ex.PhaseDeg = phaseDeg
}

// PortIndex extracts the physical index of a port identifier such as
// "P3_Lumped" or "P3_Lumped:1".
func PortIndex(id string) (int, bool) {
	m := portIndexRe.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Snapshot returns the excitations ordered by physical port index. Ports
// without an index come last, in discovery order.
func (e *Excitations) Snapshot() []Excitation {
	result := make([]Excitation, 0, len(e.order))
	for _, id := range e.order {
		result = append(result, *e.table[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		ni, oki := PortIndex(result[i].PortID)
		nj, okj := PortIndex(result[j].PortID)
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		return ni < nj
	})
	return result
}

// Weights returns the complex weights in Snapshot order
func (e *Excitations) Weights() vlib.VectorC {
	snap := e.Snapshot()
	w := vlib.NewVectorC(len(snap))
	for i, ex := range snap {
		w[i] = ex.Weight()
	}
	return w
}

func GetEJtheta(degree float64) complex128 {
	return cmplx.Exp(complex(0.0, -degree*math.Pi/180.0))
}

func Radian(degree float64) float64 {
	return degree * math.Pi / 180.0
}

// pathPhase is the free-space phase (degree) of a plane wave towards
// (theta,phi) at element position loc (mm), relative to the origin.
func pathPhase(loc vlib.Location3D, fGHz, thetaDeg, phiDeg float64) float64 {
	k := 360.0 / Lambda0MM(fGHz)
	st := math.Sin(Radian(thetaDeg))
	return k * (loc.X*st*math.Cos(Radian(phiDeg)) + loc.Y*st*math.Sin(Radian(phiDeg)))
}

// SteerTo sets progressive phases on every element so the main beam points
// to (theta,phi). Amplitudes are kept.
func (e *Excitations) SteerTo(sites []ElementSite, fGHz, thetaDeg, phiDeg float64) {
	for _, s := range sites {
		ex := e.GetOrCreate(s.PortID)
		phase := math.Mod(-pathPhase(s.Centre, fGHz, thetaDeg, phiDeg), 360)
		if phase < 0 {
			phase += 360
		}
		e.Set(s.PortID, ex.Amplitude, phase)
	}
	log.WithFields(log.Fields{"theta": thetaDeg, "phi": phiDeg, "ports": len(sites)}).Debug("steered excitations")
}

// ArrayFactorDb evaluates the array factor towards (theta,phi) with the
// current excitations, normalised so a uniform broadside array of N
// elements gives 10log10(N).
func (e *Excitations) ArrayFactorDb(sites []ElementSite, fGHz, thetaDeg, phiDeg float64) float64 {
	var sum complex128
	var power float64
	for _, s := range sites {
		ex := e.GetOrCreate(s.PortID)
		sum += ex.Weight() * GetEJtheta(-pathPhase(s.Centre, fGHz, thetaDeg, phiDeg))
		power += ex.Amplitude * ex.Amplitude
	}
	if power == 0 {
		return math.Inf(-1)
	}
	af := cmplx.Abs(sum)
	return vlib.Db(af * af / power)
}

// Pattern samples the array factor over the theta x phi grid. Nulls are
// floored at PatternFloorDb.
func (e *Excitations) Pattern(sites []ElementSite, fGHz float64, theta, phi vlib.VectorF) (*FarField, error) {
	gain := vlib.NewMatrixF(len(theta), len(phi))
	for i, t := range theta {
		for j, p := range phi {
			gain[i][j] = math.Max(e.ArrayFactorDb(sites, fGHz, t, p), PatternFloorDb)
		}
	}
	return NewFarField(theta, phi, gain)
}
