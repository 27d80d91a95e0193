package report

import (
	"fmt"
	"strings"

	"github.com/wiless/patcharray/antenna"
	"github.com/wiless/patcharray/design"
	"github.com/wiless/patcharray/resonance"
	"github.com/wiless/vlib"
)

// matlabValue strips the solver unit of a variable value
func matlabValue(v string) string {
	for _, unit := range []string{"GHz", "mm"} {
		v = strings.TrimSuffix(v, unit)
	}
	return v
}

// ExportMatlab writes a Matlab script named name holding the design
// variables (mm, GHz) and, when c is not empty, the S11 and VSWR curves
// with a plot command.
func ExportMatlab(name string, s *design.State, c resonance.Curve) {
	matlab := vlib.NewMatlab(name)
	matlab.Silent = true
	matlab.Json = false
	defer matlab.Close()

	if s != nil {
		for _, v := range s.Variables() {
			matlab.Command(fmt.Sprintf("%s=%s;", v.Name, matlabValue(v.Value)))
		}
	}
	if c.Validate() != nil {
		return
	}
	matlab.Export("freq", c.FreqGHz)
	matlab.Export("s11", c.MagDb)
	matlab.Export("vswr", c.VSWR())
	matlab.Command(`subplot(2,1,1);plot(freq,s11);grid on;xlabel('Frequency (GHz)');ylabel('S11 (dB)');
subplot(2,1,2);plot(freq,vswr);grid on;xlabel('Frequency (GHz)');ylabel('VSWR');`)
}

// ExportFarField writes a Matlab script drawing the normalised 3D pattern
// surface of ff
func ExportFarField(name string, ff *antenna.FarField) {
	pts := ff.Surface()
	x, y, z := vlib.NewVectorF(len(pts)), vlib.NewVectorF(len(pts)), vlib.NewVectorF(len(pts))
	for i, p := range pts {
		x[i], y[i], z[i] = p.X, p.Y, p.Z
	}
	matlab := vlib.NewMatlab(name)
	matlab.Silent = true
	matlab.Json = false
	defer matlab.Close()
	matlab.Export("x", x)
	matlab.Export("y", y)
	matlab.Export("z", z)
	g, t, p := ff.Peak()
	matlab.Command(fmt.Sprintf("scatter3(x,y,z,8,sqrt(x.^2+y.^2+z.^2),'filled');axis equal;title('peak %.2f dB at theta=%g phi=%g');", g, t, p))
}
