package design

import (
	"fmt"
	"math"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/patcharray/antenna"
)

// State is the synthesised design handed to the model builder. It is owned
// by one synthesis/tuning session.
type State struct {
	Inputs    Inputs
	Patch     antenna.PatchGeometry
	Layout    antenna.ArrayLayout
	Footprint antenna.SubstrateFootprint
	Feed      antenna.FeedParameters
}

// Synthesize validates in and runs the patch, array, feed and substrate
// sizing. No state is produced for invalid inputs.
func Synthesize(in Inputs) (*State, error) {
	if err := in.Validate(); err != nil {
		log.WithField("inputs", in.String()).Warn(err)
		return nil, err
	}
	s := new(State)
	s.Inputs = in
	s.Patch = antenna.SynthesizePatch(in.FrequencyGHz, in.Er, in.ThicknessMM)
	s.Layout = antenna.SizeArray(in.GainDbi, in.ElementGainDbi, in.FrequencyGHz, in.SpacingType)
	s.Feed = antenna.FeedGeometry(s.Patch, in.FeedSetting())
	s.Footprint = antenna.SizeSubstrate(s.Patch, s.Layout)

	log.WithFields(log.Fields{
		"L":       fmt.Sprintf("%.3f", s.Patch.LengthMM),
		"W":       fmt.Sprintf("%.3f", s.Patch.WidthMM),
		"lambdaG": fmt.Sprintf("%.3f", s.Patch.LambdaGMM),
		"layout":  s.Layout.String(),
		"nreq":    s.Layout.Required,
	}).Info("design synthesised")
	if s.Feed.Clamped {
		log.WithFields(log.Fields{"a": s.Feed.InnerRadiusMM, "b": s.Feed.OuterRadiusMM}).Debug("coax gap clamped to the manufacturing floor")
	}
	return s, nil
}

// Clone returns an independent copy
func (s *State) Clone() *State {
	c := *s
	return &c
}

func (s *State) lengths(withFeed bool) []*float64 {
	fields := []*float64{
		&s.Patch.LengthMM,
		&s.Patch.WidthMM,
		&s.Patch.LambdaGMM,
		&s.Layout.SpacingMM,
		&s.Footprint.WidthMM,
		&s.Footprint.LengthMM,
		&s.Footprint.MarginMM,
	}
	if withFeed {
		fields = append(fields, &s.Feed.OffsetXMM, &s.Feed.OffsetYMM)
	}
	return fields
}

// Scale multiplies every length driving the resonance by factor: patch L,
// W, lambda_g, spacing and the substrate outline, plus the feed offsets when
// withFeed is set. Coax radii are not scaled.
func (s *State) Scale(factor float64, withFeed bool) {
	for _, v := range s.lengths(withFeed) {
		*v *= factor
	}
}

// Lengths returns the scalable length fields in a fixed order
func (s *State) Lengths(withFeed bool) []float64 {
	ptrs := s.lengths(withFeed)
	result := make([]float64, len(ptrs))
	for i, p := range ptrs {
		result[i] = *p
	}
	return result
}

// Sites places the elements of the current geometry
func (s *State) Sites() []antenna.ElementSite {
	return antenna.PlaceElements(s.Patch, s.Layout, s.Feed)
}

// Variable is one named design variable of the solver model
type Variable struct {
	Name  string
	Value string
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64) + "mm"
}

// Variables lists the parametric variables the model builder creates, in
// solver unit notation.
func (s *State) Variables() []Variable {
	in := s.Inputs
	f := s.Feed
	padAir := math.Max(s.Layout.SpacingMM, math.Max(s.Patch.WidthMM, s.Patch.LengthMM))/2 + f.PortLengthMM + 2.0
	return []Variable{
		{"f0", strconv.FormatFloat(in.FrequencyGHz, 'g', -1, 64) + "GHz"},
		{"h_sub", mm(in.ThicknessMM)},
		{"t_met", mm(in.MetalThicknessMM)},
		{"patchL", mm(s.Patch.LengthMM)},
		{"patchW", mm(s.Patch.WidthMM)},
		{"spacing", mm(s.Layout.SpacingMM)},
		{"rows", strconv.Itoa(s.Layout.Rows)},
		{"cols", strconv.Itoa(s.Layout.Cols)},
		{"subW", mm(s.Footprint.WidthMM)},
		{"subL", mm(s.Footprint.LengthMM)},
		{"a", mm(f.InnerRadiusMM)},
		{"b", mm(f.OuterRadiusMM)},
		{"wall", mm(f.WallMM)},
		{"Lp", mm(f.PortLengthMM)},
		{"clear", mm(f.AntipadMM)},
		{"eps", "0.001mm"},
		{"padAir", mm(padAir)},
	}
}
