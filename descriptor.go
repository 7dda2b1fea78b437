package automation

import (
	"errors"
	"math"

	"golang.org/x/exp/constraints"
)

type (
	// Key identifies one controllable parameter of a frame. The keys are the
	// short names used in the persisted document, e.g. "ci" for the
	// constriction index.
	Key string

	// Descriptor gives the name and legal value range of one parameter.
	// Values are not hard-enforced when a frame is written directly, but all
	// editing paths clamp into [Min, Max]. Param names the engine parameter
	// the value is pushed to during playback; Positional values are stored in
	// units of PositionScale and converted to the engine's native units with
	// the tract length constant. The tongue index is kept in native units.
	Descriptor struct {
		Key        Key
		Name       string
		Min, Max   float64
		Param      Param
		Positional bool
	}
)

const (
	ConstrictionIndex    Key = "ci"
	ConstrictionDiameter Key = "cd"
	TongueIndex          Key = "ti"
	TongueDiameter       Key = "td"
	VelumTarget          Key = "v"
	Tenseness            Key = "t"
	Intensity            Key = "i"
	Noise                Key = "n"
	AdjustmentBlend      Key = "ta"
)

// PositionScale is the number of position units the stored position values
// are expressed in, independent of the engine's tract length.
const PositionScale = 44

var ErrUnknownKey = errors.New("unknown parameter key")

// Descriptors lists every parameter a frame carries, in display order.
var Descriptors = []Descriptor{
	{Key: ConstrictionIndex, Name: "Constriction Index", Min: 0, Max: 44, Param: ParamConstrictionIndex, Positional: true},
	{Key: ConstrictionDiameter, Name: "Constriction Diameter", Min: 0, Max: 3.5, Param: ParamConstrictionDiameter},
	{Key: TongueIndex, Name: "Tongue Index", Min: 12, Max: 20, Param: ParamTongueIndex},
	{Key: TongueDiameter, Name: "Tongue Diameter", Min: 2.05, Max: 3.5, Param: ParamTongueDiameter},
	{Key: Intensity, Name: "Intensity", Min: 0, Max: 1, Param: ParamIntensity},
	{Key: Tenseness, Name: "Tenseness", Min: 0, Max: 1, Param: ParamTenseness},
	{Key: VelumTarget, Name: "Velum Target", Min: 0.01, Max: 0.4, Param: ParamVelumTarget},
	{Key: Noise, Name: "Noise", Min: 0, Max: 1, Param: ParamFricativeStrength},
	{Key: AdjustmentBlend, Name: "Adjustment Blend", Min: 0, Max: 1},
}

// Lookup returns the descriptor for key.
func Lookup(key Key) (Descriptor, bool) {
	for _, d := range Descriptors {
		if d.Key == key {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Clamp limits v into the descriptor's range.
func (d Descriptor) Clamp(v float64) float64 {
	return Clamp(v, d.Min, d.Max)
}

// FromNormalized maps a vertical coordinate y in [0,1] onto the range, with
// y=0 being the maximum and y=1 the minimum. The result is clamped and
// rounded.
func (d Descriptor) FromNormalized(y float64) float64 {
	return Round(d.Clamp(d.Min + (1-y)*(d.Max-d.Min)))
}

// Normalized is the inverse of FromNormalized, without rounding.
func (d Descriptor) Normalized(v float64) float64 {
	if d.Max == d.Min {
		return 0
	}
	return 1 - (v-d.Min)/(d.Max-d.Min)
}

// Round rounds v to three decimals, the precision of every stored value.
// Values too large to scale are already coarser than that and returned as is.
func Round[T constraints.Float](v T) T {
	scaled := float64(v) * 1000
	if math.IsInf(scaled, 0) {
		return v
	}
	return T(math.Round(scaled) / 1000)
}

// Clamp limits v into [lo, hi]. NaN clamps to lo.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v != v {
		return lo
	}
	return max(min(v, hi), lo)
}

// Lerp interpolates linearly between a and b; t=0 gives a and t=1 gives b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}
