package automation

import "fmt"

// Frame is one discrete set of parameter values. Every field is rounded to
// three decimals when written through Set. Frames are plain values: copying a
// Frame copies all of its data, so == compares frames field-for-field.
type Frame struct {
	CI float64 `json:"ci" yaml:"ci"`
	CD float64 `json:"cd" yaml:"cd"`
	TI float64 `json:"ti" yaml:"ti"`
	TD float64 `json:"td" yaml:"td"`
	V  float64 `json:"v" yaml:"v"`
	T  float64 `json:"t" yaml:"t"`
	I  float64 `json:"i" yaml:"i"`
	N  float64 `json:"n" yaml:"n"`
	TA float64 `json:"ta" yaml:"ta"`
}

func (f *Frame) field(key Key) *float64 {
	switch key {
	case ConstrictionIndex:
		return &f.CI
	case ConstrictionDiameter:
		return &f.CD
	case TongueIndex:
		return &f.TI
	case TongueDiameter:
		return &f.TD
	case VelumTarget:
		return &f.V
	case Tenseness:
		return &f.T
	case Intensity:
		return &f.I
	case Noise:
		return &f.N
	case AdjustmentBlend:
		return &f.TA
	}
	return nil
}

// Get returns the value stored for key, or 0 if the key is unknown.
func (f Frame) Get(key Key) float64 {
	if p := f.field(key); p != nil {
		return *p
	}
	return 0
}

// Set stores v, rounded to three decimals, under key.
func (f *Frame) Set(key Key, v float64) error {
	p := f.field(key)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	*p = Round(v)
	return nil
}

// With returns a copy of f with key set to v.
func (f Frame) With(key Key, v float64) Frame {
	f.Set(key, v)
	return f
}

// Clamped returns a copy of f where every value lies within its descriptor's
// range.
func (f Frame) Clamped() Frame {
	for _, d := range Descriptors {
		f.Set(d.Key, d.Clamp(f.Get(d.Key)))
	}
	return f
}
