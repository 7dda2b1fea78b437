package studio

type (
	Int struct {
		IntData
	}

	IntData interface {
		Value() int
		Range() IntRange

		setValue(int)
		change(kind string) func()
	}

	IntRange struct {
		Min, Max int
	}

	Playhead Model
)

func (v Int) Add(delta int) (ok bool) {
	return v.Set(v.Value() + delta)
}

func (v Int) Set(value int) (ok bool) {
	value = v.Range().Clamp(value)
	if value == v.Value() {
		return false
	}
	defer v.change("Set")()
	v.setValue(value)
	return true
}

func (r IntRange) Clamp(value int) int {
	return max(min(value, r.Max), r.Min)
}

// Model methods

func (m *Model) Playhead() Int { return Int{(*Playhead)(m)} }

// Playhead methods

func (v *Playhead) Value() int         { return v.d.Playhead }
func (v *Playhead) setValue(value int) { v.d.Playhead = value }
func (v *Playhead) Range() IntRange {
	t, _ := v.d.Library.Current()
	return IntRange{0, max(t.Len()-1, 0)}
}
func (v *Playhead) change(kind string) func() {
	return (*Model)(v).change("Playhead."+kind, NoChange)
}
