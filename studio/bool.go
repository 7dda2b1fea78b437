package studio

type (
	Bool struct {
		BoolData
	}

	BoolData interface {
		Value() bool
		Enabled() bool
		setValue(bool)
	}

	IsRecording Model
	Lock        Model
)

func (v Bool) Toggle() {
	v.Set(!v.Value())
}

func (v Bool) Set(value bool) {
	if v.Enabled() && v.Value() != value {
		v.setValue(value)
	}
}

// Model methods

func (m *Model) Recording() Bool { return Bool{(*IsRecording)(m)} }
func (m *Model) Lock() Bool      { return Bool{(*Lock)(m)} }

// IsRecording methods

func (m *IsRecording) Value() bool   { return m.recorder.Recording() }
func (m *IsRecording) Enabled() bool { return true }
func (m *IsRecording) setValue(val bool) {
	if val {
		m.editor.Release()
		m.recorder.Start()
		return
	}
	t, ok := m.recorder.Stop()
	if !ok || t.Len() == 0 {
		return
	}
	defer (*Model)(m).change("Capture", MajorChange)()
	name := m.d.Library.FreeName(capturePrefix)
	m.d.Library.SetTrack(name, t)
	m.d.Library.Selected = name
	m.d.Playhead = 0
}

// Lock methods

func (m *Lock) Value() bool       { return m.d.Lock }
func (m *Lock) Enabled() bool     { return true }
func (m *Lock) setValue(val bool) { m.d.Lock = val }
