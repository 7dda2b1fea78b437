package studio

import "github.com/trombonestudio/automation"

type (
	// Action describes a user action that can be performed on the model, which
	// can be initiated by calling the Do() method. It is usually initiated by a
	// button press or a key binding. Action advertises whether it is enabled,
	// so the UI can e.g. gray out buttons when the underlying action is not
	// allowed. The underlying Doer can optionally implement the Enabler
	// interface; if it does not, the action is always allowed.
	Action struct {
		doer Doer
	}

	// Doer is an interface that defines a single Do() method, which is called
	// when an action is performed.
	Doer interface {
		Do()
	}

	// Enabler is an interface that defines a single Enabled() method, which
	// is used by the UI to check if an Action/Bool/Int is enabled or not.
	Enabler interface {
		Enabled() bool
	}
)

func MakeAction(doer Doer) Action {
	return Action{doer: doer}
}

func (a Action) Do() {
	e, ok := a.doer.(Enabler)
	if ok && !e.Enabled() {
		return
	}
	if a.doer != nil {
		a.doer.Do()
	}
}

func (a Action) Enabled() bool {
	if a.doer == nil {
		return false // no doer, not allowed
	}
	e, ok := a.doer.(Enabler)
	if !ok {
		return true // not enabler, always allowed
	}
	return e.Enabled()
}

// Frames returns the Frames view of the model, grouping the structural edits
// of the current track.
func (m *Model) Frames() *Frames { return (*Frames)(m) }

type Frames Model

// Extend returns an Action to duplicate the frame under the playhead. Firing
// it repeatedly, e.g. while a button is held, stretches a pose over many
// frames.
func (m *Frames) Extend() Action { return MakeAction((*extendFrame)(m)) }

type extendFrame Frames

func (m *extendFrame) Enabled() bool { return (*Model)(m).editable() }
func (m *extendFrame) Do() {
	defer (*Model)(m).change("ExtendFrame", MinorChange)()
	t, _ := m.d.Library.Current()
	t, err := t.Insert(t.ClampIndex(m.d.Playhead))
	if err != nil {
		m.changeCancel = true
		return
	}
	m.d.Library.SetTrack(m.d.Library.Selected, t)
}

// Delete returns an Action to remove the frame under the playhead. The
// playhead stays put unless it would point past the end.
func (m *Frames) Delete() Action { return MakeAction((*deleteFrame)(m)) }

type deleteFrame Frames

func (m *deleteFrame) Enabled() bool { return (*Model)(m).editable() }
func (m *deleteFrame) Do() {
	defer (*Model)(m).change("DeleteFrame", MajorChange)()
	t, _ := m.d.Library.Current()
	t, err := t.Delete(t.ClampIndex(m.d.Playhead))
	if err != nil {
		m.changeCancel = true
		return
	}
	m.d.Library.SetTrack(m.d.Library.Selected, t)
	m.d.Playhead = t.ClampIndex(m.d.Playhead)
}

// Reverse returns an Action to reverse the order of the frames of the current
// track.
func (m *Frames) Reverse() Action { return MakeAction((*reverseFrames)(m)) }

type reverseFrames Frames

func (m *reverseFrames) Enabled() bool { return (*Model)(m).editable() }
func (m *reverseFrames) Do() {
	defer (*Model)(m).change("ReverseFrames", MajorChange)()
	t, _ := m.d.Library.Current()
	m.d.Library.SetTrack(m.d.Library.Selected, t.Reverse())
}

// Compact returns an Action to collapse runs of identical frames in the
// current track.
func (m *Frames) Compact() Action { return MakeAction((*compactFrames)(m)) }

type compactFrames Frames

func (m *compactFrames) Enabled() bool { return (*Model)(m).editable() }
func (m *compactFrames) Do() {
	defer (*Model)(m).change("CompactFrames", MajorChange)()
	t, _ := m.d.Library.Current()
	c := t.Compact()
	if c.Len() == t.Len() {
		m.changeCancel = true
		return
	}
	m.d.Library.SetTrack(m.d.Library.Selected, c)
	m.d.Playhead = c.ClampIndex(m.d.Playhead)
}

// Current returns a copy of the frame under the playhead.
func (m *Frames) Current() (automation.Frame, bool) {
	t, ok := m.d.Library.Current()
	if !ok || t.Len() == 0 {
		return automation.Frame{}, false
	}
	return t.Frames[t.ClampIndex(m.d.Playhead)], true
}

// Count returns the number of frames in the current track.
func (m *Frames) Count() int {
	t, _ := m.d.Library.Current()
	return t.Len()
}
