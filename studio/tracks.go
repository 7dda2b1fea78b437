package studio

import "github.com/trombonestudio/automation"

// Tracks returns the Tracks view of the model, grouping the operations on
// the library's set of tracks.
func (m *Model) Tracks() *Tracks { return (*Tracks)(m) }

type Tracks Model

// Names returns the track names in sorted order.
func (m *Tracks) Names() []string { return m.d.Library.Names() }

// Selected returns the name of the current track.
func (m *Tracks) Selected() string { return m.d.Library.Selected }

// Select makes the named track current. The playhead is clamped into the new
// track.
func (m *Tracks) Select(name string) error {
	if m.recorder.Recording() {
		return nil
	}
	defer (*Model)(m).change("SelectTrack", NoChange)()
	if err := m.d.Library.Select(name); err != nil {
		m.changeCancel = true
		return err
	}
	m.editor.Release()
	return nil
}

// Rename renames a track.
func (m *Tracks) Rename(from, to string) error {
	defer (*Model)(m).change("RenameTrack", MajorChange)()
	if err := m.d.Library.Rename(from, to); err != nil {
		m.changeCancel = true
		return err
	}
	return nil
}

// Remove deletes a track.
func (m *Tracks) Remove(name string) error {
	defer (*Model)(m).change("RemoveTrack", MajorChange)()
	if err := m.d.Library.Remove(name); err != nil {
		m.changeCancel = true
		return err
	}
	m.editor.Release()
	return nil
}

// SetAdjustment sets the adjustment target of the current track; nil clears
// it.
func (m *Tracks) SetAdjustment(adj *automation.Adjustment) error {
	t, ok := m.d.Library.Current()
	if !ok {
		return automation.ErrNoTrack
	}
	defer (*Model)(m).change("SetAdjustment", MajorChange)()
	return m.d.Library.SetTrack(m.d.Library.Selected, t.SetAdjustment(adj))
}
