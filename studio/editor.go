package studio

import (
	"fmt"
	"math"

	"github.com/trombonestudio/automation"
)

// Pointer coordinates closer than these to an edge snap onto the edge, so
// that the exact extremes can be hit despite pointer imprecision. The initial
// press uses a wider vertical dead-zone than drag continuation.
const (
	snapLow       = 0.03
	snapHigh      = 0.97
	pressSnapLow  = 0.1
	pressSnapHigh = 0.9

	// lockThreshold is the vertical distance from the anchor under which a
	// locked drag keeps the anchor's value.
	lockThreshold = 0.03
)

type (
	// Editor holds the state of one drawing gesture: the anchor the next
	// drag sample interpolates from. Coordinates are normalized to [0,1];
	// x runs over the frames and y over the value range, with y=0 at the
	// descriptor's maximum.
	//
	// The Editor never keeps a track; every call takes the current track and
	// returns the edited copy.
	Editor struct {
		anchor anchor
		active bool
	}

	anchor struct {
		x, y, value float64
	}
)

func snap(v, low, high float64) float64 {
	v = automation.Clamp(v, 0, 1)
	if v < low {
		return 0
	}
	if v > high {
		return 1
	}
	return v
}

// FrameIndex maps a normalized horizontal position onto a frame index of a
// track with count frames.
func FrameIndex(x float64, count int) int {
	return int(math.Round(automation.Clamp(x, 0, 1) * float64(max(count-1, 0))))
}

// Press writes the value under (x, y) into the frame under x and makes the
// point the drag anchor. It returns false, leaving t untouched, if the track
// has no frames.
func (e *Editor) Press(t automation.Track, d automation.Descriptor, x, y float64) (automation.Track, bool) {
	if t.Len() == 0 {
		return t, false
	}
	x = snap(x, snapLow, snapHigh)
	y = snap(y, pressSnapLow, pressSnapHigh)
	v := d.FromNormalized(y)
	t, err := t.SetValue(FrameIndex(x, t.Len()), d, v)
	if err != nil {
		return t, false
	}
	e.anchor = anchor{x, y, v}
	e.active = true
	return t, true
}

// Drag continues the gesture to (x, y): the frames between the anchor and
// the new point receive a linear ramp from the anchor value to the new value.
// Unless lock is held, the anchor then moves to the new point, so one
// gesture draws a chain of linear segments. With lock held, vertical
// movement smaller than lockThreshold keeps the anchor's value, drawing a
// flat segment.
func (e *Editor) Drag(t automation.Track, d automation.Descriptor, x, y float64, lock bool) (automation.Track, bool) {
	if !e.active || t.Len() == 0 {
		return t, false
	}
	x = snap(x, snapLow, snapHigh)
	var v float64
	if lock && math.Abs(y-e.anchor.y) < lockThreshold {
		y, v = e.anchor.y, e.anchor.value
	} else {
		y = snap(y, snapLow, snapHigh)
		v = d.FromNormalized(y)
	}
	i1 := FrameIndex(e.anchor.x, t.Len())
	i2 := FrameIndex(x, t.Len())
	t, err := t.Fill(d, i1, e.anchor.value, i2, v)
	if err != nil {
		return t, false
	}
	if !lock {
		e.anchor = anchor{x, y, v}
	}
	return t, true
}

// Release ends the gesture; further drags do nothing until the next press.
func (e *Editor) Release() { e.active = false }

// Active reports whether a gesture is in progress.
func (e *Editor) Active() bool { return e.active }

// Edit returns the Edit view of the model, which routes pointer events to
// the Editor.
func (m *Model) Edit() *Edit { return (*Edit)(m) }

type Edit Model

// Descriptor returns the descriptor selected for editing.
func (m *Edit) Descriptor() (automation.Descriptor, bool) {
	if m.d.Param == "" {
		return automation.Descriptor{}, false
	}
	return automation.Lookup(m.d.Param)
}

// SetDescriptor selects the parameter to edit. The empty key deselects, after
// which pointer events are ignored.
func (m *Edit) SetDescriptor(key automation.Key) error {
	if key != "" {
		if _, ok := automation.Lookup(key); !ok {
			return fmt.Errorf("%w: %q", automation.ErrUnknownKey, key)
		}
	}
	m.d.Param = key
	m.editor.Release()
	return nil
}

// Press handles a pointer press at (x, y) on the editing surface.
func (m *Edit) Press(x, y float64) {
	d, ok := m.Descriptor()
	if !ok || !(*Model)(m).editable() {
		return
	}
	defer (*Model)(m).change("Draw", MajorChange)()
	m.stroke(func(t automation.Track) (automation.Track, bool) {
		return m.editor.Press(t, d, x, y)
	})
}

// Move handles pointer movement with the button held. Movement without a
// preceding press is ignored.
func (m *Edit) Move(x, y float64) {
	d, ok := m.Descriptor()
	if !ok || !m.editor.Active() || !(*Model)(m).editable() {
		return
	}
	defer (*Model)(m).change("Draw", MinorChange)()
	m.stroke(func(t automation.Track) (automation.Track, bool) {
		return m.editor.Drag(t, d, x, y, m.d.Lock)
	})
}

// Release handles the pointer button being released.
func (m *Edit) Release() { m.editor.Release() }

func (m *Edit) stroke(f func(automation.Track) (automation.Track, bool)) {
	t, _ := m.d.Library.Current()
	t, ok := f(t)
	if !ok {
		m.changeCancel = true
		return
	}
	m.d.Library.SetTrack(m.d.Library.Selected, t)
}
