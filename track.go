package automation

import (
	"errors"
	"slices"
)

type (
	// Track is an ordered sequence of frames, representing one recorded
	// gesture, plus an optional adjustment target.
	//
	// Track values are treated as immutable by the functions of this package:
	// every operation returns a new Track and leaves the receiver untouched,
	// so a Track obtained from a Library can be passed around without
	// aliasing.
	Track struct {
		Frames     []Frame     `json:"frames" yaml:"frames"`
		Adjustment *Adjustment `json:"adj,omitempty" yaml:"adj,omitempty"`
	}

	// Adjustment is a fixed secondary target for the tongue position and
	// diameter. A frame's AdjustmentBlend value interpolates, at playback
	// time, between the engine's live value and this target. I is expressed
	// in PositionScale units like the constriction index.
	Adjustment struct {
		I float64 `json:"i" yaml:"i"`
		D float64 `json:"d" yaml:"d"`
	}
)

var (
	ErrEmptyTrack   = errors.New("track has no frames")
	ErrInvalidFrame = errors.New("frame index out of range")
)

// Copy makes a deep copy of a Track.
func (t Track) Copy() Track {
	ret := Track{Frames: slices.Clone(t.Frames)}
	if t.Adjustment != nil {
		adj := *t.Adjustment
		ret.Adjustment = &adj
	}
	return ret
}

// Len returns the number of frames.
func (t Track) Len() int { return len(t.Frames) }

// ClampIndex limits i into [0, Len()-1]; for an empty track it returns 0.
func (t Track) ClampIndex(i int) int {
	return max(min(i, len(t.Frames)-1), 0)
}

// Compact collapses runs of consecutive identical frames, keeping the first
// frame of every run. Index 0 is never removed and compacting an already
// compacted track returns an equal track.
func (t Track) Compact() Track {
	ret := t.Copy()
	ret.Frames = Compact(ret.Frames)
	return ret
}

// Compact removes frames[i] whenever it equals frames[i-1], scanning from the
// end towards index 1. The slice is modified in place and the shortened
// slice returned.
func Compact(frames []Frame) []Frame {
	for i := len(frames) - 1; i >= 1; i-- {
		if frames[i] == frames[i-1] {
			frames = slices.Delete(frames, i, i+1)
		}
	}
	return frames
}

// Reverse returns the track with its frames in reverse order; frame contents
// are not changed.
func (t Track) Reverse() Track {
	ret := t.Copy()
	slices.Reverse(ret.Frames)
	return ret
}

// Insert duplicates the frame at index i, shifting all later frames right by
// one.
func (t Track) Insert(i int) (Track, error) {
	if i < 0 || i >= len(t.Frames) {
		return t, ErrInvalidFrame
	}
	ret := t.Copy()
	ret.Frames = slices.Insert(ret.Frames, i, ret.Frames[i])
	return ret, nil
}

// Delete removes the frame at index i.
func (t Track) Delete(i int) (Track, error) {
	if i < 0 || i >= len(t.Frames) {
		return t, ErrInvalidFrame
	}
	ret := t.Copy()
	ret.Frames = slices.Delete(ret.Frames, i, i+1)
	return ret, nil
}

// SetValue writes v into the key of frame i, clamped into the descriptor's
// range and rounded.
func (t Track) SetValue(i int, d Descriptor, v float64) (Track, error) {
	if i < 0 || i >= len(t.Frames) {
		return t, ErrInvalidFrame
	}
	ret := t.Copy()
	if err := ret.Frames[i].Set(d.Key, d.Clamp(v)); err != nil {
		return t, err
	}
	return ret, nil
}

// Fill writes a piecewise-linear ramp of the descriptor's key between frame
// i1 (value v1) and frame i2 (value v2), inclusive. The endpoints receive
// exactly v1 and v2 (after clamping and rounding). If i1 == i2 only v2 is
// written.
func (t Track) Fill(d Descriptor, i1 int, v1 float64, i2 int, v2 float64) (Track, error) {
	if i1 < 0 || i1 >= len(t.Frames) || i2 < 0 || i2 >= len(t.Frames) {
		return t, ErrInvalidFrame
	}
	if i1 == i2 {
		return t.SetValue(i2, d, v2)
	}
	ret := t.Copy()
	span := float64(i2 - i1)
	for j := min(i1, i2); j <= max(i1, i2); j++ {
		v := Lerp(v1, v2, float64(j-i1)/span)
		if err := ret.Frames[j].Set(d.Key, d.Clamp(v)); err != nil {
			return t, err
		}
	}
	return ret, nil
}

// SetAdjustment returns the track with the given adjustment target; nil
// clears it.
func (t Track) SetAdjustment(adj *Adjustment) Track {
	ret := t.Copy()
	ret.Adjustment = nil
	if adj != nil {
		a := Adjustment{I: Round(adj.I), D: Round(adj.D)}
		ret.Adjustment = &a
	}
	return ret
}
