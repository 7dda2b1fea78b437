package automation

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Library maps unique track names to tracks and remembers which track is
// selected. A Library owns its tracks: Track returns copies and SetTrack
// replaces a track wholesale, so no two consumers ever share frame storage.
type Library struct {
	Tracks   map[string]Track `json:",omitempty"`
	Selected string           `json:",omitempty"`
}

var (
	ErrNoTrack     = errors.New("no such track")
	ErrInvalidName = errors.New("invalid track name")
	ErrNameTaken   = errors.New("track name already in use")
)

// NormalizeName trims surrounding space and converts the name to Unicode
// NFC, so that names that render identically compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Copy makes a deep copy of the library.
func (l Library) Copy() Library {
	ret := Library{Selected: l.Selected}
	if l.Tracks != nil {
		ret.Tracks = make(map[string]Track, len(l.Tracks))
		for name, t := range l.Tracks {
			ret.Tracks[name] = t.Copy()
		}
	}
	return ret
}

// Names returns the track names in sorted order.
func (l Library) Names() []string {
	return slices.Sorted(maps.Keys(l.Tracks))
}

// Track returns a copy of the named track.
func (l Library) Track(name string) (Track, bool) {
	t, ok := l.Tracks[NormalizeName(name)]
	if !ok {
		return Track{}, false
	}
	return t.Copy(), true
}

// Current returns a copy of the selected track.
func (l Library) Current() (Track, bool) {
	return l.Track(l.Selected)
}

// SetTrack stores a copy of t under name, replacing any previous track with
// that name.
func (l *Library) SetTrack(name string, t Track) error {
	name = NormalizeName(name)
	if name == "" {
		return ErrInvalidName
	}
	if l.Tracks == nil {
		l.Tracks = map[string]Track{}
	}
	l.Tracks[name] = t.Copy()
	return nil
}

// Select makes the named track the current one.
func (l *Library) Select(name string) error {
	name = NormalizeName(name)
	if _, ok := l.Tracks[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNoTrack, name)
	}
	l.Selected = name
	return nil
}

// Rename moves a track to a new name; the selection follows the track.
func (l *Library) Rename(from, to string) error {
	from, to = NormalizeName(from), NormalizeName(to)
	t, ok := l.Tracks[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoTrack, from)
	}
	if to == "" {
		return ErrInvalidName
	}
	if from == to {
		return nil
	}
	if _, ok := l.Tracks[to]; ok {
		return fmt.Errorf("%w: %q", ErrNameTaken, to)
	}
	delete(l.Tracks, from)
	l.Tracks[to] = t
	if l.Selected == from {
		l.Selected = to
	}
	return nil
}

// Remove deletes the named track. If it was selected, the selection moves to
// the first remaining name, or is cleared.
func (l *Library) Remove(name string) error {
	name = NormalizeName(name)
	if _, ok := l.Tracks[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNoTrack, name)
	}
	delete(l.Tracks, name)
	if l.Selected == name {
		l.Selected = ""
		if names := l.Names(); len(names) > 0 {
			l.Selected = names[0]
		}
	}
	return nil
}

// FreeName returns the first name of the form "<prefix> N" (N >= 1) that is
// not used by any track.
func (l Library) FreeName(prefix string) string {
	for i := 1; ; i++ {
		name := NormalizeName(fmt.Sprintf("%s %d", prefix, i))
		if _, ok := l.Tracks[name]; !ok {
			return name
		}
	}
}
