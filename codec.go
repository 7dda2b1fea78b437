package automation

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"gopkg.in/yaml.v3"
)

type (
	// ValidationError describes why a document was rejected. Track and Frame
	// locate the offending element (Frame is -1 when the problem is not
	// within a frame) and Key names the missing or malformed key, if any.
	ValidationError struct {
		Track  string
		Frame  int
		Key    Key
		Reason string
	}

	// DecodeOptions tunes decoding. The zero value is strict: every frame
	// must carry every descriptor key.
	DecodeOptions struct {
		// FillOptional accepts frames missing the tongue and adjustment blend
		// keys, which documents written by older versions lack, and defaults
		// them to 0.
		FillOptional bool
	}

	rawTrack struct {
		Frames *[]map[string]*float64 `json:"frames" yaml:"frames"`
		Adj    *Adjustment            `json:"adj" yaml:"adj"`
	}
)

var ErrInvalidDocument = errors.New("invalid track document")

var optionalKeys = []Key{TongueIndex, TongueDiameter, AdjustmentBlend}

func (e *ValidationError) Error() string {
	msg := "invalid track document"
	if e.Track != "" {
		msg = fmt.Sprintf("invalid track %q", e.Track)
	}
	if e.Frame >= 0 {
		msg += fmt.Sprintf(", frame %d", e.Frame)
	}
	if e.Key != "" {
		msg += fmt.Sprintf(", key %q", e.Key)
	}
	return msg + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDocument }

// Encode serializes the library's tracks as a JSON object mapping track names
// to tracks. Values are written as stored; no rounding takes place here.
func Encode(l Library) ([]byte, error) {
	return json.Marshal(nonNil(l.Tracks))
}

// EncodeYAML serializes the library in the same shape as Encode, as YAML.
func EncodeYAML(l Library) ([]byte, error) {
	return yaml.Marshal(nonNil(l.Tracks))
}

// EncodeTrack serializes a single track.
func EncodeTrack(t Track) ([]byte, error) {
	return json.Marshal(nonNilFrames(t))
}

// Decode parses and validates a document with the strict default options.
func Decode(b []byte) (Library, error) {
	return DecodeOptions{}.Decode(b)
}

// Decode parses a JSON or YAML document and validates it. Nothing is
// returned unless the whole document is valid. The returned library selects
// the first track by name.
func (o DecodeOptions) Decode(b []byte) (Library, error) {
	var raw map[string]*rawTrack
	if json.Valid(b) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return Library{}, &ValidationError{Frame: -1, Reason: err.Error()}
		}
	} else if err := yaml.Unmarshal(b, &raw); err != nil {
		return Library{}, &ValidationError{Frame: -1, Reason: err.Error()}
	}
	if raw == nil {
		return Library{}, &ValidationError{Frame: -1, Reason: "top-level value must be an object"}
	}
	lib := Library{Tracks: make(map[string]Track, len(raw))}
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		t, err := o.track(name, raw[name])
		if err != nil {
			return Library{}, err
		}
		n := NormalizeName(name)
		if n == "" {
			return Library{}, &ValidationError{Track: name, Frame: -1, Reason: "empty track name"}
		}
		if _, ok := lib.Tracks[n]; ok {
			return Library{}, &ValidationError{Track: name, Frame: -1, Reason: "duplicate track name"}
		}
		lib.Tracks[n] = t
	}
	if names := lib.Names(); len(names) > 0 {
		lib.Selected = names[0]
	}
	return lib, nil
}

// DecodeTrack parses and validates a single track object.
func (o DecodeOptions) DecodeTrack(b []byte) (Track, error) {
	var raw *rawTrack
	if err := json.Unmarshal(b, &raw); err != nil {
		return Track{}, &ValidationError{Frame: -1, Reason: err.Error()}
	}
	return o.track("", raw)
}

func (o DecodeOptions) track(name string, raw *rawTrack) (Track, error) {
	if raw == nil || raw.Frames == nil {
		return Track{}, &ValidationError{Track: name, Frame: -1, Reason: `missing "frames" array`}
	}
	t := Track{Frames: make([]Frame, 0, len(*raw.Frames))}
	for i, obj := range *raw.Frames {
		var f Frame
		for _, d := range Descriptors {
			v, ok := obj[string(d.Key)]
			if !ok || v == nil {
				if o.FillOptional && slices.Contains(optionalKeys, d.Key) {
					continue
				}
				return Track{}, &ValidationError{Track: name, Frame: i, Key: d.Key, Reason: "missing key"}
			}
			f.Set(d.Key, *v)
			if !finite(f.Get(d.Key)) {
				return Track{}, &ValidationError{Track: name, Frame: i, Key: d.Key, Reason: "value is not finite"}
			}
		}
		t.Frames = append(t.Frames, f)
	}
	if raw.Adj != nil {
		t = t.SetAdjustment(raw.Adj)
		if !finite(t.Adjustment.I) || !finite(t.Adjustment.D) {
			return Track{}, &ValidationError{Track: name, Frame: -1, Reason: "adjustment is not finite"}
		}
	}
	return t, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func nonNil(tracks map[string]Track) map[string]Track {
	ret := make(map[string]Track, len(tracks))
	for name, t := range tracks {
		ret[name] = nonNilFrames(t)
	}
	return ret
}

func nonNilFrames(t Track) Track {
	if t.Frames == nil {
		t.Frames = []Frame{}
	}
	return t
}
