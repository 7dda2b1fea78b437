package studio_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/trombonestudio/automation"
	"github.com/trombonestudio/automation/studio"
)

type testModel struct {
	*studio.Model
	broker *studio.Broker
	engine *automation.MemoryEngine
	sched  *manualScheduler
}

func newTestModel(t *testing.T, doc string) testModel {
	t.Helper()
	m := testModel{
		broker: studio.NewBroker(),
		engine: automation.NewMemoryEngine(nil),
		sched:  &manualScheduler{},
	}
	m.Model = studio.NewModel(m.broker, m.engine, m.sched, "")
	if doc != "" {
		if err := m.ReadLibrary(io.NopCloser(strings.NewReader(doc)), automation.DecodeOptions{}); err != nil {
			t.Fatalf("ReadLibrary failed: %v", err)
		}
	}
	return m
}

// document returns a library with a single track "ah" whose frames have the
// given constriction indices.
func document(cis ...float64) string {
	var frames []string
	for _, ci := range cis {
		frames = append(frames, fmt.Sprintf(`{"ci":%v,"cd":1.5,"ti":14,"td":2.5,"v":0.01,"t":1,"i":1,"n":0,"ta":0}`, ci))
	}
	return `{"ah":{"frames":[` + strings.Join(frames, ",") + `]}}`
}

type myWriteCloser struct {
	*bytes.Buffer
}

func (mwc *myWriteCloser) Close() error {
	return nil
}

func TestCaptureCreatesTake(t *testing.T) {
	m := newTestModel(t, "")
	for i, want := range []string{"Take 1", "Take 2"} {
		m.Recording().Set(true)
		m.sched.fire(3)
		m.engine.SetValue(automation.ParamIntensity, 0.5-float64(i)/10)
		m.sched.fire(3)
		if err := m.ProcessPending(); err != nil {
			t.Fatalf("ProcessPending failed: %v", err)
		}
		m.Recording().Set(false)
		if got := m.Tracks().Selected(); got != want {
			t.Fatalf("selected %q, want %q", got, want)
		}
		if c := m.Frames().Count(); c != 2 {
			t.Errorf("%s: %d frames, want 2", want, c)
		}
		if p := m.Playhead().Value(); p != 0 {
			t.Errorf("%s: playhead %d, want 0", want, p)
		}
	}
	if m.sched.stopped != 2 {
		t.Errorf("timer stopped %d times, want 2", m.sched.stopped)
	}
}

func TestEmptyCaptureIsDiscarded(t *testing.T) {
	m := newTestModel(t, "")
	m.Recording().Set(true)
	m.sched.fire(2) // ticks still queued when the capture stops
	m.Recording().Set(false)
	m.ProcessPending()
	if names := m.Tracks().Names(); len(names) != 0 {
		t.Fatalf("empty capture stored as %v", names)
	}
	if m.History().Undo().Enabled() {
		t.Error("empty capture recorded an undo step")
	}
}

func TestEditsDisabledWhileRecording(t *testing.T) {
	m := newTestModel(t, document(1, 2, 3))
	m.Recording().Set(true)
	for name, a := range map[string]studio.Action{
		"Extend":  m.Frames().Extend(),
		"Delete":  m.Frames().Delete(),
		"Reverse": m.Frames().Reverse(),
		"Compact": m.Frames().Compact(),
		"Undo":    m.History().Undo(),
	} {
		if a.Enabled() {
			t.Errorf("%s enabled while recording", name)
		}
	}
	m.Edit().SetDescriptor(automation.ConstrictionIndex)
	before := m.Library()
	m.Edit().Press(0.5, 0.5)
	if diff := cmp.Diff(before, m.Library()); diff != "" {
		t.Errorf("drawing while recording changed the library (-before +after):\n%s", diff)
	}
	m.Recording().Set(false)
}

func TestDrawRamp(t *testing.T) {
	m := newTestModel(t, document(0, 0, 0, 0, 0, 0, 0, 0, 0, 0))
	if err := m.Edit().SetDescriptor(automation.ConstrictionDiameter); err != nil {
		t.Fatalf("SetDescriptor failed: %v", err)
	}
	m.Edit().Press(0, 1)
	m.Edit().Move(1, 1-1/3.5)
	m.Edit().Release()
	tr, _ := m.Track()
	for k, f := range tr.Frames {
		if want := automation.Round(float64(k) / 9); f.CD != want {
			t.Errorf("frame %d: cd = %v, want %v", k, f.CD, want)
		}
	}
}

func TestDrawSnapsToEdges(t *testing.T) {
	m := newTestModel(t, document(0, 0, 0))
	m.Edit().SetDescriptor(automation.ConstrictionDiameter)
	m.Edit().Press(0.02, 0.05)
	tr, _ := m.Track()
	if tr.Frames[0].CD != 3.5 {
		t.Errorf("press near the top edge: cd = %v, want 3.5", tr.Frames[0].CD)
	}
	m.Edit().Move(0.99, 0.98)
	tr, _ = m.Track()
	if tr.Frames[2].CD != 0 {
		t.Errorf("drag near the bottom edge: cd = %v, want 0", tr.Frames[2].CD)
	}
}

func TestDrawLocked(t *testing.T) {
	m := newTestModel(t, document(0, 0, 0, 0, 0))
	m.Edit().SetDescriptor(automation.ConstrictionDiameter)
	m.Lock().Set(true)
	m.Edit().Press(0, 0.5)
	m.Edit().Move(1, 0.52)
	tr, _ := m.Track()
	for k, f := range tr.Frames {
		if f.CD != 1.75 {
			t.Errorf("frame %d: cd = %v, want flat 1.75", k, f.CD)
		}
	}
	// larger movement follows the pointer, still ramping from the press
	m.Edit().Move(0.5, 0.9)
	m.Edit().Move(1, 0.9)
	tr, _ = m.Track()
	if diff := cmp.Diff([]float64{1.75, 1.4, 1.05, 0.7, 0.35}, tr.Column(automation.ConstrictionDiameter)); diff != "" {
		t.Fatalf("locked ramp mismatch (-want +got):\n%s", diff)
	}
}

func TestDragDeadZone(t *testing.T) {
	m := newTestModel(t, document(0, 0, 0))
	m.Edit().SetDescriptor(automation.ConstrictionDiameter)
	m.Edit().Press(0, 0.5)
	m.Edit().Move(1, 0.05)
	tr, _ := m.Track()
	if tr.Frames[2].CD != 3.325 {
		t.Fatalf("drag to y=0.05: cd = %v, want 3.325", tr.Frames[2].CD)
	}
}

func TestDrawNonFiniteCoordinates(t *testing.T) {
	m := newTestModel(t, document(0, 0, 0))
	m.Edit().SetDescriptor(automation.ConstrictionDiameter)
	m.Edit().Press(0.5, math.NaN())
	m.Edit().Move(math.NaN(), math.Inf(1))
	m.Edit().Move(math.Inf(-1), math.NaN())
	tr, _ := m.Track()
	d, _ := automation.Lookup(automation.ConstrictionDiameter)
	for k, f := range tr.Frames {
		if f.CD < d.Min || f.CD > d.Max {
			t.Errorf("frame %d: cd = %v outside [%v,%v]", k, f.CD, d.Min, d.Max)
		}
	}
	if _, err := automation.Encode(m.Library()); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
}

func TestDrawSingleFrame(t *testing.T) {
	m := newTestModel(t, document(0))
	m.Edit().SetDescriptor(automation.Intensity)
	m.Edit().Press(0.7, 0.5)
	m.Edit().Move(0.2, 0.5)
	tr, _ := m.Track()
	if tr.Len() != 1 || tr.Frames[0].I != 0.5 {
		t.Fatalf("got %+v, want one frame with intensity 0.5", tr.Frames)
	}
}

func TestDrawIgnored(t *testing.T) {
	m := newTestModel(t, document(1, 2, 3))
	before := m.Library()
	m.Edit().Press(0.5, 0.5) // no descriptor selected
	m.Edit().SetDescriptor(automation.ConstrictionIndex)
	m.Edit().Move(0.5, 0.5) // no press
	if diff := cmp.Diff(before, m.Library()); diff != "" {
		t.Fatalf("library changed (-before +after):\n%s", diff)
	}
	if err := m.Edit().SetDescriptor("xx"); !errors.Is(err, automation.ErrUnknownKey) {
		t.Fatalf("SetDescriptor(xx): got %v, want ErrUnknownKey", err)
	}
}

func TestDrawIsOneUndoStep(t *testing.T) {
	m := newTestModel(t, document(0, 0, 0, 0, 0))
	loaded := m.Library()
	m.Edit().SetDescriptor(automation.ConstrictionIndex)
	m.Edit().Press(0, 0)
	m.Edit().Move(0.5, 0.5)
	m.Edit().Move(1, 0.7)
	m.Edit().Release()
	drawn := m.Library()
	m.History().Undo().Do()
	if diff := cmp.Diff(loaded, m.Library()); diff != "" {
		t.Fatalf("undo mismatch (-want +got):\n%s", diff)
	}
	m.History().Redo().Do()
	if diff := cmp.Diff(drawn, m.Library()); diff != "" {
		t.Fatalf("redo mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameActions(t *testing.T) {
	m := newTestModel(t, document(1, 2, 3))
	if ok := m.Playhead().Set(5); !ok {
		t.Fatal("setting the playhead past the end did nothing")
	}
	if p := m.Playhead().Value(); p != 2 {
		t.Fatalf("playhead %d, want it clamped to 2", p)
	}
	m.Frames().Delete().Do()
	if c, p := m.Frames().Count(), m.Playhead().Value(); c != 2 || p != 1 {
		t.Fatalf("after delete: %d frames, playhead %d; want 2 and 1", c, p)
	}
	m.Frames().Extend().Do()
	m.Frames().Extend().Do()
	tr, _ := m.Track()
	if diff := cmp.Diff([]float64{1, 2, 2, 2}, tr.Column(automation.ConstrictionIndex)); diff != "" {
		t.Fatalf("after extend (-want +got):\n%s", diff)
	}
	m.Frames().Compact().Do()
	m.Frames().Reverse().Do()
	tr, _ = m.Track()
	if diff := cmp.Diff([]float64{2, 1}, tr.Column(automation.ConstrictionIndex)); diff != "" {
		t.Fatalf("after compact and reverse (-want +got):\n%s", diff)
	}
	m.Frames().Delete().Do()
	m.Frames().Delete().Do()
	if m.Frames().Delete().Enabled() {
		t.Error("Delete enabled on an empty track")
	}
	if p := m.Playhead().Value(); p != 0 {
		t.Errorf("playhead %d on an empty track, want 0", p)
	}
}

func TestPlayheadAppliesFrame(t *testing.T) {
	m := newTestModel(t, document(0, 22))
	m.engine.SetValue(automation.ParamTractLength, 22)
	m.Playhead().Set(1)
	if v := m.engine.Value(automation.ParamConstrictionIndex); v != 11 {
		t.Fatalf("constriction index %v, want 11", v)
	}
}

func TestReadLibraryFailureKeepsLibrary(t *testing.T) {
	m := newTestModel(t, document(1, 2))
	before := m.Library()
	bad := strings.Replace(document(3), `,"ta":0`, "", 1)
	err := m.ReadLibrary(io.NopCloser(strings.NewReader(bad)), automation.DecodeOptions{})
	if !errors.Is(err, automation.ErrInvalidDocument) {
		t.Fatalf("got %v, want ErrInvalidDocument", err)
	}
	if diff := cmp.Diff(before, m.Library()); diff != "" {
		t.Fatalf("failed import changed the library (-before +after):\n%s", diff)
	}
}

func TestLoadLibraryAsync(t *testing.T) {
	m := newTestModel(t, "")
	m.LoadLibrary(io.NopCloser(strings.NewReader(document(1, 2))), automation.DecodeOptions{})
	if err := m.ProcessMsg(<-m.broker.ToModel); err != nil {
		t.Fatalf("ProcessMsg failed: %v", err)
	}
	if c := m.Frames().Count(); c != 2 {
		t.Fatalf("%d frames loaded, want 2", c)
	}
	m.LoadLibrary(io.NopCloser(strings.NewReader("[")), automation.DecodeOptions{})
	if err := m.ProcessMsg(<-m.broker.ToModel); err == nil {
		t.Fatal("ProcessMsg accepted a broken document")
	}
	if c := m.Frames().Count(); c != 2 {
		t.Fatalf("failed load changed the library: %d frames", c)
	}
}

func TestWriteAndReadFile(t *testing.T) {
	for _, name := range []string{"tracks.json", "tracks.yml"} {
		t.Run(name, func(t *testing.T) {
			m := newTestModel(t, document(1, 2, 3))
			m.Tracks().SetAdjustment(&automation.Adjustment{I: 12.7, D: 2})
			path := filepath.Join(t.TempDir(), name)
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := m.WriteLibrary(f); err != nil {
				t.Fatalf("WriteLibrary failed: %v", err)
			}
			if m.FilePath() != path || m.ChangedSinceSave() {
				t.Errorf("after save: path %q changed %v", m.FilePath(), m.ChangedSinceSave())
			}
			f, err = os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			m2 := newTestModel(t, "")
			if err := m2.ReadLibrary(f, automation.DecodeOptions{}); err != nil {
				t.Fatalf("ReadLibrary failed: %v", err)
			}
			if diff := cmp.Diff(m.Library(), m2.Library()); diff != "" {
				t.Fatalf("library mismatch (-saved +loaded):\n%s", diff)
			}
		})
	}
}

func TestWriteTrack(t *testing.T) {
	m := newTestModel(t, document(1))
	buf := &myWriteCloser{bytes.NewBuffer(nil)}
	if err := m.WriteTrack(buf); err != nil {
		t.Fatalf("WriteTrack failed: %v", err)
	}
	tr, err := automation.DecodeOptions{}.DecodeTrack(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeTrack failed: %v", err)
	}
	if want, _ := m.Track(); !cmp.Equal(want, tr) {
		t.Fatalf("got %+v, want %+v", tr, want)
	}
}

func TestTrackManagement(t *testing.T) {
	m := newTestModel(t, document(1))
	if err := m.Tracks().Rename("ah", "oo"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if got := m.Tracks().Selected(); got != "oo" {
		t.Fatalf("selected %q after rename, want oo", got)
	}
	if err := m.Tracks().Select("ah"); !errors.Is(err, automation.ErrNoTrack) {
		t.Fatalf("Select(ah): got %v, want ErrNoTrack", err)
	}
	if err := m.Tracks().Remove("oo"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := m.Tracks().SetAdjustment(nil); !errors.Is(err, automation.ErrNoTrack) {
		t.Fatalf("SetAdjustment without a track: got %v, want ErrNoTrack", err)
	}
	m.History().Undo().Do()
	if diff := cmp.Diff([]string{"oo"}, m.Tracks().Names()); diff != "" {
		t.Fatalf("undo remove (-want +got):\n%s", diff)
	}
}

func TestRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recovery", "state.json")
	m := newTestModel(t, "")
	m.Model = studio.NewModel(m.broker, m.engine, m.sched, path)
	m.ReadLibrary(io.NopCloser(strings.NewReader(document(1, 2))), automation.DecodeOptions{})
	m.Playhead().Set(1)
	if err := m.History().SaveRecovery(); err != nil {
		t.Fatalf("SaveRecovery failed: %v", err)
	}
	restored := studio.NewModel(studio.NewBroker(), automation.NewMemoryEngine(nil), &manualScheduler{}, path)
	if diff := cmp.Diff(m.Library(), restored.Library()); diff != "" {
		t.Fatalf("recovered library mismatch (-want +got):\n%s", diff)
	}
	if p := restored.Playhead().Value(); p != 1 {
		t.Errorf("recovered playhead %d, want 1", p)
	}
}

func TestRecoveryClampsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := `{"Library":{"Tracks":{"ah":{"frames":[{"ci":99,"cd":1}]}},"Selected":"ah"},"Playhead":7,"Param":"xx"}`
	if err := os.WriteFile(path, []byte(state), 0o644); err != nil {
		t.Fatal(err)
	}
	m := studio.NewModel(studio.NewBroker(), automation.NewMemoryEngine(nil), &manualScheduler{}, path)
	tr, ok := m.Track()
	if !ok || tr.Len() != 1 {
		t.Fatalf("restored track %+v, want one frame", tr)
	}
	want := automation.Frame{CI: 44, CD: 1, TI: 12, TD: 2.05, V: 0.01}
	if diff := cmp.Diff(want, tr.Frames[0]); diff != "" {
		t.Errorf("restored frame mismatch (-want +got):\n%s", diff)
	}
	if p := m.Playhead().Value(); p != 0 {
		t.Errorf("restored playhead %d, want 0", p)
	}
	if _, ok := m.Edit().Descriptor(); ok {
		t.Error("unknown descriptor key restored")
	}

	os.WriteFile(path, []byte("{"), 0o644)
	m = studio.NewModel(studio.NewBroker(), automation.NewMemoryEngine(nil), &manualScheduler{}, path)
	if names := m.Tracks().Names(); len(names) != 0 {
		t.Errorf("broken recovery file restored %v", names)
	}
}

type modelFuzzState struct {
	model *testModel
	file  []byte
}

func (s *modelFuzzState) Iterate(yield func(string, func(p string, t *testing.T)) bool, seed int) {
	s.IterateInt("Playhead", s.model.Playhead(), yield, seed)
	s.IterateBool("Recording", s.model.Recording(), yield, seed)
	s.IterateBool("Lock", s.model.Lock(), yield, seed)
	s.IterateAction("Extend", s.model.Frames().Extend(), yield, seed)
	s.IterateAction("Delete", s.model.Frames().Delete(), yield, seed)
	s.IterateAction("Reverse", s.model.Frames().Reverse(), yield, seed)
	s.IterateAction("Compact", s.model.Frames().Compact(), yield, seed)
	s.IterateAction("Undo", s.model.History().Undo(), yield, seed)
	s.IterateAction("Redo", s.model.History().Redo(), yield, seed)
	yield("Tick", func(p string, t *testing.T) {
		s.model.sched.fire(seed%4 + 1)
		s.model.engine.SetValue(automation.ParamIntensity, float64(seed%7)/7)
		s.model.ProcessPending()
	})
	yield("SetDescriptor", func(p string, t *testing.T) {
		s.model.Edit().SetDescriptor(automation.Descriptors[seed%len(automation.Descriptors)].Key)
	})
	yield("Press", func(p string, t *testing.T) {
		s.model.Edit().Press(float64(seed%13)/10-0.1, float64(seed*7%13)/10-0.1)
	})
	yield("Move", func(p string, t *testing.T) {
		s.model.Edit().Move(float64(seed%13)/10-0.1, float64(seed*7%13)/10-0.1)
	})
	yield("Release", func(p string, t *testing.T) {
		s.model.Edit().Release()
	})
	yield("SelectTrack", func(p string, t *testing.T) {
		if names := s.model.Tracks().Names(); len(names) > 0 {
			s.model.Tracks().Select(names[seed%len(names)])
		}
	})
	yield("RemoveTrack", func(p string, t *testing.T) {
		s.model.Tracks().Remove(s.model.Tracks().Selected())
	})
	yield("WriteLibrary", func(p string, t *testing.T) {
		buf := &myWriteCloser{bytes.NewBuffer(nil)}
		s.model.WriteLibrary(buf)
		s.file = buf.Bytes()
	})
	if s.file != nil {
		yield("ReadLibrary", func(p string, t *testing.T) {
			if err := s.model.ReadLibrary(io.NopCloser(bytes.NewReader(s.file)), automation.DecodeOptions{}); err != nil {
				t.Errorf("Path: %s written library could not be read back: %v", p, err)
			}
		})
	}
}

func (s *modelFuzzState) IterateInt(name string, i studio.Int, yield func(string, func(p string, t *testing.T)) bool, seed int) {
	yield(name+".Set", func(p string, t *testing.T) {
		r := i.Range()
		i.Set(seed%(r.Max-r.Min+10) - 5 + r.Min)
	})
	yield(name+".Value", func(p string, t *testing.T) {
		if r, v := i.Range(), i.Value(); v < r.Min || v > r.Max {
			t.Errorf("Path: %s %s value out of range [%d,%d]: %d", p, name, r.Min, r.Max, v)
		}
	})
}

func (s *modelFuzzState) IterateAction(name string, a studio.Action, yield func(string, func(p string, t *testing.T)) bool, seed int) {
	yield(name+".Do", func(p string, t *testing.T) {
		a.Do()
	})
}

func (s *modelFuzzState) IterateBool(name string, b studio.Bool, yield func(string, func(p string, t *testing.T)) bool, seed int) {
	yield(name+".Set", func(p string, t *testing.T) {
		b.Set(seed%2 == 0)
	})
	yield(name+".Toggle", func(p string, t *testing.T) {
		b.Toggle()
	})
}

func FuzzModel(f *testing.F) {
	seed := make([]byte, 1)
	f.Add(seed)
	f.Fuzz(func(t *testing.T, slice []byte) {
		reader := bytes.NewReader(slice)
		model := newTestModel(t, document(1, 2, 3, 4))
		state := modelFuzzState{model: &model}
		count := 0
		state.Iterate(func(n string, f func(p string, t *testing.T)) bool {
			count++
			return true
		}, 0)
		totalPath := ""
		for m, err := binary.ReadVarint(reader); err == nil; m, err = binary.ReadVarint(reader) {
			seed := int(uint64(m) >> 1)
			index := seed % count
			state.Iterate(func(n string, f func(p string, t *testing.T)) bool {
				if index == 0 {
					totalPath += n + ". "
					f(totalPath, t)
				}
				index--
				return index > 0
			}, seed)
			for _, name := range model.Tracks().Names() {
				tr, _ := model.Library().Track(name)
				for k, fr := range tr.Frames {
					for _, d := range automation.Descriptors {
						if v := fr.Get(d.Key); v < d.Min || v > d.Max {
							t.Errorf("Path: %s track %q frame %d: %s = %v outside [%v,%v]", totalPath, name, k, d.Key, v, d.Min, d.Max)
						}
					}
				}
			}
		}
		model.Recording().Set(false)
	})
}
