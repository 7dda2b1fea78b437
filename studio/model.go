package studio

import (
	"os"

	"github.com/trombonestudio/automation"
)

// Model implements the mutable state of the automation studio.
//
// The Model is owned by a single goroutine (typically the UI goroutine). All
// mutation happens in reaction to discrete events: UI calls to Actions, Bools
// and Ints, and messages arriving from the Broker (capture ticks, completed
// file loads), which the owner feeds to ProcessMsg in arrival order. The
// library is the single shared resource; every edit reads the current track,
// computes a new track value and stores it back wholesale.
type (
	// modelData is the part of the model that gets saved to the recovery file
	modelData struct {
		Library              automation.Library
		Playhead             int
		Param                automation.Key
		Lock                 bool
		FilePath             string
		ChangedSinceSave     bool
		RecoveryFilePath     string
		ChangedSinceRecovery bool
	}

	Model struct {
		d modelData

		undoStack    []automation.Library
		redoStack    []automation.Library
		prevUndoKind string

		changeLevel  int
		changeCancel bool

		editor   Editor
		recorder *Recorder
		player   *Player
		broker   *Broker
	}

	// ChangeSeverity tells how a change is recorded in the undo history.
	// MajorChanges always get their own undo step; consecutive MinorChanges
	// of the same kind are merged into one. NoChange does not touch the
	// library at all and is not recorded.
	ChangeSeverity int
)

const (
	NoChange ChangeSeverity = iota
	MinorChange
	MajorChange
)

const maxUndo = 64

// capturePrefix names new captures: "Take 1", "Take 2", ...
const capturePrefix = "Take"

// NewModel creates a model around engine. Capture ticks are scheduled with
// scheduler and delivered through broker. If recoveryFilePath points to an
// existing recovery file, its state is restored.
func NewModel(broker *Broker, engine automation.Engine, scheduler Scheduler, recoveryFilePath string) *Model {
	m := &Model{broker: broker}
	m.player = NewPlayer(engine)
	m.recorder = NewRecorder(engine, scheduler, func() {
		TrySend(broker.ToModel, MsgToModel{Data: captureTick{}})
	})
	m.d.RecoveryFilePath = recoveryFilePath
	if recoveryFilePath != "" {
		if b, err := os.ReadFile(recoveryFilePath); err == nil {
			m.History().restoreRecovery(b)
		}
	}
	return m
}

// Library returns a copy of the library.
func (m *Model) Library() automation.Library { return m.d.Library.Copy() }

// Track returns a copy of the current track.
func (m *Model) Track() (automation.Track, bool) { return m.d.Library.Current() }

func (m *Model) FilePath() string       { return m.d.FilePath }
func (m *Model) ChangedSinceSave() bool { return m.d.ChangedSinceSave }

// ProcessMsg handles one message from the broker. Messages must be processed
// in the order they arrive. The returned error reports a failed file load.
func (m *Model) ProcessMsg(msg MsgToModel) error {
	switch e := msg.Data.(type) {
	case captureTick:
		m.recorder.Sample()
	case libraryLoaded:
		if e.err != nil {
			return e.err
		}
		m.loaded(e.lib, e.path)
	}
	return nil
}

// ProcessPending processes the messages already waiting in the broker
// without blocking, returning the first load error encountered.
func (m *Model) ProcessPending() error {
	var ret error
	for {
		select {
		case msg := <-m.broker.ToModel:
			if err := m.ProcessMsg(msg); err != nil && ret == nil {
				ret = err
			}
		default:
			return ret
		}
	}
}

// change marks the start of a mutation. It returns a function that must be
// called (typically deferred) when the mutation is done: it records the undo
// step, clamps the playhead and pushes the frame under the playhead to the
// engine. If the mutation sets changeCancel, the library is restored.
// Nested calls only count the nesting level.
func (m *Model) change(kind string, severity ChangeSeverity) func() {
	if m.changeLevel > 0 {
		m.changeLevel++
		return func() { m.changeLevel-- }
	}
	m.changeLevel++
	m.changeCancel = false
	oldLib := m.d.Library.Copy()
	oldPlayhead := m.d.Playhead
	return func() {
		m.changeLevel--
		if m.changeCancel {
			m.d.Library = oldLib
			m.d.Playhead = oldPlayhead
			m.changeCancel = false
			return
		}
		if severity != NoChange {
			if severity == MajorChange || m.prevUndoKind != kind {
				m.undoStack = append(m.undoStack, oldLib)
				if len(m.undoStack) > maxUndo {
					m.undoStack = m.undoStack[len(m.undoStack)-maxUndo:]
				}
			}
			m.redoStack = m.redoStack[:0]
			m.prevUndoKind = kind
			m.d.ChangedSinceSave = true
			m.d.ChangedSinceRecovery = true
		}
		m.clampPlayhead()
		m.applyFrame()
	}
}

func (m *Model) clampPlayhead() {
	t, _ := m.d.Library.Current()
	m.d.Playhead = t.ClampIndex(m.d.Playhead)
}

// applyFrame pushes the frame under the playhead to the engine. Nothing is
// pushed while capturing, so the player never fights the recorder.
func (m *Model) applyFrame() {
	if m.recorder.Recording() {
		return
	}
	t, ok := m.d.Library.Current()
	if !ok {
		return
	}
	m.player.Apply(t, m.d.Playhead)
}

// editable reports whether the current track can be edited: it must exist,
// have at least one frame, and no capture may be in progress.
func (m *Model) editable() bool {
	if m.recorder.Recording() {
		return false
	}
	t, ok := m.d.Library.Current()
	return ok && t.Len() > 0
}

func (m *Model) setLibrary(lib automation.Library, path string) {
	defer m.change("LoadLibrary", MajorChange)()
	m.d.Library = lib.Copy()
	if _, ok := m.d.Library.Current(); !ok {
		m.d.Library.Selected = ""
		if names := m.d.Library.Names(); len(names) > 0 {
			m.d.Library.Selected = names[0]
		}
	}
	m.d.Playhead = 0
	m.editor.Release()
	if path != "" {
		m.d.FilePath = path
	}
}
