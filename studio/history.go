package studio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trombonestudio/automation"
)

// History returns the History view of the model, containing methods to manipulate
// the undo/redo history and saving recovery files.
func (m *Model) History() *HistoryModel { return (*HistoryModel)(m) }

type HistoryModel Model

// Undo returns an Action to undo the last change.
func (m *HistoryModel) Undo() Action { return MakeAction((*historyUndo)(m)) }

type historyUndo HistoryModel

func (m *historyUndo) Enabled() bool { return len(m.undoStack) > 0 && !m.recorder.Recording() }
func (m *historyUndo) Do() {
	m.redoStack = append(m.redoStack, m.d.Library.Copy())
	if len(m.redoStack) > maxUndo {
		m.redoStack = m.redoStack[len(m.redoStack)-maxUndo:]
	}
	m.d.Library = m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	(*HistoryModel)(m).restored()
}

// Redo returns an Action to redo the last undone change.
func (m *HistoryModel) Redo() Action { return MakeAction((*historyRedo)(m)) }

type historyRedo HistoryModel

func (m *historyRedo) Enabled() bool { return len(m.redoStack) > 0 && !m.recorder.Recording() }
func (m *historyRedo) Do() {
	m.undoStack = append(m.undoStack, m.d.Library.Copy())
	if len(m.undoStack) > maxUndo {
		m.undoStack = m.undoStack[len(m.undoStack)-maxUndo:]
	}
	m.d.Library = m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	(*HistoryModel)(m).restored()
}

func (m *HistoryModel) restored() {
	m.prevUndoKind = ""
	m.editor.Release()
	m.d.ChangedSinceSave = true
	m.d.ChangedSinceRecovery = true
	(*Model)(m).clampPlayhead()
	(*Model)(m).applyFrame()
}

// SaveRecovery saves the current model data to the recovery file on disk if
// there are unsaved changes.
func (m *HistoryModel) SaveRecovery() error {
	if !m.d.ChangedSinceRecovery {
		return nil
	}
	if m.d.RecoveryFilePath == "" {
		return errors.New("no backup file path")
	}
	out, err := json.Marshal(m.d)
	if err != nil {
		return fmt.Errorf("could not marshal recovery data: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.d.RecoveryFilePath), os.ModePerm); err != nil {
		return fmt.Errorf("could not create recovery directory: %w", err)
	}
	if err := os.WriteFile(m.d.RecoveryFilePath, out, 0o644); err != nil {
		return fmt.Errorf("could not write recovery file: %w", err)
	}
	m.d.ChangedSinceRecovery = false
	return nil
}

// restoreRecovery replaces the model data with the state saved in b and
// reports whether b could be parsed. The recovery file skips import
// validation, so restored frames are clamped into their descriptors' ranges.
func (m *HistoryModel) restoreRecovery(b []byte) bool {
	var data modelData
	if err := json.Unmarshal(b, &data); err != nil {
		return false
	}
	for name, t := range data.Library.Tracks {
		for i, f := range t.Frames {
			t.Frames[i] = f.Clamped()
		}
		data.Library.Tracks[name] = t
	}
	if _, ok := automation.Lookup(data.Param); !ok {
		data.Param = ""
	}
	data.RecoveryFilePath = m.d.RecoveryFilePath
	data.ChangedSinceRecovery = false
	m.d = data
	m.editor.Release()
	(*Model)(m).clampPlayhead()
	(*Model)(m).applyFrame()
	return true
}
