package studio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/trombonestudio/automation"
)

// ReadLibrary reads a JSON or YAML document from r and, if it is valid,
// replaces the library's tracks with it and resets the playhead. On any error
// the library is left unchanged.
func (m *Model) ReadLibrary(r io.ReadCloser, opts automation.DecodeOptions) error {
	lib, path, err := readLibrary(r, opts)
	if err != nil {
		return err
	}
	m.loaded(lib, path)
	return nil
}

func (m *Model) loaded(lib automation.Library, path string) {
	m.setLibrary(lib, path)
	if path != "" {
		// when the library is loaded from a file, we are quite confident that
		// the file is persisted and thus nothing is lost on close
		m.d.ChangedSinceSave = false
	}
}

// LoadLibrary reads and decodes r on a goroutine of its own. The result is
// delivered through the broker and applied when ProcessMsg handles it.
func (m *Model) LoadLibrary(r io.ReadCloser, opts automation.DecodeOptions) {
	go func() {
		lib, path, err := readLibrary(r, opts)
		TrySend(m.broker.ToModel, MsgToModel{Data: libraryLoaded{lib: lib, path: path, err: err}})
	}()
}

func readLibrary(r io.ReadCloser, opts automation.DecodeOptions) (automation.Library, string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		r.Close()
		return automation.Library{}, "", fmt.Errorf("could not read library: %w", err)
	}
	if err := r.Close(); err != nil {
		return automation.Library{}, "", fmt.Errorf("could not close library: %w", err)
	}
	lib, err := opts.Decode(b)
	if err != nil {
		return automation.Library{}, "", err
	}
	path := ""
	if f, ok := r.(*os.File); ok {
		path = f.Name()
	}
	return lib, path, nil
}

// WriteLibrary writes all tracks to w. Files named *.yml or *.yaml are
// written as YAML, everything else as JSON.
func (m *Model) WriteLibrary(w io.WriteCloser) error {
	path := ""
	if f, ok := w.(*os.File); ok {
		path = f.Name()
	}
	var contents []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		contents, err = automation.EncodeYAML(m.d.Library)
	default:
		contents, err = automation.Encode(m.d.Library)
	}
	if err != nil {
		w.Close()
		return fmt.Errorf("could not marshal library: %w", err)
	}
	if _, err := w.Write(contents); err != nil {
		w.Close()
		return fmt.Errorf("could not write library: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("could not close library: %w", err)
	}
	if path != "" {
		m.d.FilePath = path
		m.d.ChangedSinceSave = false
	}
	return nil
}

// WriteTrack writes the current track alone, as JSON.
func (m *Model) WriteTrack(w io.WriteCloser) error {
	t, ok := m.d.Library.Current()
	if !ok {
		w.Close()
		return automation.ErrNoTrack
	}
	contents, err := automation.EncodeTrack(t)
	if err != nil {
		w.Close()
		return fmt.Errorf("could not marshal track: %w", err)
	}
	if _, err := w.Write(contents); err != nil {
		w.Close()
		return fmt.Errorf("could not write track: %w", err)
	}
	return w.Close()
}
