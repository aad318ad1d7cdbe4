package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
)

// CachedSourceName selects the snapshot saved in DataDir.
const CachedSourceName = "cached"

// DataDir returns the directory holding the saved snapshot, following the
// XDG base directory layout.
//
//	Linux/macOS: $XDG_DATA_HOME/llmprices  (default ~/.local/share/llmprices)
//	Windows:     %LOCALAPPDATA%/llmprices
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "llmprices"), nil
	}

	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "llmprices"), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "llmprices"), nil
}

// recordingSource keeps the raw bytes of every document it fetches.
type recordingSource struct {
	Source

	mu   sync.Mutex
	docs map[string][]byte
}

func (r *recordingSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := r.Source.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.docs[name] = data
	r.mu.Unlock()
	return data, nil
}

// Snapshot loads both documents from src and, only when both decode, writes
// them unchanged into dir so it can later serve as a directory source.
func Snapshot(ctx context.Context, src Source, dir string) (*Catalog, error) {
	rec := &recordingSource{Source: src, docs: make(map[string][]byte, 2)}

	cat, err := NewLoader(rec).Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	docs := []document{
		{name: ModelsDocument, data: rec.docs[ModelsDocument]},
		{name: ProvidersDocument, data: rec.docs[ProvidersDocument]},
	}
	if err := writeDocuments(dir, docs); err != nil {
		return nil, err
	}

	log.Debug("saved snapshot", "source", src, "dir", dir)
	return cat, nil
}

// RemoveSnapshot deletes the documents written by Snapshot. A missing
// snapshot is not an error.
func RemoveSnapshot(dir string) error {
	for _, name := range []string{ModelsDocument, ProvidersDocument} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// document is one named file of a snapshot.
type document struct {
	name string
	data []byte
}

// writeDocuments stages every document in a temp file inside dir and
// renames them into place only once all of them are written, so a failed
// write leaves the previous snapshot untouched.
func writeDocuments(dir string, docs []document) error {
	staged := make([]string, 0, len(docs))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()

	for _, doc := range docs {
		tmp, err := stageFile(dir, doc.name, doc.data)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", doc.name, err)
		}
		staged = append(staged, tmp)
	}

	for i, doc := range docs {
		if err := os.Rename(staged[i], filepath.Join(dir, doc.name)); err != nil {
			return fmt.Errorf("failed to write %s: %w", doc.name, err)
		}
	}
	return nil
}

// stageFile writes data to a new temp file in dir and returns its path.
func stageFile(dir, name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
