package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/tierviz/pkg/chart"
)

// FileStore keeps each layout as a JSON file in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) layoutPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, l chart.Layout) error {
	if !validID(l.ID) {
		return ErrInvalidID
	}
	data, err := chart.MarshalLayout(l)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, ".layout-*")
	if err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write layout file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.layoutPath(l.ID)); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (chart.Layout, error) {
	if !validID(id) {
		return chart.Layout{}, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, err := chart.ReadLayoutFile(s.layoutPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return chart.Layout{}, ErrNotFound
	}
	if err != nil {
		return chart.Layout{}, err
	}
	return l, nil
}

// List reads every layout file. Unreadable files are skipped.
func (s *FileStore) List(ctx context.Context, opts ListOptions) ([]chart.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read layout dir: %w", err)
	}

	var out []chart.Layout
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var l chart.Layout
		if err := json.Unmarshal(data, &l); err != nil {
			continue
		}
		out = append(out, l)
	}
	return filterSorted(out, opts), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.layoutPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove layout file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding layout files.
func (s *FileStore) Path() string { return s.baseDir }

var _ Store = (*FileStore)(nil)
