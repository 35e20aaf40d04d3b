package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sandfall/strata/pkg/errors"
)

// FileStore keeps presets as JSON files under <root>/<folder>/<name>.json.
// It is the CLI's backend.
type FileStore struct {
	mu   sync.RWMutex
	root string
}

// NewFileStore opens a file-backed store rooted at root. Empty root defaults
// to ~/.config/strata/presets.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		root = filepath.Join(home, ".config", "strata", "presets")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create preset dir: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) path(folder, name string) string {
	return filepath.Join(s.root, folder, name+".json")
}

// List implements Store.
func (s *FileStore) List(ctx context.Context, folder string) ([]Info, error) {
	folder = normalizeFolder(folder)
	if err := errors.ValidateFolderName(folder); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.root, folder))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read preset dir: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info := Info{Folder: folder, Name: strings.TrimSuffix(e.Name(), ".json")}
		if fi, err := e.Info(); err == nil {
			info.UpdatedAt = fi.ModTime()
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, folder, name string) (*Record, error) {
	folder = normalizeFolder(folder)
	if err := checkKey(folder, name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.path(folder, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(folder, name)
		}
		return nil, fmt.Errorf("read preset file: %w", err)
	}

	rec := Record{Folder: folder, Name: name, Data: json.RawMessage(data)}
	if fi, err := os.Stat(path); err == nil {
		rec.UpdatedAt = fi.ModTime()
	}
	return &rec, nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, rec *Record) error {
	folder := normalizeFolder(rec.Folder)
	if err := checkKey(folder, rec.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create folder dir: %w", err)
	}

	// Write-then-rename so a crash never leaves a half-written preset.
	tmp, err := os.CreateTemp(dir, "."+rec.Name+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(rec.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write preset file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close preset file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(folder, rec.Name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename preset file: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, folder, name string) error {
	folder = normalizeFolder(folder)
	if err := checkKey(folder, name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(folder, name)); err != nil {
		if os.IsNotExist(err) {
			return notFound(folder, name)
		}
		return fmt.Errorf("remove preset file: %w", err)
	}
	return nil
}

// Close implements Store. The file backend holds no resources.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
