package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"ppm/internal/port"
)

// FileStore persists session state to a single msgpack file. It backs the
// command-line client, where each profile is one session that must survive
// between invocations.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ port.SessionStore = (*FileStore)(nil)

// NewFileStore creates a FileStore writing to path. The file is created on
// the first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[sessionID][key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if data[sessionID] == nil {
		data[sessionID] = make(map[string]string)
	}
	data[sessionID][key] = value
	return s.save(data)
}

func (s *FileStore) load() (map[string]map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("fileStore.load: %w", err)
	}

	data := make(map[string]map[string]string)
	if len(raw) == 0 {
		return data, nil
	}
	if err := msgpack.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("fileStore.load: decoding %s: %w", s.path, err)
	}
	return data, nil
}

// save writes to a temp file and renames it over the target.
func (s *FileStore) save(data map[string]map[string]string) error {
	raw, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("fileStore.save: encoding: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("fileStore.save: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("fileStore.save: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("fileStore.save: %w", err)
	}
	return nil
}
