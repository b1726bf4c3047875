package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// FileMap is a JSON-file-backed map from user ID to a scalar value.
// The whole document is read once at construction and rewritten on every
// mutation. On disk the keys are decimal strings, matching the files the
// bot has always produced.
type FileMap[V any] struct {
	path string
	mu   sync.Mutex
	data map[int64]V
}

// NewFileMap loads the map stored at path. A missing file is an empty map,
// not an error.
func NewFileMap[V any](path string) (*FileMap[V], error) {
	m := &FileMap[V]{path: path, data: make(map[int64]V)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return m, nil
	}

	var byKey map[string]V
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for k, v := range byKey {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		m.data[id] = v
	}
	return m, nil
}

func (m *FileMap[V]) Get(userID int64) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[userID]
	return v, ok
}

// Put updates the in-memory value and rewrites the file. On a write failure
// the in-memory map keeps the new value and the error is returned to the
// caller; the on-disk copy stays stale until the next successful save.
func (m *FileMap[V]) Put(userID int64, v V) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[userID] = v
	return m.saveUnlocked()
}

func (m *FileMap[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *FileMap[V]) saveUnlocked() error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure dir: %w", err)
		}
	}
	byKey := make(map[string]V, len(m.data))
	for id, v := range m.data {
		byKey[strconv.FormatInt(id, 10)] = v
	}
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open write: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(byKey); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
