package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Spok95/school-dashboard/internal/metrics"
	"github.com/Spok95/school-dashboard/internal/storage"
)

// Store — файловый аналог localStorage: один JSON-файл, в котором
// коллекции лежат объектом ключ → документ. Для демо-режима без БД.
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("каталог данных: %w", err)
	}

	s := &Store{path: path, data: make(map[string]json.RawMessage)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", path, err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("%w: файл %s: %v", storage.ErrCorrupt, path, err)
		}
	}
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	metrics.StoreOps.WithLabelValues("file", "get").Inc()
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	metrics.StoreOps.WithLabelValues("file", "set").Inc()
	if !json.Valid(value) {
		return fmt.Errorf("ключ %q: значение должно быть корректным JSON", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	return s.flush()
}

func (s *Store) Delete(_ context.Context, key string) error {
	metrics.StoreOps.WithLabelValues("file", "delete").Inc()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// flush пишет файл атомарно: tmp + rename. Вызывать под s.mu.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("запись %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("замена %s: %w", s.path, err)
	}
	return nil
}
