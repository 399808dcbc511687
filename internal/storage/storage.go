package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Ключи коллекций. Раскладка повторяет localStorage исходного веб-приложения:
// каждая коллекция — единый JSON-документ под фиксированным ключом.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyStudents    = "students"
	KeyClasses     = "classes"
	KeyAssignments = "assignments"
	KeyActivities  = "activities"
	KeyGoals       = "studentGoals"
)

var (
	ErrNotFound = errors.New("запись не найдена")
	ErrCorrupt  = errors.New("повреждённое значение в хранилище")
)

// Store — key-value хранилище коллекций. Реализации не обязаны быть
// безопасными для конкурентных read-modify-write последовательностей:
// побеждает последняя запись, версии не проверяются.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// GetJSON декодирует значение по ключу в out.
// Отсутствие ключа — ErrNotFound, нечитаемый JSON — ErrCorrupt.
func GetJSON(ctx context.Context, s Store, key string, out any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: ключ %q: %v", ErrCorrupt, key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("кодирование %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// Exists — есть ли в хранилище значение по ключу.
func Exists(ctx context.Context, s Store, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
