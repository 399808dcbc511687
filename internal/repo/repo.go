// Package repo — CRUD-доступ к коллекциям хранилища.
//
// Каждое чтение материализует свежую копию коллекции из JSON, каждая
// запись сериализует коллекцию целиком обратно. Копии независимы:
// изменения видны другим читателям только после записи через репозиторий.
package repo

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Spok95/school-dashboard/internal/ctxutil"
	"github.com/Spok95/school-dashboard/internal/storage"
)

// ErrDuplicate — попытка завести запись с уже занятым уникальным полем.
var ErrDuplicate = errors.New("запись уже существует")

// loadList читает коллекцию-список. Отсутствие ключа — пустой список.
// Повреждённый JSON тоже восстанавливаем как пустую коллекцию (с warn в
// лог): схемы и миграций у хранилища нет, падать процессу не из-за чего.
func loadList(ctx context.Context, s storage.Store, log *zap.SugaredLogger, key string, out any) error {
	ctx, cancel := ctxutil.WithStoreTimeout(ctx)
	defer cancel()
	err := storage.GetJSON(ctx, s, key, out)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if errors.Is(err, storage.ErrCorrupt) {
		log.Warnw("повреждённая коллекция, читаем как пустую", "key", key, "err", err)
		return nil
	}
	return err
}

// saveList пишет коллекцию целиком под стандартным таймаутом хранилища.
func saveList(ctx context.Context, s storage.Store, key string, v any) error {
	ctx, cancel := ctxutil.WithStoreTimeout(ctx)
	defer cancel()
	return storage.SetJSON(ctx, s, key, v)
}
