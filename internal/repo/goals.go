package repo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/storage"
)

// Goals — цели, которые ученик заводит себе сам в личном кабинете.
type Goals struct {
	store storage.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewGoals(store storage.Store, log *zap.SugaredLogger) *Goals {
	return &Goals{store: store, log: log, now: time.Now}
}

func (r *Goals) WithClock(now func() time.Time) *Goals {
	r.now = now
	return r
}

func (r *Goals) List(ctx context.Context) ([]models.Goal, error) {
	var list []models.Goal
	if err := loadList(ctx, r.store, r.log, storage.KeyGoals, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Save создаёт цель (пустой ID) или заменяет существующую по ID.
func (r *Goals) Save(ctx context.Context, g models.Goal) (models.Goal, error) {
	if g.ID == "" {
		g.ID = fmt.Sprintf("goal_%d", r.now().UnixMilli())
	}
	if err := models.Validate(g); err != nil {
		return models.Goal{}, err
	}

	list, err := r.List(ctx)
	if err != nil {
		return models.Goal{}, err
	}
	replaced := false
	for i := range list {
		if list[i].ID == g.ID {
			list[i] = g
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, g)
	}
	if err := saveList(ctx, r.store, storage.KeyGoals, list); err != nil {
		return models.Goal{}, err
	}
	return g, nil
}

func (r *Goals) Delete(ctx context.Context, id string) error {
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	out := list[:0]
	found := false
	for _, g := range list {
		if g.ID == id {
			found = true
			continue
		}
		out = append(out, g)
	}
	if !found {
		return fmt.Errorf("цель %s: %w", id, storage.ErrNotFound)
	}
	return saveList(ctx, r.store, storage.KeyGoals, out)
}
