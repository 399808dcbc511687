package repo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/storage"
)

// Журнал держим коротким: всё старше последних 50 записей отбрасывается.
const maxActivities = 50

type Activities struct {
	store storage.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewActivities(store storage.Store, log *zap.SugaredLogger) *Activities {
	return &Activities{store: store, log: log, now: time.Now}
}

// WithClock подменяет источник времени (тесты).
func (a *Activities) WithClock(now func() time.Time) *Activities {
	a.now = now
	return a
}

// Append вставляет запись в начало журнала (новые — первыми) и обрезает
// его до maxActivities. Пустому ID присваивается act_<unixmilli>.
func (a *Activities) Append(ctx context.Context, act models.Activity) (models.Activity, error) {
	if act.ID == "" {
		act.ID = fmt.Sprintf("act_%d", a.now().UnixMilli())
	}
	if act.Timestamp.IsZero() {
		act.Timestamp = a.now()
	}
	if err := models.Validate(act); err != nil {
		return models.Activity{}, err
	}

	list, err := a.List(ctx)
	if err != nil {
		return models.Activity{}, err
	}
	list = append([]models.Activity{act}, list...)
	if len(list) > maxActivities {
		list = list[:maxActivities]
	}
	if err := saveList(ctx, a.store, storage.KeyActivities, list); err != nil {
		return models.Activity{}, err
	}
	return act, nil
}

// List возвращает журнал как он хранится: новые записи первыми.
func (a *Activities) List(ctx context.Context) ([]models.Activity, error) {
	var list []models.Activity
	if err := loadList(ctx, a.store, a.log, storage.KeyActivities, &list); err != nil {
		return nil, err
	}
	return list, nil
}
