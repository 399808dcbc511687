package repo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/storage"
)

type Classes struct {
	store    storage.Store
	log      *zap.SugaredLogger
	students *Students
}

func NewClasses(store storage.Store, log *zap.SugaredLogger, students *Students) *Classes {
	return &Classes{store: store, log: log, students: students}
}

func (r *Classes) All(ctx context.Context) ([]models.Class, error) {
	var list []models.Class
	if err := loadList(ctx, r.store, r.log, storage.KeyClasses, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Classes) ByID(ctx context.Context, id string) (*models.Class, error) {
	list, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("класс %s: %w", id, storage.ErrNotFound)
}

// Students возвращает состав класса. Источник истины — поле class у
// ученика; отдельного хранимого списка участников у класса нет.
func (r *Classes) Students(ctx context.Context, classID string) ([]models.Student, error) {
	all, err := r.students.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Student, 0, len(all))
	for _, st := range all {
		if st.Class == classID {
			out = append(out, st)
		}
	}
	return out, nil
}
