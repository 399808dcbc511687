package repo

import (
	"context"

	"go.uber.org/zap"

	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/storage"
)

type Assignments struct {
	store storage.Store
	log   *zap.SugaredLogger
}

func NewAssignments(store storage.Store, log *zap.SugaredLogger) *Assignments {
	return &Assignments{store: store, log: log}
}

func (r *Assignments) All(ctx context.Context) ([]models.Assignment, error) {
	var list []models.Assignment
	if err := loadList(ctx, r.store, r.log, storage.KeyAssignments, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Assignments) ByClass(ctx context.Context, classID string) ([]models.Assignment, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Assignment, 0, len(all))
	for _, a := range all {
		if a.Class == classID {
			out = append(out, a)
		}
	}
	return out, nil
}
