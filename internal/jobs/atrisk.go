package jobs

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Spok95/school-dashboard/internal/analytics"
	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/repo"
	"github.com/Spok95/school-dashboard/internal/tg"
)

// AtRiskScanner периодически строит рекомендации и отмечает в журнале
// учеников, впервые попавших в зону риска. riskLevel при этом не
// переписывается — он назначается вручную.
type AtRiskScanner struct {
	engine *analytics.Engine
	acts   *repo.Activities
	notify *tg.Notifier // nil — уведомления выключены
	log    *zap.SugaredLogger

	// в рамках жизни процесса — чтобы не плодить дубликаты при каждом тике
	flagged map[string]bool
}

func NewAtRiskScanner(engine *analytics.Engine, acts *repo.Activities, notify *tg.Notifier, log *zap.SugaredLogger) *AtRiskScanner {
	return &AtRiskScanner{
		engine:  engine,
		acts:    acts,
		notify:  notify,
		log:     log,
		flagged: make(map[string]bool),
	}
}

func (s *AtRiskScanner) Run(ctx context.Context) error {
	interventions, err := s.engine.Interventions(ctx)
	if err != nil {
		return err
	}

	var fresh []analytics.Intervention
	for _, iv := range interventions {
		if s.flagged[iv.StudentID] {
			continue
		}
		s.flagged[iv.StudentID] = true
		fresh = append(fresh, iv)

		if _, err := s.acts.Append(ctx, models.Activity{
			Type:        models.ActivityIntervention,
			Description: fmt.Sprintf("Interventions recommended for %s (%d)", iv.StudentName, len(iv.Recommendations)),
			Student:     iv.StudentName,
		}); err != nil {
			s.log.Warnw("не удалось записать активность по вмешательству", "student", iv.StudentID, "err", err)
		}
	}

	if len(fresh) > 0 && s.notify != nil {
		s.notify.Broadcast(summary(fresh))
	}
	return nil
}

func summary(interventions []analytics.Intervention) string {
	var b strings.Builder
	b.WriteString("⚠️ Ученики в зоне риска:\n")
	for _, iv := range interventions {
		types := make([]string, 0, len(iv.Recommendations))
		for _, rec := range iv.Recommendations {
			types = append(types, rec.Type)
		}
		fmt.Fprintf(&b, "— %s (%s): %s\n", iv.StudentName, iv.Priority, strings.Join(types, ", "))
	}
	return b.String()
}
