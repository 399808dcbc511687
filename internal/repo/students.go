package repo

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/storage"
)

type Students struct {
	store storage.Store
	log   *zap.SugaredLogger
	acts  *Activities
}

func NewStudents(store storage.Store, log *zap.SugaredLogger, acts *Activities) *Students {
	return &Students{store: store, log: log, acts: acts}
}

func (r *Students) All(ctx context.Context) ([]models.Student, error) {
	var list []models.Student
	if err := loadList(ctx, r.store, r.log, storage.KeyStudents, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Students) ByID(ctx context.Context, id string) (*models.Student, error) {
	list, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("ученик %s: %w", id, storage.ErrNotFound)
}

// Save заменяет хранимую запись с тем же id. Новых записей этот путь не
// создаёт: если ученика нет — ErrNotFound, коллекция не меняется.
func (r *Students) Save(ctx context.Context, st models.Student) error {
	if err := models.Validate(st); err != nil {
		return err
	}
	list, err := r.All(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == st.ID {
			list[i] = st
			return saveList(ctx, r.store, storage.KeyStudents, list)
		}
	}
	return fmt.Errorf("ученик %s: %w", st.ID, storage.ErrNotFound)
}

// SetGrade ставит балл за работу и пишет запись в журнал действий.
func (r *Students) SetGrade(ctx context.Context, studentID, assignment string, score int) error {
	if err := models.ValidateGrade(score); err != nil {
		return err
	}
	st, err := r.ByID(ctx, studentID)
	if err != nil {
		return err
	}
	st.Grades.Set(assignment, score)
	if err := r.Save(ctx, *st); err != nil {
		return err
	}

	if _, err := r.acts.Append(ctx, models.Activity{
		Type:        models.ActivityGrade,
		Description: fmt.Sprintf("Grade updated for %s - %s: %d", st.Name, assignment, score),
		Student:     st.Name,
		Class:       st.Class,
	}); err != nil {
		// журнал вторичен: оценка уже сохранена, поломку журнала не поднимаем
		r.log.Warnw("не удалось записать активность", "student", studentID, "err", err)
	}
	return nil
}

// SetAttendance ставит отметку за день, пересчитывает процент
// посещаемости и пишет запись в журнал действий. Существующая отметка за
// дату перезаписывается, новая добавляется в конец (порядок вставки, не
// по датам).
func (r *Students) SetAttendance(ctx context.Context, studentID, date string, status models.AttendanceStatus) error {
	if err := models.ValidateStatus(status); err != nil {
		return err
	}
	st, err := r.ByID(ctx, studentID)
	if err != nil {
		return err
	}

	found := false
	for i := range st.AttendanceRecord {
		if st.AttendanceRecord[i].Date == date {
			st.AttendanceRecord[i].Status = status
			found = true
			break
		}
	}
	if !found {
		st.AttendanceRecord = append(st.AttendanceRecord, models.AttendanceEntry{Date: date, Status: status})
	}

	// инвариант: attendance == round(100 * present / total)
	present := 0
	for _, e := range st.AttendanceRecord {
		if e.Status == models.Present {
			present++
		}
	}
	st.Attendance = int(math.Round(float64(present) / float64(len(st.AttendanceRecord)) * 100))

	if err := r.Save(ctx, *st); err != nil {
		return err
	}

	if _, err := r.acts.Append(ctx, models.Activity{
		Type:        models.ActivityAttendance,
		Description: fmt.Sprintf("Attendance marked for %s - %s: %s", st.Name, date, status),
		Student:     st.Name,
		Class:       st.Class,
	}); err != nil {
		r.log.Warnw("не удалось записать активность", "student", studentID, "err", err)
	}
	return nil
}
