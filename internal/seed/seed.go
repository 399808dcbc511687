// Package seed наполняет хранилище демо-данными при первом запуске.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/storage"
)

type Options struct {
	// Now — правая граница диапазона посещаемости ("сегодня").
	Now time.Time
	// Rand — источник случайности для генерации посещаемости.
	// nil — сид от времени, как в исходном приложении (прогоны
	// невоспроизводимы); тесты передают фиксированный сид.
	Rand *rand.Rand
	// DefaultRate — базовая доля "present" там, где у ученика нет своей.
	// Ноль и отрицательные значения означают "взять 0.9": явный нулевой
	// rate через этот структ не выражается.
	DefaultRate float64
}

// Run идемпотентен: каждая коллекция заливается только если её ключа ещё
// нет в хранилище. Существующие коллекции не трогаем ни при каком
// повторном вызове — никакого слияния.
func Run(ctx context.Context, store storage.Store, log *zap.SugaredLogger, opts Options) error {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.DefaultRate <= 0 {
		opts.DefaultRate = 0.9
	}

	seeded := 0
	collections := []struct {
		key   string
		build func() any
	}{
		{storage.KeyUsers, func() any { return sampleUsers() }},
		{storage.KeyStudents, func() any { return sampleStudents(opts) }},
		{storage.KeyClasses, func() any { return sampleClasses() }},
		{storage.KeyAssignments, func() any { return sampleAssignments() }},
		{storage.KeyActivities, func() any { return sampleActivities(opts.Now) }},
		{storage.KeyGoals, func() any { return sampleGoals() }},
	}
	for _, c := range collections {
		ok, err := storage.Exists(ctx, store, c.key)
		if err != nil {
			return fmt.Errorf("проверка %q: %w", c.key, err)
		}
		if ok {
			continue
		}
		if err := storage.SetJSON(ctx, store, c.key, c.build()); err != nil {
			return fmt.Errorf("заливка %q: %w", c.key, err)
		}
		seeded++
	}
	if seeded > 0 {
		log.Infow("демо-данные загружены", "collections", seeded)
	}
	return nil
}

func sampleUsers() []models.User {
	return []models.User{
		{
			ID: "teacher1", Email: "teacher@demo.com", Password: "demo123",
			Role: models.RoleTeacher, FirstName: "John", LastName: "Smith",
			Department: "mathematics",
		},
		{
			ID: "student1", Email: "student@demo.com", Password: "demo123",
			Role: models.RoleStudent, FirstName: "Alice", LastName: "Johnson",
			StudentID: "STU001",
		},
		{
			ID: "student2", Email: "bob@demo.com", Password: "demo123",
			Role: models.RoleStudent, FirstName: "Bob", LastName: "Wilson",
			StudentID: "STU002",
		},
	}
}

func sampleStudents(opts Options) []models.Student {
	return []models.Student{
		{
			ID: "STU001", Name: "Alice Johnson", Email: "alice@school.edu",
			Class: "math101", GPA: 3.8, Attendance: 92, RiskLevel: models.RiskLow,
			Grades: models.NewGradeMap(
				models.GradePair{Assignment: "quiz1", Score: 85},
				models.GradePair{Assignment: "midterm", Score: 88},
				models.GradePair{Assignment: "project1", Score: 92},
				models.GradePair{Assignment: "final", Score: 90},
			),
			AttendanceRecord: GenerateAttendanceRecord(opts.Rand, opts.Now, opts.DefaultRate),
			BehaviorScore:    8.5,
		},
		{
			ID: "STU002", Name: "Bob Wilson", Email: "bob@school.edu",
			Class: "math101", GPA: 2.9, Attendance: 78, RiskLevel: models.RiskMedium,
			Grades: models.NewGradeMap(
				models.GradePair{Assignment: "quiz1", Score: 75},
				models.GradePair{Assignment: "midterm", Score: 72},
				models.GradePair{Assignment: "project1", Score: 68},
				models.GradePair{Assignment: "final", Score: 70},
			),
			AttendanceRecord: GenerateAttendanceRecord(opts.Rand, opts.Now, 0.78),
			BehaviorScore:    6.2,
		},
		{
			ID: "STU003", Name: "Carol Davis", Email: "carol@school.edu",
			Class: "science102", GPA: 3.9, Attendance: 95, RiskLevel: models.RiskLow,
			Grades: models.NewGradeMap(
				models.GradePair{Assignment: "quiz1", Score: 95},
				models.GradePair{Assignment: "midterm", Score: 93},
				models.GradePair{Assignment: "project1", Score: 96},
				models.GradePair{Assignment: "final", Score: 94},
			),
			AttendanceRecord: GenerateAttendanceRecord(opts.Rand, opts.Now, 0.95),
			BehaviorScore:    9.1,
		},
		{
			ID: "STU004", Name: "David Brown", Email: "david@school.edu",
			Class: "english103", GPA: 2.3, Attendance: 65, RiskLevel: models.RiskHigh,
			Grades: models.NewGradeMap(
				models.GradePair{Assignment: "quiz1", Score: 60},
				models.GradePair{Assignment: "midterm", Score: 55},
				models.GradePair{Assignment: "project1", Score: 62},
				models.GradePair{Assignment: "final", Score: 58},
			),
			AttendanceRecord: GenerateAttendanceRecord(opts.Rand, opts.Now, 0.65),
			BehaviorScore:    5.8,
		},
		{
			ID: "STU005", Name: "Emma Taylor", Email: "emma@school.edu",
			Class: "math101", GPA: 3.6, Attendance: 88, RiskLevel: models.RiskLow,
			Grades: models.NewGradeMap(
				models.GradePair{Assignment: "quiz1", Score: 82},
				models.GradePair{Assignment: "midterm", Score: 85},
				models.GradePair{Assignment: "project1", Score: 89},
				models.GradePair{Assignment: "final", Score: 87},
			),
			AttendanceRecord: GenerateAttendanceRecord(opts.Rand, opts.Now, 0.88),
			BehaviorScore:    8.0,
		},
	}
}

func sampleClasses() []models.Class {
	return []models.Class{
		{
			ID: "math101", Name: "Mathematics 101", Teacher: "John Smith",
			Schedule: map[string]string{
				"monday":    "09:00-10:30",
				"wednesday": "09:00-10:30",
				"friday":    "09:00-10:30",
			},
		},
		{
			ID: "science102", Name: "Science 102", Teacher: "John Smith",
			Schedule: map[string]string{
				"tuesday":  "11:00-12:30",
				"thursday": "11:00-12:30",
			},
		},
		{
			ID: "english103", Name: "English 103", Teacher: "John Smith",
			Schedule: map[string]string{
				"monday":    "14:00-15:30",
				"wednesday": "14:00-15:30",
			},
		},
	}
}

func sampleAssignments() []models.Assignment {
	return []models.Assignment{
		{ID: "quiz1", Name: "Quiz 1", Class: "math101", DueDate: "2025-02-15", Type: "quiz", MaxScore: 100},
		{ID: "midterm", Name: "Midterm Exam", Class: "math101", DueDate: "2025-03-15", Type: "exam", MaxScore: 100},
		{ID: "project1", Name: "Project 1", Class: "math101", DueDate: "2025-04-01", Type: "project", MaxScore: 100},
		{ID: "final", Name: "Final Exam", Class: "math101", DueDate: "2025-05-15", Type: "exam", MaxScore: 100},
	}
}

func sampleActivities(now time.Time) []models.Activity {
	return []models.Activity{
		{
			ID: "act1", Type: models.ActivityGrade,
			Description: "Grades entered for Quiz 1",
			Timestamp:   now.Add(-2 * time.Hour), Class: "math101",
		},
		{
			ID: "act2", Type: models.ActivityAttendance,
			Description: "Attendance marked for today",
			Timestamp:   now.Add(-6 * time.Hour), Class: "science102",
		},
		{
			ID: "act3", Type: models.ActivityAlert,
			Description: "Student flagged as at-risk",
			Timestamp:   now.Add(-24 * time.Hour), Student: "David Brown",
		},
	}
}

func sampleGoals() []models.Goal {
	return []models.Goal{
		{
			ID: "goal1", Title: "Improve Math GPA", Type: "Academic", Target: "3.8",
			Progress: 75, Deadline: "2025-05-15",
			Description: "Achieve a GPA of 3.8 or higher in Mathematics",
		},
		{
			ID: "goal2", Title: "Perfect Attendance", Type: "Attendance", Target: "100%",
			Progress: 92, Deadline: "2025-03-30",
			Description: "Maintain 100% attendance for the semester",
		},
	}
}
