// Package analytics считает сводную статистику и рекомендации по ученикам.
// Слой читает данные только через репозиторий и сам ничего не пишет.
package analytics

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/Spok95/school-dashboard/internal/models"
	"github.com/Spok95/school-dashboard/internal/repo"
)

type Stats struct {
	TotalStudents     int     `json:"totalStudents"`
	AverageGPA        float64 `json:"averageGPA"`
	AverageAttendance int     `json:"averageAttendance"`
	AtRiskCount       int     `json:"atRiskCount"`
}

type Recommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

type Intervention struct {
	StudentID       string           `json:"studentId"`
	StudentName     string           `json:"studentName"`
	Priority        models.RiskLevel `json:"priority"`
	Recommendations []Recommendation `json:"recommendations"`
}

type Engine struct {
	students *repo.Students
}

func New(students *repo.Students) *Engine {
	return &Engine{students: students}
}

// ClassStatistics — сводка по одному классу. Пустой класс — нулевая
// сводка, не ошибка.
func (e *Engine) ClassStatistics(ctx context.Context, classID string) (Stats, error) {
	all, err := e.students.All(ctx)
	if err != nil {
		return Stats{}, err
	}
	var filtered []models.Student
	for _, st := range all {
		if st.Class == classID {
			filtered = append(filtered, st)
		}
	}
	return compute(filtered), nil
}

// OverallStatistics — та же сводка по всем ученикам.
func (e *Engine) OverallStatistics(ctx context.Context) (Stats, error) {
	all, err := e.students.All(ctx)
	if err != nil {
		return Stats{}, err
	}
	return compute(all), nil
}

func compute(students []models.Student) Stats {
	if len(students) == 0 {
		return Stats{}
	}
	var gpa float64
	var attendance, highRisk int
	for _, st := range students {
		gpa += st.GPA
		attendance += st.Attendance
		if st.RiskLevel == models.RiskHigh {
			highRisk++
		}
	}
	n := float64(len(students))
	return Stats{
		TotalStudents:     len(students),
		AverageGPA:        math.Round(gpa/n*100) / 100,
		AverageAttendance: int(math.Round(float64(attendance) / n)),
		AtRiskCount:       highRisk,
	}
}

// AtRiskStudents — ученики с riskLevel medium или high, в порядке
// хранения (без сортировки).
func (e *Engine) AtRiskStudents(ctx context.Context) ([]models.Student, error) {
	all, err := e.students.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Student, 0, len(all))
	for _, st := range all {
		if st.RiskLevel == models.RiskMedium || st.RiskLevel == models.RiskHigh {
			out = append(out, st)
		}
	}
	return out, nil
}

// Пороговые значения правил вмешательств.
const (
	attendanceThreshold = 80
	gradeThreshold      = 70.0
	behaviorThreshold   = 7.0
)

// Interventions строит рекомендации для учеников в зоне риска. Правила
// независимы; ученик без единого сработавшего правила в выдачу не
// попадает. Приоритет — riskLevel ученика как есть.
func (e *Engine) Interventions(ctx context.Context) ([]Intervention, error) {
	atRisk, err := e.AtRiskStudents(ctx)
	if err != nil {
		return nil, err
	}

	var out []Intervention
	for _, st := range atRisk {
		iv := Intervention{
			StudentID:   st.ID,
			StudentName: st.Name,
			Priority:    st.RiskLevel,
		}

		if st.Attendance < attendanceThreshold {
			iv.Recommendations = append(iv.Recommendations, Recommendation{
				Type:  "attendance",
				Title: "Improve Attendance",
				Description: fmt.Sprintf(
					"%s has %d%% attendance. Consider meeting with student and parents to address attendance issues.",
					st.Name, st.Attendance),
				Action: "Schedule parent conference",
			})
		}

		// среднее считается по имеющимся оценкам; без оценок правило
		// не срабатывает (иначе деление на ноль)
		if mean, ok := st.Grades.Mean(); ok && mean < gradeThreshold {
			iv.Recommendations = append(iv.Recommendations, Recommendation{
				Type:  "academic",
				Title: "Academic Support",
				Description: fmt.Sprintf(
					"%s has an average grade of %.1f%%. Consider additional tutoring or study support.",
					st.Name, mean),
				Action: "Arrange tutoring sessions",
			})
		}

		if st.BehaviorScore < behaviorThreshold {
			iv.Recommendations = append(iv.Recommendations, Recommendation{
				Type:  "behavior",
				Title: "Behavioral Support",
				Description: fmt.Sprintf(
					"%s has a behavior score of %s/10. Consider behavioral intervention strategies.",
					st.Name, strconv.FormatFloat(st.BehaviorScore, 'f', -1, 64)),
				Action: "Implement behavior plan",
			})
		}

		if len(iv.Recommendations) > 0 {
			out = append(out, iv)
		}
	}
	return out, nil
}
