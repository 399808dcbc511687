package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/school-dashboard/internal/analytics"
	"github.com/Spok95/school-dashboard/internal/models"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

type PerformanceWorkbook struct {
	File *excelize.File
}

// ClassRow — строка листа статистики: класс плюс его сводка.
type ClassRow struct {
	Class models.Class
	Stats analytics.Stats
}

// NewPerformanceWorkbook собирает отчёт об успеваемости: ученики,
// сводка по классам, рекомендованные вмешательства.
func NewPerformanceWorkbook(students []models.Student, classes []ClassRow, interventions []analytics.Intervention) (*PerformanceWorkbook, error) {
	sheets := []SheetSpec{
		studentsSheet(students),
		classStatsSheet(classes),
		interventionsSheet(interventions),
	}
	return newWorkbook(sheets)
}

func studentsSheet(students []models.Student) SheetSpec {
	s := SheetSpec{
		Title:  "Students",
		Header: []string{"ID", "Name", "Class", "GPA", "Attendance %", "Risk", "Behavior", "Avg grade"},
	}
	for _, st := range students {
		avg := "—"
		if m, ok := st.Grades.Mean(); ok {
			avg = strconv.FormatFloat(m, 'f', 1, 64)
		}
		s.Rows = append(s.Rows, []string{
			st.ID,
			st.Name,
			st.Class,
			strconv.FormatFloat(st.GPA, 'f', 2, 64),
			strconv.Itoa(st.Attendance),
			string(st.RiskLevel),
			strconv.FormatFloat(st.BehaviorScore, 'f', 1, 64),
			avg,
		})
	}
	return s
}

func classStatsSheet(classes []ClassRow) SheetSpec {
	s := SheetSpec{
		Title:  "Class stats",
		Header: []string{"Class", "Name", "Teacher", "Students", "Avg GPA", "Avg attendance %", "High risk"},
	}
	for _, c := range classes {
		s.Rows = append(s.Rows, []string{
			c.Class.ID,
			c.Class.Name,
			c.Class.Teacher,
			strconv.Itoa(c.Stats.TotalStudents),
			strconv.FormatFloat(c.Stats.AverageGPA, 'f', 2, 64),
			strconv.Itoa(c.Stats.AverageAttendance),
			strconv.Itoa(c.Stats.AtRiskCount),
		})
	}
	return s
}

func interventionsSheet(interventions []analytics.Intervention) SheetSpec {
	s := SheetSpec{
		Title:  "Interventions",
		Header: []string{"Student", "Priority", "Type", "Recommendation", "Action"},
	}
	for _, iv := range interventions {
		for _, rec := range iv.Recommendations {
			s.Rows = append(s.Rows, []string{
				iv.StudentName,
				string(iv.Priority),
				rec.Type,
				rec.Description,
				rec.Action,
			})
		}
	}
	return s
}

func newWorkbook(sheets []SheetSpec) (*PerformanceWorkbook, error) {
	f := excelize.NewFile()

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("new sheet: %w", err)
			}
		}
		// заголовки
		for col, h := range s.Header {
			cell := fmt.Sprintf("%s1", colName(col+1))
			if err := f.SetCellStr(name, cell, h); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		// стиль заголовков + автофильтр
		end := colName(len(s.Header)) + "1"
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)

		// строки
		for r, row := range s.Rows {
			for c, val := range row {
				cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
				if err := f.SetCellStr(name, cell, val); err != nil {
					return nil, fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}
		// эвристическая ширина: по длине заголовка и первых строк
		for c := 1; c <= len(s.Header); c++ {
			maxim := len(s.Header[c-1])
			for r := 0; r < minim(50, len(s.Rows)); r++ {
				if l := len(s.Rows[r][c-1]); l > maxim {
					maxim = l
				}
			}
			w := float64(maxim) * 0.9
			if w < 12 {
				w = 12
			}
			if w > 60 {
				w = 60
			}
			_ = f.SetColWidth(name, colName(c), colName(c), w)
		}
	}
	return &PerformanceWorkbook{File: f}, nil
}

// BuildReportFilename — человекочитаемое имя файла отчёта.
func BuildReportFilename(now time.Time) string {
	return fmt.Sprintf("performance-report-%s.xlsx", now.Format("2006-01-02"))
}

func colName(n int) string {
	// 1 -> A; 27 -> AA
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}
