package seed

import (
	"math/rand"
	"time"

	"github.com/Spok95/school-dashboard/internal/models"
)

// Начало диапазона демо-посещаемости (как в исходных данных).
var attendanceStart = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// GenerateAttendanceRecord строит отметки по будним дням от
// attendanceStart до until включительно. Розыгрыш статуса:
// бросок < rate — present; иначе второй бросок < 0.7 — absent, иначе late.
func GenerateAttendanceRecord(r *rand.Rand, until time.Time, rate float64) []models.AttendanceEntry {
	var record []models.AttendanceEntry

	until = time.Date(until.Year(), until.Month(), until.Day(), 0, 0, 0, 0, time.UTC)
	for d := attendanceStart; !d.After(until); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		status := models.Present
		if r.Float64() >= rate {
			if r.Float64() < 0.7 {
				status = models.Absent
			} else {
				status = models.Late
			}
		}
		record = append(record, models.AttendanceEntry{
			Date:   d.Format("2006-01-02"),
			Status: status,
		})
	}
	return record
}
