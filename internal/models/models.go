package models

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
	Late    AttendanceStatus = "late"
)

type ActivityType string

const (
	ActivityGrade        ActivityType = "grade_entry"
	ActivityAttendance   ActivityType = "attendance"
	ActivityAlert        ActivityType = "alert"
	ActivityIntervention ActivityType = "intervention"
)

// AttendanceEntry — отметка за один учебный день. Date в формате YYYY-MM-DD.
type AttendanceEntry struct {
	Date   string           `json:"date" validate:"required,datetime=2006-01-02"`
	Status AttendanceStatus `json:"status" validate:"oneof=present absent late"`
}

type Student struct {
	ID               string            `json:"id" validate:"required"`
	Name             string            `json:"name" validate:"required"`
	Email            string            `json:"email" validate:"required,email"`
	Class            string            `json:"class" validate:"required"`
	GPA              float64           `json:"gpa" validate:"gte=0,lte=4"`
	Attendance       int               `json:"attendance" validate:"gte=0,lte=100"`
	RiskLevel        RiskLevel         `json:"riskLevel" validate:"oneof=low medium high"`
	Grades           GradeMap          `json:"grades" validate:"-"`
	AttendanceRecord []AttendanceEntry `json:"attendance_record" validate:"dive"`
	BehaviorScore    float64           `json:"behavior_score" validate:"gte=0,lte=10"`
}

// Class описывает учебный курс. Состав класса НЕ хранится здесь:
// источник истины — поле Student.Class, список выводится запросом.
type Class struct {
	ID       string            `json:"id" validate:"required"`
	Name     string            `json:"name" validate:"required"`
	Teacher  string            `json:"teacher"`
	Schedule map[string]string `json:"schedule"`
}

type Assignment struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Class    string `json:"class" validate:"required"`
	DueDate  string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Type     string `json:"type" validate:"oneof=quiz exam project homework"`
	MaxScore int    `json:"maxScore" validate:"gt=0"`
}

// Activity — запись в журнале действий. ID генерируется от времени
// (act_<unixmilli>) и при быстрой серии вставок может повторяться —
// журнал это допускает.
type Activity struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type" validate:"oneof=grade_entry attendance alert intervention"`
	Description string       `json:"description" validate:"required"`
	Timestamp   time.Time    `json:"timestamp"`
	Class       string       `json:"class,omitempty"`
	Student     string       `json:"student,omitempty"`
}

type Goal struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Target      string `json:"target" validate:"required"`
	Deadline    string `json:"deadline" validate:"required,datetime=2006-01-02"`
	Description string `json:"description"`
	Progress    int    `json:"progress" validate:"gte=0,lte=100"`
}

// User — учётная запись. Пароль в локальном режиме хранится открытым
// текстом (известное ограничение демо-приложения, не чиним).
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Role       Role   `json:"role" validate:"oneof=teacher student"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	StudentID  string `json:"studentId,omitempty"`
	Department string `json:"department,omitempty"`
}
