package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrValidation возвращается при нарушении границ полей (gpa 0–4,
// посещаемость 0–100, оценка 0–100 и т.п.). Исходное приложение таких
// проверок на этом слое не имело — здесь они вынесены на границу модели.
var ErrValidation = errors.New("ошибка валидации")

var validate = validator.New()

func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ValidateGrade — границы балла за работу.
func ValidateGrade(score int) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("%w: балл %d вне диапазона 0–100", ErrValidation, score)
	}
	return nil
}

// ValidateStatus — допустимые статусы посещаемости.
func ValidateStatus(s AttendanceStatus) error {
	switch s {
	case Present, Absent, Late:
		return nil
	}
	return fmt.Errorf("%w: неизвестный статус %q", ErrValidation, s)
}
