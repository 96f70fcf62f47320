package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/ielts-center/grading-service/internal/errors"
	"github.com/ielts-center/grading-service/internal/models"
)

// Validator wraps go-playground/validator with the custom rules used by
// the grading API.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Report json tag names in validation errors, not struct fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("question_type", validateQuestionType)
	v.RegisterValidation("exam_section", validateSection)

	return &Validator{validate: v}
}

func (v *Validator) Validate(s any) error {
	if err := v.validate.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func validateQuestionType(fl validator.FieldLevel) bool {
	switch models.QuestionType(fl.Field().String()) {
	case models.MultipleChoice, models.MultipleSelection, models.Matching,
		models.ShortAnswer, models.MapLabeling, models.Essay:
		return true
	}
	return false
}

func validateSection(fl validator.FieldLevel) bool {
	switch models.Section(fl.Field().String()) {
	case models.SectionReading, models.SectionListening, models.SectionWriting:
		return true
	}
	return false
}
