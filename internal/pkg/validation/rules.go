package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Names may hold letters, spaces and hyphens
	NamePattern = `^[A-Za-z\s\-]+$`

	// ID numbers hold digits and hyphens
	IDNumberPattern = `^[0-9\-]+$`

	// Digits an ID number must carry once hyphens are removed
	IDNumberDigits = 8
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Name     *regexp.Regexp
	IDNumber *regexp.Regexp
}{
	Name:     regexp.MustCompile(NamePattern),
	IDNumber: regexp.MustCompile(IDNumberPattern),
}

// Custom validation tags
const (
	LettersTag  = "letters"
	IDNumberTag = "idnumber"
)

// MissingFieldsMessage is reported when any required field is empty.
const MissingFieldsMessage = "Please input all necessary information"

// New builds a validator with the registry's custom tags. Field names in
// errors are the JSON names.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(LettersTag, func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Name.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation(IDNumberTag, func(fl validator.FieldLevel) bool {
		return IsIDNumber(fl.Field().String())
	})

	return v
}

// IsIDNumber reports whether s is digits and hyphens with exactly eight digits.
func IsIDNumber(s string) bool {
	if !CompiledPatterns.IDNumber.MatchString(s) {
		return false
	}
	return len(strings.ReplaceAll(s, "-", "")) == IDNumberDigits
}

// Check validates record and converts failures into an apperrors validation
// error. A missing field wins over format problems.
func Check(v *validator.Validate, entity models.Entity, record interface{}) error {
	err := v.Struct(record)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	schema := models.SchemaFor(entity)
	missing := false
	fields := make([]apperrors.FieldError, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" && fe.Kind() != reflect.Int {
			missing = true
		}
		msg := Message(schema, fe)
		fields = append(fields, apperrors.FieldError{Field: fe.Field(), Message: msg})
		messages = append(messages, msg)
	}

	if missing {
		return apperrors.NewValidationError(MissingFieldsMessage, fields...)
	}
	return apperrors.NewValidationError(strings.Join(messages, "\n"), fields...)
}

// Message creates a human-readable validation error message
func Message(schema *models.Schema, e validator.FieldError) string {
	label := e.Field()
	if f, ok := schema.Lookup(e.Field()); ok {
		label = f.Label
	}

	switch e.Tag() {
	case "required":
		if e.Kind() == reflect.Int {
			return label + " cannot be 0"
		}
		return label + " is required"
	case "min":
		return label + " must be at least " + e.Param()
	case LettersTag:
		return label + " must contain only letters"
	case IDNumberTag:
		return label + " must contain 8 digits"
	default:
		return label + " validation failed: " + e.Tag()
	}
}
