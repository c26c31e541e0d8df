package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// ErrInvalidReference is returned when a foreign key names a parent that does not exist
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// College errors
var (
	ErrCollegeNotFound      = NewCustomError(ErrResourceNotFound, "college not found")
	ErrCollegeAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "College Code already exists in records.")
)

// Program errors
var (
	ErrProgramNotFound      = NewCustomError(ErrResourceNotFound, "program not found")
	ErrProgramAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "Program Code already exists in records.")
)

// Student errors
var (
	ErrStudentNotFound      = NewCustomError(ErrResourceNotFound, "student not found")
	ErrStudentAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "ID Number already exists in records.")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewInvalidReferenceError reports a foreign key that names no existing parent.
func NewInvalidReferenceError(field, message string) error {
	return (&CustomError{
		Err:     ErrInvalidReference,
		Message: message,
	}).WithDetails(map[string]interface{}{"field": field})
}

// FieldError describes a single invalid form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidationError bundles field errors under ErrValidationFailed.
func NewValidationError(message string, fields ...FieldError) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Fields:  fields,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Fields  []FieldError
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// FieldErrors extracts field errors carried anywhere in err's chain.
func FieldErrors(err error) []FieldError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Fields
	}
	return nil
}
