package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/yigit/ssis/internal/app/models/dto"
	"github.com/yigit/ssis/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
		wantMsg    string
		wantField  string
	}{
		{
			name:       "not found",
			err:        apperrors.ErrStudentNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrorCodeResourceNotFound,
			wantMsg:    "student not found",
		},
		{
			name:       "already exists",
			err:        fmt.Errorf("error creating college: %w", apperrors.ErrCollegeAlreadyExists),
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrorCodeResourceAlreadyExists,
			wantMsg:    "College Code already exists in records.",
		},
		{
			name:       "validation",
			err:        apperrors.NewValidationError("ID Number must contain 8 digits", apperrors.FieldError{Field: "id_number", Message: "ID Number must contain 8 digits"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidationFailed,
			wantMsg:    "ID Number must contain 8 digits",
			wantField:  "id_number",
		},
		{
			name:       "bad request",
			err:        apperrors.NewBadRequestError("unknown search field"),
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeBadRequest,
			wantMsg:    "unknown search field",
		},
		{
			name:       "invalid reference",
			err:        apperrors.NewInvalidReferenceError("program_code", "Program Code BSXX does not exist"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   dto.ErrorCodeInvalidReference,
			wantMsg:    "Program Code BSXX does not exist",
			wantField:  "program_code",
		},
		{
			name:       "unknown",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrorCodeInternalServer,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)

			HandleAPIError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp dto.APIResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Success || resp.Error == nil {
				t.Fatalf("response = %s, want an error envelope", w.Body.String())
			}
			if resp.Error.Code != tt.wantCode || resp.Error.Message != tt.wantMsg {
				t.Fatalf("error = %+v, want %s %q", resp.Error, tt.wantCode, tt.wantMsg)
			}
			if resp.Error.Field != tt.wantField {
				t.Fatalf("field = %q, want %q", resp.Error.Field, tt.wantField)
			}
		})
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(), Recovery())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("missing generated request ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request ID = %q, want the client's", got)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("panic status = %d, want 500", w.Code)
	}
}
