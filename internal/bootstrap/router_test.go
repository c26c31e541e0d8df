package bootstrap

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/models/dto"
	"github.com/yigit/ssis/internal/storage/csvstore"
	"github.com/yigit/ssis/internal/storage/storagetest"
)

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func newTestRouter(t *testing.T, mode models.CascadeMode) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := csvstore.New(t.TempDir(), mode)
	if err != nil {
		t.Fatalf("open csv store: %v", err)
	}
	storagetest.Seed(t, store)
	return NewRouter(BuildDependencies(store, zerolog.Nop()))
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func TestRouterStatusMapping(t *testing.T) {
	router := newTestRouter(t, models.CascadeNullify)

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"ping", http.MethodGet, "/api/v1/ping", nil, http.StatusOK, ""},
		{"counts", http.MethodGet, "/api/v1/counts", nil, http.StatusOK, ""},
		{"get student", http.MethodGet, "/api/v1/students/2023-0001", nil, http.StatusOK, ""},
		{"get missing student", http.MethodGet, "/api/v1/students/1999-0000", nil, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{
			name: "create college", method: http.MethodPost, path: "/api/v1/colleges",
			body:       models.College{Code: "CON", Name: "College of Nursing"},
			wantStatus: http.StatusCreated,
		},
		{
			name: "duplicate college", method: http.MethodPost, path: "/api/v1/colleges",
			body:       models.College{Code: "ccs", Name: "Computer Studies"},
			wantStatus: http.StatusConflict, wantCode: dto.ErrorCodeResourceAlreadyExists,
		},
		{
			name: "invalid name", method: http.MethodPost, path: "/api/v1/colleges",
			body:       models.College{Code: "CX1", Name: "College 9"},
			wantStatus: http.StatusBadRequest, wantCode: dto.ErrorCodeValidationFailed,
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/api/v1/students",
			body:       `{"id_number":`,
			wantStatus: http.StatusBadRequest, wantCode: dto.ErrorCodeBadRequest,
		},
		{
			name: "missing parent", method: http.MethodPost, path: "/api/v1/programs",
			body:       models.Program{Code: "BSN", Name: "Nursing", CollegeCode: models.StringPtr("NOPE")},
			wantStatus: http.StatusUnprocessableEntity, wantCode: dto.ErrorCodeInvalidReference,
		},
		{
			name: "unknown search field", method: http.MethodGet, path: "/api/v1/students?search_field=Shoe+Size&search_value=9",
			wantStatus: http.StatusBadRequest, wantCode: dto.ErrorCodeBadRequest,
		},
		{
			name: "update missing", method: http.MethodPut, path: "/api/v1/programs/BSXX",
			body:       models.Program{Code: "BSXX", Name: "Unknown", CollegeCode: models.StringPtr("CCS")},
			wantStatus: http.StatusNotFound, wantCode: dto.ErrorCodeResourceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, router, tt.method, tt.path, tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body error %+v)", status, tt.wantStatus, env.Error)
			}
			if tt.wantCode == "" {
				if !env.Success {
					t.Fatalf("expected success envelope, got %+v", env.Error)
				}
				return
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Fatalf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestRouterListEnvelope(t *testing.T) {
	router := newTestRouter(t, models.CascadeNullify)

	status, env := do(t, router, http.MethodGet, "/api/v1/students?size=3&sort_field=Year+Level&sort_order=asc", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var page models.Page[*models.Student]
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	want := models.Pagination{CurrentPage: 1, TotalPages: 2, PageSize: 3, TotalItems: 4}
	if page.Pagination != want {
		t.Fatalf("pagination = %+v, want %+v", page.Pagination, want)
	}
	var got []int
	for _, s := range page.Items {
		got = append(got, s.YearLevel)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("year levels = %v, want [1 2 3]", got)
	}

	status, env = do(t, router, http.MethodGet, "/api/v1/colleges/codes", nil)
	if status != http.StatusOK {
		t.Fatalf("codes status = %d, want 200", status)
	}
	var codes dto.CodesResponse
	if err := json.Unmarshal(env.Data, &codes); err != nil {
		t.Fatalf("decode codes: %v", err)
	}
	if strings.Join(codes.Codes, ",") != "CCS,CEBA" {
		t.Fatalf("codes = %v, want [CCS CEBA]", codes.Codes)
	}
}

func TestRouterDeleteReportsCascade(t *testing.T) {
	router := newTestRouter(t, models.CascadeDelete)

	status, env := do(t, router, http.MethodDelete, "/api/v1/colleges/ccs", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (error %+v)", status, env.Error)
	}
	var result models.CascadeResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Key != "CCS" || result.Deleted[models.EntityProgram] != 2 || result.Deleted[models.EntityStudent] != 3 {
		t.Fatalf("result = %+v, want CCS with 2 programs and 3 students removed", result)
	}
	if !strings.Contains(env.Message, "3 related student record(s) deleted") {
		t.Fatalf("message = %q", env.Message)
	}

	status, env = do(t, router, http.MethodGet, "/api/v1/programs/BSCS", nil)
	if status != http.StatusNotFound {
		t.Fatalf("program status after cascade = %d, want 404", status)
	}
}
