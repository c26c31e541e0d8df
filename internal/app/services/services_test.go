package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/pkg/apperrors"
	"github.com/yigit/ssis/internal/pkg/validation"
	"github.com/yigit/ssis/internal/storage/csvstore"
	"github.com/yigit/ssis/internal/storage/storagetest"
)

type testServices struct {
	colleges CollegeService
	programs ProgramService
	students StudentService
	registry RegistryService
}

func newTestServices(t *testing.T, mode models.CascadeMode) *testServices {
	t.Helper()
	store, err := csvstore.New(t.TempDir(), mode)
	if err != nil {
		t.Fatalf("open csv store: %v", err)
	}
	storagetest.Seed(t, store)

	v := validation.New()
	return &testServices{
		colleges: NewCollegeService(store, store, v),
		programs: NewProgramService(store, store, v),
		students: NewStudentService(store, store, v),
		registry: NewRegistryService(store),
	}
}

func TestCreateStudentValidation(t *testing.T) {
	svc := newTestServices(t, models.CascadeNullify)
	ctx := context.Background()

	valid := func() *models.Student {
		return &models.Student{
			IDNumber: "2024-0010", FirstName: "Faye", LastName: "Go", YearLevel: 1,
			Gender: "Female", ProgramCode: models.StringPtr("BSCS"),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.Student)
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing first name",
			mutate:  func(s *models.Student) { s.FirstName = "  " },
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: validation.MissingFieldsMessage,
		},
		{
			name:    "missing program",
			mutate:  func(s *models.Student) { s.ProgramCode = nil },
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: validation.MissingFieldsMessage,
		},
		{
			name:    "blank program",
			mutate:  func(s *models.Student) { s.ProgramCode = models.StringPtr("   ") },
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: validation.MissingFieldsMessage,
		},
		{
			name:    "id number with seven digits",
			mutate:  func(s *models.Student) { s.IDNumber = "2024-001" },
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: "ID Number must contain 8 digits",
		},
		{
			name:    "id number with letters",
			mutate:  func(s *models.Student) { s.IDNumber = "2024-00AB" },
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: "ID Number must contain 8 digits",
		},
		{
			name:    "name with digits",
			mutate:  func(s *models.Student) { s.LastName = "Go2" },
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: "Last Name must contain only letters",
		},
		{
			name:    "year level zero",
			mutate:  func(s *models.Student) { s.YearLevel = 0 },
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: "Year Level cannot be 0",
		},
		{
			name:    "unknown program",
			mutate:  func(s *models.Student) { s.ProgramCode = models.StringPtr("BSXX") },
			wantErr: apperrors.ErrInvalidReference,
		},
		{
			name:    "duplicate id number",
			mutate:  func(s *models.Student) { s.IDNumber = "2023-0001" },
			wantErr: apperrors.ErrResourceAlreadyExists,
			wantMsg: "ID Number already exists in records.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := valid()
			tt.mutate(st)
			_, err := svc.students.CreateStudent(ctx, st)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg == "" {
				return
			}
			var ce *apperrors.CustomError
			if !errors.As(err, &ce) {
				t.Fatalf("err %v is not a CustomError", err)
			}
			if ce.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", ce.Message, tt.wantMsg)
			}
		})
	}
}

func TestCreateStudentCanonicalisesProgram(t *testing.T) {
	svc := newTestServices(t, models.CascadeNullify)

	st, err := svc.students.CreateStudent(context.Background(), &models.Student{
		IDNumber: " 2024-0010 ", FirstName: "Faye", LastName: "Go", YearLevel: 4,
		Gender: "Female", ProgramCode: models.StringPtr(" bscs "),
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	if st.IDNumber != "2024-0010" {
		t.Fatalf("id number = %q, want trimmed", st.IDNumber)
	}
	if models.Deref(st.ProgramCode) != "BSCS" {
		t.Fatalf("program = %q, want BSCS", models.Deref(st.ProgramCode))
	}
}

func TestCreateProgramBlankCollege(t *testing.T) {
	svc := newTestServices(t, models.CascadeNullify)

	_, err := svc.programs.CreateProgram(context.Background(), &models.Program{
		Code: "BSN", Name: "Nursing", CollegeCode: models.StringPtr(" \t"),
	})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("err = %v, want validation failed", err)
	}
	if err.Error() != validation.MissingFieldsMessage {
		t.Fatalf("message = %q, want %q", err.Error(), validation.MissingFieldsMessage)
	}
}

func TestDuplicateCollegeIsCaseInsensitive(t *testing.T) {
	svc := newTestServices(t, models.CascadeNullify)

	_, err := svc.colleges.CreateCollege(context.Background(), &models.College{Code: "ccs", Name: "Computing"})
	if !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
		t.Fatalf("err = %v, want already exists", err)
	}
}

func TestUpdateCollegeRename(t *testing.T) {
	svc := newTestServices(t, models.CascadeNullify)
	ctx := context.Background()

	if _, err := svc.colleges.UpdateCollege(ctx, "ccs", &models.College{Code: "CICS", Name: "College of Computing"}); err != nil {
		t.Fatalf("update college: %v", err)
	}

	p, err := svc.programs.GetProgram(ctx, "bsit")
	if err != nil {
		t.Fatalf("get program: %v", err)
	}
	if models.Deref(p.CollegeCode) != "CICS" {
		t.Fatalf("program college = %q, want CICS", models.Deref(p.CollegeCode))
	}

	_, err = svc.colleges.UpdateCollege(ctx, "CICS", &models.College{Code: "CEBA", Name: "Clash"})
	if !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
		t.Fatalf("rename onto CEBA: err = %v, want already exists", err)
	}

	// Changing only the case of the own key is not a duplicate.
	if _, err := svc.colleges.UpdateCollege(ctx, "CICS", &models.College{Code: "Cics", Name: "College of Computing"}); err != nil {
		t.Fatalf("case-only rename: %v", err)
	}
}

func TestUpdateMissingStudent(t *testing.T) {
	svc := newTestServices(t, models.CascadeNullify)

	_, err := svc.students.UpdateStudent(context.Background(), "2099-9999", &models.Student{})
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestDeleteProgramModes(t *testing.T) {
	tests := []struct {
		mode          models.CascadeMode
		wantStudents  int64
		wantNullified int
		wantDeleted   int
	}{
		{mode: models.CascadeNullify, wantStudents: 4, wantNullified: 2},
		{mode: models.CascadeDelete, wantStudents: 2, wantDeleted: 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			svc := newTestServices(t, tt.mode)
			ctx := context.Background()

			result, err := svc.programs.DeleteProgram(ctx, "bscs")
			if err != nil {
				t.Fatalf("delete program: %v", err)
			}
			if result.Key != "BSCS" {
				t.Fatalf("key = %q, want BSCS", result.Key)
			}
			if got := result.Nullified[models.EntityStudent]; got != tt.wantNullified {
				t.Fatalf("nullified = %d, want %d", got, tt.wantNullified)
			}
			if got := result.Deleted[models.EntityStudent]; got != tt.wantDeleted {
				t.Fatalf("deleted students = %d, want %d", got, tt.wantDeleted)
			}

			counts, err := svc.registry.Counts(ctx)
			if err != nil {
				t.Fatalf("counts: %v", err)
			}
			if counts.Students != tt.wantStudents || counts.Programs != 2 {
				t.Fatalf("counts = %+v", counts)
			}
		})
	}
}

func TestListStudents(t *testing.T) {
	svc := newTestServices(t, models.CascadeNullify)
	ctx := context.Background()

	page, err := svc.students.ListStudents(ctx, models.ListQuery{Page: 2, Size: 3})
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	want := models.Pagination{CurrentPage: 2, TotalPages: 2, PageSize: 3, TotalItems: 4}
	if page.Pagination != want {
		t.Fatalf("pagination = %+v, want %+v", page.Pagination, want)
	}
	if len(page.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(page.Items))
	}

	page, err = svc.students.ListStudents(ctx, models.ListQuery{SearchField: "Gender", SearchValue: "nobody"})
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if page.Pagination.TotalPages != 0 || page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("empty page = %+v", page)
	}

	_, err = svc.students.ListStudents(ctx, models.ListQuery{SearchField: "shoe size", SearchValue: "9"})
	if !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("unknown search field: err = %v, want bad request", err)
	}
}

func TestRegistryCodes(t *testing.T) {
	svc := newTestServices(t, models.CascadeNullify)
	ctx := context.Background()

	codes, err := svc.registry.Codes(ctx, models.EntityCollege)
	if err != nil {
		t.Fatalf("college codes: %v", err)
	}
	if !reflect.DeepEqual(codes, []string{"CCS", "CEBA"}) {
		t.Fatalf("codes = %v", codes)
	}

	if _, err := svc.registry.Codes(ctx, models.EntityStudent); !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("student codes: err = %v, want bad request", err)
	}
	if svc.registry.CascadeMode() != models.CascadeNullify {
		t.Fatalf("cascade mode = %q", svc.registry.CascadeMode())
	}
}
