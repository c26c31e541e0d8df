// Package storagetest holds behaviour tests shared by every repositories.Store
// implementation.
package storagetest

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/repositories"
	"github.com/yigit/ssis/internal/pkg/apperrors"
)

// Factory opens an empty store using the given cascade mode.
type Factory func(t *testing.T, mode models.CascadeMode) repositories.Store

// Seed fills s with two colleges, three programs and four students:
//
//	CCS  -> BSCS -> 2023-0001, 2022-0004
//	     -> BSIT -> 2023-0002
//	CEBA -> BSA  -> 2023-0003
func Seed(t *testing.T, s repositories.Store) {
	t.Helper()
	ctx := context.Background()

	for _, c := range []*models.College{
		{Code: "CCS", Name: "College of Computer Studies"},
		{Code: "CEBA", Name: "College of Economics"},
	} {
		if err := s.CreateCollege(ctx, c); err != nil {
			t.Fatalf("create college %s: %v", c.Code, err)
		}
	}
	for _, p := range []*models.Program{
		{Code: "BSCS", Name: "Computer Science", CollegeCode: models.StringPtr("CCS")},
		{Code: "BSIT", Name: "Information Technology", CollegeCode: models.StringPtr("CCS")},
		{Code: "BSA", Name: "Accountancy", CollegeCode: models.StringPtr("CEBA")},
	} {
		if err := s.CreateProgram(ctx, p); err != nil {
			t.Fatalf("create program %s: %v", p.Code, err)
		}
	}
	for _, st := range []*models.Student{
		{IDNumber: "2023-0001", FirstName: "Ana", LastName: "Reyes", YearLevel: 2, Gender: "Female", ProgramCode: models.StringPtr("BSCS")},
		{IDNumber: "2023-0002", FirstName: "Ben", LastName: "Cruz", YearLevel: 1, Gender: "Male", ProgramCode: models.StringPtr("BSIT")},
		{IDNumber: "2023-0003", FirstName: "Carla", LastName: "Santos", YearLevel: 3, Gender: "Female", ProgramCode: models.StringPtr("BSA")},
		{IDNumber: "2022-0004", FirstName: "Dan", LastName: "Lim", YearLevel: 10, Gender: "Male", ProgramCode: models.StringPtr("BSCS")},
	} {
		if err := s.CreateStudent(ctx, st); err != nil {
			t.Fatalf("create student %s: %v", st.IDNumber, err)
		}
	}
}

// Run executes the shared store tests against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore) })
	t.Run("CreateRejectsDuplicateKey", func(t *testing.T) { testCreateDuplicate(t, newStore) })
	t.Run("CreateRejectsMissingParent", func(t *testing.T) { testMissingParent(t, newStore) })
	t.Run("DeleteNullify", func(t *testing.T) { testDeleteNullify(t, newStore) })
	t.Run("DeleteCascade", func(t *testing.T) { testDeleteCascade(t, newStore) })
	t.Run("DeleteMissing", func(t *testing.T) { testDeleteMissing(t, newStore) })
	t.Run("UpdateRenamesDependents", func(t *testing.T) { testRename(t, newStore) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newStore) })
	t.Run("Search", func(t *testing.T) { testSearch(t, newStore) })
	t.Run("Registry", func(t *testing.T) { testRegistry(t, newStore) })
}

func testCreateAndGet(t *testing.T, newStore Factory) {
	s := newStore(t, models.CascadeNullify)
	Seed(t, s)
	ctx := context.Background()

	st, err := s.GetStudentByID(ctx, "2023-0001")
	if err != nil {
		t.Fatalf("get student: %v", err)
	}
	want := &models.Student{IDNumber: "2023-0001", FirstName: "Ana", LastName: "Reyes", YearLevel: 2, Gender: "Female", ProgramCode: models.StringPtr("BSCS")}
	if !reflect.DeepEqual(st, want) {
		t.Fatalf("student = %+v, want %+v", st, want)
	}

	p, err := s.GetProgramByCode(ctx, "BSA")
	if err != nil {
		t.Fatalf("get program: %v", err)
	}
	if models.Deref(p.CollegeCode) != "CEBA" {
		t.Fatalf("program college = %q, want CEBA", models.Deref(p.CollegeCode))
	}

	if _, err := s.GetCollegeByCode(ctx, "NOPE"); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("get missing college: err = %v, want not found", err)
	}

	orphan := &models.Program{Code: "BSX", Name: "Orphan"}
	if err := s.CreateProgram(ctx, orphan); err != nil {
		t.Fatalf("create program without college: %v", err)
	}
	got, err := s.GetProgramByCode(ctx, "BSX")
	if err != nil {
		t.Fatalf("get orphan: %v", err)
	}
	if got.CollegeCode != nil {
		t.Fatalf("orphan college = %q, want nil", *got.CollegeCode)
	}
}

func testCreateDuplicate(t *testing.T, newStore Factory) {
	s := newStore(t, models.CascadeNullify)
	Seed(t, s)

	err := s.CreateCollege(context.Background(), &models.College{Code: "CCS", Name: "Again"})
	if !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
		t.Fatalf("duplicate college: err = %v, want already exists", err)
	}
	err = s.UpdateProgram(context.Background(), "BSIT", &models.Program{Code: "BSCS", Name: "Clash", CollegeCode: models.StringPtr("CCS")})
	if !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
		t.Fatalf("rename onto existing program: err = %v, want already exists", err)
	}
}

func testMissingParent(t *testing.T, newStore Factory) {
	s := newStore(t, models.CascadeNullify)
	Seed(t, s)

	err := s.CreateStudent(context.Background(), &models.Student{
		IDNumber: "2024-0009", FirstName: "Eve", LastName: "Tan", YearLevel: 1, Gender: "Female",
		ProgramCode: models.StringPtr("BSXX"),
	})
	if !errors.Is(err, apperrors.ErrInvalidReference) {
		t.Fatalf("student with unknown program: err = %v, want invalid reference", err)
	}
}

func testDeleteNullify(t *testing.T, newStore Factory) {
	s := newStore(t, models.CascadeNullify)
	Seed(t, s)
	ctx := context.Background()

	result, err := s.DeleteCollege(ctx, "CCS")
	if err != nil {
		t.Fatalf("delete college: %v", err)
	}
	if result.Mode != models.CascadeNullify {
		t.Fatalf("mode = %q, want nullify", result.Mode)
	}
	if got := result.Nullified[models.EntityProgram]; got != 2 {
		t.Fatalf("nullified programs = %d, want 2", got)
	}
	if got := result.Deleted[models.EntityCollege]; got != 1 {
		t.Fatalf("deleted colleges = %d, want 1", got)
	}

	for _, code := range []string{"BSCS", "BSIT"} {
		p, err := s.GetProgramByCode(ctx, code)
		if err != nil {
			t.Fatalf("program %s should survive: %v", code, err)
		}
		if p.CollegeCode != nil {
			t.Fatalf("program %s college = %q, want nil", code, *p.CollegeCode)
		}
	}
	if p, _ := s.GetProgramByCode(ctx, "BSA"); models.Deref(p.CollegeCode) != "CEBA" {
		t.Fatalf("unrelated program changed: %+v", p)
	}
	if n, _ := s.Count(ctx, models.EntityStudent); n != 4 {
		t.Fatalf("students = %d, want 4", n)
	}
	if _, err := s.GetCollegeByCode(ctx, "CCS"); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("college still present: %v", err)
	}
}

func testDeleteCascade(t *testing.T, newStore Factory) {
	s := newStore(t, models.CascadeDelete)
	Seed(t, s)
	ctx := context.Background()

	result, err := s.DeleteCollege(ctx, "CCS")
	if err != nil {
		t.Fatalf("delete college: %v", err)
	}
	want := map[models.Entity]int{
		models.EntityCollege: 1,
		models.EntityProgram: 2,
		models.EntityStudent: 3,
	}
	if !reflect.DeepEqual(result.Deleted, want) {
		t.Fatalf("deleted = %v, want %v", result.Deleted, want)
	}

	codes, err := s.ListCodes(ctx, models.EntityProgram)
	if err != nil {
		t.Fatalf("list program codes: %v", err)
	}
	if !reflect.DeepEqual(codes, []string{"BSA"}) {
		t.Fatalf("programs = %v, want [BSA]", codes)
	}
	if n, _ := s.Count(ctx, models.EntityStudent); n != 1 {
		t.Fatalf("students = %d, want 1", n)
	}

	result, err = s.DeleteStudent(ctx, "2023-0003")
	if err != nil {
		t.Fatalf("delete student: %v", err)
	}
	if result.Deleted[models.EntityStudent] != 1 || len(result.Nullified) != 0 {
		t.Fatalf("student delete result = %+v", result)
	}
}

func testDeleteMissing(t *testing.T, newStore Factory) {
	s := newStore(t, models.CascadeNullify)
	Seed(t, s)

	if _, err := s.DeleteProgram(context.Background(), "NOPE"); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("delete missing program: err = %v, want not found", err)
	}
}

func testRename(t *testing.T, newStore Factory) {
	s := newStore(t, models.CascadeNullify)
	Seed(t, s)
	ctx := context.Background()

	err := s.UpdateProgram(ctx, "BSCS", &models.Program{Code: "BSCOMSCI", Name: "Computer Science", CollegeCode: models.StringPtr("CCS")})
	if err != nil {
		t.Fatalf("rename program: %v", err)
	}
	for _, id := range []string{"2023-0001", "2022-0004"} {
		st, err := s.GetStudentByID(ctx, id)
		if err != nil {
			t.Fatalf("get student %s: %v", id, err)
		}
		if models.Deref(st.ProgramCode) != "BSCOMSCI" {
			t.Fatalf("student %s program = %q, want BSCOMSCI", id, models.Deref(st.ProgramCode))
		}
	}
	if _, err := s.GetProgramByCode(ctx, "BSCS"); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("old program code still present: %v", err)
	}

	err = s.UpdateCollege(ctx, "CEBA", &models.College{Code: "CBA", Name: "College of Business"})
	if err != nil {
		t.Fatalf("rename college: %v", err)
	}
	p, err := s.GetProgramByCode(ctx, "BSA")
	if err != nil {
		t.Fatalf("get program: %v", err)
	}
	if models.Deref(p.CollegeCode) != "CBA" {
		t.Fatalf("program college = %q, want CBA", models.Deref(p.CollegeCode))
	}

	st, _ := s.GetStudentByID(ctx, "2023-0002")
	st.YearLevel = 2
	if err := s.UpdateStudent(ctx, "2023-0002", st); err != nil {
		t.Fatalf("update student in place: %v", err)
	}
	if got, _ := s.GetStudentByID(ctx, "2023-0002"); got.YearLevel != 2 {
		t.Fatalf("year level = %d, want 2", got.YearLevel)
	}
}

func testUpdateMissing(t *testing.T, newStore Factory) {
	s := newStore(t, models.CascadeNullify)
	Seed(t, s)

	err := s.UpdateCollege(context.Background(), "NOPE", &models.College{Code: "NOPE", Name: "Nothing"})
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("update missing college: err = %v, want not found", err)
	}
}

func testSearch(t *testing.T, newStore Factory) {
	s := newStore(t, models.CascadeNullify)
	Seed(t, s)
	ctx := context.Background()
	schema := models.SchemaFor(models.EntityStudent)

	tests := []struct {
		name      string
		query     models.ListQuery
		wantIDs   []string
		wantTotal int64
	}{
		{
			name:      "default sort is id descending",
			query:     models.ListQuery{},
			wantIDs:   []string{"2023-0003", "2023-0002", "2023-0001", "2022-0004"},
			wantTotal: 4,
		},
		{
			name:      "search by label is case insensitive",
			query:     models.ListQuery{SearchField: "Program", SearchValue: "bscs", SortOrder: "asc"},
			wantIDs:   []string{"2022-0004", "2023-0001"},
			wantTotal: 2,
		},
		{
			name:      "search anywhere",
			query:     models.ListQuery{SearchValue: "SANT"},
			wantIDs:   []string{"2023-0003"},
			wantTotal: 1,
		},
		{
			name:      "year level sorts numerically",
			query:     models.ListQuery{SortField: "year_level", SortOrder: "ASC"},
			wantIDs:   []string{"2023-0002", "2023-0001", "2023-0003", "2022-0004"},
			wantTotal: 4,
		},
		{
			name:      "ties break on key ascending",
			query:     models.ListQuery{SortField: "Gender", SortOrder: "DESC"},
			wantIDs:   []string{"2022-0004", "2023-0002", "2023-0001", "2023-0003"},
			wantTotal: 4,
		},
		{
			name:      "last partial page",
			query:     models.ListQuery{Page: 2, Size: 3},
			wantIDs:   []string{"2022-0004"},
			wantTotal: 4,
		},
		{
			name:      "page past the end",
			query:     models.ListQuery{Page: 5, Size: 3},
			wantIDs:   []string{},
			wantTotal: 4,
		},
		{
			name:      "page far past the end",
			query:     models.ListQuery{Page: math.MaxInt, Size: 10},
			wantIDs:   []string{},
			wantTotal: 4,
		},
		{
			name:      "underscore matches literally",
			query:     models.ListQuery{SearchField: "first_name", SearchValue: "_"},
			wantIDs:   []string{},
			wantTotal: 0,
		},
		{
			name:      "percent matches literally",
			query:     models.ListQuery{SearchValue: "%"},
			wantIDs:   []string{},
			wantTotal: 0,
		},
		{
			name:      "hyphen in key still matches",
			query:     models.ListQuery{SearchField: "ID Number", SearchValue: "2-0"},
			wantIDs:   []string{"2022-0004"},
			wantTotal: 1,
		},
		{
			name:      "no match",
			query:     models.ListQuery{SearchField: "first_name", SearchValue: "zzz"},
			wantIDs:   []string{},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq, err := schema.Resolve(tt.query)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			items, total, err := s.SearchStudents(ctx, rq)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if total != tt.wantTotal {
				t.Fatalf("total = %d, want %d", total, tt.wantTotal)
			}
			ids := []string{}
			for _, st := range items {
				ids = append(ids, st.IDNumber)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}

	t.Run("nulled foreign key matches as empty", func(t *testing.T) {
		if _, err := s.DeleteCollege(ctx, "CEBA"); err != nil {
			t.Fatalf("delete college: %v", err)
		}
		rq, err := models.SchemaFor(models.EntityProgram).Resolve(models.ListQuery{SearchField: "college_code", SearchValue: "null"})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		_, total, err := s.SearchPrograms(ctx, rq)
		if err != nil {
			t.Fatalf("search programs: %v", err)
		}
		if total != 0 {
			t.Fatalf("total = %d, want 0", total)
		}
	})

	t.Run("colleges sort by name", func(t *testing.T) {
		rq, err := models.SchemaFor(models.EntityCollege).Resolve(models.ListQuery{SortField: "College Name", SortOrder: "desc"})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		items, _, err := s.SearchColleges(ctx, rq)
		if err != nil {
			t.Fatalf("search colleges: %v", err)
		}
		if len(items) != 1 || items[0].Code != "CCS" {
			t.Fatalf("colleges = %+v", items)
		}
	})
}

func testRegistry(t *testing.T, newStore Factory) {
	s := newStore(t, models.CascadeNullify)
	Seed(t, s)
	ctx := context.Background()

	exists, err := s.Exists(ctx, models.EntityCollege, "ccs", "")
	if err != nil || !exists {
		t.Fatalf("Exists(ccs) = %v, %v; want true", exists, err)
	}
	exists, err = s.Exists(ctx, models.EntityCollege, "ccs", "CCS")
	if err != nil || exists {
		t.Fatalf("Exists(ccs excluding CCS) = %v, %v; want false", exists, err)
	}
	exists, err = s.Exists(ctx, models.EntityStudent, "2099-0000", "")
	if err != nil || exists {
		t.Fatalf("Exists(2099-0000) = %v, %v; want false", exists, err)
	}

	key, ok, err := s.FindKey(ctx, models.EntityProgram, "bsit")
	if err != nil || !ok || key != "BSIT" {
		t.Fatalf("FindKey(bsit) = %q, %v, %v; want BSIT", key, ok, err)
	}
	if _, ok, _ := s.FindKey(ctx, models.EntityProgram, "none"); ok {
		t.Fatal("FindKey(none) found a key")
	}

	codes, err := s.ListCodes(ctx, models.EntityProgram)
	if err != nil {
		t.Fatalf("list codes: %v", err)
	}
	if !reflect.DeepEqual(codes, []string{"BSA", "BSCS", "BSIT"}) {
		t.Fatalf("codes = %v", codes)
	}

	for e, want := range map[models.Entity]int64{
		models.EntityCollege: 2,
		models.EntityProgram: 3,
		models.EntityStudent: 4,
	} {
		n, err := s.Count(ctx, e)
		if err != nil {
			t.Fatalf("count %s: %v", e, err)
		}
		if n != want {
			t.Fatalf("count %s = %d, want %d", e, n, want)
		}
	}
}
