package transfer

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yigit/ssis/internal/app/migrations"
	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/repositories"
	"github.com/yigit/ssis/internal/db"
	"github.com/yigit/ssis/internal/storage/csvstore"
	"github.com/yigit/ssis/internal/storage/sqlstore"
	"github.com/yigit/ssis/internal/storage/storagetest"
)

func openCSV(t *testing.T) *csvstore.Store {
	t.Helper()
	store, err := csvstore.New(t.TempDir(), models.CascadeNullify)
	if err != nil {
		t.Fatalf("open csv store: %v", err)
	}
	return store
}

func openSQL(t *testing.T) *sqlstore.Store {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "ssis.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if _, err := migrations.NewMigrator(database.DB, false).Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return sqlstore.New(database, models.CascadeNullify)
}

func TestCopyCSVToSQL(t *testing.T) {
	ctx := context.Background()
	src := openCSV(t)
	storagetest.Seed(t, src)

	// A nulled foreign key must survive the copy.
	if _, err := src.DeleteProgram(ctx, "BSA"); err != nil {
		t.Fatalf("delete program: %v", err)
	}

	dst := openSQL(t)
	report, err := Copy(ctx, src, dst, zerolog.Nop())
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	want := map[models.Entity]int{models.EntityCollege: 2, models.EntityProgram: 2, models.EntityStudent: 4}
	for e, n := range want {
		if report.Copied[e] != n {
			t.Fatalf("copied %s = %d, want %d", e, report.Copied[e], n)
		}
	}

	orphan, err := dst.GetStudentByID(ctx, "2023-0003")
	if err != nil {
		t.Fatalf("get orphan: %v", err)
	}
	if orphan.ProgramCode != nil {
		t.Fatalf("orphan program = %q, want nil", *orphan.ProgramCode)
	}

	again, err := Copy(ctx, src, dst, zerolog.Nop())
	if err != nil {
		t.Fatalf("second Copy() error = %v", err)
	}
	if again.Copied[models.EntityStudent] != 0 || again.Skipped[models.EntityStudent] != 4 {
		t.Fatalf("second copy = %+v, want every student skipped", again)
	}
}

func TestCopyPagesThroughLargeTables(t *testing.T) {
	ctx := context.Background()
	src := openCSV(t)
	storagetest.Seed(t, src)
	for i := 0; i < 250; i++ {
		s := &models.Student{
			IDNumber:    fmt.Sprintf("2024-%04d", i),
			FirstName:   "Bulk",
			LastName:    "Student",
			YearLevel:   1,
			Gender:      "Male",
			ProgramCode: models.StringPtr("BSIT"),
		}
		if err := src.CreateStudent(ctx, s); err != nil {
			t.Fatalf("create student %d: %v", i, err)
		}
	}

	var dst repositories.Store = openCSV(t)
	report, err := Copy(ctx, src, dst, zerolog.Nop())
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if got := report.Copied[models.EntityStudent]; got != 254 {
		t.Fatalf("copied students = %d, want 254", got)
	}
	n, err := dst.Count(ctx, models.EntityStudent)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 254 {
		t.Fatalf("destination students = %d, want 254", n)
	}
}
