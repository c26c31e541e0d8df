package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/repositories"
	"github.com/yigit/ssis/internal/storage/storagetest"
)

func newTestStore(t *testing.T, mode models.CascadeMode) repositories.Store {
	t.Helper()
	s, err := New(t.TempDir(), mode)
	if err != nil {
		t.Fatalf("open csv store: %v", err)
	}
	return s
}

func TestStore(t *testing.T) {
	storagetest.Run(t, newTestStore)
}

func TestNewCreatesHeaders(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	if _, err := New(dir, models.CascadeNullify); err != nil {
		t.Fatalf("new store: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "students.csv"))
	if err != nil {
		t.Fatalf("read students.csv: %v", err)
	}
	want := "\xef\xbb\xbfID Number,First Name,Last Name,Year Level,Gender,Program\n"
	if string(data) != want {
		t.Fatalf("students.csv = %q, want %q", data, want)
	}
}

func TestNullifyWritesSentinel(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, models.CascadeNullify)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	storagetest.Seed(t, s)

	if _, err := s.DeleteProgram(context.Background(), "BSIT"); err != nil {
		t.Fatalf("delete program: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "students.csv"))
	if err != nil {
		t.Fatalf("read students.csv: %v", err)
	}
	if !strings.Contains(string(data), "2023-0002,Ben,Cruz,1,Male,NULL\n") {
		t.Fatalf("students.csv missing nulled row:\n%s", data)
	}
}

func TestExistingFilesAreKept(t *testing.T) {
	dir := t.TempDir()
	content := "College Code,College Name\nCCS,College of Computer Studies\n"
	if err := os.WriteFile(filepath.Join(dir, "colleges.csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("write colleges.csv: %v", err)
	}

	s, err := New(dir, models.CascadeNullify)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	c, err := s.GetCollegeByCode(context.Background(), "CCS")
	if err != nil {
		t.Fatalf("get college: %v", err)
	}
	if c.Name != "College of Computer Studies" {
		t.Fatalf("name = %q", c.Name)
	}
}

func TestOpenDoesNotCreateFiles(t *testing.T) {
	dir := t.TempDir()
	content := "College Code,College Name\nCCS,College of Computer Studies\n"
	if err := os.WriteFile(filepath.Join(dir, "colleges.csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("write colleges.csv: %v", err)
	}

	if _, err := Open(dir, models.CascadeNullify); err == nil {
		t.Fatal("Open() succeeded with programs.csv and students.csv missing")
	}
	for _, name := range []string{"programs.csv", "students.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("%s was created (stat err = %v)", name, err)
		}
	}

	if _, err := Open(filepath.Join(dir, "absent"), models.CascadeNullify); err == nil {
		t.Fatal("Open() succeeded on a missing directory")
	}
	if _, err := os.Stat(filepath.Join(dir, "absent")); !os.IsNotExist(err) {
		t.Fatalf("missing directory was created (stat err = %v)", err)
	}
}

func TestOpenExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := New(dir, models.CascadeNullify); err != nil {
		t.Fatalf("new store: %v", err)
	}

	s, err := Open(dir, models.CascadeDelete)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.CascadeMode() != models.CascadeDelete {
		t.Fatalf("cascade mode = %q", s.CascadeMode())
	}
	n, err := s.Count(context.Background(), models.EntityStudent)
	if err != nil || n != 0 {
		t.Fatalf("count = %d, %v; want 0, nil", n, err)
	}
}

func TestInvalidYearLevel(t *testing.T) {
	dir := t.TempDir()
	content := "ID Number,First Name,Last Name,Year Level,Gender,Program\n2023-0001,Ana,Reyes,two,Female,NULL\n"
	if err := os.WriteFile(filepath.Join(dir, "students.csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("write students.csv: %v", err)
	}
	s, err := New(dir, models.CascadeNullify)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := s.GetStudentByID(context.Background(), "2023-0001"); err == nil {
		t.Fatal("expected an error for a non-numeric year level")
	}
}

func TestCanceledContext(t *testing.T) {
	s := newTestStore(t, models.CascadeNullify)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.CreateCollege(ctx, &models.College{Code: "CCS", Name: "Computing"}); err == nil {
		t.Fatal("expected an error on a canceled context")
	}
}
