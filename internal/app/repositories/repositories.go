package repositories

import (
	"context"

	"github.com/yigit/ssis/internal/app/models"
)

// CollegeRepository persists colleges
type CollegeRepository interface {
	CreateCollege(ctx context.Context, college *models.College) error
	GetCollegeByCode(ctx context.Context, code string) (*models.College, error)
	// UpdateCollege replaces the college stored under oldCode. A changed code
	// is propagated to the programs referencing it.
	UpdateCollege(ctx context.Context, oldCode string, college *models.College) error
	DeleteCollege(ctx context.Context, code string) (*models.CascadeResult, error)
	SearchColleges(ctx context.Context, rq models.ResolvedQuery) ([]*models.College, int64, error)
}

// ProgramRepository persists programs
type ProgramRepository interface {
	CreateProgram(ctx context.Context, program *models.Program) error
	GetProgramByCode(ctx context.Context, code string) (*models.Program, error)
	UpdateProgram(ctx context.Context, oldCode string, program *models.Program) error
	DeleteProgram(ctx context.Context, code string) (*models.CascadeResult, error)
	SearchPrograms(ctx context.Context, rq models.ResolvedQuery) ([]*models.Program, int64, error)
}

// StudentRepository persists students
type StudentRepository interface {
	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudentByID(ctx context.Context, idNumber string) (*models.Student, error)
	UpdateStudent(ctx context.Context, oldID string, student *models.Student) error
	DeleteStudent(ctx context.Context, idNumber string) (*models.CascadeResult, error)
	SearchStudents(ctx context.Context, rq models.ResolvedQuery) ([]*models.Student, int64, error)
}

// RegistryRepository answers key lookups shared by every entity.
// Key comparisons are case-insensitive.
type RegistryRepository interface {
	// Exists reports whether key is taken, ignoring the record stored under excludeKey.
	Exists(ctx context.Context, entity models.Entity, key, excludeKey string) (bool, error)
	// FindKey returns the stored spelling of key.
	FindKey(ctx context.Context, entity models.Entity, key string) (string, bool, error)
	// ListCodes returns every key of entity in ascending order.
	ListCodes(ctx context.Context, entity models.Entity) ([]string, error)
	Count(ctx context.Context, entity models.Entity) (int64, error)
}

// Store is a complete storage backend
type Store interface {
	CollegeRepository
	ProgramRepository
	StudentRepository
	RegistryRepository

	CascadeMode() models.CascadeMode
	Close() error
}
