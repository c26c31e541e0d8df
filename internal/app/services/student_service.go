package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/repositories"
	"github.com/yigit/ssis/internal/pkg/logger"
	"github.com/yigit/ssis/internal/pkg/validation"
)

// StudentService defines the interface for student-related operations
type StudentService interface {
	CreateStudent(ctx context.Context, student *models.Student) (*models.Student, error)
	GetStudent(ctx context.Context, idNumber string) (*models.Student, error)
	UpdateStudent(ctx context.Context, idNumber string, student *models.Student) (*models.Student, error)
	DeleteStudent(ctx context.Context, idNumber string) (*models.CascadeResult, error)
	ListStudents(ctx context.Context, query models.ListQuery) (*models.Page[*models.Student], error)
}

type studentServiceImpl struct {
	students repositories.StudentRepository
	registry repositories.RegistryRepository
	validate *validator.Validate
}

// NewStudentService creates a new student service instance
func NewStudentService(students repositories.StudentRepository, registry repositories.RegistryRepository, validate *validator.Validate) StudentService {
	return &studentServiceImpl{
		students: students,
		registry: registry,
		validate: validate,
	}
}

func (s *studentServiceImpl) prepare(ctx context.Context, student *models.Student) error {
	student.IDNumber = strings.TrimSpace(student.IDNumber)
	student.FirstName = strings.TrimSpace(student.FirstName)
	student.LastName = strings.TrimSpace(student.LastName)
	student.Gender = strings.TrimSpace(student.Gender)
	student.ProgramCode = trimPtr(student.ProgramCode)
	if err := validation.Check(s.validate, models.EntityStudent, student); err != nil {
		return err
	}

	program, err := resolveParent(ctx, s.registry, models.EntityStudent, student.ProgramCode)
	if err != nil {
		return err
	}
	student.ProgramCode = program
	return nil
}

// CreateStudent validates and stores a new student
func (s *studentServiceImpl) CreateStudent(ctx context.Context, student *models.Student) (*models.Student, error) {
	if err := s.prepare(ctx, student); err != nil {
		return nil, err
	}
	if err := checkDuplicate(ctx, s.registry, models.EntityStudent, student.IDNumber, ""); err != nil {
		return nil, err
	}

	if err := s.students.CreateStudent(ctx, student); err != nil {
		return nil, storeError("creating student", err)
	}

	logger.Info().Str("id_number", student.IDNumber).Str("program_code", models.Deref(student.ProgramCode)).Msg("Student created")
	return student, nil
}

// GetStudent retrieves a student by ID number
func (s *studentServiceImpl) GetStudent(ctx context.Context, idNumber string) (*models.Student, error) {
	key, err := resolveKey(ctx, s.registry, models.EntityStudent, idNumber)
	if err != nil {
		return nil, err
	}
	student, err := s.students.GetStudentByID(ctx, key)
	if err != nil {
		return nil, storeError("retrieving student", err)
	}
	return student, nil
}

// UpdateStudent replaces the student stored under idNumber
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, idNumber string, student *models.Student) (*models.Student, error) {
	oldID, err := resolveKey(ctx, s.registry, models.EntityStudent, idNumber)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, student); err != nil {
		return nil, err
	}
	if err := checkDuplicate(ctx, s.registry, models.EntityStudent, student.IDNumber, oldID); err != nil {
		return nil, err
	}

	if err := s.students.UpdateStudent(ctx, oldID, student); err != nil {
		return nil, storeError("updating student", err)
	}

	logger.Info().Str("id_number", student.IDNumber).Str("previous_id", oldID).Msg("Student updated")
	return student, nil
}

// DeleteStudent deletes a student
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, idNumber string) (*models.CascadeResult, error) {
	key, err := resolveKey(ctx, s.registry, models.EntityStudent, idNumber)
	if err != nil {
		return nil, err
	}

	result, err := s.students.DeleteStudent(ctx, key)
	if err != nil {
		return nil, storeError("deleting student", err)
	}

	logger.Info().Str("id_number", key).Msg("Student deleted")
	return result, nil
}

// ListStudents searches, sorts and paginates students
func (s *studentServiceImpl) ListStudents(ctx context.Context, query models.ListQuery) (*models.Page[*models.Student], error) {
	rq, err := models.SchemaFor(models.EntityStudent).Resolve(query)
	if err != nil {
		return nil, err
	}

	items, total, err := s.students.SearchStudents(ctx, rq)
	if err != nil {
		return nil, storeError("listing students", err)
	}
	return models.NewPage(items, total, rq), nil
}
