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

// ProgramService defines the interface for program-related operations
type ProgramService interface {
	CreateProgram(ctx context.Context, program *models.Program) (*models.Program, error)
	GetProgram(ctx context.Context, code string) (*models.Program, error)
	UpdateProgram(ctx context.Context, code string, program *models.Program) (*models.Program, error)
	DeleteProgram(ctx context.Context, code string) (*models.CascadeResult, error)
	ListPrograms(ctx context.Context, query models.ListQuery) (*models.Page[*models.Program], error)
}

type programServiceImpl struct {
	programs repositories.ProgramRepository
	registry repositories.RegistryRepository
	validate *validator.Validate
}

// NewProgramService creates a new program service instance
func NewProgramService(programs repositories.ProgramRepository, registry repositories.RegistryRepository, validate *validator.Validate) ProgramService {
	return &programServiceImpl{
		programs: programs,
		registry: registry,
		validate: validate,
	}
}

// prepare trims and validates program and resolves its college code.
func (s *programServiceImpl) prepare(ctx context.Context, program *models.Program) error {
	program.Code = strings.TrimSpace(program.Code)
	program.Name = strings.TrimSpace(program.Name)
	program.CollegeCode = trimPtr(program.CollegeCode)
	if err := validation.Check(s.validate, models.EntityProgram, program); err != nil {
		return err
	}

	college, err := resolveParent(ctx, s.registry, models.EntityProgram, program.CollegeCode)
	if err != nil {
		return err
	}
	program.CollegeCode = college
	return nil
}

// CreateProgram validates and stores a new program
func (s *programServiceImpl) CreateProgram(ctx context.Context, program *models.Program) (*models.Program, error) {
	if err := s.prepare(ctx, program); err != nil {
		return nil, err
	}
	if err := checkDuplicate(ctx, s.registry, models.EntityProgram, program.Code, ""); err != nil {
		return nil, err
	}

	if err := s.programs.CreateProgram(ctx, program); err != nil {
		return nil, storeError("creating program", err)
	}

	logger.Info().Str("program_code", program.Code).Str("college_code", models.Deref(program.CollegeCode)).Msg("Program created")
	return program, nil
}

// GetProgram retrieves a program by code, matched case-insensitively
func (s *programServiceImpl) GetProgram(ctx context.Context, code string) (*models.Program, error) {
	key, err := resolveKey(ctx, s.registry, models.EntityProgram, code)
	if err != nil {
		return nil, err
	}
	program, err := s.programs.GetProgramByCode(ctx, key)
	if err != nil {
		return nil, storeError("retrieving program", err)
	}
	return program, nil
}

// UpdateProgram replaces the program stored under code. Changing the code
// moves every student of the program to the new code.
func (s *programServiceImpl) UpdateProgram(ctx context.Context, code string, program *models.Program) (*models.Program, error) {
	oldCode, err := resolveKey(ctx, s.registry, models.EntityProgram, code)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, program); err != nil {
		return nil, err
	}
	if err := checkDuplicate(ctx, s.registry, models.EntityProgram, program.Code, oldCode); err != nil {
		return nil, err
	}

	if err := s.programs.UpdateProgram(ctx, oldCode, program); err != nil {
		return nil, storeError("updating program", err)
	}

	logger.Info().Str("program_code", program.Code).Str("previous_code", oldCode).Msg("Program updated")
	return program, nil
}

// DeleteProgram deletes a program and applies the cascade mode to its students
func (s *programServiceImpl) DeleteProgram(ctx context.Context, code string) (*models.CascadeResult, error) {
	key, err := resolveKey(ctx, s.registry, models.EntityProgram, code)
	if err != nil {
		return nil, err
	}

	result, err := s.programs.DeleteProgram(ctx, key)
	if err != nil {
		return nil, storeError("deleting program", err)
	}

	logger.Info().Str("program_code", key).Str("mode", string(result.Mode)).
		Interface("nullified", result.Nullified).Interface("deleted", result.Deleted).
		Msg("Program deleted")
	return result, nil
}

// ListPrograms searches, sorts and paginates programs
func (s *programServiceImpl) ListPrograms(ctx context.Context, query models.ListQuery) (*models.Page[*models.Program], error) {
	rq, err := models.SchemaFor(models.EntityProgram).Resolve(query)
	if err != nil {
		return nil, err
	}

	items, total, err := s.programs.SearchPrograms(ctx, rq)
	if err != nil {
		return nil, storeError("listing programs", err)
	}
	return models.NewPage(items, total, rq), nil
}
