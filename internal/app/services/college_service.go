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

// CollegeService defines the interface for college-related operations
type CollegeService interface {
	CreateCollege(ctx context.Context, college *models.College) (*models.College, error)
	GetCollege(ctx context.Context, code string) (*models.College, error)
	UpdateCollege(ctx context.Context, code string, college *models.College) (*models.College, error)
	DeleteCollege(ctx context.Context, code string) (*models.CascadeResult, error)
	ListColleges(ctx context.Context, query models.ListQuery) (*models.Page[*models.College], error)
}

// collegeServiceImpl implements the CollegeService interface
type collegeServiceImpl struct {
	colleges repositories.CollegeRepository
	registry repositories.RegistryRepository
	validate *validator.Validate
}

// NewCollegeService creates a new college service instance
func NewCollegeService(colleges repositories.CollegeRepository, registry repositories.RegistryRepository, validate *validator.Validate) CollegeService {
	return &collegeServiceImpl{
		colleges: colleges,
		registry: registry,
		validate: validate,
	}
}

func (s *collegeServiceImpl) prepare(college *models.College) error {
	college.Code = strings.TrimSpace(college.Code)
	college.Name = strings.TrimSpace(college.Name)
	return validation.Check(s.validate, models.EntityCollege, college)
}

// CreateCollege validates and stores a new college
func (s *collegeServiceImpl) CreateCollege(ctx context.Context, college *models.College) (*models.College, error) {
	if err := s.prepare(college); err != nil {
		return nil, err
	}
	if err := checkDuplicate(ctx, s.registry, models.EntityCollege, college.Code, ""); err != nil {
		return nil, err
	}

	if err := s.colleges.CreateCollege(ctx, college); err != nil {
		return nil, storeError("creating college", err)
	}

	logger.Info().Str("college_code", college.Code).Msg("College created")
	return college, nil
}

// GetCollege retrieves a college by code, matched case-insensitively
func (s *collegeServiceImpl) GetCollege(ctx context.Context, code string) (*models.College, error) {
	key, err := resolveKey(ctx, s.registry, models.EntityCollege, code)
	if err != nil {
		return nil, err
	}
	college, err := s.colleges.GetCollegeByCode(ctx, key)
	if err != nil {
		return nil, storeError("retrieving college", err)
	}
	return college, nil
}

// UpdateCollege replaces the college stored under code. Changing the code
// moves every program of the college to the new code.
func (s *collegeServiceImpl) UpdateCollege(ctx context.Context, code string, college *models.College) (*models.College, error) {
	oldCode, err := resolveKey(ctx, s.registry, models.EntityCollege, code)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(college); err != nil {
		return nil, err
	}
	if err := checkDuplicate(ctx, s.registry, models.EntityCollege, college.Code, oldCode); err != nil {
		return nil, err
	}

	if err := s.colleges.UpdateCollege(ctx, oldCode, college); err != nil {
		return nil, storeError("updating college", err)
	}

	logger.Info().Str("college_code", college.Code).Str("previous_code", oldCode).Msg("College updated")
	return college, nil
}

// DeleteCollege deletes a college and applies the cascade mode to its programs
func (s *collegeServiceImpl) DeleteCollege(ctx context.Context, code string) (*models.CascadeResult, error) {
	key, err := resolveKey(ctx, s.registry, models.EntityCollege, code)
	if err != nil {
		return nil, err
	}

	result, err := s.colleges.DeleteCollege(ctx, key)
	if err != nil {
		return nil, storeError("deleting college", err)
	}

	logger.Info().Str("college_code", key).Str("mode", string(result.Mode)).
		Interface("nullified", result.Nullified).Interface("deleted", result.Deleted).
		Msg("College deleted")
	return result, nil
}

// ListColleges searches, sorts and paginates colleges
func (s *collegeServiceImpl) ListColleges(ctx context.Context, query models.ListQuery) (*models.Page[*models.College], error) {
	rq, err := models.SchemaFor(models.EntityCollege).Resolve(query)
	if err != nil {
		return nil, err
	}

	items, total, err := s.colleges.SearchColleges(ctx, rq)
	if err != nil {
		return nil, storeError("listing colleges", err)
	}
	return models.NewPage(items, total, rq), nil
}
