package services

import (
	"context"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/repositories"
	"github.com/yigit/ssis/internal/pkg/apperrors"
)

// RegistryService serves the read operations shared by all entities
type RegistryService interface {
	Counts(ctx context.Context) (*models.Counts, error)
	// Codes lists the keys of a parent entity for choosing a foreign key.
	Codes(ctx context.Context, entity models.Entity) ([]string, error)
	CascadeMode() models.CascadeMode
}

type registryServiceImpl struct {
	store repositories.Store
}

// NewRegistryService creates a new registry service instance
func NewRegistryService(store repositories.Store) RegistryService {
	return &registryServiceImpl{store: store}
}

// Counts returns the number of colleges, programs and students
func (s *registryServiceImpl) Counts(ctx context.Context) (*models.Counts, error) {
	counts := &models.Counts{}
	targets := map[models.Entity]*int64{
		models.EntityCollege: &counts.Colleges,
		models.EntityProgram: &counts.Programs,
		models.EntityStudent: &counts.Students,
	}
	for e, dst := range targets {
		n, err := s.store.Count(ctx, e)
		if err != nil {
			return nil, storeError("counting "+string(e), err)
		}
		*dst = n
	}
	return counts, nil
}

// Codes returns the keys of colleges or programs in ascending order
func (s *registryServiceImpl) Codes(ctx context.Context, entity models.Entity) ([]string, error) {
	if len(models.Dependents(entity)) == 0 {
		return nil, apperrors.NewBadRequestError("codes are only listed for colleges and programs")
	}
	codes, err := s.store.ListCodes(ctx, entity)
	if err != nil {
		return nil, storeError("listing codes", err)
	}
	return codes, nil
}

// CascadeMode reports what deleting a college or program does to its dependents
func (s *registryServiceImpl) CascadeMode() models.CascadeMode {
	return s.store.CascadeMode()
}
