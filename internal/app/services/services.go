package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/repositories"
	"github.com/yigit/ssis/internal/pkg/apperrors"
)

// Services defined in this package:
// - CollegeService: create, read, update, cascade delete and list colleges
// - ProgramService: the same for programs, which reference a college
// - StudentService: the same for students, which reference a program
// - RegistryService: counters and key lists shared by all entities

// storeError passes application errors through and wraps anything else.
func storeError(op string, err error) error {
	if apperrors.Is(err,
		apperrors.ErrResourceNotFound,
		apperrors.ErrResourceAlreadyExists,
		apperrors.ErrInvalidReference,
		apperrors.ErrValidationFailed,
		apperrors.ErrBadRequest,
	) {
		return err
	}
	return fmt.Errorf("error %s: %w", op, err)
}

// resolveKey returns the stored spelling of key, matched case-insensitively.
func resolveKey(ctx context.Context, registry repositories.RegistryRepository, e models.Entity, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", e.NotFound()
	}
	stored, ok, err := registry.FindKey(ctx, e, key)
	if err != nil {
		return "", fmt.Errorf("error looking up %s: %w", e, err)
	}
	if !ok {
		return "", e.NotFound()
	}
	return stored, nil
}

// checkDuplicate fails when key is already held by a record other than excludeKey.
func checkDuplicate(ctx context.Context, registry repositories.RegistryRepository, e models.Entity, key, excludeKey string) error {
	exists, err := registry.Exists(ctx, e, key, excludeKey)
	if err != nil {
		return fmt.Errorf("error checking %s key: %w", e, err)
	}
	if exists {
		return e.AlreadyExists()
	}
	return nil
}

// resolveParent rewrites the foreign key of child to the parent's stored spelling.
func resolveParent(ctx context.Context, registry repositories.RegistryRepository, child models.Entity, fk *string) (*string, error) {
	rel, ok := models.ParentOf(child)
	if !ok || fk == nil {
		return fk, nil
	}
	stored, found, err := registry.FindKey(ctx, rel.Parent, *fk)
	if err != nil {
		return nil, fmt.Errorf("error looking up %s: %w", rel.Parent, err)
	}
	if !found {
		return nil, rel.MissingParent(*fk)
	}
	return models.StringPtr(stored), nil
}

// trimPtr trims s; a blank value becomes nil so "required" rejects it.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
