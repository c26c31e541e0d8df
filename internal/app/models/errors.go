package models

import (
	"fmt"

	"github.com/yigit/ssis/internal/pkg/apperrors"
)

// NotFound returns the not-found error of e.
func (e Entity) NotFound() error {
	switch e {
	case EntityCollege:
		return apperrors.ErrCollegeNotFound
	case EntityProgram:
		return apperrors.ErrProgramNotFound
	case EntityStudent:
		return apperrors.ErrStudentNotFound
	}
	return apperrors.NewResourceNotFoundError(string(e) + " not found")
}

// AlreadyExists returns the duplicate-key error of e.
func (e Entity) AlreadyExists() error {
	switch e {
	case EntityCollege:
		return apperrors.ErrCollegeAlreadyExists
	case EntityProgram:
		return apperrors.ErrProgramAlreadyExists
	case EntityStudent:
		return apperrors.ErrStudentAlreadyExists
	}
	return apperrors.ErrResourceAlreadyExists
}

// MissingParent reports a foreign key naming a record that does not exist.
func (r Relation) MissingParent(key string) error {
	return apperrors.NewInvalidReferenceError(r.Column,
		fmt.Sprintf("%s %s does not exist", SchemaFor(r.Parent).Fields[0].Label, key))
}
