package models

import (
	"fmt"
	"strings"
)

// CascadeMode selects what happens to dependents when a parent is deleted
type CascadeMode string

const (
	// CascadeNullify sets the dependents' foreign key to the NULL sentinel.
	CascadeNullify CascadeMode = "nullify"
	// CascadeDelete removes dependents and, recursively, their own dependents.
	CascadeDelete CascadeMode = "delete"
)

// ParseCascadeMode parses a configured cascade mode; empty means nullify.
func ParseCascadeMode(s string) (CascadeMode, error) {
	switch CascadeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", CascadeNullify:
		return CascadeNullify, nil
	case CascadeDelete:
		return CascadeDelete, nil
	}
	return "", fmt.Errorf("unknown cascade mode %q", s)
}

// CascadeResult reports the effect of deleting one parent record.
type CascadeResult struct {
	Entity    Entity         `json:"entity"`
	Key       string         `json:"key"`
	Mode      CascadeMode    `json:"mode"`
	Nullified map[Entity]int `json:"nullified,omitempty"`
	Deleted   map[Entity]int `json:"deleted,omitempty"`
}

// NewCascadeResult starts an empty result for deleting key of entity.
func NewCascadeResult(entity Entity, key string, mode CascadeMode) *CascadeResult {
	return &CascadeResult{
		Entity:    entity,
		Key:       key,
		Mode:      mode,
		Nullified: map[Entity]int{},
		Deleted:   map[Entity]int{},
	}
}

// AddNullified records n dependents of entity whose foreign key was cleared.
func (r *CascadeResult) AddNullified(entity Entity, n int) {
	if n > 0 {
		r.Nullified[entity] += n
	}
}

// AddDeleted records n removed records of entity.
func (r *CascadeResult) AddDeleted(entity Entity, n int) {
	if n > 0 {
		r.Deleted[entity] += n
	}
}
