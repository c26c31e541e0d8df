package models

import (
	"fmt"
	"strings"
)

// Entity names one of the three record kinds kept by the registry
type Entity string

const (
	EntityCollege Entity = "college"
	EntityProgram Entity = "program"
	EntityStudent Entity = "student"
)

// Entities lists every entity in parent-before-child order.
var Entities = []Entity{EntityCollege, EntityProgram, EntityStudent}

// ParseEntity accepts singular or plural entity names, case-insensitively.
func ParseEntity(name string) (Entity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "college", "colleges":
		return EntityCollege, nil
	case "program", "programs":
		return EntityProgram, nil
	case "student", "students":
		return EntityStudent, nil
	}
	return "", fmt.Errorf("unknown entity %q", name)
}

// Field describes one stored column of an entity
type Field struct {
	Column  string
	Label   string
	Numeric bool
}

// Schema describes how an entity is laid out in storage. The first field is the key.
type Schema struct {
	Entity      Entity
	Table       string
	File        string
	Fields      []Field
	DefaultSort string
	DefaultDesc bool
}

// Key returns the key column name.
func (s *Schema) Key() string {
	return s.Fields[0].Column
}

// Columns returns the column names in storage order.
func (s *Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Column
	}
	return cols
}

// Header returns the CSV header row.
func (s *Schema) Header() []string {
	labels := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		labels[i] = f.Label
	}
	return labels
}

// Index returns the position of column, or -1.
func (s *Schema) Index(column string) int {
	for i, f := range s.Fields {
		if f.Column == column {
			return i
		}
	}
	return -1
}

// Lookup resolves a display label ("ID Number") or a column name ("id_number").
func (s *Schema) Lookup(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for _, f := range s.Fields {
		if strings.EqualFold(f.Label, name) || strings.EqualFold(f.Column, name) {
			return f, true
		}
	}
	return Field{}, false
}

var schemas = map[Entity]*Schema{
	EntityCollege: {
		Entity: EntityCollege,
		Table:  "college",
		File:   "colleges.csv",
		Fields: []Field{
			{Column: "college_code", Label: "College Code"},
			{Column: "college_name", Label: "College Name"},
		},
		DefaultSort: "college_code",
	},
	EntityProgram: {
		Entity: EntityProgram,
		Table:  "program",
		File:   "programs.csv",
		Fields: []Field{
			{Column: "program_code", Label: "Program Code"},
			{Column: "program_name", Label: "Program Name"},
			{Column: "college_code", Label: "College"},
		},
		DefaultSort: "program_code",
	},
	EntityStudent: {
		Entity: EntityStudent,
		Table:  "student",
		File:   "students.csv",
		Fields: []Field{
			{Column: "id_number", Label: "ID Number"},
			{Column: "first_name", Label: "First Name"},
			{Column: "last_name", Label: "Last Name"},
			{Column: "year_level", Label: "Year Level", Numeric: true},
			{Column: "gender", Label: "Gender"},
			{Column: "program_code", Label: "Program"},
		},
		DefaultSort: "id_number",
		DefaultDesc: true,
	},
}

// SchemaFor returns the storage schema of e. It panics on an unknown entity.
func SchemaFor(e Entity) *Schema {
	s, ok := schemas[e]
	if !ok {
		panic(fmt.Sprintf("models: no schema for entity %q", e))
	}
	return s
}

// Relation is one edge of the dependency map: Child.Column references Parent's key.
type Relation struct {
	Parent Entity
	Child  Entity
	Column string
}

// Relations is the static dependency map.
var Relations = []Relation{
	{Parent: EntityCollege, Child: EntityProgram, Column: "college_code"},
	{Parent: EntityProgram, Child: EntityStudent, Column: "program_code"},
}

// Dependents returns the relations in which parent is the referenced side.
func Dependents(parent Entity) []Relation {
	var out []Relation
	for _, r := range Relations {
		if r.Parent == parent {
			out = append(out, r)
		}
	}
	return out
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ParentOf returns the relation in which child holds the foreign key.
func ParentOf(child Entity) (Relation, bool) {
	for _, r := range Relations {
		if r.Child == child {
			return r, true
		}
	}
	return Relation{}, false
}
