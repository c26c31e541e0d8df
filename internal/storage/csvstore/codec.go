package csvstore

import (
	"fmt"
	"strconv"

	"github.com/yigit/ssis/internal/app/models"
)

// codec converts one entity between its record type and a CSV row
type codec[T any] struct {
	entity models.Entity
	encode func(*T) []string
	decode func([]string) (*T, error)
}

func (c codec[T]) decodeAll(rows [][]string) ([]*T, error) {
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		rec, err := c.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

var collegeCodec = codec[models.College]{
	entity: models.EntityCollege,
	encode: func(c *models.College) []string {
		return []string{c.Code, c.Name}
	},
	decode: func(row []string) (*models.College, error) {
		return &models.College{Code: row[0], Name: row[1]}, nil
	},
}

var programCodec = codec[models.Program]{
	entity: models.EntityProgram,
	encode: func(p *models.Program) []string {
		return []string{p.Code, p.Name, cell(p.CollegeCode)}
	},
	decode: func(row []string) (*models.Program, error) {
		return &models.Program{Code: row[0], Name: row[1], CollegeCode: nullable(row[2])}, nil
	},
}

var studentCodec = codec[models.Student]{
	entity: models.EntityStudent,
	encode: func(s *models.Student) []string {
		return []string{s.IDNumber, s.FirstName, s.LastName, strconv.Itoa(s.YearLevel), s.Gender, cell(s.ProgramCode)}
	},
	decode: func(row []string) (*models.Student, error) {
		year := 0
		if row[3] != "" {
			n, err := strconv.Atoi(row[3])
			if err != nil {
				return nil, fmt.Errorf("student %s: invalid year level %q: %w", row[0], row[3], err)
			}
			year = n
		}
		return &models.Student{
			IDNumber:    row[0],
			FirstName:   row[1],
			LastName:    row[2],
			YearLevel:   year,
			Gender:      row[4],
			ProgramCode: nullable(row[5]),
		}, nil
	},
}
