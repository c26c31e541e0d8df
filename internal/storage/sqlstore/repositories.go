package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/pkg/helpers"
	"github.com/yigit/ssis/internal/pkg/logger"
)

var collegeMapper = mapper[models.College]{
	entity: models.EntityCollege,
	values: func(c *models.College) []interface{} {
		return []interface{}{c.Code, c.Name}
	},
	scan: func(row scanner) (*models.College, error) {
		c := &models.College{}
		if err := row.Scan(&c.Code, &c.Name); err != nil {
			return nil, err
		}
		return c, nil
	},
}

var programMapper = mapper[models.Program]{
	entity: models.EntityProgram,
	values: func(p *models.Program) []interface{} {
		return []interface{}{p.Code, p.Name, helpers.GetNullString(p.CollegeCode)}
	},
	scan: func(row scanner) (*models.Program, error) {
		p := &models.Program{}
		var college sql.NullString
		if err := row.Scan(&p.Code, &p.Name, &college); err != nil {
			return nil, err
		}
		p.CollegeCode = helpers.FromNullString(college)
		return p, nil
	},
}

var studentMapper = mapper[models.Student]{
	entity: models.EntityStudent,
	values: func(s *models.Student) []interface{} {
		return []interface{}{s.IDNumber, s.FirstName, s.LastName, s.YearLevel, s.Gender, helpers.GetNullString(s.ProgramCode)}
	},
	scan: func(row scanner) (*models.Student, error) {
		s := &models.Student{}
		var program sql.NullString
		if err := row.Scan(&s.IDNumber, &s.FirstName, &s.LastName, &s.YearLevel, &s.Gender, &program); err != nil {
			return nil, err
		}
		s.ProgramCode = helpers.FromNullString(program)
		return s, nil
	},
}

// CreateCollege inserts a college
func (s *Store) CreateCollege(ctx context.Context, college *models.College) error {
	return create(ctx, s, collegeMapper, college)
}

// GetCollegeByCode retrieves a college by code
func (s *Store) GetCollegeByCode(ctx context.Context, code string) (*models.College, error) {
	return get(ctx, s, collegeMapper, code)
}

// UpdateCollege updates the college stored under oldCode
func (s *Store) UpdateCollege(ctx context.Context, oldCode string, college *models.College) error {
	return update(ctx, s, collegeMapper, oldCode, college)
}

// DeleteCollege deletes a college and cascades to its programs
func (s *Store) DeleteCollege(ctx context.Context, code string) (*models.CascadeResult, error) {
	return s.remove(ctx, models.EntityCollege, code)
}

// SearchColleges returns one page of matching colleges and the match total
func (s *Store) SearchColleges(ctx context.Context, rq models.ResolvedQuery) ([]*models.College, int64, error) {
	return search(ctx, s, collegeMapper, rq)
}

// CreateProgram inserts a program
func (s *Store) CreateProgram(ctx context.Context, program *models.Program) error {
	return create(ctx, s, programMapper, program)
}

// GetProgramByCode retrieves a program by code
func (s *Store) GetProgramByCode(ctx context.Context, code string) (*models.Program, error) {
	return get(ctx, s, programMapper, code)
}

// UpdateProgram updates the program stored under oldCode
func (s *Store) UpdateProgram(ctx context.Context, oldCode string, program *models.Program) error {
	return update(ctx, s, programMapper, oldCode, program)
}

// DeleteProgram deletes a program and cascades to its students
func (s *Store) DeleteProgram(ctx context.Context, code string) (*models.CascadeResult, error) {
	return s.remove(ctx, models.EntityProgram, code)
}

// SearchPrograms returns one page of matching programs and the match total
func (s *Store) SearchPrograms(ctx context.Context, rq models.ResolvedQuery) ([]*models.Program, int64, error) {
	return search(ctx, s, programMapper, rq)
}

// CreateStudent inserts a student
func (s *Store) CreateStudent(ctx context.Context, student *models.Student) error {
	return create(ctx, s, studentMapper, student)
}

// GetStudentByID retrieves a student by ID number
func (s *Store) GetStudentByID(ctx context.Context, idNumber string) (*models.Student, error) {
	return get(ctx, s, studentMapper, idNumber)
}

// UpdateStudent updates the student stored under oldID
func (s *Store) UpdateStudent(ctx context.Context, oldID string, student *models.Student) error {
	return update(ctx, s, studentMapper, oldID, student)
}

// DeleteStudent deletes a student
func (s *Store) DeleteStudent(ctx context.Context, idNumber string) (*models.CascadeResult, error) {
	return s.remove(ctx, models.EntityStudent, idNumber)
}

// SearchStudents returns one page of matching students and the match total
func (s *Store) SearchStudents(ctx context.Context, rq models.ResolvedQuery) ([]*models.Student, int64, error) {
	return search(ctx, s, studentMapper, rq)
}

func foldEq(column, value string) squirrel.Sqlizer {
	return squirrel.Expr(fmt.Sprintf("LOWER(%s) = LOWER(?)", column), value)
}

// Exists reports whether key is taken by a record other than excludeKey
func (s *Store) Exists(ctx context.Context, e models.Entity, key, excludeKey string) (bool, error) {
	schema := models.SchemaFor(e)
	where := squirrel.And{foldEq(schema.Key(), key)}
	if excludeKey != "" {
		where = append(where, squirrel.Expr(fmt.Sprintf("LOWER(%s) <> LOWER(?)", schema.Key()), excludeKey))
	}

	query, args, err := s.sb.Select("COUNT(*)").From(schema.Table).Where(where).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build %s exists query: %w", e, err)
	}

	var n int64
	if err := s.db.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		logger.Error().Err(err).Str("entity", string(e)).Str("key", key).Msg("Error checking key")
		return false, fmt.Errorf("error checking %s key: %w", e, err)
	}
	return n > 0, nil
}

// FindKey returns the stored spelling of key, preferring an exact match
func (s *Store) FindKey(ctx context.Context, e models.Entity, key string) (string, bool, error) {
	keys, err := s.selectKeys(ctx, s.db.DB, e, foldEq(models.SchemaFor(e).Key(), key))
	if err != nil {
		return "", false, err
	}
	if len(keys) == 0 {
		return "", false, nil
	}
	for _, k := range keys {
		if k == key {
			return k, true, nil
		}
	}
	return keys[0], true, nil
}

// ListCodes returns every key of e in ascending order
func (s *Store) ListCodes(ctx context.Context, e models.Entity) ([]string, error) {
	keys, err := s.selectKeys(ctx, s.db.DB, e, squirrel.Expr("1 = 1"))
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Count returns the number of records of e
func (s *Store) Count(ctx context.Context, e models.Entity) (int64, error) {
	query, args, err := s.sb.Select("COUNT(*)").From(models.SchemaFor(e).Table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s count query: %w", e, err)
	}

	var n int64
	if err := s.db.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		logger.Error().Err(err).Str("entity", string(e)).Msg("Error counting records")
		return 0, fmt.Errorf("error counting %s: %w", e, err)
	}
	return n, nil
}
