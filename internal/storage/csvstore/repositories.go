package csvstore

import (
	"context"
	"sort"
	"strings"

	"github.com/yigit/ssis/internal/app/models"
)

// CreateCollege appends a college
func (s *Store) CreateCollege(ctx context.Context, college *models.College) error {
	return create(ctx, s, collegeCodec, college)
}

// GetCollegeByCode returns the college stored under code
func (s *Store) GetCollegeByCode(ctx context.Context, code string) (*models.College, error) {
	return get(ctx, s, collegeCodec, code)
}

// UpdateCollege replaces a college, renaming dependents on a code change
func (s *Store) UpdateCollege(ctx context.Context, oldCode string, college *models.College) error {
	return update(ctx, s, collegeCodec, oldCode, college)
}

// DeleteCollege deletes a college and cascades to its programs
func (s *Store) DeleteCollege(ctx context.Context, code string) (*models.CascadeResult, error) {
	return s.remove(ctx, models.EntityCollege, code)
}

// SearchColleges returns one page of matching colleges and the match total
func (s *Store) SearchColleges(ctx context.Context, rq models.ResolvedQuery) ([]*models.College, int64, error) {
	return search(ctx, s, collegeCodec, rq)
}

// CreateProgram appends a program
func (s *Store) CreateProgram(ctx context.Context, program *models.Program) error {
	return create(ctx, s, programCodec, program)
}

// GetProgramByCode returns the program stored under code
func (s *Store) GetProgramByCode(ctx context.Context, code string) (*models.Program, error) {
	return get(ctx, s, programCodec, code)
}

// UpdateProgram replaces a program, renaming dependents on a code change
func (s *Store) UpdateProgram(ctx context.Context, oldCode string, program *models.Program) error {
	return update(ctx, s, programCodec, oldCode, program)
}

// DeleteProgram deletes a program and cascades to its students
func (s *Store) DeleteProgram(ctx context.Context, code string) (*models.CascadeResult, error) {
	return s.remove(ctx, models.EntityProgram, code)
}

// SearchPrograms returns one page of matching programs and the match total
func (s *Store) SearchPrograms(ctx context.Context, rq models.ResolvedQuery) ([]*models.Program, int64, error) {
	return search(ctx, s, programCodec, rq)
}

// CreateStudent appends a student
func (s *Store) CreateStudent(ctx context.Context, student *models.Student) error {
	return create(ctx, s, studentCodec, student)
}

// GetStudentByID returns the student stored under idNumber
func (s *Store) GetStudentByID(ctx context.Context, idNumber string) (*models.Student, error) {
	return get(ctx, s, studentCodec, idNumber)
}

// UpdateStudent replaces a student
func (s *Store) UpdateStudent(ctx context.Context, oldID string, student *models.Student) error {
	return update(ctx, s, studentCodec, oldID, student)
}

// DeleteStudent deletes a student
func (s *Store) DeleteStudent(ctx context.Context, idNumber string) (*models.CascadeResult, error) {
	return s.remove(ctx, models.EntityStudent, idNumber)
}

// SearchStudents returns one page of matching students and the match total
func (s *Store) SearchStudents(ctx context.Context, rq models.ResolvedQuery) ([]*models.Student, int64, error) {
	return search(ctx, s, studentCodec, rq)
}

func (s *Store) read(ctx context.Context, e models.Entity) (*table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(e)
}

// Exists reports whether key is taken by a record other than excludeKey
func (s *Store) Exists(ctx context.Context, e models.Entity, key, excludeKey string) (bool, error) {
	t, err := s.read(ctx, e)
	if err != nil {
		return false, err
	}
	for _, row := range t.rows {
		if strings.EqualFold(row[0], key) && (excludeKey == "" || !strings.EqualFold(row[0], excludeKey)) {
			return true, nil
		}
	}
	return false, nil
}

// FindKey returns the stored spelling of key
func (s *Store) FindKey(ctx context.Context, e models.Entity, key string) (string, bool, error) {
	t, err := s.read(ctx, e)
	if err != nil {
		return "", false, err
	}
	if i := t.find(key); i >= 0 {
		return t.rows[i][0], true, nil
	}
	if i := t.findFold(key); i >= 0 {
		return t.rows[i][0], true, nil
	}
	return "", false, nil
}

// ListCodes returns every key of e in ascending order
func (s *Store) ListCodes(ctx context.Context, e models.Entity) ([]string, error) {
	t, err := s.read(ctx, e)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(t.rows))
	for i, row := range t.rows {
		codes[i] = row[0]
	}
	sort.Strings(codes)
	return codes, nil
}

// Count returns the number of records of e
func (s *Store) Count(ctx context.Context, e models.Entity) (int64, error) {
	t, err := s.read(ctx, e)
	if err != nil {
		return 0, err
	}
	return int64(len(t.rows)), nil
}
