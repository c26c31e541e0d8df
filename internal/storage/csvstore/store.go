// Package csvstore keeps the registry in three CSV files, one per entity.
package csvstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/repositories"
	"github.com/yigit/ssis/internal/pkg/helpers"
	"github.com/yigit/ssis/internal/pkg/logger"
)

var _ repositories.Store = (*Store)(nil)

// Store is a CSV-backed repositories.Store. Every operation re-reads the
// files it touches; mutations hold the write lock for their whole duration.
type Store struct {
	dir  string
	mode models.CascadeMode
	mu   sync.RWMutex
}

// New opens the CSV files under dir, creating the directory and any missing
// file with just its header.
func New(dir string, mode models.CascadeMode) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{dir: dir, mode: mode}
	for _, e := range models.Entities {
		path := s.path(e)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := WriteFile(path, models.SchemaFor(e), nil); err != nil {
			return nil, err
		}
		logger.Info().Str("file", path).Msg("Created empty CSV file")
	}
	return s, nil
}

// Open opens an existing data directory without creating anything. Every
// entity file must already be present.
func Open(dir string, mode models.CascadeMode) (*Store, error) {
	s := &Store{dir: dir, mode: mode}
	for _, e := range models.Entities {
		path := s.path(e)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s file: %w", e, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
	}
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// CascadeMode returns the configured cascade mode.
func (s *Store) CascadeMode() models.CascadeMode {
	return s.mode
}

// Close is a no-op; files are not held open between operations.
func (s *Store) Close() error {
	return nil
}

func (s *Store) path(e models.Entity) string {
	return filepath.Join(s.dir, models.SchemaFor(e).File)
}

func (s *Store) load(e models.Entity) (*table, error) {
	schema := models.SchemaFor(e)
	rows, err := ReadFile(s.path(e), schema)
	if err != nil {
		return nil, err
	}
	return &table{schema: schema, rows: rows}, nil
}

func (s *Store) save(t *table) error {
	if err := WriteFile(s.path(t.schema.Entity), t.schema, t.rows); err != nil {
		logger.Error().Err(err).Str("entity", string(t.schema.Entity)).Msg("Error writing CSV file")
		return err
	}
	return nil
}

// checkParent verifies the foreign key of row, normalising an empty value to the sentinel.
func (s *Store) checkParent(e models.Entity, row []string) error {
	rel, ok := models.ParentOf(e)
	if !ok {
		return nil
	}
	idx := models.SchemaFor(e).Index(rel.Column)
	fk := nullable(row[idx])
	if fk == nil {
		row[idx] = Null
		return nil
	}

	parent, err := s.load(rel.Parent)
	if err != nil {
		return err
	}
	if parent.find(*fk) < 0 {
		return rel.MissingParent(*fk)
	}
	return nil
}

func create[T any](ctx context.Context, s *Store, c codec[T], rec *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(c.entity)
	if err != nil {
		return err
	}
	row := c.encode(rec)
	if t.find(row[0]) >= 0 {
		return c.entity.AlreadyExists()
	}
	if err := s.checkParent(c.entity, row); err != nil {
		return err
	}

	t.rows = append(t.rows, row)
	return s.save(t)
}

func get[T any](ctx context.Context, s *Store, c codec[T], key string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.load(c.entity)
	if err != nil {
		return nil, err
	}
	i := t.find(key)
	if i < 0 {
		return nil, c.entity.NotFound()
	}
	return c.decode(t.rows[i])
}

func update[T any](ctx context.Context, s *Store, c codec[T], oldKey string, rec *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(c.entity)
	if err != nil {
		return err
	}
	i := t.find(oldKey)
	if i < 0 {
		return c.entity.NotFound()
	}
	row := c.encode(rec)
	newKey := row[0]
	if newKey != oldKey && t.find(newKey) >= 0 {
		return c.entity.AlreadyExists()
	}
	if err := s.checkParent(c.entity, row); err != nil {
		return err
	}

	if newKey != oldKey {
		for _, rel := range models.Dependents(c.entity) {
			n, err := s.rewriteForeignKey(rel, []string{oldKey}, newKey)
			if err != nil {
				return err
			}
			logger.Debug().Str("entity", string(rel.Child)).Int("count", n).
				Str("from", oldKey).Str("to", newKey).Msg("Propagated key change")
		}
	}

	t.rows[i] = row
	return s.save(t)
}

// rewriteForeignKey sets rel.Column to value on every child row referencing one of keys.
func (s *Store) rewriteForeignKey(rel models.Relation, keys []string, value string) (int, error) {
	child, err := s.load(rel.Child)
	if err != nil {
		return 0, err
	}
	idx := child.schema.Index(rel.Column)
	n := 0
	for _, row := range child.rows {
		if contains(keys, row[idx]) {
			row[idx] = value
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, s.save(child)
}

func (s *Store) remove(ctx context.Context, e models.Entity, key string) (*models.CascadeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load(e)
	if err != nil {
		return nil, err
	}
	i := t.find(key)
	if i < 0 {
		return nil, e.NotFound()
	}

	result := models.NewCascadeResult(e, key, s.mode)
	if err := s.cascade(e, []string{key}, result); err != nil {
		return nil, err
	}

	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	if err := s.save(t); err != nil {
		return nil, err
	}
	result.AddDeleted(e, 1)
	return result, nil
}

// cascade applies the cascade mode to every dependent of the parent rows in keys.
// Child files are written before their parent.
func (s *Store) cascade(parent models.Entity, keys []string, result *models.CascadeResult) error {
	for _, rel := range models.Dependents(parent) {
		if s.mode == models.CascadeNullify {
			n, err := s.rewriteForeignKey(rel, keys, Null)
			if err != nil {
				return err
			}
			result.AddNullified(rel.Child, n)
			continue
		}

		child, err := s.load(rel.Child)
		if err != nil {
			return err
		}
		idx := child.schema.Index(rel.Column)
		var kept [][]string
		var removed []string
		for _, row := range child.rows {
			if contains(keys, row[idx]) {
				removed = append(removed, row[0])
				continue
			}
			kept = append(kept, row)
		}
		if len(removed) == 0 {
			continue
		}
		if err := s.cascade(rel.Child, removed, result); err != nil {
			return err
		}
		child.rows = kept
		if err := s.save(child); err != nil {
			return err
		}
		result.AddDeleted(rel.Child, len(removed))
	}
	return nil
}

func search[T any](ctx context.Context, s *Store, c codec[T], rq models.ResolvedQuery) ([]*T, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	t, err := s.load(c.entity)
	s.mu.RUnlock()
	if err != nil {
		return nil, 0, err
	}

	rows := filterRows(t, rq)
	sortRows(t.schema, rows, rq)

	start, end := helpers.CalculateSliceIndices(rq.Page, rq.Limit, len(rows))
	items, err := c.decodeAll(rows[start:end])
	if err != nil {
		return nil, 0, err
	}
	return items, int64(len(rows)), nil
}

func filterRows(t *table, rq models.ResolvedQuery) [][]string {
	if len(rq.SearchFields) == 0 {
		return t.rows
	}
	needle := strings.ToLower(rq.SearchValue)
	var out [][]string
	for _, row := range t.rows {
		for _, f := range rq.SearchFields {
			if strings.Contains(strings.ToLower(plain(row[t.schema.Index(f.Column)])), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func sortRows(schema *models.Schema, rows [][]string, rq models.ResolvedQuery) {
	col := schema.Index(rq.Sort.Column)
	if col < 0 {
		col = 0
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareCells(plain(rows[i][col]), plain(rows[j][col]), rq.Sort.Numeric)
		if c == 0 {
			return rows[i][0] < rows[j][0]
		}
		if rq.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareCells(a, b string, numeric bool) int {
	if numeric {
		x, errA := strconv.Atoi(a)
		y, errB := strconv.Atoi(b)
		if errA == nil && errB == nil {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(a, b)
}

func contains(keys []string, v string) bool {
	for _, k := range keys {
		if k == v {
			return true
		}
	}
	return false
}
