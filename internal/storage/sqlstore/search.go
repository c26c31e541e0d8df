package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/pkg/logger"
)

// likeEscaper makes the search value match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filter builds the search predicate of rq. Column names come from the schema
// only; the search value is always a bound parameter.
func (s *Store) filter(rq models.ResolvedQuery) squirrel.Sqlizer {
	if len(rq.SearchFields) == 0 {
		return nil
	}
	pattern := "%" + likeEscaper.Replace(rq.SearchValue) + "%"
	or := make(squirrel.Or, 0, len(rq.SearchFields))
	for _, f := range rq.SearchFields {
		or = append(or, squirrel.Expr(fmt.Sprintf(`CAST(%s AS TEXT) %s ? ESCAPE '\'`, f.Column, s.like), pattern))
	}
	return or
}

// orderBy sorts on the requested field, then on the key. NULL sorts as the
// smallest value on both drivers.
func orderBy(rq models.ResolvedQuery) []string {
	dir, nulls := "ASC", "NULLS FIRST"
	if rq.Desc {
		dir, nulls = "DESC", "NULLS LAST"
	}
	clauses := []string{fmt.Sprintf("%s %s %s", rq.Sort.Column, dir, nulls)}
	if rq.Sort.Column != rq.Key.Column {
		clauses = append(clauses, rq.Key.Column+" ASC")
	}
	return clauses
}

func search[T any](ctx context.Context, s *Store, m mapper[T], rq models.ResolvedQuery) ([]*T, int64, error) {
	schema := models.SchemaFor(m.entity)
	where := s.filter(rq)

	countBuilder := s.sb.Select("COUNT(*)").From(schema.Table)
	dataBuilder := s.sb.Select(schema.Columns()...).From(schema.Table)
	if where != nil {
		countBuilder = countBuilder.Where(where)
		dataBuilder = dataBuilder.Where(where)
	}

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count %s query: %w", m.entity, err)
	}

	var total int64
	if err := s.db.DB.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("entity", string(m.entity)).Msg("Error counting search results")
		return nil, 0, fmt.Errorf("error counting %s: %w", m.entity, err)
	}
	if total == 0 {
		return []*T{}, 0, nil
	}

	dataSQL, dataArgs, err := dataBuilder.
		OrderBy(orderBy(rq)...).
		Limit(uint64(rq.Limit)).
		Offset(rq.Offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build search %s query: %w", m.entity, err)
	}

	rows, err := s.db.DB.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		logger.Error().Err(err).Str("entity", string(m.entity)).Msg("Error executing search query")
		return nil, 0, fmt.Errorf("error searching %s: %w", m.entity, err)
	}
	defer rows.Close()

	items := []*T{}
	for rows.Next() {
		rec, err := m.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning %s row: %w", m.entity, err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating %s rows: %w", m.entity, err)
	}
	return items, total, nil
}
