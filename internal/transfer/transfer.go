// Package transfer copies records between two stores, parents first.
package transfer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/repositories"
	"github.com/yigit/ssis/internal/pkg/helpers"
)

// Report counts what Copy did per entity.
type Report struct {
	Copied  map[models.Entity]int
	Skipped map[models.Entity]int
}

func newReport() *Report {
	return &Report{
		Copied:  map[models.Entity]int{},
		Skipped: map[models.Entity]int{},
	}
}

type lister[T any] func(ctx context.Context, rq models.ResolvedQuery) ([]T, int64, error)

type creator[T any] func(ctx context.Context, rec T) error

// Copy reads every college, program and student from src and creates it in
// dst. Records whose key already exists in dst are skipped. Records are not
// re-validated, so rows with a NULL foreign key survive the copy.
func Copy(ctx context.Context, src, dst repositories.Store, lgr zerolog.Logger) (*Report, error) {
	report := newReport()

	err := copyEntity(ctx, models.EntityCollege, src.SearchColleges, dst.CreateCollege,
		func(c *models.College) string { return c.Code }, dst, report, lgr)
	if err != nil {
		return report, err
	}
	err = copyEntity(ctx, models.EntityProgram, src.SearchPrograms, dst.CreateProgram,
		func(p *models.Program) string { return p.Code }, dst, report, lgr)
	if err != nil {
		return report, err
	}
	err = copyEntity(ctx, models.EntityStudent, src.SearchStudents, dst.CreateStudent,
		func(s *models.Student) string { return s.IDNumber }, dst, report, lgr)
	if err != nil {
		return report, err
	}
	return report, nil
}

func copyEntity[T any](
	ctx context.Context,
	e models.Entity,
	list lister[T],
	create creator[T],
	key func(T) string,
	dst repositories.RegistryRepository,
	report *Report,
	lgr zerolog.Logger,
) error {
	schema := models.SchemaFor(e)
	for page := 1; ; page++ {
		rq, err := schema.Resolve(models.ListQuery{
			Page:      page,
			Size:      helpers.MaxPageSize,
			SortField: schema.Key(),
			SortOrder: models.SortAsc,
		})
		if err != nil {
			return err
		}

		items, total, err := list(ctx, rq)
		if err != nil {
			return fmt.Errorf("read %s page %d: %w", e, page, err)
		}

		for _, item := range items {
			k := key(item)
			exists, err := dst.Exists(ctx, e, k, "")
			if err != nil {
				return fmt.Errorf("check %s %s: %w", e, k, err)
			}
			if exists {
				report.Skipped[e]++
				lgr.Debug().Str("entity", string(e)).Str("key", k).Msg("Skipping existing record")
				continue
			}
			if err := create(ctx, item); err != nil {
				return fmt.Errorf("write %s %s: %w", e, k, err)
			}
			report.Copied[e]++
		}

		if len(items) == 0 || int64(rq.Offset)+int64(len(items)) >= total {
			break
		}
	}

	lgr.Info().
		Str("entity", string(e)).
		Int("copied", report.Copied[e]).
		Int("skipped", report.Skipped[e]).
		Msg("Entity transferred")
	return nil
}
