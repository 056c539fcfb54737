package composite

import (
	"context"
	"errors"

	"deltawatch/internal/application/port"
	"deltawatch/internal/domain/model"
)

type Repo struct {
	repos []port.ReportRepository
}

func New(repos ...port.ReportRepository) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.ReportRepository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

func (r *Repo) Len() int { return len(r.repos) }

func (r *Repo) InsertReport(ctx context.Context, report *model.Report) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.InsertReport(ctx, report); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) Close() error {
	var errs []error
	for _, repo := range r.repos {
		if err := repo.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ port.ReportRepository = (*Repo)(nil)
