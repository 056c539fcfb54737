package compare

import (
	"context"

	"deltawatch/internal/application/port"
	"deltawatch/internal/domain/model"
)

type noopRepo struct{}

func NewNoopRepo() port.ReportRepository { return &noopRepo{} }

func (n *noopRepo) InsertReport(ctx context.Context, report *model.Report) error {
	return nil
}

func (n *noopRepo) Close() error { return nil }
