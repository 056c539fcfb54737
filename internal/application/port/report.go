package port

import (
	"context"

	"deltawatch/internal/domain/model"
)

// ReportRepository 报告日志（只写），从不作为计算输入读回
type ReportRepository interface {
	InsertReport(ctx context.Context, report *model.Report) error
	Close() error
}
