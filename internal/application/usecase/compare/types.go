package compare

import (
	"time"

	"deltawatch/internal/application/port"
	"deltawatch/internal/domain/model"
	dsvc "deltawatch/internal/domain/service"
)

type MarketData = port.MarketData

type ServiceDeps struct {
	Market  port.MarketData
	Account port.AccountReader // optional: nil skips the startup account check
	Sink    port.Sink
	Repo    port.ReportRepository

	Symbol     string
	Resolution string
	Location   *time.Location
	Policy     dsvc.FuturePolicy
	Targets    []model.TimeTarget

	RefreshEvery   time.Duration // <= 0 runs a single cycle
	MaxConcurrency int
	Color          bool

	// Now defaults to time.Now
	Now func() time.Time
}
