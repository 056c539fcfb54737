package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"deltawatch/internal/domain/model"
	dsvc "deltawatch/internal/domain/service"
)

type Service struct {
	deps ServiceDeps
	step time.Duration
	fmt  *Formatter
}

func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Market == nil {
		return nil, errors.New("compare: market data source is required")
	}
	if deps.Sink == nil {
		return nil, errors.New("compare: sink is required")
	}
	step, err := dsvc.ParseResolution(deps.Resolution)
	if err != nil {
		return nil, err
	}
	if deps.Repo == nil {
		deps.Repo = NewNoopRepo()
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.MaxConcurrency <= 0 {
		deps.MaxConcurrency = 4
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		deps: deps,
		step: step,
		fmt:  NewFormatter(deps.Color),
	}, nil
}

// CheckAccount verifies the credentials against the profile endpoint. Failures are logged only.
func (s *Service) CheckAccount(ctx context.Context) (*model.Profile, error) {
	if s.deps.Account == nil {
		return nil, nil
	}
	p, err := s.deps.Account.GetAccountProfile(ctx)
	if err != nil {
		log.Error().Err(err).Msg("api connection check failed, check your api credentials")
		return nil, err
	}
	log.Info().Str("user_id", p.ID).Str("email", p.Email).Msg("api connection active")
	return p, nil
}

// Run executes one cycle, then repeats every RefreshEvery until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	if _, err := s.RunOnce(ctx); err != nil {
		return err
	}
	if s.deps.RefreshEvery <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.deps.RefreshEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = s.deps.Sink.NewLine()
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// RunOnce fetches the current price and every reference price, renders and journals the report.
// Fetch failures end up as absent values in the report; only sink failures are returned.
func (s *Service) RunOnce(ctx context.Context) (*model.Report, error) {
	now := s.deps.Now()
	report := s.Collect(ctx, now)

	if err := s.deps.Sink.WriteReport(now, s.fmt.Render(report)); err != nil {
		return report, fmt.Errorf("write report: %w", err)
	}
	if err := s.deps.Repo.InsertReport(ctx, report); err != nil {
		log.Warn().Err(err).Msg("journal report failed")
	}
	return report, nil
}

// Collect builds a report for the cycle starting at now.
func (s *Service) Collect(ctx context.Context, now time.Time) *model.Report {
	report := &model.Report{
		Symbol:      s.deps.Symbol,
		GeneratedAt: now,
		Comparisons: make([]model.Comparison, len(s.deps.Targets)),
	}

	q, err := s.deps.Market.GetCurrentPrice(ctx, s.deps.Symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", s.deps.Symbol).Msg("current price unavailable")
		report.CurrentErr = err
	} else {
		report.Current = decimal.NewNullDecimal(q.Price)
	}

	// 各时点互不依赖，并发拉取；按下标写回保证归属正确
	var g errgroup.Group
	g.SetLimit(s.deps.MaxConcurrency)
	for i, target := range s.deps.Targets {
		i, target := i, target
		g.Go(func() error {
			report.Comparisons[i] = s.compareAt(ctx, now, target, report.Current)
			return nil
		})
	}
	_ = g.Wait()

	return report
}

func (s *Service) compareAt(ctx context.Context, now time.Time, target model.TimeTarget, current decimal.NullDecimal) model.Comparison {
	instant := dsvc.ResolveTarget(now, target, s.deps.Location, s.deps.Policy)
	start, end := dsvc.CandleWindow(instant, s.step)

	c := model.Comparison{Label: target.String(), Target: instant}

	px, err := s.deps.Market.GetCandleClose(ctx, s.deps.Symbol, start, end, s.deps.Resolution)
	if err != nil {
		log.Warn().
			Err(err).
			Str("target", c.Label).
			Time("instant", instant).
			Msg("historical price unavailable")
		c.Err = err
		return c
	}

	c.Reference = decimal.NewNullDecimal(px)
	c.Change, c.HasChange = dsvc.PercentChange(c.Reference, current)
	return c
}
