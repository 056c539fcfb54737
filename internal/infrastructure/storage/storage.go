package storage

import (
	"context"
	"sync"

	json "github.com/goccy/go-json"

	"deltawatch/internal/application/port"
	"deltawatch/internal/domain/model"
)

// ReportRecord is the journal form of a model.Report: prices as strings, errors as text.
type ReportRecord struct {
	Symbol       string             `json:"symbol"`
	TsMs         int64              `json:"ts_ms"`
	Current      *string            `json:"current"`
	CurrentError string             `json:"current_error,omitempty"`
	Comparisons  []ComparisonRecord `json:"comparisons"`
}

// ComparisonRecord is one (label, reference price, change) row of a report.
type ComparisonRecord struct {
	Label     string   `json:"label"`
	TargetMs  int64    `json:"target_ms"`
	Reference *string  `json:"reference"`
	ChangePct *float64 `json:"change_pct"`
	Error     string   `json:"error,omitempty"`
}

// NewReportRecord flattens a report for storage.
func NewReportRecord(r *model.Report) *ReportRecord {
	rec := &ReportRecord{
		Symbol:      r.Symbol,
		TsMs:        r.GeneratedAt.UnixMilli(),
		Comparisons: make([]ComparisonRecord, 0, len(r.Comparisons)),
	}
	if r.Current.Valid {
		s := r.Current.Decimal.String()
		rec.Current = &s
	}
	if r.CurrentErr != nil {
		rec.CurrentError = r.CurrentErr.Error()
	}

	for _, c := range r.Comparisons {
		cr := ComparisonRecord{Label: c.Label, TargetMs: c.Target.UnixMilli()}
		if c.Reference.Valid {
			s := c.Reference.Decimal.String()
			cr.Reference = &s
		}
		if c.HasChange {
			pct := c.Change
			cr.ChangePct = &pct
		}
		if c.Err != nil {
			cr.Error = c.Err.Error()
		}
		rec.Comparisons = append(rec.Comparisons, cr)
	}
	return rec
}

// Payload encodes the record as JSON.
func (r *ReportRecord) Payload() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeReportRecord parses a payload produced by Payload.
func DecodeReportRecord(payload string) (*ReportRecord, error) {
	var rec ReportRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// InMemoryReportRepository keeps records in process memory.
type InMemoryReportRepository struct {
	mu      sync.Mutex
	records []*ReportRecord
}

// NewInMemoryReportRepository creates a new in-memory repository
func NewInMemoryReportRepository() *InMemoryReportRepository {
	return &InMemoryReportRepository{
		records: make([]*ReportRecord, 0),
	}
}

func (r *InMemoryReportRepository) InsertReport(ctx context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, NewReportRecord(report))
	return nil
}

// Records returns a copy of the stored records, oldest first.
func (r *InMemoryReportRepository) Records() []*ReportRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ReportRecord, len(r.records))
	copy(out, r.records)
	return out
}

func (r *InMemoryReportRepository) Close() error {
	return nil
}

var _ port.ReportRepository = (*InMemoryReportRepository)(nil)
