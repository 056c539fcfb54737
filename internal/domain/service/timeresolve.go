package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"deltawatch/internal/domain/model"
)

// FuturePolicy decides what happens when a target time has not happened yet today.
type FuturePolicy int

const (
	// FuturePolicyPreviousDay moves a future target back by one day.
	FuturePolicyPreviousDay FuturePolicy = iota
	// FuturePolicyKeep leaves a future target as is; the candle query will come back empty.
	FuturePolicyKeep
)

func ParseFuturePolicy(s string) (FuturePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "previous_day":
		return FuturePolicyPreviousDay, nil
	case "keep":
		return FuturePolicyKeep, nil
	default:
		return 0, fmt.Errorf("unknown future policy %q", s)
	}
}

func (p FuturePolicy) String() string {
	if p == FuturePolicyKeep {
		return "keep"
	}
	return "previous_day"
}

// ResolveTarget combines target with the calendar date of now in loc and returns the UTC instant.
func ResolveTarget(now time.Time, target model.TimeTarget, loc *time.Location, policy FuturePolicy) time.Time {
	local := now.In(loc)
	t := time.Date(local.Year(), local.Month(), local.Day(), target.Hour, target.Minute, target.Second, 0, loc)
	if t.After(now) && policy == FuturePolicyPreviousDay {
		t = t.AddDate(0, 0, -1)
	}
	return t.UTC()
}

// CandleWindow returns the query window for the candle ending at instant.
func CandleWindow(instant time.Time, step time.Duration) (start, end time.Time) {
	end = instant
	start = end.Add(-step)
	return start, end
}

// ParseOffset parses a fixed UTC offset such as "+05:30", "-04:00" or "UTC".
func ParseOffset(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "UTC") || s == "Z" {
		return time.UTC, nil
	}
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return nil, fmt.Errorf("invalid utc offset %q: want ±HH:MM", s)
	}
	h, err := strconv.Atoi(s[1:3])
	if err != nil || h > 14 {
		return nil, fmt.Errorf("invalid utc offset %q", s)
	}
	m, err := strconv.Atoi(s[4:6])
	if err != nil || m > 59 {
		return nil, fmt.Errorf("invalid utc offset %q", s)
	}
	secs := h*3600 + m*60
	if s[0] == '-' {
		secs = -secs
	}
	return time.FixedZone("UTC"+s, secs), nil
}

var resolutions = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// ParseResolution maps a candle resolution code to its duration.
// Codes are case sensitive: "1m" is one minute.
func ParseResolution(code string) (time.Duration, error) {
	d, ok := resolutions[strings.TrimSpace(code)]
	if !ok {
		return 0, fmt.Errorf("unsupported candle resolution %q", code)
	}
	return d, nil
}
