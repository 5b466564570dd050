package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Granularity controls how due dates collapse into chart buckets.
type Granularity string

const (
	GranularityDay  Granularity = "day"
	GranularityWeek Granularity = "week"
)

var ErrInvalidWindow = errors.New("invalid_window")

// ParseGranularity is permissive: "week" selects weekly buckets and any
// other value falls back to daily buckets. Callers that want weekly as
// the default pass "week" for an absent parameter.
func ParseGranularity(s string) Granularity {
	if strings.EqualFold(strings.TrimSpace(s), string(GranularityWeek)) {
		return GranularityWeek
	}
	return GranularityDay
}

// OverdueBucket is one due-date bucket's summed overdue balance and row
// count. BucketDate is a calendar date formatted as 2006-01-02.
type OverdueBucket struct {
	BucketDate string          `json:"bucketDate"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int64           `json:"count"`
}

// OverdueByDueDateRequest is an inclusive date window plus granularity.
type OverdueByDueDateRequest struct {
	From        time.Time
	To          time.Time
	Granularity Granularity
}

// Service aggregates currently-overdue invoices by due date for trend
// charts.
type Service interface {
	OverdueByDueDate(ctx context.Context, req OverdueByDueDateRequest) ([]OverdueBucket, error)
}
