package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// RankMode selects the comparator used to order customer risk rows.
type RankMode string

const (
	RankByAmount  RankMode = "AMOUNT"
	RankByMaxDays RankMode = "MAX_DAYS"
	RankByRatio   RankMode = "RATIO"
)

var ErrInvalidMode = errors.New("invalid_mode")

// ParseRankMode accepts the mode case-insensitively. Blank defaults to
// AMOUNT; anything else is a validation error.
func ParseRankMode(s string) (RankMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(RankByAmount):
		return RankByAmount, nil
	case string(RankByMaxDays):
		return RankByMaxDays, nil
	case string(RankByRatio):
		return RankByRatio, nil
	default:
		return "", ErrInvalidMode
	}
}

// CustomerRisk is one customer's accumulated overdue exposure. Derived per
// request from the overdue invoice set; never persisted.
type CustomerRisk struct {
	CustomerName   string          `json:"customerName"`
	InvoiceCount   int             `json:"invoiceCount"`
	TotalBilled    decimal.Decimal `json:"totalBilled"`
	OverdueAmount  decimal.Decimal `json:"overdueAmount"`
	MaxDaysPastDue int             `json:"maxDaysPastDue"`
	OverdueRatio   decimal.Decimal `json:"overdueRatio"`
}
