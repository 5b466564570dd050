package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// statusRule is one entry of the ordered derivation table. First match wins.
type statusRule struct {
	matches func(txnStatus string, total, balance decimal.Decimal) bool
	status  InvoiceStatus
}

var statusRules = []statusRule{
	{
		// Upstream void wins over any amount relationship.
		matches: func(txnStatus string, _, _ decimal.Decimal) bool {
			return strings.EqualFold(txnStatus, "VOID")
		},
		status: StatusVoid,
	},
	{
		matches: func(_ string, total, balance decimal.Decimal) bool {
			return total.Sign() > 0 && balance.Sign() == 0
		},
		status: StatusPaid,
	},
	{
		matches: func(_ string, total, balance decimal.Decimal) bool {
			return balance.Equal(total) && total.Sign() > 0
		},
		status: StatusOpen,
	},
	{
		matches: func(_ string, _, balance decimal.Decimal) bool {
			return balance.Sign() > 0
		},
		status: StatusPartialPaid,
	},
}

// DeriveStatus maps the upstream transaction status and amounts onto the
// local status machine. A zero total with a zero balance intentionally
// falls through to UNKNOWN; such rows carry no payable information and the
// sync keeps them visible rather than guessing a state.
func DeriveStatus(txnStatus string, total, balance decimal.Decimal) InvoiceStatus {
	for _, rule := range statusRules {
		if rule.matches(txnStatus, total, balance) {
			return rule.status
		}
	}
	return StatusUnknown
}
