package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// InvoiceView is the read model served to the frontend: stored fields plus
// derived overdue/aging fields computed at response time. Never persisted.
type InvoiceView struct {
	ID           snowflake.ID    `json:"id"`
	QboID        string          `json:"qboId"`
	CustomerName string          `json:"customerName"`
	Status       InvoiceStatus   `json:"status"`
	TotalAmt     decimal.Decimal `json:"totalAmt"`
	Balance      decimal.Decimal `json:"balance"`
	TxnDate      *string         `json:"txnDate"`
	DueDate      *string         `json:"dueDate"`
	Overdue      bool            `json:"overdue"`
	DaysUntilDue int             `json:"daysUntilDue"`
	AgingBucket  string          `json:"agingBucket"`
}

// NewInvoiceView derives the view for one invoice relative to today.
func NewInvoiceView(inv Invoice, today time.Time) InvoiceView {
	return InvoiceView{
		ID:           inv.ID,
		QboID:        inv.QboID,
		CustomerName: inv.CustomerName,
		Status:       inv.Status,
		TotalAmt:     inv.TotalAmt,
		Balance:      inv.Balance,
		TxnDate:      formatDate(inv.TxnDate),
		DueDate:      formatDate(inv.DueDate),
		Overdue:      IsOverdue(inv, today),
		DaysUntilDue: DaysUntilDue(inv, today),
		AgingBucket:  AgingBucket(inv, today),
	}
}

// SummaryView is the overview card aggregate.
type SummaryView struct {
	TotalCount    int64           `json:"totalCount"`
	OpenCount     int64           `json:"openCount"`
	PartialCount  int64           `json:"partialCount"`
	PaidCount     int64           `json:"paidCount"`
	OverdueCount  int64           `json:"overdueCount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	OpenAmount    decimal.Decimal `json:"openAmount"`
	PartialAmount decimal.Decimal `json:"partialAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
}

// BucketTotal is one aging bucket's count and summed balance.
type BucketTotal struct {
	Bucket string          `json:"bucket"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
