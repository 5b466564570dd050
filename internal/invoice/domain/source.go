package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RawInvoice is one invoice record as returned by the external accounting
// platform, already reduced to the fields the reconciler maps.
type RawInvoice struct {
	ExternalID   string
	CustomerName string
	TxnStatus    string
	TotalAmt     decimal.Decimal
	Balance      decimal.Decimal
	TxnDate      *time.Time
	DueDate      *time.Time
}

// InvoiceSource fetches raw invoice records from the accounting platform.
// The batch hint is advisory; the source may return fewer or more rows and
// guarantees no ordering.
type InvoiceSource interface {
	FetchInvoices(ctx context.Context, batch int) ([]RawInvoice, error)
}

// InvoiceCreator writes a new invoice to the accounting platform and
// returns the record as the platform stored it.
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (RawInvoice, error)
}
