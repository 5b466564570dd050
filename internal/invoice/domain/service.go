package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallledger/arview/pkg/db/pagination"
)

type PageViewsRequest struct {
	pagination.Pagination
	Status string
	Query  string
}

type PageOverdueRequest struct {
	pagination.Pagination
	Bucket string
	Query  string
}

type CreateInvoiceRequest struct {
	Amount       decimal.Decimal
	CustomerName string
	ItemName     string
	DaysUntilDue *int
	Note         string
}

// QueryService serves the derived read models. All derivations are
// relative to "today" at call time.
type QueryService interface {
	PageViews(ctx context.Context, req PageViewsRequest) (pagination.Page[InvoiceView], error)
	PageOverdue(ctx context.Context, req PageOverdueRequest) (pagination.Page[InvoiceView], error)
	Aging(ctx context.Context) ([]BucketTotal, error)
	OverdueAging(ctx context.Context) ([]BucketTotal, error)
	Summary(ctx context.Context) (SummaryView, error)
}

// SyncService reconciles the external source into the local store.
type SyncService interface {
	Sync(ctx context.Context, batch int) (int, error)
}

// CreateService creates an invoice upstream and mirrors it locally.
type CreateService interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
}

var (
	ErrInvalidAmount = errors.New("invalid_amount")
)
