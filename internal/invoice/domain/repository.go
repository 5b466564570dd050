package domain

import (
	"context"
	"time"

	"github.com/smallledger/arview/pkg/db/pagination"
	"gorm.io/gorm"
)

// PageFilter narrows the paged invoice listing. Status is an exact match
// when non-blank; Query is a case-insensitive customer-name substring.
type PageFilter struct {
	Status string
	Query  string
}

// Repository is the invoice store port. Derived fields are never computed
// here; queries return entities and leave date arithmetic to the services
// so "today" is always the request-time clock, not the database clock.
type Repository interface {
	FindByQboID(ctx context.Context, db *gorm.DB, qboID string) (*Invoice, error)
	Save(ctx context.Context, db *gorm.DB, inv *Invoice) error
	Page(ctx context.Context, db *gorm.DB, filter PageFilter, page pagination.Pagination) ([]Invoice, int64, error)
	AggregateByStatus(ctx context.Context, db *gorm.DB) ([]StatusAggregate, error)
	WithPositiveBalance(ctx context.Context, db *gorm.DB) ([]Invoice, error)
	OverdueCandidates(ctx context.Context, db *gorm.DB) ([]Invoice, error)
	OverdueCount(ctx context.Context, db *gorm.DB, today time.Time) (int64, error)
}
