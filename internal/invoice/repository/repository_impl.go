package repository

import (
	"context"
	"time"

	"github.com/smallledger/arview/internal/invoice/domain"
	"github.com/smallledger/arview/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByQboID(ctx context.Context, db *gorm.DB, qboID string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).
		Where("qbo_id = ?", qboID).
		Limit(1).
		Find(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Save(inv).Error
}

func (r *repo) Page(ctx context.Context, db *gorm.DB, filter domain.PageFilter, page pagination.Pagination) ([]domain.Invoice, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		stmt = stmt.Where("lower(customer_name) LIKE lower(?)", "%"+filter.Query+"%")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []domain.Invoice
	err := stmt.
		Order("id desc").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *repo) AggregateByStatus(ctx context.Context, db *gorm.DB) ([]domain.StatusAggregate, error) {
	var rows []domain.StatusAggregate
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Select("status, count(*) as count, coalesce(sum(balance), 0) as amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) WithPositiveBalance(ctx context.Context, db *gorm.DB) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Where("balance > 0").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) OverdueCandidates(ctx context.Context, db *gorm.DB) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Where("balance > 0 AND due_date IS NOT NULL").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// OverdueCount takes today as a parameter instead of relying on the
// database's current_date, which drifts across dialects and time zones.
func (r *repo) OverdueCount(ctx context.Context, db *gorm.DB, today time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("balance > 0 AND due_date IS NOT NULL AND due_date < ?", today).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
