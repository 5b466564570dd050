// Package domain contains the invoice model and the derivation rules for
// overdue/aging reporting.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the locally derived invoice state.
type InvoiceStatus string

const (
	StatusOpen        InvoiceStatus = "OPEN"
	StatusPartialPaid InvoiceStatus = "PARTIAL_PAID"
	StatusPaid        InvoiceStatus = "PAID"
	StatusVoid        InvoiceStatus = "VOID"
	StatusUnknown     InvoiceStatus = "UNKNOWN"
)

// Invoice is the synchronized copy of a QuickBooks Online invoice.
// Rows are written only by the sync and create services; every query
// component treats them as read-only.
type Invoice struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	QboID        string          `gorm:"column:qbo_id;uniqueIndex:ux_invoices_qbo_id;size:64" json:"qbo_id"`
	CustomerName string          `gorm:"size:255" json:"customer_name"`
	Status       InvoiceStatus   `gorm:"type:varchar(32);not null;default:'UNKNOWN'" json:"status"`
	TotalAmt     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_amt"`
	Balance      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	TxnDate      *time.Time      `gorm:"type:date" json:"txn_date"`
	DueDate      *time.Time      `gorm:"type:date" json:"due_date"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// StatusAggregate is one row of the grouped-by-status store query.
type StatusAggregate struct {
	Status InvoiceStatus
	Count  int64
	Amount decimal.Decimal
}
