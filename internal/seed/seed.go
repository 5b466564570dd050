package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallledger/arview/internal/clock"
	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
	"gorm.io/gorm"
)

type demoInvoice struct {
	qboID        string
	customerName string
	total        string
	balance      string
	txnStatus    string
	txnDaysAgo   int
	dueInDays    int // relative to today; negative = already overdue
	noDueDate    bool
}

// Demo rows cover every status and every aging bucket so the dashboard
// has something to show in each chart.
var demoInvoices = []demoInvoice{
	{qboID: "demo-1001", customerName: "Acme Corp", total: "1200.00", balance: "1200.00", txnDaysAgo: 40, dueInDays: 30},
	{qboID: "demo-1002", customerName: "Acme Corp", total: "800.00", balance: "400.00", txnDaysAgo: 35, dueInDays: -3},
	{qboID: "demo-1003", customerName: "Globex LLC", total: "2500.00", balance: "2500.00", txnDaysAgo: 50, dueInDays: -10},
	{qboID: "demo-1004", customerName: "Globex LLC", total: "950.00", balance: "0.00", txnDaysAgo: 60, dueInDays: -20},
	{qboID: "demo-1005", customerName: "Initech", total: "4300.00", balance: "4300.00", txnDaysAgo: 100, dueInDays: -45},
	{qboID: "demo-1006", customerName: "Initech", total: "600.00", balance: "150.00", txnDaysAgo: 120, dueInDays: -75},
	{qboID: "demo-1007", customerName: "Umbrella Inc", total: "7800.00", balance: "7800.00", txnDaysAgo: 200, dueInDays: -120},
	{qboID: "demo-1008", customerName: "Stark Industries", total: "300.00", balance: "0.00", txnStatus: "VOID", txnDaysAgo: 15, dueInDays: 10},
	{qboID: "demo-1009", customerName: "", total: "420.00", balance: "420.00", txnDaysAgo: 30, dueInDays: -8},
	{qboID: "demo-1010", customerName: "Wayne Enterprises", total: "1500.00", balance: "1500.00", txnDaysAgo: 5, noDueDate: true},
}

// EnsureDemoInvoices inserts the deterministic demo set, keyed by qbo id
// so reruns are idempotent.
func EnsureDemoInvoices(db *gorm.DB, c clock.Clock) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	today := clock.Today(c)
	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range demoInvoices {
			var count int64
			if err := tx.Model(&invoicedomain.Invoice{}).
				Where("qbo_id = ?", d.qboID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			total := decimal.RequireFromString(d.total)
			balance := decimal.RequireFromString(d.balance)
			txnDate := today.AddDate(0, 0, -d.txnDaysAgo)
			inv := invoicedomain.Invoice{
				ID:           node.Generate(),
				QboID:        d.qboID,
				CustomerName: d.customerName,
				Status:       invoicedomain.DeriveStatus(d.txnStatus, total, balance),
				TotalAmt:     total,
				Balance:      balance,
				TxnDate:      &txnDate,
			}
			if !d.noDueDate {
				dueDate := today.AddDate(0, 0, d.dueInDays)
				inv.DueDate = &dueDate
			}
			if err := tx.Create(&inv).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
