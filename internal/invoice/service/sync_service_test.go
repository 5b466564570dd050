package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallledger/arview/internal/invoice/domain"
	"github.com/smallledger/arview/internal/invoice/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	invoices []domain.RawInvoice
	err      error
	calls    int
}

func (f *fakeSource) FetchInvoices(ctx context.Context, batch int) ([]domain.RawInvoice, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.invoices, nil
}

func TestSyncUpsertsAndDerivesStatus(t *testing.T) {
	txnDate := time.Date(2024, 6, 1, 13, 45, 0, 0, time.Local)
	dueDate := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{invoices: []domain.RawInvoice{
		{ExternalID: "101", CustomerName: "Acme", TotalAmt: decimal.RequireFromString("1000.00"), Balance: decimal.RequireFromString("400.00"), TxnDate: &txnDate, DueDate: &dueDate},
		{ExternalID: "102", CustomerName: "Globex", TxnStatus: "VOID", TotalAmt: decimal.RequireFromString("500.00"), Balance: decimal.Zero},
		{CustomerName: "no external id, skipped"},
	}}

	conn := newTestDB(t, "sync_upsert")
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := NewSyncService(SyncServiceParam{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Source: source,
	})

	upserted, err := svc.Sync(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 2, upserted)

	var stored []domain.Invoice
	require.NoError(t, conn.Order("qbo_id").Find(&stored).Error)
	require.Len(t, stored, 2)

	assert.Equal(t, domain.StatusPartialPaid, stored[0].Status)
	require.NotNil(t, stored[0].TxnDate)
	assert.Equal(t, "2024-06-01", stored[0].TxnDate.Format("2006-01-02"), "transaction timestamps collapse to dates")
	assert.Equal(t, domain.StatusVoid, stored[1].Status)
}

func TestSyncIsIdempotent(t *testing.T) {
	source := &fakeSource{invoices: []domain.RawInvoice{
		{ExternalID: "201", CustomerName: "Acme", TotalAmt: decimal.RequireFromString("100.00"), Balance: decimal.RequireFromString("100.00")},
		{ExternalID: "202", CustomerName: "Globex", TotalAmt: decimal.RequireFromString("200.00"), Balance: decimal.Zero},
	}}

	conn := newTestDB(t, "sync_idempotent")
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := NewSyncService(SyncServiceParam{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Source: source,
	})

	first, err := svc.Sync(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 2, first)

	var firstIDs []int64
	require.NoError(t, conn.Model(&domain.Invoice{}).Order("qbo_id").Pluck("id", &firstIDs).Error)

	second, err := svc.Sync(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 2, second)

	var count int64
	require.NoError(t, conn.Model(&domain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(2), count, "rerun must not create duplicates")

	var secondIDs []int64
	require.NoError(t, conn.Model(&domain.Invoice{}).Order("qbo_id").Pluck("id", &secondIDs).Error)
	assert.Equal(t, firstIDs, secondIDs, "rerun must not change row identity")
}

func TestSyncStatusTransitionOnResync(t *testing.T) {
	source := &fakeSource{invoices: []domain.RawInvoice{
		{ExternalID: "301", CustomerName: "Acme", TotalAmt: decimal.RequireFromString("100.00"), Balance: decimal.RequireFromString("100.00")},
	}}

	conn := newTestDB(t, "sync_transition")
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := NewSyncService(SyncServiceParam{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Source: source,
	})

	_, err = svc.Sync(context.Background(), 100)
	require.NoError(t, err)

	// The customer pays; upstream now reports a zero balance.
	source.invoices[0].Balance = decimal.Zero
	_, err = svc.Sync(context.Background(), 100)
	require.NoError(t, err)

	var stored domain.Invoice
	require.NoError(t, conn.Where("qbo_id = ?", "301").First(&stored).Error)
	assert.Equal(t, domain.StatusPaid, stored.Status)
	assert.True(t, stored.Balance.IsZero())
}

func TestSyncAbortsOnSourceFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("boom")}

	conn := newTestDB(t, "sync_failure")
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := NewSyncService(SyncServiceParam{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Source: source,
	})

	upserted, err := svc.Sync(context.Background(), 100)
	assert.Error(t, err)
	assert.Zero(t, upserted)

	var count int64
	require.NoError(t, conn.Model(&domain.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}
