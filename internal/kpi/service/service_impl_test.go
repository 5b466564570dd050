package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallledger/arview/internal/clock"
	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
	"github.com/smallledger/arview/internal/invoice/repository"
	kpidomain "github.com/smallledger/arview/internal/kpi/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// A Saturday, so the ISO week logic is visible in the fixtures below.
var testToday = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func newKpiService(t *testing.T, name string) (kpidomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&invoicedomain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:    conn,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(testToday),
		Repo:  repository.Provide(),
	})
	return svc, conn, node
}

func seedOverdue(t *testing.T, conn *gorm.DB, node *snowflake.Node, dueDate time.Time, balance string) {
	t.Helper()
	inv := invoicedomain.Invoice{
		ID:           node.Generate(),
		QboID:        node.Generate().String(),
		CustomerName: "Acme",
		Status:       invoicedomain.StatusOpen,
		TotalAmt:     decimal.RequireFromString(balance),
		Balance:      decimal.RequireFromString(balance),
		DueDate:      &dueDate,
	}
	require.NoError(t, conn.Create(&inv).Error)
}

func TestOverdueByDueDateDaily(t *testing.T) {
	svc, conn, node := newKpiService(t, "kpi_daily")

	seedOverdue(t, conn, node, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), "100.00")
	seedOverdue(t, conn, node, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), "50.00")
	seedOverdue(t, conn, node, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), "200.00")
	// outside the window
	seedOverdue(t, conn, node, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "999.00")
	// not overdue yet
	seedOverdue(t, conn, node, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), "999.00")

	buckets, err := svc.OverdueByDueDate(context.Background(), kpidomain.OverdueByDueDateRequest{
		From:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		Granularity: kpidomain.GranularityDay,
	})
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-06-03", buckets[0].BucketDate)
	assert.Equal(t, int64(2), buckets[0].Count)
	assert.True(t, buckets[0].Amount.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, "2024-06-10", buckets[1].BucketDate)
}

func TestOverdueByDueDateWeekly(t *testing.T) {
	svc, conn, node := newKpiService(t, "kpi_weekly")

	// Tue Jun 4 and Thu Jun 6 share the week of Mon Jun 3.
	seedOverdue(t, conn, node, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), "100.00")
	seedOverdue(t, conn, node, time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC), "200.00")
	// Sun Jun 9 still belongs to that week; Mon Jun 10 starts the next.
	seedOverdue(t, conn, node, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), "25.00")
	seedOverdue(t, conn, node, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), "400.00")

	buckets, err := svc.OverdueByDueDate(context.Background(), kpidomain.OverdueByDueDateRequest{
		From:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		Granularity: kpidomain.GranularityWeek,
	})
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-06-03", buckets[0].BucketDate)
	assert.Equal(t, int64(3), buckets[0].Count)
	assert.True(t, buckets[0].Amount.Equal(decimal.RequireFromString("325.00")))
	assert.Equal(t, "2024-06-10", buckets[1].BucketDate)
	assert.Equal(t, int64(1), buckets[1].Count)
}

func TestOverdueByDueDateWindowIsInclusive(t *testing.T) {
	svc, conn, node := newKpiService(t, "kpi_window")

	seedOverdue(t, conn, node, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "10.00")
	seedOverdue(t, conn, node, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), "20.00")

	buckets, err := svc.OverdueByDueDate(context.Background(), kpidomain.OverdueByDueDateRequest{
		From:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		Granularity: kpidomain.GranularityDay,
	})
	require.NoError(t, err)
	assert.Len(t, buckets, 2, "both window edges are included")
}

func TestOverdueByDueDateRejectsInvertedWindow(t *testing.T) {
	svc, _, _ := newKpiService(t, "kpi_inverted")

	_, err := svc.OverdueByDueDate(context.Background(), kpidomain.OverdueByDueDateRequest{
		From: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, kpidomain.ErrInvalidWindow)
}

func TestParseGranularity(t *testing.T) {
	assert.Equal(t, kpidomain.GranularityWeek, kpidomain.ParseGranularity("week"))
	assert.Equal(t, kpidomain.GranularityWeek, kpidomain.ParseGranularity(" WEEK "))
	assert.Equal(t, kpidomain.GranularityDay, kpidomain.ParseGranularity("day"))
	assert.Equal(t, kpidomain.GranularityDay, kpidomain.ParseGranularity("fortnight"))
	assert.Equal(t, kpidomain.GranularityDay, kpidomain.ParseGranularity(""))
}
