package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testToday = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func invoiceDueIn(days int, balance string) Invoice {
	due := testToday.AddDate(0, 0, days)
	return Invoice{Balance: d(balance), DueDate: &due}
}

func TestIsOverdue(t *testing.T) {
	assert.True(t, IsOverdue(invoiceDueIn(-1, "100.00"), testToday))
	assert.False(t, IsOverdue(invoiceDueIn(0, "100.00"), testToday), "due today is not overdue")
	assert.False(t, IsOverdue(invoiceDueIn(1, "100.00"), testToday))
	assert.False(t, IsOverdue(invoiceDueIn(-1, "0.00"), testToday), "zero balance is never overdue")
	assert.False(t, IsOverdue(invoiceDueIn(-1, "-5.00"), testToday))
	assert.False(t, IsOverdue(Invoice{Balance: d("100.00")}, testToday), "no due date is never overdue")
}

func TestDaysUntilDue(t *testing.T) {
	assert.Equal(t, 10, DaysUntilDue(invoiceDueIn(10, "100.00"), testToday))
	assert.Equal(t, 0, DaysUntilDue(invoiceDueIn(0, "100.00"), testToday))
	assert.Equal(t, -10, DaysUntilDue(invoiceDueIn(-10, "100.00"), testToday))
	assert.Equal(t, 0, DaysUntilDue(Invoice{Balance: d("100.00")}, testToday))
}

func TestAgingBucketBoundaries(t *testing.T) {
	tests := []struct {
		overdueDays int
		want        string
	}{
		{1, Bucket0to7},
		{7, Bucket0to7},
		{8, Bucket8to30},
		{30, Bucket8to30},
		{31, Bucket31to60},
		{60, Bucket31to60},
		{61, Bucket61to90},
		{90, Bucket61to90},
		{91, BucketOver90},
		{365, BucketOver90},
	}

	for _, tt := range tests {
		inv := invoiceDueIn(-tt.overdueDays, "100.00")
		assert.Equal(t, tt.want, AgingBucket(inv, testToday), "overdue by %d days", tt.overdueDays)
	}
}

func TestAgingBucketAgreesWithIsOverdue(t *testing.T) {
	for days := -5; days <= 100; days++ {
		inv := invoiceDueIn(-days, "100.00")
		bucket := AgingBucket(inv, testToday)
		if IsOverdue(inv, testToday) {
			assert.NotEqual(t, BucketNotOverdue, bucket, "overdue by %d days", days)
		} else {
			assert.Equal(t, BucketNotOverdue, bucket, "overdue by %d days", days)
		}
	}
}

func TestNewInvoiceView(t *testing.T) {
	inv := invoiceDueIn(-10, "400.00")
	inv.TotalAmt = d("1000.00")

	view := NewInvoiceView(inv, testToday)
	assert.True(t, view.Overdue)
	assert.Equal(t, -10, view.DaysUntilDue)
	assert.Equal(t, Bucket8to30, view.AgingBucket)
	assert.Equal(t, "2024-06-05", *view.DueDate)
}
