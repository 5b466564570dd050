package domain

import "time"

// Aging bucket labels. Overdue buckets use strict ">" boundaries, so an
// invoice exactly 7 days past due still sits in "0-7" and 8 days lands in
// "8-30".
const (
	BucketNotOverdue = "NOT_OVERDUE"
	Bucket0to7       = "0-7"
	Bucket8to30      = "8-30"
	Bucket31to60     = "31-60"
	Bucket61to90     = "61-90"
	BucketOver90     = ">90"
)

// OverdueBuckets is the fixed, ordered set of overdue aging buckets.
// Chart consumers rely on all five being present in this order.
var OverdueBuckets = []string{Bucket0to7, Bucket8to30, Bucket31to60, Bucket61to90, BucketOver90}

// IsOverdue reports whether the invoice carries a positive balance past a
// present due date, relative to today.
func IsOverdue(inv Invoice, today time.Time) bool {
	if inv.Balance.Sign() <= 0 {
		return false
	}
	if inv.DueDate == nil {
		return false
	}
	return inv.DueDate.Before(today)
}

// DaysUntilDue returns the signed calendar-day distance to the due date:
// positive for future due dates, zero when due today or when no due date
// is set, negative once overdue.
func DaysUntilDue(inv Invoice, today time.Time) int {
	if inv.DueDate == nil {
		return 0
	}
	return daysBetween(today, *inv.DueDate)
}

// OverdueDays returns how many days past due the invoice is, floored at 0.
func OverdueDays(inv Invoice, today time.Time) int {
	if inv.DueDate == nil {
		return 0
	}
	days := daysBetween(*inv.DueDate, today)
	if days < 0 {
		return 0
	}
	return days
}

// AgingBucket classifies the invoice into an aging bucket relative to today.
func AgingBucket(inv Invoice, today time.Time) string {
	if !IsOverdue(inv, today) {
		return BucketNotOverdue
	}
	overdueDays := daysBetween(*inv.DueDate, today)
	switch {
	case overdueDays > 90:
		return BucketOver90
	case overdueDays > 60:
		return Bucket61to90
	case overdueDays > 30:
		return Bucket31to60
	case overdueDays > 7:
		return Bucket8to30
	default:
		return Bucket0to7
	}
}

// daysBetween counts whole calendar days from a to b. Both values are
// expected to be date-normalized (midnight UTC), which keeps the division
// exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
