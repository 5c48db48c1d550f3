package schedule

import (
	"math"
	"time"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
)

// Days before the due date at which the early reminder fires, and the cadence
// of follow-ups after the due date.
const (
	beforeDueLeadDays = 3
	overdueCadence    = 7
)

// DaysUntilDue returns floor((due - now) / 24h). Negative once the invoice
// is overdue. Plain integer division would truncate toward zero, which is
// wrong on the overdue side, hence the explicit floor.
func DaysUntilDue(now, due time.Time) int {
	return int(math.Floor(due.Sub(now).Hours() / 24))
}

// Classify decides which reminder category, if any, is owed for an invoice
// due date at the given instant.
//
// The overdue schedule fires on exact multiples of 7 days late. It is
// computed purely from elapsed days, so if the scheduler skips a day the
// missed checkpoint is gone; there is deliberately no catch-up.
func Classify(now, due time.Time) (model.ReminderCategory, bool) {
	daysUntilDue := DaysUntilDue(now, due)

	switch {
	case daysUntilDue == beforeDueLeadDays:
		return model.CategoryBeforeDue, true
	case daysUntilDue == 0:
		return model.CategoryOnDue, true
	case daysUntilDue < 0:
		daysOverdue := -daysUntilDue
		if daysOverdue%overdueCadence == 0 {
			return model.CategoryAfterDue, true
		}
	}
	return "", false
}

// AlreadySent reports whether a reminder of the category exists among the
// categories recorded for the run's calendar day. The caller passes one
// consistent "now" for the whole run; suppression never consults wall clock.
func AlreadySent(category model.ReminderCategory, sentToday []model.ReminderCategory) bool {
	for _, c := range sentToday {
		if c == category {
			return true
		}
	}
	return false
}

// DayOf truncates an instant to its calendar day in UTC. Used as the
// idempotency bucket for reminder sends.
func DayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
