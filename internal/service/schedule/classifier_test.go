package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestDaysUntilDue(t *testing.T) {
	due := date(2024, time.March, 15)

	assert.Equal(t, 3, DaysUntilDue(date(2024, time.March, 12), due))
	assert.Equal(t, 0, DaysUntilDue(date(2024, time.March, 15), due))
	assert.Equal(t, -3, DaysUntilDue(date(2024, time.March, 18), due))
	assert.Equal(t, -7, DaysUntilDue(date(2024, time.March, 22), due))
}

func TestDaysUntilDueFloorsNegativeFractions(t *testing.T) {
	due := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	// 6 days and 1 hour past due: truncation toward zero would give -6,
	// the floor must give -7.
	now := due.Add(6*24*time.Hour + time.Hour)
	assert.Equal(t, -7, DaysUntilDue(now, due))

	// 2 days and 23 hours before due is still only 2 full days out.
	now = due.Add(-(2*24*time.Hour + 23*time.Hour))
	assert.Equal(t, 2, DaysUntilDue(now, due))
}

func TestClassify(t *testing.T) {
	due := date(2024, time.March, 15)

	tests := []struct {
		name     string
		now      time.Time
		category model.ReminderCategory
		isDue    bool
	}{
		{"three days before", date(2024, time.March, 12), model.CategoryBeforeDue, true},
		{"on due date", date(2024, time.March, 15), model.CategoryOnDue, true},
		{"three days late", date(2024, time.March, 18), "", false},
		{"seven days late", date(2024, time.March, 22), model.CategoryAfterDue, true},
		{"eight days late", date(2024, time.March, 23), "", false},
		{"fourteen days late", date(2024, time.March, 29), model.CategoryAfterDue, true},
		{"twenty-one days late", date(2024, time.April, 5), model.CategoryAfterDue, true},
		{"four days before", date(2024, time.March, 11), "", false},
		{"two days before", date(2024, time.March, 13), "", false},
		{"one day before", date(2024, time.March, 14), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, isDue := Classify(tt.now, due)
			assert.Equal(t, tt.isDue, isDue)
			assert.Equal(t, tt.category, category)
		})
	}
}

func TestAlreadySent(t *testing.T) {
	sent := []model.ReminderCategory{model.CategoryBeforeDue}

	assert.True(t, AlreadySent(model.CategoryBeforeDue, sent))
	assert.False(t, AlreadySent(model.CategoryOnDue, sent))
	assert.False(t, AlreadySent(model.CategoryBeforeDue, nil))
}

func TestDayOf(t *testing.T) {
	instant := time.Date(2024, time.March, 15, 23, 45, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), DayOf(instant))
}
