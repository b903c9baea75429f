package matcher

import (
	"sort"
	"time"

	"github.com/tirasundara/reconcile-accounts/internal/domain"
)

const secondsPerDay = 24 * 60 * 60

// DaysApart returns the absolute number of calendar days between a and b.
// Only the calendar date of each value counts, so month and year boundaries are one day apart.
func DaysApart(a, b time.Time) int64 {
	diff := dayNumber(a) - dayNumber(b)
	if diff < 0 {
		return -diff
	}
	return diff
}

// WithinTolerance reports whether two records are content-equal and dated at most toleranceDays apart
func WithinTolerance(a, b domain.Record, toleranceDays int) bool {
	if !a.SameContent(b) {
		return false
	}
	return DaysApart(a.Date, b.Date) <= int64(toleranceDays)
}

// RestoreInputOrder returns a copy of tagged sorted back by the position each record had in its input batch
func RestoreInputOrder(tagged []domain.TaggedRecord) []domain.TaggedRecord {
	ordered := make([]domain.TaggedRecord, len(tagged))
	copy(ordered, tagged)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Seq < ordered[j].Seq
	})

	return ordered
}

// dayNumber counts days since the Unix epoch for the calendar date of t
func dayNumber(t time.Time) int64 {
	return domain.CalendarDate(t).Unix() / secondsPerDay
}
