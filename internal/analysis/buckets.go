package analysis

import (
	"fmt"
	"time"
)

// All bucket keys are derived in UTC so that a run produces identical
// artifacts regardless of host timezone.

func dayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

func monthKey(t time.Time) string { return t.UTC().Format("2006-01") }

func weekKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d-W%d", t.Year(), weekNumber(t))
}

// weekNumber buckets a date into a 1-indexed week of its year:
// ceil((daysSinceJan1 + weekdayOfJan1 + 1) / 7). January 1st always lands
// in week 1.
func weekNumber(t time.Time) int {
	t = t.UTC()
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(t.Sub(jan1).Hours() / 24)
	return (days + int(jan1.Weekday()) + 1 + 6) / 7
}

// durationDays is the inclusive day span a pull request was open: whole days
// between creation and close (or now for open PRs), plus one, never below 1.
func durationDays(createdAt, closedAt *time.Time, now time.Time) int {
	if createdAt == nil { return 1 }
	end := now
	if closedAt != nil { end = *closedAt }
	days := int(end.Sub(*createdAt).Hours()/24) + 1
	if days < 1 { days = 1 }
	return days
}

func bump(m map[string]int, key string) { m[key]++ }

func spanMillis(from, to time.Time) int64 { return to.Sub(from).Milliseconds() }
