package view

import (
	"time"

	"github.com/MrJamesThe3rd/finlink/internal/ledger"
)

type Timeframe int

const (
	TimeframeThisWeek Timeframe = iota
	TimeframeLastWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeLast30Days
	TimeframeLast90Days
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisWeek:
		return "This Week"
	case TimeframeLastWeek:
		return "Last Week"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeLast30Days:
		return "Last 30 Days"
	case TimeframeLast90Days:
		return "Last 90 Days"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// TimeframeRange resolves a preset to whole days relative to now. Weeks start
// on Monday. TimeframeCustom has no preset and yields the last 30 days.
func TimeframeRange(tf Timeframe, now time.Time) ledger.Range {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	offset := int(today.Weekday())
	if offset == 0 {
		offset = 7
	}

	switch tf {
	case TimeframeThisWeek:
		return ledger.Range{Start: today.AddDate(0, 0, -offset+1), End: today}
	case TimeframeLastWeek:
		end := today.AddDate(0, 0, -offset)
		return ledger.Range{Start: end.AddDate(0, 0, -6), End: end}
	case TimeframeThisMonth:
		return ledger.Range{Start: firstOfMonth(today), End: today}
	case TimeframeLastMonth:
		start := firstOfMonth(today).AddDate(0, -1, 0)
		return ledger.Range{Start: start, End: start.AddDate(0, 1, -1)}
	case TimeframeLast90Days:
		return ledger.Range{Start: today.AddDate(0, 0, -90), End: today}
	}

	return ledger.Range{Start: today.AddDate(0, 0, -ledger.DefaultRangeDays), End: today}
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
