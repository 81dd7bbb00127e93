package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
)

var (
	ErrInvalidDate  = errors.New("dates must be formatted as YYYY-MM-DD")
	ErrInvalidRange = errors.New("start_date must not be after end_date")
)

// DefaultRangeDays is the period covered when no start date is given.
const DefaultRangeDays = 30

// Range is an inclusive span of calendar days.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange reads start and end dates as sent in query strings. A missing end
// means today; a missing start means DefaultRangeDays before the end.
func ParseRange(start, end string, now time.Time) (Range, error) {
	r := Range{End: finance.DateOf(now).Time()}

	if s := strings.TrimSpace(end); s != "" {
		d, err := finance.ParseDate(s)
		if err != nil {
			return Range{}, fmt.Errorf("%w: end_date %q", ErrInvalidDate, s)
		}

		r.End = d.Time()
	}

	r.Start = r.End.AddDate(0, 0, -DefaultRangeDays)

	if s := strings.TrimSpace(start); s != "" {
		d, err := finance.ParseDate(s)
		if err != nil {
			return Range{}, fmt.Errorf("%w: start_date %q", ErrInvalidDate, s)
		}

		r.Start = d.Time()
	}

	if r.Start.After(r.End) {
		return Range{}, ErrInvalidRange
	}

	return r, nil
}

// ParseRange is ParseRange relative to the service clock.
func (s *Service) ParseRange(start, end string) (Range, error) {
	return ParseRange(start, end, s.now())
}
