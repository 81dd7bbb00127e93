package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finlink/internal/ledger"
)

func TestParseRange(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	type testCase struct {
		name      string
		start     string
		end       string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   error
	}

	tests := []testCase{
		{name: "Defaults", wantStart: day(2025, 2, 18), wantEnd: day(2025, 3, 20)},
		{name: "OnlyEnd", end: "2025-01-31", wantStart: day(2025, 1, 1), wantEnd: day(2025, 1, 31)},
		{name: "Both", start: "2025-01-01", end: "2025-01-15", wantStart: day(2025, 1, 1), wantEnd: day(2025, 1, 15)},
		{name: "SameDay", start: "2025-01-01", end: "2025-01-01", wantStart: day(2025, 1, 1), wantEnd: day(2025, 1, 1)},
		{name: "StartAfterEnd", start: "2025-02-01", end: "2025-01-01", wantErr: ledger.ErrInvalidRange},
		{name: "StartAfterToday", start: "2025-04-01", wantErr: ledger.ErrInvalidRange},
		{name: "BadStart", start: "01/02/2025", wantErr: ledger.ErrInvalidDate},
		{name: "BadEnd", end: "yesterday", wantErr: ledger.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ledger.ParseRange(tt.start, tt.end, now)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, got.Start)
			assert.Equal(t, tt.wantEnd, got.End)
		})
	}
}
