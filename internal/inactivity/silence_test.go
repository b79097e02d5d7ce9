package inactivity

import (
	"testing"
	"time"
)

func TestDaysInactive(t *testing.T) {
	t.Parallel()

	utc := func(y int, m time.Month, d, hh, mm int) time.Time {
		return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want int
	}{
		{
			name: "same instant",
			last: utc(2026, 3, 10, 12, 0),
			now:  utc(2026, 3, 10, 12, 0),
			want: 0,
		},
		{
			name: "same day different hours",
			last: utc(2026, 3, 10, 0, 5),
			now:  utc(2026, 3, 10, 23, 55),
			want: 0,
		},
		{
			name: "just past midnight counts a full day",
			last: utc(2026, 3, 10, 23, 59),
			now:  utc(2026, 3, 11, 0, 1),
			want: 1,
		},
		{
			name: "ninety days",
			last: utc(2026, 1, 1, 9, 30),
			now:  utc(2026, 4, 1, 8, 0),
			want: 90,
		},
		{
			name: "year boundary",
			last: utc(2025, 12, 30, 18, 0),
			now:  utc(2026, 1, 2, 6, 0),
			want: 3,
		},
		{
			name: "future last activity clamps to zero",
			last: utc(2026, 3, 12, 0, 0),
			now:  utc(2026, 3, 10, 0, 0),
			want: 0,
		},
		{
			name: "non-UTC zones are flattened to UTC dates",
			last: time.Date(2026, 3, 10, 23, 0, 0, 0, time.FixedZone("behind", -5*3600)),
			now:  utc(2026, 3, 12, 1, 0),
			want: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := DaysInactive(tt.last, tt.now); got != tt.want {
				t.Errorf("DaysInactive() = %d, want %d", got, tt.want)
			}
		})
	}
}
