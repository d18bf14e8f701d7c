package gacha

import (
	"testing"
	"time"
)

func TestIsAvailableAt(t *testing.T) {
	cases := []struct {
		name   string
		latest time.Time
		now    time.Time
		want   bool
	}{
		{
			name:   "same day",
			latest: time.Date(2024, 1, 1, 10, 0, 0, 0, jst),
			now:    time.Date(2024, 1, 1, 23, 59, 59, 0, jst),
			want:   false,
		},
		{
			name:   "exactly midnight",
			latest: time.Date(2024, 1, 1, 23, 59, 0, 0, jst),
			now:    time.Date(2024, 1, 2, 0, 0, 0, 0, jst),
			want:   true,
		},
		{
			name:   "utc date differs from target zone date",
			latest: time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC), // 01-02 00:30 JST
			now:    time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC),  // 01-02 23:00 JST
			want:   false,
		},
		{
			name:   "next target zone day",
			latest: time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC),
			now:    time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC), // 01-03 00:00 JST
			want:   true,
		},
		{
			name:   "clock behind latest event",
			latest: time.Date(2024, 1, 5, 9, 0, 0, 0, jst),
			now:    time.Date(2024, 1, 4, 9, 0, 0, 0, jst),
			want:   false,
		},
		{
			name:   "month rollover",
			latest: time.Date(2024, 2, 29, 8, 0, 0, 0, jst),
			now:    time.Date(2024, 3, 1, 0, 0, 1, 0, jst),
			want:   true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsAvailableAt(GachaEvent{CreatedAt: tc.latest}, tc.now, jst)
			if got != tc.want {
				t.Fatalf("IsAvailableAt = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsAvailableAtIgnoresInputZone(t *testing.T) {
	latest := time.Date(2024, 6, 1, 20, 0, 0, 0, jst)
	now := time.Date(2024, 6, 2, 0, 30, 0, 0, jst)

	ny := time.FixedZone("EST", -5*60*60)
	a := IsAvailableAt(GachaEvent{CreatedAt: latest.UTC()}, now.In(ny), jst)
	b := IsAvailableAt(GachaEvent{CreatedAt: latest}, now, jst)
	if a != b || !a {
		t.Fatalf("results differ by input zone: %v %v", a, b)
	}
}
