package store

import (
	"testing"
	"time"
)

func TestQuietHoursSatisfied(t *testing.T) {
	tests := []struct {
		name   string
		hour   int
		offset string
		want   bool
	}{
		{"utc noon, no offset", 12, "+00:00", true},
		{"utc noon, -10h puts recipient at 02:00", 12, "-10:00", false},
		{"utc 23:00, +09:00 puts recipient at 08:00", 23, "+09:00", true},
		{"utc 23:00, +08:00 puts recipient at 07:00", 23, "+08:00", false},
		{"utc 06:00, -08:00 wraps to 22:00 prev day", 6, "-08:00", false},
		{"malformed offset treated as zero", 21, "garbage", true},
		{"empty offset treated as zero", 21, "", true},
		{"half-hour offset respected", 13, "+09:30", false}, // 22:30 -> not in [8,22)
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			upper := time.Date(2026, 1, 1, tc.hour, 0, 0, 0, time.UTC)
			got := quietHoursSatisfied(upper, tc.offset)
			if got != tc.want {
				t.Fatalf("quietHoursSatisfied(hour=%d, offset=%q) = %v, want %v", tc.hour, tc.offset, got, tc.want)
			}
		})
	}
}

func TestOffsetDuration(t *testing.T) {
	tests := []struct {
		offset string
		want   time.Duration
	}{
		{"+00:00", 0},
		{"-10:00", -10 * time.Hour},
		{"+05:30", 5*time.Hour + 30*time.Minute},
		{"", 0},
		{"not-an-offset", 0},
	}
	for _, tc := range tests {
		if got := offsetDuration(tc.offset); got != tc.want {
			t.Fatalf("offsetDuration(%q) = %v, want %v", tc.offset, got, tc.want)
		}
	}
}
