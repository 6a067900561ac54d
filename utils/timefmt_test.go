package utils

import (
	"testing"
	"time"
)

func TestMinutesToClock(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{540, "09:00"},
		{870, "14:30"},
		{1439, "23:59"},
	}
	for _, tc := range cases {
		if got := MinutesToClock(tc.minutes); got != tc.want {
			t.Errorf("MinutesToClock(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestClockToMinutes(t *testing.T) {
	for _, minutes := range []int{0, 540, 870, 1439} {
		got, err := ClockToMinutes(MinutesToClock(minutes))
		if err != nil {
			t.Fatalf("ClockToMinutes: %v", err)
		}
		if got != minutes {
			t.Errorf("round trip of %d gave %d", minutes, got)
		}
	}

	for _, bad := range []string{"", "late", "25:00", "12:60", "-1:30"} {
		if _, err := ClockToMinutes(bad); err == nil {
			t.Errorf("ClockToMinutes(%q) should fail", bad)
		}
	}
}

func TestSlotStartTime(t *testing.T) {
	got, err := SlotStartTime("2026-03-14", 870, time.UTC)
	if err != nil {
		t.Fatalf("SlotStartTime: %v", err)
	}
	want := time.Date(2026, 3, 14, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := SlotStartTime("14/03/2026", 0, nil); err == nil {
		t.Error("malformed date should fail")
	}
}
