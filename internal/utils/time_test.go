package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{"empty is local", "", false},
		{"Local", "Local", false},
		{"UTC", "UTC", false},
		{"IANA", "America/New_York", false},
		{"invalid", "Mars/Olympus_Mons", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLocation(%q) error = %v", tt.timezone, err)
			}
			if !tt.wantErr && loc == nil {
				t.Error("expected a location")
			}
			if ValidateTimezone(tt.timezone) == tt.wantErr {
				t.Errorf("ValidateTimezone(%q) disagrees with LoadLocation", tt.timezone)
			}
		})
	}
}

func TestAtTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 03:00 UTC on June 4 is still June 3 in UTC-5
	day := time.Date(2024, 6, 4, 3, 0, 0, 0, time.UTC)

	got, err := AtTimeOfDay(day, "20:30", loc)
	if err != nil {
		t.Fatalf("AtTimeOfDay() error: %v", err)
	}
	want := time.Date(2024, 6, 3, 20, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("AtTimeOfDay() = %v, want %v", got, want)
	}

	if _, err := AtTimeOfDay(day, "8pm", loc); err == nil {
		t.Error("expected error for invalid time")
	}
}

func TestValidateTimeFormat(t *testing.T) {
	for s, want := range map[string]bool{"20:00": true, "7:05": true, "24:00": false, "noon": false} {
		if got := ValidateTimeFormat(s); got != want {
			t.Errorf("ValidateTimeFormat(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestRelativeDay(t *testing.T) {
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2024, 6, 5, 1, 0, 0, 0, time.UTC), "Today"},
		{time.Date(2024, 6, 4, 23, 0, 0, 0, time.UTC), "Yesterday"},
		{time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), "Sat, Jun 1"},
		{time.Date(2023, 6, 1, 9, 0, 0, 0, time.UTC), "Thu, Jun 1 2023"},
	}

	for _, tt := range tests {
		if got := RelativeDay(tt.t, now, time.UTC); got != tt.want {
			t.Errorf("RelativeDay(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestParseDateInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	got, err := ParseDateInLocation("2024-06-02", loc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Location() != loc || got.Day() != 2 || got.Hour() != 0 {
		t.Errorf("ParseDateInLocation() = %v", got)
	}
	if _, err := ParseDateInLocation("06/02/2024", loc); err == nil {
		t.Error("expected error")
	}
}
