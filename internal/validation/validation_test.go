package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/bloomlet/internal/models"
)

func TestParseMood(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Mood
		wantErr bool
	}{
		{"", "", false},
		{"great", models.MoodGreat, false},
		{" Difficult ", models.MoodDifficult, false},
		{"meh", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMood(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMood) {
					t.Errorf("ParseMood(%q) error = %v, want ErrInvalidMood", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseMood(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestFieldValidators(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"content ok", ValidateContent("hi"), nil},
		{"content blank", ValidateContent(" \n"), ErrEmptyContent},
		{"goal low", ValidateWeeklyGoal(0), ErrInvalidGoal},
		{"goal high", ValidateWeeklyGoal(8), ErrInvalidGoal},
		{"goal ok", ValidateWeeklyGoal(7), nil},
		{"time ok", ValidateReminderTime("20:00"), nil},
		{"time bad", ValidateReminderTime("8pm"), ErrInvalidTime},
		{"date ok", ValidateDate("2024-06-02"), nil},
		{"date bad", ValidateDate("2024-13-01"), ErrInvalidDate},
		{"timezone bad", ValidateTimezone("Nowhere/Land"), ErrInvalidTimezone},
		{"name long", ValidateDisplayName(strings.Repeat("a", 51)), ErrDisplayNameLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == nil {
				if tt.err != nil {
					t.Errorf("unexpected error: %v", tt.err)
				}
				return
			}
			if !errors.Is(tt.err, tt.wantErr) {
				t.Errorf("error = %v, want %v", tt.err, tt.wantErr)
			}
		})
	}
}

func TestParseTheme(t *testing.T) {
	if got, err := ParseTheme("Dark"); err != nil || got != models.ThemeDark {
		t.Errorf("ParseTheme(Dark) = %q, %v", got, err)
	}
	if _, err := ParseTheme("neon"); !errors.Is(err, ErrInvalidTheme) {
		t.Errorf("ParseTheme(neon) error = %v", err)
	}
}

func TestValidateProfile(t *testing.T) {
	p := models.Profile{WeeklyGoal: 4, ReminderTime: "20:00", Theme: models.ThemeAuto}
	if err := ValidateProfile(p); err != nil {
		t.Errorf("ValidateProfile() error: %v", err)
	}
	p.ReminderTime = ""
	if err := ValidateProfile(p); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("ValidateProfile() error = %v, want ErrInvalidTime", err)
	}
}

func TestValidateEntries(t *testing.T) {
	v := New()
	now := time.Now()

	clean := v.ValidateEntries([]models.JournalEntry{
		{ID: "a", Content: "x", CreatedAt: now},
		{ID: "b", Content: "y", Mood: models.MoodLow, CreatedAt: now},
	})
	if clean.HasIssues() {
		t.Errorf("unexpected issues: %s", clean.FormatReport())
	}

	dirty := v.ValidateEntries([]models.JournalEntry{
		{ID: "a", Content: "x", CreatedAt: now},
		{ID: "a", Content: " ", Mood: "meh"},
	})
	want := map[IssueType]bool{
		IssueDuplicateEntryID: true,
		IssueEmptyContent:     true,
		IssueInvalidMood:      true,
		IssueMissingTimestamp: true,
	}
	if len(dirty.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %s", len(want), dirty.FormatReport())
	}
	for _, issue := range dirty.Issues {
		if !want[issue.Type] {
			t.Errorf("unexpected issue %s", issue.Type)
		}
	}
}

func TestValidateCompletedWeeks(t *testing.T) {
	v := New()

	result := v.ValidateCompletedWeeks([]models.CompletedWeek{
		{ID: "1", WeekStart: "2024-06-02"},
		{ID: "2", WeekStart: "2024-06-02"},
		{ID: "3", WeekStart: "2024-06-04"},
		{ID: "4", WeekStart: "June"},
	})

	counts := map[IssueType]int{}
	for _, issue := range result.Issues {
		counts[issue.Type]++
	}
	if counts[IssueDuplicateWeek] != 1 || counts[IssueNotSunday] != 1 || counts[IssueInvalidWeekStart] != 1 {
		t.Errorf("unexpected issues: %v", counts)
	}
	if !strings.Contains(result.FormatReport(), "recorded 2 times") {
		t.Errorf("report missing duplicate description:\n%s", result.FormatReport())
	}

	empty := v.ValidateCompletedWeeks(nil)
	if empty.FormatReport() != "No issues detected." {
		t.Errorf("FormatReport() = %q", empty.FormatReport())
	}
}
