package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/utils"
)

var (
	ErrEmptyContent     = errors.New("content cannot be empty")
	ErrInvalidMood      = errors.New("invalid mood")
	ErrInvalidGoal      = errors.New("weekly goal out of range")
	ErrInvalidTime      = errors.New("invalid time, expected HH:MM")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTheme     = errors.New("invalid theme")
	ErrInvalidTimezone  = errors.New("invalid timezone")
	ErrDisplayNameLimit = errors.New("display name too long")
)

// MaxDisplayNameLength bounds profile display names, in runes.
const MaxDisplayNameLength = 50

// ValidateContent rejects entries that are empty after trimming.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// ParseMood accepts a mood name in any case. The empty string is no mood.
func ParseMood(s string) (models.Mood, error) {
	m := models.Mood(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		names := make([]string, len(models.Moods))
		for i, known := range models.Moods {
			names[i] = string(known)
		}
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidMood, s, strings.Join(names, ", "))
	}
	return m, nil
}

func ValidateWeeklyGoal(goal int) error {
	if goal < constants.MinWeeklyGoal || goal > constants.MaxWeeklyGoal {
		return fmt.Errorf("%w: %d (expected %d-%d)", ErrInvalidGoal, goal, constants.MinWeeklyGoal, constants.MaxWeeklyGoal)
	}
	return nil
}

func ValidateReminderTime(s string) error {
	if !utils.ValidateTimeFormat(s) {
		return fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return nil
}

func ValidateDate(s string) error {
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

func ValidateTimezone(s string) error {
	if !utils.ValidateTimezone(s) {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, s)
	}
	return nil
}

func ParseTheme(s string) (models.Theme, error) {
	switch t := models.Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case models.ThemeLight, models.ThemeDark, models.ThemeAuto:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q (expected light, dark or auto)", ErrInvalidTheme, s)
}

func ValidateDisplayName(s string) error {
	if len([]rune(s)) > MaxDisplayNameLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrDisplayNameLimit, len([]rune(s)), MaxDisplayNameLength)
	}
	return nil
}

// ValidateProfile checks every field of p.
func ValidateProfile(p models.Profile) error {
	if err := ValidateWeeklyGoal(p.WeeklyGoal); err != nil {
		return err
	}
	if err := ValidateReminderTime(p.ReminderTime); err != nil {
		return err
	}
	if _, err := ParseTheme(string(p.Theme)); err != nil {
		return err
	}
	return ValidateDisplayName(p.DisplayName)
}

// IssueType classifies a problem found in stored data
type IssueType string

const (
	IssueEmptyContent     IssueType = "empty_content"
	IssueInvalidMood      IssueType = "invalid_mood"
	IssueDuplicateEntryID IssueType = "duplicate_entry_id"
	IssueMissingTimestamp IssueType = "missing_timestamp"
	IssueDuplicateWeek    IssueType = "duplicate_week"
	IssueInvalidWeekStart IssueType = "invalid_week_start"
	IssueNotSunday        IssueType = "week_start_not_sunday"
)

// Issue is one problem found in stored data.
type Issue struct {
	Type        IssueType
	Description string
	Items       []string // IDs involved
}

// ValidationResult contains all detected issues
type ValidationResult struct {
	Issues []Issue
}

// HasIssues returns true if there are any issues
func (vr *ValidationResult) HasIssues() bool {
	return len(vr.Issues) > 0
}

// FormatReport returns a human-readable report of all issues
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasIssues() {
		return "No issues detected."
	}

	var b strings.Builder
	b.WriteString("Issues detected:\n")
	for _, issue := range vr.Issues {
		fmt.Fprintf(&b, "- %s\n", issue.Description)
	}
	return b.String()
}

// Validator checks stored collections for integrity problems
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateEntries reports entries that could not have been created through
// the entry store.
func (v *Validator) ValidateEntries(entries []models.JournalEntry) ValidationResult {
	result := ValidationResult{Issues: []Issue{}}
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		if seen[e.ID] {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueDuplicateEntryID,
				Description: fmt.Sprintf("Entry id %s appears more than once", e.ID),
				Items:       []string{e.ID},
			})
		}
		seen[e.ID] = true

		if strings.TrimSpace(e.Content) == "" {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueEmptyContent,
				Description: fmt.Sprintf("Entry %s has no content", e.ID),
				Items:       []string{e.ID},
			})
		}
		if !e.Mood.Valid() {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueInvalidMood,
				Description: fmt.Sprintf("Entry %s has unknown mood %q", e.ID, e.Mood),
				Items:       []string{e.ID},
			})
		}
		if e.CreatedAt.IsZero() {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueMissingTimestamp,
				Description: fmt.Sprintf("Entry %s has no creation time", e.ID),
				Items:       []string{e.ID},
			})
		}
	}
	return result
}

// ValidateCompletedWeeks reports ledger records that break the one record
// per week rule or carry malformed week keys.
func (v *Validator) ValidateCompletedWeeks(weeks []models.CompletedWeek) ValidationResult {
	result := ValidationResult{Issues: []Issue{}}
	byWeek := make(map[string][]string)
	var order []string

	for _, w := range weeks {
		d, err := time.Parse(constants.DateFormat, w.WeekStart)
		if err != nil {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueInvalidWeekStart,
				Description: fmt.Sprintf("Completed week %s has malformed week start %q", w.ID, w.WeekStart),
				Items:       []string{w.ID},
			})
			continue
		}
		if d.Weekday() != time.Sunday {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueNotSunday,
				Description: fmt.Sprintf("Completed week %s starts on a %s (%s)", w.ID, d.Weekday(), w.WeekStart),
				Items:       []string{w.ID},
			})
		}
		if _, ok := byWeek[w.WeekStart]; !ok {
			order = append(order, w.WeekStart)
		}
		byWeek[w.WeekStart] = append(byWeek[w.WeekStart], w.ID)
	}

	for _, key := range order {
		if ids := byWeek[key]; len(ids) > 1 {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueDuplicateWeek,
				Description: fmt.Sprintf("Week %s is recorded %d times (IDs: %v)", key, len(ids), ids),
				Items:       ids,
			})
		}
	}
	return result
}
