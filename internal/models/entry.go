package models

import "time"

// Mood is the optional self-reported label on a journal entry
type Mood string

const (
	MoodGreat     Mood = "great"
	MoodGood      Mood = "good"
	MoodOkay      Mood = "okay"
	MoodLow       Mood = "low"
	MoodDifficult Mood = "difficult"
)

// Moods lists every valid mood, most positive first.
var Moods = []Mood{MoodGreat, MoodGood, MoodOkay, MoodLow, MoodDifficult}

// Valid reports whether m is one of the known moods. The empty mood is valid.
func (m Mood) Valid() bool {
	if m == "" {
		return true
	}
	for _, known := range Moods {
		if m == known {
			return true
		}
	}
	return false
}

// JournalEntry is a single journal submission. Only the analysis fields are
// ever rewritten after creation.
type JournalEntry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	Mood           Mood      `json:"mood,omitempty"`
	SentimentScore *float64  `json:"sentiment_score,omitempty"`
	Themes         []string  `json:"themes,omitempty"`
	Triggers       []string  `json:"triggers,omitempty"`
	Intensity      Intensity `json:"intensity,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Analyzed reports whether the entry has received a sentiment score.
func (e JournalEntry) Analyzed() bool {
	return e.SentimentScore != nil
}

// ApplyAnalysis copies the analysis fields of a onto the entry.
func (e *JournalEntry) ApplyAnalysis(a Analysis) {
	score := a.SentimentScore
	e.SentimentScore = &score
	e.Themes = append([]string(nil), a.Themes...)
	e.Triggers = append([]string(nil), a.Triggers...)
	e.Intensity = a.Intensity
}
