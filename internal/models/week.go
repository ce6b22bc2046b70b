package models

// CompletedWeek records a week in which the weekly goal was reached.
// WeekStart is the Sunday that opens the week, formatted YYYY-MM-DD.
type CompletedWeek struct {
	ID             string `json:"id"`
	WeekStart      string `json:"week_start"`
	ButterflyColor string `json:"butterfly_color"`
	EntriesCount   int    `json:"entries_count"`
}
