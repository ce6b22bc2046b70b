package progress

import (
	"sort"

	"github.com/julianstephens/bloomlet/internal/models"
)

// Sentiment score boundaries for the positive and negative buckets
const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2
)

// SentimentSummary aggregates sentiment scores across entries.
type SentimentSummary struct {
	Average  float64 `json:"average"`
	Positive int     `json:"positive"`
	Neutral  int     `json:"neutral"`
	Negative int     `json:"negative"`
	Total    int     `json:"total"`
}

// Sentiment summarizes the entries that carry a score. ok is false when none do.
func Sentiment(entries []models.JournalEntry) (summary SentimentSummary, ok bool) {
	var sum float64
	for _, e := range entries {
		if e.SentimentScore == nil {
			continue
		}
		s := *e.SentimentScore
		sum += s
		summary.Total++
		switch {
		case s > positiveThreshold:
			summary.Positive++
		case s < negativeThreshold:
			summary.Negative++
		default:
			summary.Neutral++
		}
	}
	if summary.Total == 0 {
		return SentimentSummary{}, false
	}
	summary.Average = sum / float64(summary.Total)
	return summary, true
}

// Count is a label with its frequency.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Themes returns theme frequencies, most frequent first.
func Themes(entries []models.JournalEntry) []Count {
	counts := make(map[string]int)
	for _, e := range entries {
		for _, theme := range e.Themes {
			counts[theme]++
		}
	}
	return sortedCounts(counts)
}

// Moods returns mood frequencies, most frequent first. Entries without a mood are skipped.
func Moods(entries []models.JournalEntry) []Count {
	counts := make(map[string]int)
	for _, e := range entries {
		if e.Mood != "" {
			counts[string(e.Mood)]++
		}
	}
	return sortedCounts(counts)
}

func sortedCounts(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
