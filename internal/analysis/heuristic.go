package analysis

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/models"
)

var (
	positiveWords = []string{"happy", "grateful", "excited", "love", "great", "amazing"}
	negativeWords = []string{"sad", "angry", "frustrated", "anxious", "stressed", "worried"}
)

// Heuristic scores content by counting known positive and negative words.
// Only the majority side contributes, 0.2 per word, clamped to [-1, 1].
func Heuristic(content string) models.Analysis {
	lower := strings.ToLower(content)
	pos := countMatches(lower, positiveWords)
	neg := countMatches(lower, negativeWords)

	a := models.Analysis{
		Sentiment: models.SentimentNeutral,
		Themes:    []string{"reflection"},
		Triggers:  []string{},
		Intensity: models.IntensityLow,
		Summary:   truncate(content, constants.SummaryMaxLength),
	}

	switch {
	case pos > neg:
		a.Sentiment = models.SentimentPositive
		a.SentimentScore = min(float64(pos)*0.2, 1)
	case neg > pos:
		a.Sentiment = models.SentimentNegative
		a.SentimentScore = max(float64(neg)*-0.2, -1)
	}
	return a
}

// HeuristicAnalyzer is an Analyzer that never leaves the process.
type HeuristicAnalyzer struct{}

func (HeuristicAnalyzer) Analyze(_ context.Context, content string) (models.Analysis, error) {
	return Heuristic(content), nil
}

func countMatches(s string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(s, w) {
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

var _ Analyzer = HeuristicAnalyzer{}
