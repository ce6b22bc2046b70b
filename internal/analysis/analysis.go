// Package analysis talks to the companion service that annotates entries and
// answers chat, prompt and insight requests. Every call has a static fallback
// so callers can degrade instead of failing.
package analysis

import (
	"context"
	"errors"
	"math/rand"

	"github.com/julianstephens/bloomlet/internal/logger"
	"github.com/julianstephens/bloomlet/internal/models"
)

// ErrServiceUnavailable wraps every failure to reach or decode the service.
var ErrServiceUnavailable = errors.New("analysis service unavailable")

// Analyzer annotates a single entry.
type Analyzer interface {
	Analyze(ctx context.Context, content string) (models.Analysis, error)
}

// Service is the full companion API.
type Service interface {
	Analyzer
	Chat(ctx context.Context, messages []models.ChatMessage, userName string) (string, error)
	Prompt(ctx context.Context, recentEntries []string, userName string) (string, error)
	Insights(ctx context.Context, entries []models.JournalEntry, userName string) (models.Insights, error)
}

const (
	FallbackChatReply   = "I'm having a moment, but I'm still here for you! Could you try again?"
	DefaultPrompt       = "What's on your mind today? 🦋"
	DefaultChatReply    = "I'm here for you 🦋"
	FallbackSummaryText = "Entry recorded"
)

// FallbackPrompts are offered when no prompt can be generated.
var FallbackPrompts = []string{
	"What's one small thing that made you smile today?",
	"What's on your mind right now?",
	"What are you grateful for in this moment?",
	"How did you take care of yourself today?",
}

// Fallback is the analysis recorded when the service cannot be reached.
func Fallback() models.Analysis {
	return models.Analysis{
		Sentiment:      models.SentimentNeutral,
		SentimentScore: 0,
		Themes:         []string{"reflection"},
		Triggers:       []string{},
		Intensity:      models.IntensityLow,
		Summary:        FallbackSummaryText,
	}
}

// FallbackInsights is returned when insights cannot be generated.
func FallbackInsights() models.Insights {
	return models.Insights{
		Summary:    "You've been journaling consistently.",
		Suggestion: "Keep reflecting on your thoughts. I'm here if you want to chat! 🦋",
		MoodTrend:  models.TrendStable,
	}
}

// EmptyInsights is returned when there are no entries to reflect on.
func EmptyInsights() models.Insights {
	return models.Insights{
		Summary:    "Start journaling to unlock personalized insights!",
		Suggestion: "Write your first entry and I'll help you discover patterns. 🦋",
		MoodTrend:  models.TrendStable,
	}
}

// Companion wraps a Service and never fails: each call degrades to its
// fallback. A nil Service runs fully offline.
type Companion struct {
	svc  Service
	pick func(n int) int
}

func NewCompanion(svc Service) *Companion {
	return &Companion{svc: svc, pick: rand.Intn}
}

// Online reports whether a remote service is configured.
func (c *Companion) Online() bool {
	return c.svc != nil
}

// Analyze falls back to the keyword heuristic when no service is configured
// and to the static analysis when the service fails.
func (c *Companion) Analyze(ctx context.Context, content string) models.Analysis {
	if c.svc == nil {
		return Heuristic(content)
	}
	a, err := c.svc.Analyze(ctx, content)
	if err != nil {
		logger.Warn("Analysis failed, using fallback", "error", err)
		return Fallback()
	}
	return a
}

func (c *Companion) Chat(ctx context.Context, messages []models.ChatMessage, userName string) string {
	if c.svc == nil {
		return FallbackChatReply
	}
	reply, err := c.svc.Chat(ctx, messages, userName)
	if err != nil || reply == "" {
		logger.Warn("Chat failed, using fallback", "error", err)
		return FallbackChatReply
	}
	return reply
}

func (c *Companion) Prompt(ctx context.Context, recentEntries []string, userName string) string {
	if c.svc != nil {
		prompt, err := c.svc.Prompt(ctx, recentEntries, userName)
		if err == nil && prompt != "" {
			return prompt
		}
		logger.Warn("Prompt generation failed, using fallback", "error", err)
	}
	return FallbackPrompts[c.pick(len(FallbackPrompts))]
}

func (c *Companion) Insights(ctx context.Context, entries []models.JournalEntry, userName string) models.Insights {
	if len(entries) == 0 {
		return EmptyInsights()
	}
	if c.svc == nil {
		return FallbackInsights()
	}
	insights, err := c.svc.Insights(ctx, entries, userName)
	if err != nil {
		logger.Warn("Insights failed, using fallback", "error", err)
		return FallbackInsights()
	}
	return insights
}
