package models

// Sentiment is the coarse label produced by entry analysis
type Sentiment string

// Intensity is the emotional intensity produced by entry analysis
type Intensity string

// MoodTrend summarizes the direction of recent entries
type MoodTrend string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"

	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"

	TrendImproving MoodTrend = "improving"
	TrendStable    MoodTrend = "stable"
	TrendDeclining MoodTrend = "declining"
	TrendMixed     MoodTrend = "mixed"
)

// Analysis is the result of analyzing one entry's text.
type Analysis struct {
	Sentiment      Sentiment `json:"sentiment"`
	SentimentScore float64   `json:"sentimentScore"`
	Themes         []string  `json:"themes"`
	Triggers       []string  `json:"triggers"`
	Intensity      Intensity `json:"intensity"`
	Summary        string    `json:"summary"`
}

// Insights is a short reflection over recent entries.
type Insights struct {
	Summary    string    `json:"summary"`
	Suggestion string    `json:"suggestion"`
	MoodTrend  MoodTrend `json:"moodTrend"`
}

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a conversation with the companion.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}
