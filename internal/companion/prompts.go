package companion

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/julianstephens/bloomlet/internal/models"
)

const (
	analyzeMaxTokens  = 250
	chatMaxTokens     = 150
	promptMaxTokens   = 100
	insightsMaxTokens = 300

	insightsEntryLimit   = 7
	insightsContentLimit = 300
	promptEntryLimit     = 2
)

const analyzeSystem = `You analyze journal entries for emotional content. Respond with ONLY valid JSON.`

const analyzeTemplate = `Analyze this journal entry for emotional content.

Journal Entry:
%q

Detect these specific triggers if present:
- stress/overwhelm
- anxiety/worry
- loneliness/isolation
- sadness/grief
- anger/frustration
- exhaustion/burnout
- self-criticism
- relationship issues
- work/school pressure

Respond with ONLY valid JSON (no other text):
{
  "sentiment": "positive" or "neutral" or "negative",
  "sentimentScore": <number from -1.0 to 1.0>,
  "themes": ["theme1", "theme2"],
  "triggers": ["trigger1", "trigger2"],
  "intensity": "low" or "moderate" or "high",
  "summary": "<one sentence summary>"
}`

func nameContext(userName string) string {
	if userName == "" {
		return ""
	}
	return fmt.Sprintf("The user's name is %s. Use their name occasionally to make it personal.", userName)
}

func chatSystem(userName string) string {
	return fmt.Sprintf(`You are Flutter, a warm and wise butterfly who serves as an empathetic journaling companion in the Bloomlet app.

%s

Your personality:
- Warm, nurturing, and gently wise like a caring friend
- You use butterfly and growth metaphors naturally
- You're encouraging but never pushy
- You validate feelings before offering perspective
- You ask thoughtful, open-ended follow-up questions

IMPORTANT FORMATTING RULES:
- Respond in plain text only, NO markdown formatting
- Do NOT use asterisks, bold, italics, or bullet points
- Keep responses short: 2-3 sentences max
- Use emoji sparingly (1-2 max per response)

Remember: You genuinely care about this person's wellbeing.`, nameContext(userName))
}

const promptSystem = `You are Flutter, a warm journaling companion butterfly. Keep prompts to 1-2 sentences. No markdown.`

func promptMessage(recentEntries []string) string {
	if len(recentEntries) == 0 {
		return "Generate a short, warm journaling prompt for someone who might have blank page anxiety. Make it easy to answer."
	}
	if len(recentEntries) > promptEntryLimit {
		recentEntries = recentEntries[:promptEntryLimit]
	}
	return fmt.Sprintf("Generate a short, warm journaling prompt. The user recently wrote about: %s. Ask a simple follow-up question.",
		strings.Join(recentEntries, "; "))
}

func insightsSystem(userName string) string {
	return fmt.Sprintf(`You are Flutter, a warm and empathetic journaling companion butterfly. 🦋

%s

RULES:
- Be warm, supportive, non-judgmental
- If someone seems down, suggest breathing exercises, hobbies, or chatting with you
- Keep responses short and actionable
- NO markdown, asterisks, or bullet points
- Summary: 1-2 sentences max
- Suggestion: 2-3 sentences max`, nameContext(userName))
}

type insightsEntry struct {
	Content   string  `json:"content"`
	Mood      string  `json:"mood"`
	Sentiment float64 `json:"sentiment"`
	Date      string  `json:"date"`
}

func insightsMessage(entries []models.JournalEntry) (string, error) {
	if len(entries) > insightsEntryLimit {
		entries = entries[:insightsEntryLimit]
	}
	recent := make([]insightsEntry, len(entries))
	for i, e := range entries {
		content := []rune(e.Content)
		if len(content) > insightsContentLimit {
			content = content[:insightsContentLimit]
		}
		mood := string(e.Mood)
		if mood == "" {
			mood = "unknown"
		}
		var score float64
		if e.SentimentScore != nil {
			score = *e.SentimentScore
		}
		recent[i] = insightsEntry{
			Content:   string(content),
			Mood:      mood,
			Sentiment: score,
			Date:      e.CreatedAt.Format("Mon, Jan 2"),
		}
	}

	data, err := json.MarshalIndent(recent, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`Analyze these journal entries:

%s

Respond with ONLY valid JSON:
{
  "summary": "<1-2 sentence summary of how user has been feeling>",
  "suggestion": "<2-3 sentence caring suggestion>",
  "moodTrend": "<improving | stable | declining | mixed>"
}`, data), nil
}

var (
	boldMarkers   = regexp.MustCompile(`\*\*|__`)
	bulletPrefix  = regexp.MustCompile(`(?m)^[ \t]*[-•][ \t]*`)
	numberPrefix  = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]*`)
	extraNewlines = regexp.MustCompile(`\n{3,}`)
)

// CleanMarkdown strips emphasis markers, list prefixes and runs of blank
// lines from model output.
func CleanMarkdown(text string) string {
	text = boldMarkers.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "*", "")
	text = strings.ReplaceAll(text, "_", " ")
	text = bulletPrefix.ReplaceAllString(text, "")
	text = numberPrefix.ReplaceAllString(text, "")
	text = extraNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// extractJSON returns the outermost {...} span of s, which tolerates code
// fences and stray prose around the object.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
