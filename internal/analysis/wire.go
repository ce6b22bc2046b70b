package analysis

import "github.com/julianstephens/bloomlet/internal/models"

// Request and response bodies shared by Client and the companion server.

type AnalyzeRequest struct {
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []models.ChatMessage `json:"messages"`
	UserName string               `json:"userName,omitempty"`
}

type ChatResponse struct {
	Message string `json:"message"`
}

type PromptRequest struct {
	RecentEntries []string `json:"recentEntries,omitempty"`
	UserName      string   `json:"userName,omitempty"`
}

type PromptResponse struct {
	Prompt string `json:"prompt"`
}

type InsightsRequest struct {
	Entries  []models.JournalEntry `json:"entries"`
	UserName string                `json:"userName,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
