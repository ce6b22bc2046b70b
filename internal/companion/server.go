// Package companion is the HTTP service behind `bloomlet serve`. It answers
// the analyze, chat, prompt and insights requests made by analysis.Client
// using a chat-completion model, degrading to static replies when the model
// fails.
package companion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/julianstephens/bloomlet/internal/analysis"
	"github.com/julianstephens/bloomlet/internal/logger"
	"github.com/julianstephens/bloomlet/internal/models"
)

const maxBodyBytes = 1 << 20

// Server handles companion API requests.
type Server struct {
	llm   Completer
	cache ResultCache
}

// NewServer creates a server. cache may be nil.
func NewServer(llm Completer, cache ResultCache) *Server {
	return &Server{llm: llm, cache: cache}
}

// Router returns the HTTP handler with all routes configured.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, analysis.ErrorResponse{Error: "Method not allowed"})
	})

	r.Get("/health", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.analyze)
		r.Post("/chat", s.chat)
		r.Post("/prompt", s.prompt)
		r.Post("/insights", s.insights)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Companion server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("companion server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("Shutting down companion server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.AnalyzeRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, analysis.ErrorResponse{Error: "content is required"})
		return
	}

	ctx := r.Context()
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, req.Content)
		if err != nil {
			logger.Warn("Analysis cache lookup failed", "error", err)
		} else if ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	text, err := s.llm.Complete(ctx, analyzeSystem, []models.ChatMessage{
		{Role: models.RoleUser, Content: fmt.Sprintf(analyzeTemplate, req.Content)},
	}, analyzeMaxTokens)
	if err != nil {
		logger.Warn("Analysis failed, returning fallback", "error", err)
		writeJSON(w, http.StatusOK, analysis.Fallback())
		return
	}
	result, err := parseAnalysis(text)
	if err != nil {
		logger.Warn("Unreadable analysis from model, returning fallback", "error", err)
		writeJSON(w, http.StatusOK, analysis.Fallback())
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, req.Content, result); err != nil {
			logger.Warn("Failed to cache analysis", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req analysis.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, analysis.ErrorResponse{Error: "messages are required"})
		return
	}

	text, err := s.llm.Complete(r.Context(), chatSystem(req.UserName), req.Messages, chatMaxTokens)
	if errors.Is(err, ErrEmptyCompletion) {
		text, err = analysis.DefaultChatReply, nil
	}
	if err != nil {
		logger.Error("Chat failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, analysis.ErrorResponse{Error: "Failed to chat"})
		return
	}
	writeJSON(w, http.StatusOK, analysis.ChatResponse{Message: CleanMarkdown(text)})
}

func (s *Server) prompt(w http.ResponseWriter, r *http.Request) {
	var req analysis.PromptRequest
	if !decode(w, r, &req) {
		return
	}

	text, err := s.llm.Complete(r.Context(), promptSystem, []models.ChatMessage{
		{Role: models.RoleUser, Content: promptMessage(req.RecentEntries)},
	}, promptMaxTokens)
	prompt := CleanMarkdown(text)
	if err != nil || prompt == "" {
		if err != nil {
			logger.Warn("Prompt generation failed, returning default", "error", err)
		}
		prompt = analysis.DefaultPrompt
	}
	writeJSON(w, http.StatusOK, analysis.PromptResponse{Prompt: prompt})
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	var req analysis.InsightsRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Entries) == 0 {
		writeJSON(w, http.StatusOK, analysis.EmptyInsights())
		return
	}

	msg, err := insightsMessage(req.Entries)
	if err != nil {
		writeJSON(w, http.StatusOK, analysis.FallbackInsights())
		return
	}
	text, err := s.llm.Complete(r.Context(), insightsSystem(req.UserName), []models.ChatMessage{
		{Role: models.RoleUser, Content: msg},
	}, insightsMaxTokens)
	if err != nil {
		logger.Warn("Insights failed, returning fallback", "error", err)
		writeJSON(w, http.StatusOK, analysis.FallbackInsights())
		return
	}
	result, err := parseInsights(text)
	if err != nil {
		logger.Warn("Unreadable insights from model, returning fallback", "error", err)
		writeJSON(w, http.StatusOK, analysis.FallbackInsights())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseAnalysis decodes a model reply and coerces out-of-range fields.
func parseAnalysis(text string) (models.Analysis, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return models.Analysis{}, errors.New("no JSON object in reply")
	}
	var a models.Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return models.Analysis{}, err
	}

	a.SentimentScore = math.Max(-1, math.Min(1, a.SentimentScore))
	switch a.Sentiment {
	case models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
	default:
		a.Sentiment = sentimentFor(a.SentimentScore)
	}
	switch a.Intensity {
	case models.IntensityLow, models.IntensityModerate, models.IntensityHigh:
	default:
		a.Intensity = models.IntensityLow
	}
	if a.Themes == nil {
		a.Themes = []string{}
	}
	if a.Triggers == nil {
		a.Triggers = []string{}
	}
	return a, nil
}

func sentimentFor(score float64) models.Sentiment {
	switch {
	case score > 0.2:
		return models.SentimentPositive
	case score < -0.2:
		return models.SentimentNegative
	}
	return models.SentimentNeutral
}

func parseInsights(text string) (models.Insights, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return models.Insights{}, errors.New("no JSON object in reply")
	}
	var in models.Insights
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return models.Insights{}, err
	}
	if in.Summary == "" {
		return models.Insights{}, errors.New("insights missing summary")
	}
	switch in.MoodTrend {
	case models.TrendImproving, models.TrendStable, models.TrendDeclining, models.TrendMixed:
	default:
		in.MoodTrend = models.TrendStable
	}
	in.Summary = CleanMarkdown(in.Summary)
	in.Suggestion = CleanMarkdown(in.Suggestion)
	return in, nil
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, analysis.ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
