package companions

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/models"
)

const (
	promptContextEntries   = 2
	insightsContextEntries = 7
)

type PromptCmd struct{}

func (c *PromptCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}

	var recent []string
	for _, e := range newest(ctx.Journal.Entries(), promptContextEntries) {
		recent = append(recent, e.Content)
	}
	ctx.Println(ctx.Companion.Prompt(ctx.Base, recent, ctx.UserName()))
	return nil
}

type InsightsCmd struct{}

func (c *InsightsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}

	in := ctx.Companion.Insights(ctx.Base, newest(ctx.Journal.Entries(), insightsContextEntries), ctx.UserName())
	ctx.Printf("%s Mood trend: %s\n\n", trendEmoji(in.MoodTrend), in.MoodTrend)
	ctx.Println(in.Summary)
	ctx.Printf("\n💡 %s\n", in.Suggestion)
	return nil
}

func trendEmoji(t models.MoodTrend) string {
	switch t {
	case models.TrendImproving:
		return "📈"
	case models.TrendDeclining:
		return "📉"
	case models.TrendMixed:
		return "🔀"
	default:
		return "➡️"
	}
}

// ChatCmd sends one message when given, otherwise holds a conversation on
// stdin until EOF or "exit".
type ChatCmd struct {
	Message []string `arg:"" optional:"" help:"Message to send. Starts an interactive chat when omitted."`

	stdin io.Reader
}

func (c *ChatCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}
	name := ctx.UserName()

	if len(c.Message) > 0 {
		msg := models.ChatMessage{Role: models.RoleUser, Content: strings.Join(c.Message, " ")}
		ctx.Println(ctx.Companion.Chat(ctx.Base, []models.ChatMessage{msg}, name))
		return nil
	}

	in := c.stdin
	if in == nil {
		in = os.Stdin
	}
	if !ctx.Companion.Online() {
		ctx.Println("(offline: set analysis.url to talk with the companion)")
	}
	ctx.Println("🦋 Chat with your companion. Type 'exit' to leave.")

	var history []models.ChatMessage
	scanner := bufio.NewScanner(in)
	for {
		ctx.Printf("\nyou> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		history = append(history, models.ChatMessage{Role: models.RoleUser, Content: line})
		reply := ctx.Companion.Chat(ctx.Base, history, name)
		history = append(history, models.ChatMessage{Role: models.RoleAssistant, Content: reply})
		ctx.Printf("🦋 %s\n", reply)

		if err := ctx.Base.Err(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read chat input: %w", err)
	}
	ctx.Println()
	return nil
}

func newest(entries []models.JournalEntry, n int) []models.JournalEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
