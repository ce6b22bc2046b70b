package entries

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/growth"
	"github.com/julianstephens/bloomlet/internal/progress"
	"github.com/julianstephens/bloomlet/internal/validation"
)

type EntryAddCmd struct {
	Content []string `arg:"" optional:"" help:"Entry text. Read from stdin when omitted."`
	Mood    string   `help:"How you feel (great|good|okay|low|difficult)." short:"m"`

	stdin io.Reader
}

func (c *EntryAddCmd) Validate() error {
	_, err := validation.ParseMood(c.Mood)
	return err
}

func (c *EntryAddCmd) Run(ctx *cli.Context) error {
	mood, err := validation.ParseMood(c.Mood)
	if err != nil {
		return err
	}
	content, err := c.content()
	if err != nil {
		return err
	}
	if err := validation.ValidateContent(content); err != nil {
		return err
	}

	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}

	entry, days, err := ctx.Journal.AddEntry(ctx.Base, content, mood)
	if err != nil {
		return fmt.Errorf("failed to add entry: %w", err)
	}

	goal := ctx.WeeklyGoal()
	created, err := ctx.Ledger.Sync(ctx.Base, ctx.Journal.Entries(), goal)
	if err != nil {
		// The entry itself is saved; the next sync retries the week.
		fmt.Fprintf(os.Stderr, "Warning: failed to record completed week: %v\n", err)
	}

	stage := growth.StageFromCount(days, goal)
	ctx.Printf("✓ Entry saved (%s)\n", cli.ShortID(entry.ID))
	if entry.SentimentScore != nil {
		ctx.Printf("  Sentiment: %s\n", cli.FormatScore(entry.SentimentScore))
	}
	if len(entry.Themes) > 0 {
		ctx.Printf("  Themes: %s\n", strings.Join(entry.Themes, ", "))
	}
	ctx.Printf("\n%s %s  %d/%d days this week\n", stage.Emoji(), stage.Name(), min(days, goal), goal)
	ctx.Println(stage.Message(true))

	current := progress.WeekKey(ctx.Now(), ctx.Location)
	for _, w := range created {
		if w.WeekStart == current {
			ctx.Printf("\n🦋 Week of %s complete! A %s butterfly joined your garden.\n", w.WeekStart, w.ButterflyColor)
		}
	}
	return nil
}

func (c *EntryAddCmd) content() (string, error) {
	if len(c.Content) > 0 {
		return strings.Join(c.Content, " "), nil
	}
	in := c.stdin
	if in == nil {
		if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			return "", errors.New("no entry text given; pass it as an argument or pipe it on stdin")
		}
		in = os.Stdin
	}
	data, err := io.ReadAll(bufio.NewReader(in))
	if err != nil {
		return "", fmt.Errorf("failed to read entry from stdin: %w", err)
	}
	return string(data), nil
}
