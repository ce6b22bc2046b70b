package entries

import (
	"fmt"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/progress"
	"github.com/julianstephens/bloomlet/internal/validation"
)

type EntryListCmd struct {
	Limit int    `help:"Maximum number of entries to show (0 for all)." default:"20" short:"n"`
	Week  bool   `help:"Only show entries from the current week."`
	Mood  string `help:"Only show entries with this mood."`
}

func (c *EntryListCmd) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	_, err := validation.ParseMood(c.Mood)
	return err
}

func (c *EntryListCmd) Run(ctx *cli.Context) error {
	mood, err := validation.ParseMood(c.Mood)
	if err != nil {
		return err
	}
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}

	now := ctx.Now()
	entries := ctx.Journal.Entries()
	if c.Week {
		entries = progress.InWeek(entries, now, ctx.Location)
	}
	if mood != "" {
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.Mood == mood {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if len(entries) == 0 {
		ctx.Println("No entries found. Add one with 'bloomlet entry add'.")
		return nil
	}

	shown := entries
	if c.Limit > 0 && len(shown) > c.Limit {
		shown = shown[:c.Limit]
	}
	for _, e := range shown {
		ctx.Println(cli.FormatEntryLine(e, now, ctx.Location))
	}
	if len(shown) < len(entries) {
		ctx.Printf("\n... and %d more (use --limit 0 to show all)\n", len(entries)-len(shown))
	}
	return nil
}

type EntryShowCmd struct {
	ID string `arg:"" help:"Entry id or unique id prefix."`
}

func (c *EntryShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}
	e, err := ctx.Journal.Find(c.ID)
	if err != nil {
		return err
	}
	printEntry(ctx, e)
	return nil
}

func printEntry(ctx *cli.Context, e models.JournalEntry) {
	created := e.CreatedAt.In(ctx.Location)
	ctx.Printf("ID:        %s\n", e.ID)
	ctx.Printf("Written:   %s\n", created.Format("Mon, Jan 2 2006 at 15:04"))
	if e.Mood != "" {
		ctx.Printf("Mood:      %s\n", e.Mood)
	}
	ctx.Printf("Sentiment: %s\n", cli.FormatScore(e.SentimentScore))
	if e.Intensity != "" {
		ctx.Printf("Intensity: %s\n", e.Intensity)
	}
	if len(e.Themes) > 0 {
		ctx.Printf("Themes:    %v\n", e.Themes)
	}
	if len(e.Triggers) > 0 {
		ctx.Printf("Triggers:  %v\n", e.Triggers)
	}
	ctx.Printf("\n%s\n", e.Content)
}
