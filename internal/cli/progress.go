package cli

import (
	"strings"

	"github.com/julianstephens/bloomlet/internal/growth"
	"github.com/julianstephens/bloomlet/internal/progress"
)

type ProgressCmd struct{}

func (c *ProgressCmd) Run(ctx *Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}

	p := progress.Current(ctx.Journal.Entries(), ctx.WeeklyGoal(), ctx.Now(), ctx.Location)
	ctx.Printf("Week of %s\n\n", p.WeekStart)
	ctx.Printf("%s %s\n", p.Stage.Emoji(), p.Stage.Name())
	ctx.Printf("%s  %d/%d days\n", progressBar(p.EntriesCount, p.Goal), min(p.EntriesCount, p.Goal), p.Goal)
	ctx.Println(p.Stage.Message(false))

	if left := p.EntriesToComplete(); left > 0 {
		ctx.Printf("\n%d more %s to complete this week.\n", left, plural(left, "day", "days"))
	}
	ctx.Printf("Butterflies in your garden: %d\n", ctx.Ledger.TotalButterflies())
	return nil
}

func progressBar(count, goal int) string {
	filled := min(count, goal)
	return "[" + strings.Repeat("●", filled) + strings.Repeat("○", goal-filled) + "]"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

type StatsCmd struct {
	Top int `help:"Number of themes to show." default:"5"`
}

func (c *StatsCmd) Run(ctx *Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}

	entries := ctx.Journal.Entries()
	now := ctx.Now()
	thisWeek := progress.InWeek(entries, now, ctx.Location)

	ctx.Println("📊 Journal stats")
	ctx.Printf("  Total entries:    %d\n", len(entries))
	ctx.Printf("  This week:        %d entries on %d days\n", len(thisWeek), progress.WeekDistinctDayCount(entries, now, ctx.Location))
	ctx.Printf("  Weekly goal:      %d days\n", ctx.WeeklyGoal())
	ctx.Printf("  Completed weeks:  %d\n", ctx.Ledger.TotalButterflies())
	ctx.Printf("  Counting rule:    %s\n", ctx.Ledger.Rule())

	if summary, ok := progress.Sentiment(entries); ok {
		ctx.Println("\nSentiment")
		ctx.Printf("  Average:  %+.2f\n", summary.Average)
		ctx.Printf("  Positive: %d  Neutral: %d  Negative: %d\n", summary.Positive, summary.Neutral, summary.Negative)
	}

	if moods := progress.Moods(entries); len(moods) > 0 {
		ctx.Println("\nMoods")
		for _, m := range moods {
			ctx.Printf("  %-10s %d\n", m.Label, m.Count)
		}
	}

	themes := progress.Themes(entries)
	if len(themes) > 0 {
		if c.Top > 0 && len(themes) > c.Top {
			themes = themes[:c.Top]
		}
		ctx.Println("\nTop themes")
		for _, t := range themes {
			ctx.Printf("  %-16s %d\n", t.Label, t.Count)
		}
	}

	if weeks := ctx.Ledger.Weeks(); len(weeks) > 0 {
		var garden strings.Builder
		for range weeks {
			garden.WriteString(growth.StageButterfly.Emoji())
		}
		ctx.Printf("\nGarden: %s\n", garden.String())
	}
	return nil
}
