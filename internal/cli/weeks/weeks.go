package weeks

import (
	"fmt"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/progress"
	"github.com/julianstephens/bloomlet/internal/utils"
	"github.com/julianstephens/bloomlet/internal/validation"
)

type WeekListCmd struct{}

func (c *WeekListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}

	weeks := ctx.Ledger.Weeks()
	if len(weeks) == 0 {
		ctx.Println("No completed weeks yet. Reach your weekly goal to grow a butterfly 🦋")
		return nil
	}

	ctx.Printf("Completed weeks (%d):\n\n", len(weeks))
	for _, w := range weeks {
		ctx.Printf("  %s  🦋 %-8s  %d entries\n", w.WeekStart, w.ButterflyColor, w.EntriesCount)
	}
	return nil
}

// WeekSyncCmd records every past week that already meets the goal.
type WeekSyncCmd struct{}

func (c *WeekSyncCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}

	created, err := ctx.Ledger.Sync(ctx.Base, ctx.Journal.Entries(), ctx.WeeklyGoal())
	if err != nil {
		return fmt.Errorf("failed to sync completed weeks: %w", err)
	}
	if len(created) == 0 {
		ctx.Println("✓ Completed weeks are up to date")
		return nil
	}
	for _, w := range created {
		ctx.Printf("✓ Week of %s completed (%s butterfly)\n", w.WeekStart, w.ButterflyColor)
	}
	return nil
}

// WeekMarkCmd records a week as completed regardless of its tally.
type WeekMarkCmd struct {
	Week string `arg:"" optional:"" help:"Any date in the week (YYYY-MM-DD). Defaults to the current week."`
}

func (c *WeekMarkCmd) Validate() error {
	if c.Week == "" {
		return nil
	}
	return validation.ValidateDate(c.Week)
}

func (c *WeekMarkCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}

	ref := ctx.Now()
	if c.Week != "" {
		t, err := utils.ParseDateInLocation(c.Week, ctx.Location)
		if err != nil {
			return err
		}
		ref = t
	}
	key := progress.WeekKey(ref, ctx.Location)
	if ctx.Ledger.Has(key) {
		ctx.Printf("Week of %s is already complete.\n", key)
		return nil
	}

	count := 0
	for _, tally := range progress.TallyWeeks(ctx.Journal.Entries(), ctx.Location) {
		if tally.WeekStart == key {
			count = ctx.Ledger.Rule().Count(tally)
		}
	}

	week, err := ctx.Ledger.MarkComplete(ctx.Base, count, ctx.WeeklyGoal(), key)
	if err != nil {
		return fmt.Errorf("failed to mark week complete: %w", err)
	}
	ctx.Printf("✓ Week of %s marked complete (%s butterfly)\n", week.WeekStart, week.ButterflyColor)
	return nil
}
