package profiles

import (
	"fmt"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/validation"
)

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}
	printProfile(ctx, ctx.Profile.Get())
	return nil
}

func printProfile(ctx *cli.Context, p models.Profile) {
	name := p.DisplayName
	if name == "" {
		name = "(not set)"
	}
	reminder := "off"
	if p.ReminderEnabled {
		reminder = "daily at " + p.ReminderTime
	}
	ctx.Printf("User:         %s\n", p.ID)
	ctx.Printf("Display name: %s\n", name)
	ctx.Printf("Weekly goal:  %d days\n", p.WeeklyGoal)
	ctx.Printf("Reminder:     %s\n", reminder)
	ctx.Printf("Theme:        %s\n", p.Theme)
	if !ctx.Online() {
		ctx.Println("\n(local only; sign in with 'bloomlet login' to sync)")
	}
}

type ProfileGoalCmd struct {
	Goal int `arg:"" help:"Days per week to journal (1-7)."`
}

func (c *ProfileGoalCmd) Validate() error {
	return validation.ValidateWeeklyGoal(c.Goal)
}

func (c *ProfileGoalCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}
	p, err := ctx.Profile.SetWeeklyGoal(ctx.Base, c.Goal)
	if err != nil {
		return fmt.Errorf("failed to update weekly goal: %w", err)
	}
	ctx.Printf("✓ Weekly goal set to %d days\n", p.WeeklyGoal)

	// A lower goal can complete weeks that were short before.
	created, err := ctx.Ledger.Sync(ctx.Base, ctx.Journal.Entries(), p.WeeklyGoal)
	if err != nil {
		return fmt.Errorf("failed to sync completed weeks: %w", err)
	}
	for _, w := range created {
		ctx.Printf("✓ Week of %s completed (%s butterfly)\n", w.WeekStart, w.ButterflyColor)
	}
	return nil
}

type ProfileNameCmd struct {
	Name string `arg:"" help:"Name the companion uses for you. Empty to clear."`
}

func (c *ProfileNameCmd) Validate() error {
	return validation.ValidateDisplayName(c.Name)
}

func (c *ProfileNameCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}
	p, err := ctx.Profile.SetDisplayName(ctx.Base, c.Name)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	if p.DisplayName == "" {
		ctx.Println("✓ Display name cleared")
		return nil
	}
	ctx.Printf("✓ Display name set to %s\n", p.DisplayName)
	return nil
}

type ProfileReminderCmd struct {
	Time string `arg:"" optional:"" help:"Reminder time (HH:MM). Keeps the current time when omitted."`
	Off  bool   `help:"Turn reminders off."`
}

func (c *ProfileReminderCmd) Validate() error {
	if c.Time == "" {
		return nil
	}
	if c.Off {
		return fmt.Errorf("cannot set a time and --off together")
	}
	return validation.ValidateReminderTime(c.Time)
}

func (c *ProfileReminderCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}
	p, err := ctx.Profile.SetReminder(ctx.Base, !c.Off, c.Time)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	if !p.ReminderEnabled {
		ctx.Println("✓ Reminders turned off")
		return nil
	}
	ctx.Printf("✓ Reminder set for %s\n", p.ReminderTime)
	ctx.Println("  Schedule 'bloomlet remind' to deliver it through the tray app.")
	return nil
}

type ProfileThemeCmd struct {
	Theme string `arg:"" enum:"light,dark,auto" help:"Color scheme (light|dark|auto)."`
}

func (c *ProfileThemeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}
	p, err := ctx.Profile.SetTheme(ctx.Base, c.Theme)
	if err != nil {
		return fmt.Errorf("failed to update theme: %w", err)
	}
	ctx.Printf("✓ Theme set to %s\n", p.Theme)
	return nil
}
