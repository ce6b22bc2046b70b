package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/notifier"
)

// RemindCmd sends the daily reminder through the tray app when it is due.
// It is meant to run from cron or a systemd timer.
type RemindCmd struct {
	DryRun bool `help:"Report whether a reminder is due without sending it."`
	Force  bool `help:"Send even when no reminder is due."`
}

func (cmd *RemindCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}

	decision, err := notifier.ShouldRemind(ctx.Profile.Get(), ctx.Journal.Entries(), ctx.Now(), ctx.Location)
	if err != nil {
		return err
	}
	if !decision.Due && !cmd.Force {
		ctx.Printf("No reminder: %s\n", decision.Reason)
		return nil
	}
	if cmd.DryRun {
		ctx.Printf("Reminder due: %s\n", notifier.ReminderText)
		return nil
	}

	if err := notifier.New().Notify(ctx.Base, notifier.ReminderText); err != nil {
		if errors.Is(err, notifier.ErrTrayNotRunning) {
			return fmt.Errorf("tray app is not running: %w", err)
		}
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	ctx.Println("✓ Reminder sent")
	return nil
}
