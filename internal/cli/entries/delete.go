package entries

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/bloomlet/internal/cli"
)

type EntryDeleteCmd struct {
	ID  string `arg:"" help:"Entry id or unique id prefix."`
	Yes bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *EntryDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}
	e, err := ctx.Journal.Find(c.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete entry %s?", cli.ShortID(e.ID))).
			Description(cli.Preview(e.Content, 60)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !confirmed {
			ctx.Println("Deletion cancelled.")
			return nil
		}
	}

	if err := ctx.Journal.DeleteEntry(ctx.Base, e.ID); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	ctx.Printf("✓ Entry %s deleted\n", cli.ShortID(e.ID))
	if len(ctx.Ledger.Weeks()) > 0 {
		ctx.Println("  Completed weeks are kept; butterflies never fly away.")
	}
	return nil
}
