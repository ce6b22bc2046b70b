package entries

import (
	"fmt"

	"github.com/julianstephens/bloomlet/internal/cli"
)

// EntryAnalyzeCmd backfills analysis for entries saved without a score.
type EntryAnalyzeCmd struct{}

func (c *EntryAnalyzeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(ctx.Base); err != nil {
		return err
	}

	pending := 0
	for _, e := range ctx.Journal.Entries() {
		if !e.Analyzed() {
			pending++
		}
	}
	if pending == 0 {
		ctx.Println("✓ All entries are already analyzed.")
		return nil
	}

	ctx.Printf("Analyzing %d entries...\n", pending)
	updated, err := ctx.Journal.Reanalyze(ctx.Base)
	if err != nil {
		return fmt.Errorf("analysis backfill stopped after %d entries: %w", updated, err)
	}
	ctx.Printf("✓ Analyzed %d of %d entries\n", updated, pending)
	if updated < pending {
		ctx.Println("  Some entries could not be analyzed; run this again later.")
	}
	return nil
}
