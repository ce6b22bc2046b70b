package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/keyring"
)

// LoginCmd records the signed-in user in the OS keyring.
type LoginCmd struct {
	UserID string `arg:"" help:"User id to sign in as."`
}

func (cmd *LoginCmd) Validate() error {
	if strings.TrimSpace(cmd.UserID) == "" {
		return errors.New("user id cannot be empty")
	}
	return nil
}

func (cmd *LoginCmd) Run(ctx *cli.Context) error {
	userID := strings.TrimSpace(cmd.UserID)
	if err := keyring.SetSessionUser(userID); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	ctx.Printf("✓ Signed in as %s\n", userID)
	if _, err := keyring.GetConnectionString(); errors.Is(err, keyring.ErrNotFound) {
		ctx.Println("  No remote database configured; entries stay local until you run 'bloomlet keyring set'.")
	}
	return nil
}

type LogoutCmd struct{}

func (cmd *LogoutCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteSessionUser(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			ctx.Println("Not signed in.")
			return nil
		}
		return fmt.Errorf("failed to remove session: %w", err)
	}
	ctx.Println("✓ Signed out. New entries are kept on this device only.")
	return nil
}

type WhoamiCmd struct{}

func (cmd *WhoamiCmd) Run(ctx *cli.Context) error {
	userID, ok := ctx.Session.UserID()
	if !ok {
		ctx.Println("Not signed in (local only)")
		return nil
	}
	mode := "local only; no remote database"
	if ctx.Remote != nil {
		mode = "syncing with remote database"
	}
	ctx.Printf("%s (%s)\n", userID, mode)
	return nil
}
