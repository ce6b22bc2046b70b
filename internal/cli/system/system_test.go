package system

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/config"
	"github.com/julianstephens/bloomlet/internal/session"
	"github.com/julianstephens/bloomlet/internal/storage"
	"github.com/julianstephens/bloomlet/internal/storage/sqlite"
)

// setupTestContext returns a context over an uninitialized SQLite cache.
func setupTestContext(t *testing.T, cfg *config.Config, sess session.Source) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "bloomlet.db")
	store := sqlite.NewStore(dbPath)
	if cfg == nil {
		cfg = config.Defaults()
	}

	ctx, err := cli.NewContext(store, dbPath, nil, sess, cfg)
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	out := &bytes.Buffer{}
	ctx.Out = out
	t.Cleanup(func() { _ = store.Close() })
	return ctx, out, dbPath
}

func setupInitializedContext(t *testing.T, cfg *config.Config) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	ctx, out, _ := setupTestContext(t, cfg, nil)
	if err := ctx.Cache.Init(); err != nil {
		t.Fatalf("failed to init cache: %v", err)
	}
	return ctx, out
}

func newMemoryContext(t *testing.T) *cli.Context {
	t.Helper()
	ctx, err := cli.NewContext(storage.NewMemoryCache(), "", nil, nil, config.Defaults())
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	ctx.Out = &bytes.Buffer{}
	return ctx
}
