package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/storage"
	"github.com/julianstephens/bloomlet/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete the existing local cache before initialization."`
	Source string `help:"Local cache file (.db or .json) to import data from."`
}

// cacheKeys are the values copied by --source.
var cacheKeys = []string{
	constants.EntriesCacheKey,
	constants.CompletedWeeksCacheKey,
	constants.ProfileCacheKey,
	constants.PendingCacheKey,
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.CachePath != "" {
		dbPath := ctx.CachePath
		if c.Source != "" {
			absDB, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDB
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Cache.Close(); err != nil {
				return fmt.Errorf("failed to close existing cache: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing cache: %w", err)
			}
			ctx.Printf("Deleted existing cache at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing cache: %w", err)
		}
	}

	if err := ctx.Cache.Init(); err != nil {
		return err
	}
	if ctx.CachePath != "" {
		ctx.Printf("Initialized bloomlet cache at: %s\n", ctx.CachePath)
	}

	if ctx.Remote != nil {
		if err := ctx.Remote.Init(); err != nil {
			return fmt.Errorf("failed to initialize remote database: %w", err)
		}
		ctx.Println("Initialized remote database schema")
	}

	if c.Source != "" {
		ctx.Printf("Importing data from: %s\n", c.Source)
		n, err := importCache(ctx.Cache, c.Source)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		ctx.Printf("Imported %d cache values\n", n)
	}
	return nil
}

func openCache(path string) storage.Cache {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.NewJSONStore(path)
	}
	return sqlite.NewStore(path)
}

func importCache(dst storage.Cache, sourcePath string) (int, error) {
	src := openCache(sourcePath)
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source cache: %w", err)
	}
	defer src.Close()

	copied := 0
	for _, key := range cacheKeys {
		value, err := src.Get(key)
		if err != nil {
			return copied, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if value == nil {
			continue
		}
		if err := dst.Put(key, value); err != nil {
			return copied, fmt.Errorf("failed to write %s: %w", key, err)
		}
		copied++
	}
	return copied, nil
}
