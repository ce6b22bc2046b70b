package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/companion"
	"github.com/julianstephens/bloomlet/internal/logger"
)

// ServeCmd runs the companion analysis service that analysis.url points at.
type ServeCmd struct {
	Addr  string `help:"Listen address. Defaults to companion.addr from settings."`
	Model string `help:"Chat model. Defaults to companion.model from settings."`
}

func (cmd *ServeCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config.Companion
	addr := firstNonEmpty(cmd.Addr, cfg.Addr)
	model := firstNonEmpty(cmd.Model, cfg.Model)
	if cfg.APIKey == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}

	var cache companion.ResultCache
	if cfg.RedisURL != "" {
		redisCache, err := companion.NewRedisCache(cfg.RedisURL, cfg.CacheTTL.Std())
		if err != nil {
			return fmt.Errorf("failed to connect analysis cache: %w", err)
		}
		defer redisCache.Close()
		cache = redisCache
		logger.Info("Analysis cache enabled", "ttl", cfg.CacheTTL.Std())
	}

	server := companion.NewServer(companion.NewOpenAI(cfg.APIKey, model), cache)
	ctx.Printf("🦋 Companion listening on http://%s (model %s)\n", addr, model)
	return server.ListenAndServe(ctx.Base, addr)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
