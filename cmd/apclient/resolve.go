package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nlkli/fyspoti/internal/apcache"
	"github.com/nlkli/fyspoti/internal/applog"
	"github.com/nlkli/fyspoti/internal/config"
	"github.com/nlkli/fyspoti/internal/resolver"
)

const resolveCacheKey = "accesspoint"

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Resolve an access-point endpoint and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := applog.New(cmd.ErrOrStderr(), cfg.LogLevel, "resolver")

			if cfg.AccessPoint != "" {
				fmt.Fprintln(cmd.OutOrStdout(), cfg.AccessPoint)
				return nil
			}

			ep, err := resolveWithCache(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ep)
			return nil
		},
	}
}

// resolveWithCache checks apcache before making a network call, and
// populates it afterward, so repeated invocations within CacheTTL don't
// re-hit apresolve.spotify.com.
func resolveWithCache(ctx context.Context, cfg config.Config, log zerolog.Logger) (string, error) {
	cache, err := apcache.Open(cfg.CachePath, log)
	if err != nil {
		return "", err
	}
	defer cache.Close()

	if ep, ok := cache.Get(resolveCacheKey); ok {
		log.Debug().Str("endpoint", ep).Msg("using cached access point")
		return ep, nil
	}

	r := resolver.New(resolver.DefaultURL, time.Second, 1, log)
	ep, err := r.Resolve(ctx)
	if err != nil {
		return "", err
	}

	if err := cache.Put(resolveCacheKey, ep, cfg.CacheTTL); err != nil {
		log.Warn().Err(err).Msg("failed to cache resolved endpoint")
	}
	return ep, nil
}
