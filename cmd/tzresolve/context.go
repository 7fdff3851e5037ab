package main

import (
	"context"

	"github.com/tzres/tzengine/cmd/tzresolve/internal/config"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFromContext(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey{}).(*config.Config)
	if cfg == nil {
		// PersistentPreRunE always sets this before a subcommand's RunE
		// runs; a nil here means a test invoked RunE directly.
		return &config.Config{DefaultZone: "UTC"}
	}
	return cfg
}
