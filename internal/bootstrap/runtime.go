// Package bootstrap wires the process-wide runtime shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/observability"
	"quill/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "quill-api"

// Options control runtime initialization behavior.
type Options struct {
	// SeedGroups upserts group fixtures after connecting. Only honoured in
	// development and test environments.
	SeedGroups bool
	// GroupsFile is a YAML fixtures file; the built-in groups are used when empty.
	GroupsFile string
}

// Runtime holds the shared connections of a running process.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime configures logging and tracing, connects to DB and Redis and
// optionally seeds groups.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	middleware.Logger = middleware.NewLogger(cfg.Env, cfg.LogLevel)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  serviceName,
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSamplerRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// A nil client means the page cache falls back to process memory.
	cache.InitRedis(cfg.RedisURL)

	rt := &Runtime{DB: db, Redis: cache.GetClient(), shutdownTracing: shutdownTracing}

	if opts.SeedGroups && !cfg.IsProduction() {
		if err := seedGroups(db, opts.GroupsFile); err != nil {
			return nil, fmt.Errorf("failed to seed groups: %w", err)
		}
	}

	return rt, nil
}

// Close flushes tracing. The server owns DB and Redis shutdown.
func (r *Runtime) Close(ctx context.Context) error {
	if r.shutdownTracing == nil {
		return nil
	}
	return r.shutdownTracing(ctx)
}

func seedGroups(db *gorm.DB, path string) error {
	fixtures := seed.DefaultGroups
	if path != "" {
		loaded, err := seed.LoadGroupsFile(path)
		if err != nil {
			return err
		}
		fixtures = loaded
	}

	groups, err := seed.Groups(db, fixtures)
	if err != nil {
		return err
	}
	middleware.Logger.Info("groups ensured", slog.Int("count", len(groups)))
	return nil
}
