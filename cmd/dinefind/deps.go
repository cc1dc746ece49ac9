package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dinefind/internal/config"
	logpkg "github.com/kailas-cloud/dinefind/internal/logger"
	"github.com/kailas-cloud/dinefind/internal/metrics"
	"github.com/kailas-cloud/dinefind/internal/transport/backend"
)

// deps is what every command needs: configuration, a logger and the
// backend client.
type deps struct {
	env     string
	cfg     config.Config
	logger  *zap.Logger
	backend *backend.Client
}

func newDeps(c *cli.Command) (*deps, error) {
	env := c.String("env")

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if l := c.String("log-level"); l != "" {
		level = l
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	// Register metrics explicitly (no init())
	metrics.Register()

	client, err := backend.New(&backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: time.Duration(cfg.Backend.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("create backend client: %w", err)
	}

	return &deps{env: env, cfg: cfg, logger: logger, backend: client}, nil
}

func (d *deps) close() {
	_ = d.logger.Sync()
}
