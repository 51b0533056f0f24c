package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"foodhub/internal/api"
	"foodhub/internal/config"
	"foodhub/internal/logging"
	"foodhub/internal/menu"
	"foodhub/internal/metrics"
	"foodhub/internal/queue"
	"foodhub/internal/state"
)

type commandContext struct {
	configFlag  *string
	storageFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger    *slog.Logger
	logCloser io.Closer
}

func newCommandContext(configFlag, storageFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		storageFlag: storageFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.storageFlag != nil && strings.TrimSpace(*c.storageFlag) != "" {
			if err := cfg.OverrideBackend(*c.storageFlag); err != nil {
				c.configErr = fmt.Errorf("--storage: %w", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log(console bool) (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.NewFromConfig(cfg, console)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	c.logger = logger
	c.logCloser = closer
	return logger, nil
}

func (c *commandContext) closeLog() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
	c.logger = nil
	c.logCloser = nil
}

// withService opens the configured store, wires the engine and menu
// catalog, and closes the store and log file once fn returns.
func (c *commandContext) withService(recorder metrics.Recorder, console bool, fn func(*api.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.log(console)
	if err != nil {
		return err
	}
	defer c.closeLog()

	store, err := state.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	catalog, err := menu.Default()
	if err != nil {
		return err
	}
	engine := queue.New(store, logger, recorder)
	return fn(api.NewService(engine, catalog, cfg.Server.DisplaySeconds))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
