package main

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"moviefetch/internal/config"
	"moviefetch/internal/logger"
	"moviefetch/internal/models"
	"moviefetch/internal/source"
)

var errNoInput = errors.New("no input: pass --input or enable a source in the config file")

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if path == "" {
			c.config = config.Default()
			return
		}
		c.config, c.configErr = config.LoadConfig(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *logger.Logger {
	level := "info"
	if cfg, err := c.ensureConfig(); err == nil {
		level = cfg.Logging.Level
	}
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		level = *c.logLevelFlag
	}
	return logger.NewLogger(level)
}

// records loads the files named by inputs, or the enabled config sources
// when inputs is empty.
func (c *commandContext) records(ctx context.Context, inputs []string) ([]models.RawRecord, string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, "", err
	}

	var src source.Multi
	if len(inputs) > 0 {
		for _, path := range inputs {
			src = append(src, source.NewFileSource("", path))
		}
	} else {
		src = source.FromConfig(cfg)
	}

	if len(src) == 0 {
		return nil, "", errNoInput
	}

	records, err := src.Records(ctx)
	if err != nil {
		return nil, "", err
	}
	return records, src.Name(), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
