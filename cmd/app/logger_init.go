package main

import (
	"github.com/mossdale/dropforge/internal/config"
	"github.com/mossdale/dropforge/internal/logger"
)

// initLogger initializes the logger using centralized app configuration
func initLogger(cfg *config.Config) {
	// Source info is only worth the overhead in dev
	addSource := cfg.Environment == "dev" || cfg.Environment == "development"

	logger.Init(logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		"dropforge",
		cfg.Environment,
		addSource,
	))
}
