package config

import (
	"github.com/watchdock/agent/internal/envconf"
	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/internal/repository"
	"github.com/watchdock/agent/pkg/cache"
	"github.com/watchdock/agent/pkg/queue"
)

type Config struct {
	// Logger for logging
	Logger *logger.Logger

	Repository *repository.Repository

	Queue queue.Queue

	Cache *cache.StatusCache

	SiteName string
	SiteURL  string
}

func GetConfig(envConf *envconf.EnvDecoderConf, repo *repository.Repository, q queue.Queue, c *cache.StatusCache) *Config {
	return &Config{
		Logger:     logger.NewConsole(envConf.Debug),
		Repository: repo,
		Queue:      q,
		Cache:      c,
		SiteName:   envConf.SiteName,
		SiteURL:    envConf.SiteURL,
	}
}
