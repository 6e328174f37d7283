package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joeshaw/envdecode"

	"github.com/watchdock/agent/api/server"
	"github.com/watchdock/agent/api/server/config"
	"github.com/watchdock/agent/internal/adapter"
	"github.com/watchdock/agent/internal/envconf"
	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/pkg/alerter"
	"github.com/watchdock/agent/pkg/cache"
	"github.com/watchdock/agent/pkg/executor"
	"github.com/watchdock/agent/pkg/maintenance"
	"github.com/watchdock/agent/pkg/notifier"
	"github.com/watchdock/agent/pkg/pipeline"
	"github.com/watchdock/agent/pkg/pulsar"
	"github.com/watchdock/agent/pkg/queue"
	"github.com/watchdock/agent/pkg/scheduler"

	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/internal/repository"
)

func main() {
	var envDecoderConf envconf.EnvDecoderConf = envconf.EnvDecoderConf{}

	if err := envdecode.StrictDecode(&envDecoderConf); err != nil {
		logger.NewErrorConsole(true).Fatal().Caller().Msgf("could not decode env conf: %v", err)

		os.Exit(1)
	}

	l := logger.NewConsole(envDecoderConf.Debug)

	// create database connection through adapter
	db, err := adapter.New(&envDecoderConf.DBConf)

	if err != nil {
		l.Fatal().Caller().Msgf("could not create database connection: %v", err)
	}

	if err := repository.AutoMigrate(db, false); err != nil {
		l.Fatal().Caller().Msgf("auto migration failed: %v", err)
	}

	repo := repository.NewRepository(db)

	backoffBase := time.Duration(envDecoderConf.QueueConf.BackoffBaseMs) * time.Millisecond

	var q queue.Queue

	if envDecoderConf.QueueConf.Kind == "redis" {
		q = queue.NewRedisQueue(
			envDecoderConf.QueueConf.RedisHost,
			envDecoderConf.QueueConf.RedisPort,
			envDecoderConf.QueueConf.RedisUsername,
			envDecoderConf.QueueConf.RedisPassword,
			envDecoderConf.QueueConf.RedisDB,
			l,
			envDecoderConf.QueueConf.MaxAttempts,
			backoffBase,
		)
	} else {
		q = queue.NewMemoryQueue(l, envDecoderConf.QueueConf.MaxAttempts, backoffBase)
	}

	statusCache := cache.NewStatusCache()

	registry := executor.NewRegistry()
	registry.Register(models.MonitorTypeAPI, &executor.HTTPExecutor{})
	registry.Register(models.MonitorTypeHeartbeat, &executor.HeartbeatExecutor{Cache: statusCache})

	notify := notifier.NewNotifier(
		repo.Trigger,
		&notifier.DefaultTemplateStore{},
		&notifier.LogSender{Logger: l},
		l,
		envDecoderConf.SiteName,
		envDecoderConf.SiteURL,
	)

	alert := alerter.NewAlerter(repo, notify, l)

	executionWorker := &pipeline.ExecutionWorker{
		Repository:        repo,
		Executors:         registry,
		Queue:             q,
		Logger:            l,
		MaxTimeoutRetries: envDecoderConf.SchedulerConf.MaxTimeoutRetries,
		TimeoutRetryDelay: time.Duration(envDecoderConf.SchedulerConf.TimeoutRetryDelayMs) * time.Millisecond,
		ExecutionTimeout:  time.Duration(envDecoderConf.SchedulerConf.ExecutionTimeoutSeconds) * time.Second,
	}

	responseWorker := &pipeline.ResponseWorker{
		Repository: repo,
		Cache:      statusCache,
		Queue:      q,
		Logger:     l,
	}

	alertWorker := &pipeline.AlertWorker{
		Alerter: alert,
		Logger:  l,
	}

	q.RegisterWorker(pipeline.QueueExecution, executionWorker.Handle, executionConcurrency(repo, l))
	q.RegisterWorker(pipeline.QueueResponse, responseWorker.Handle, 2)
	q.RegisterWorker(pipeline.QueueAlert, alertWorker.Handle, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := q.Start(ctx); err != nil {
		l.Fatal().Caller().Msgf("queue backend unavailable: %v", err)
	}

	sched := scheduler.NewMonitorScheduler(repo.Monitor, repo.Secret, q, l)
	sched.Start()

	if err := sched.Reconcile(); err != nil {
		l.Error().Caller().Msgf("initial reconcile failed: %v", err)
	}

	// keep the live cron entries in step with the monitor store
	reconcilePulsar := pulsar.NewPulsar(envDecoderConf.SchedulerConf.ReconcileIntervalSeconds, time.Second)

	go func() {
		for range reconcilePulsar.Pulsate() {
			if err := sched.Reconcile(); err != nil {
				l.Error().Caller().Msgf("reconcile failed: %v", err)
			}
		}
	}()

	expander := maintenance.NewExpander(repo.Maintenance, l)
	expander.Start()

	conf := config.GetConfig(&envDecoderConf, repo, q, statusCache)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", envDecoderConf.ServerPort),
		Handler: server.NewRouter(conf),
	}

	go func() {
		l.Info().Msgf("serving on port %d", envDecoderConf.ServerPort)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Caller().Msgf("server exited with error: %v", err)
		}
	}()

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)
	<-termChan

	l.Info().Msgf("shutting down")

	reconcilePulsar.Stop()
	sched.Stop()
	expander.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Error().Caller().Msgf("server shutdown: %v", err)
	}

	if err := q.Shutdown(shutdownCtx); err != nil {
		l.Error().Caller().Msgf("queue shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// executionConcurrency scales the execution worker pool with the number
// of active monitors, clamped to at least one worker.
func executionConcurrency(repo *repository.Repository, l *logger.Logger) int {
	monitors, err := repo.Monitor.ListActiveMonitors()

	if err != nil {
		l.Error().Caller().Msgf("could not size execution workers: %v", err)
		return 1
	}

	if len(monitors) < 1 {
		return 1
	}

	return len(monitors)
}
