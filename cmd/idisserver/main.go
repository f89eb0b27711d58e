// Command idisserver runs the IDIS HTTP API: it wires an Application from
// the environment, attaches the run-orchestrator step table, and serves
// /v1 until it receives SIGINT/SIGTERM.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/albarami/idis/internal/app"
	"github.com/albarami/idis/internal/httpapi"
	"github.com/albarami/idis/internal/platform/config"
	"github.com/albarami/idis/internal/platform/logging"
	"github.com/albarami/idis/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	logger := logging.New("idisserver", cfg.LogLevel, cfg.LogFormat)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("initialise application")
		os.Exit(1)
	}
	defer application.Close()

	application.AttachOrchestrator(application.BuildSteps())

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched = scheduler.New(application.Stores, application.Auditor, logger)
		if err := sched.RegisterRetentionSweep(cfg.RetentionSweepCron); err != nil {
			logger.WithError(err).Error("register retention sweep")
			os.Exit(1)
		}
		maxAge := time.Duration(cfg.BYOKRotationReminderMaxDays) * 24 * time.Hour
		if err := sched.RegisterBYOKRotationReminder(cfg.BYOKRotationReminderCron, maxAge); err != nil {
			logger.WithError(err).Error("register byok rotation reminder")
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()
	}

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(application),
	}

	go func() {
		logger.WithFields(map[string]interface{}{"addr": cfg.HTTPAddr}).Info("idisserver listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("http server stopped unexpectedly")
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
		os.Exit(1)
	}
	logger.WithFields(nil).Info("idisserver stopped")
}
