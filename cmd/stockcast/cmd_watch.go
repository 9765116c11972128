package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"StockCast/internal/notifier"
	"StockCast/internal/scheduler"
)

func runWatchCommand(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}
	a, rec, err := newAgent(cfg, true)
	if err != nil {
		return err
	}
	defer rec.Close()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs := make([]scheduler.Job, 0, len(cfg.Watch))
	for _, w := range cfg.Watch {
		jobs = append(jobs, scheduler.Job{Name: w.Name, Cron: w.Cron, Prompt: w.Prompt})
	}
	sched := scheduler.NewScheduler(ctx, a, tn)
	if err := sched.RegisterAll(jobs); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	polling := make(chan struct{})
	go func() {
		defer close(polling)
		tn.StartPolling(ctx, sched.HandleCommand)
	}()
	logrus.Info("telegram polling started")

	if runOnStart || os.Getenv("RUN_ON_START") == "true" {
		logrus.Info("run-on-start enabled, executing every watch job now")
		sched.RunAllNowAsync()
	}

	logrus.WithField("jobs", len(jobs)).Info("stockcast is watching. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logrus.Info("shutdown signal received, stopping...")
	cancel()
	// Runs still in flight must finish before the deferred Stop and recorder Close.
	<-polling
	return nil
}
