package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grepari/config"
	"grepari/logger"
	"grepari/output"
	"grepari/search"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	startTime := time.Now()
	metrics := output.Metrics{
		StartTime: startTime.Format(time.RFC3339),
	}

	writer, err := output.New(cfg, &metrics)
	if err != nil {
		logger.Fatalf("Failed to initialize output: %v", err)
	}
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := search.Run(ctx, cfg, &metrics, writer); err != nil {
		logger.Fatalf("Search failed: %v", err)
	}

	elapsed := time.Since(startTime)
	metrics.EndTime = time.Now().Format(time.RFC3339)
	metrics.ElapsedSeconds = elapsed.Seconds()
	writer.SetMetrics(metrics)

	logger.Infof("Search completed in %.2fs. Results written to %s", elapsed.Seconds(), cfg.OutputFileName)
}

func handleSignals(cancelFunc context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	handleSignalEvent(cancelFunc, sigChan)
}

func handleSignalEvent(cancelFunc context.CancelFunc, sigChan <-chan os.Signal) {
	<-sigChan
	logger.Info("Interrupt signal received. Shutting down...")
	cancelFunc()
}
