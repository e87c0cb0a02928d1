package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/tradewind/internal/app"
	"github.com/newthinker/tradewind/internal/config"
	"github.com/newthinker/tradewind/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run strategies live",
	Long:  "Evaluate enabled strategies on a schedule and forward orders per their automation mode",
	RunE:  runLive,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// loadConfig builds the configuration from the --config flag, falling back
// to defaults when none is given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}
	log.Warn("no config file specified, using defaults")
	return config.Defaults(), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug, "")
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if !debug {
		log = logger.Must(cfg.Log.Development, cfg.Log.Level)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("building app: %w", err)
	}

	log.Info("starting live driver",
		zap.Duration("tick_interval", cfg.Live.TickInterval),
		zap.Int("strategies", len(cfg.Strategies)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the loop on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("shutting down")
		cancel()
	}()

	return a.RunLive(ctx)
}
