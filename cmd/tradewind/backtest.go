package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newthinker/tradewind/internal/app"
	"github.com/newthinker/tradewind/internal/logger"
)

var (
	backtestSymbol string
	backtestBars   int
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Replay a strategy over historical bars",
	Long:  "Replay a strategy against historical data, print performance metrics, and archive the report",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Symbol to backtest (required)")
	backtestCmd.Flags().IntVar(&backtestBars, "bars", 500, "Number of bars to replay")

	backtestCmd.MarkFlagRequired("symbol")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	strategyName := args[0]

	log := logger.Must(debug, "")
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("building app: %w", err)
	}

	result, path, err := a.Backtest(context.Background(), strategyName, backtestSymbol, backtestBars)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	m := result.Metrics
	fmt.Println("=== Tradewind Backtest ===")
	fmt.Printf("Strategy: %s\n", strategyName)
	fmt.Printf("Symbol:   %s\n", backtestSymbol)
	fmt.Printf("Bars:     %d\n", backtestBars)
	fmt.Println()
	fmt.Printf("Trades:       %d\n", m.TradeCount)
	fmt.Printf("Total PnL:    %.2f%%\n", m.TotalPnL)
	fmt.Printf("Win rate:     %.1f%%\n", m.WinRate)
	fmt.Printf("Average PnL:  %.2f%%\n", m.AveragePnL)
	fmt.Printf("Max drawdown: %.2f%%\n", m.MaxDrawdown)
	fmt.Printf("Sharpe:       %.2f\n", m.SharpeRatio)
	fmt.Printf("Final state:  %s\n", result.FinalPosition)
	if path != "" {
		fmt.Printf("Report:       %s\n", path)
	}

	return nil
}
