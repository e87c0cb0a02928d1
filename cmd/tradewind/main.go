package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "tradewind",
	Short: "Tradewind - rule and model driven strategy execution",
	Long: `Tradewind evaluates trading strategies over market data bars.
It replays strategies against history for backtesting and runs them
live on a schedule, forwarding orders to a broker when automated.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
