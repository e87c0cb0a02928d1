package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/newthinker/tradewind/internal/logger"
	"github.com/newthinker/tradewind/internal/strategy"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List configured strategies",
	RunE:  runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug, "")
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if len(cfg.Strategies) == 0 {
		fmt.Println("No strategies configured")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSYMBOLS\tMODE\tSIZING\tENABLED")
	for i := range cfg.Strategies {
		s := &cfg.Strategies[i]
		mode := s.AutomationMode
		if mode == "" {
			mode = strategy.ModeManual
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n",
			s.Name, strings.Join(s.Symbols, ","), mode, s.SizingMode, s.Enabled)
	}
	return w.Flush()
}
