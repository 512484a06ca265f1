package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jpmedinagl/doctors-office/internal/config"
	"github.com/jpmedinagl/doctors-office/internal/logger"
)

type app struct {
	cfg    config.Config
	logger *zap.Logger

	asJSON bool
	week   string
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "office",
		Short:         "Doctor's office appointment scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print schedule records as JSON")
	rootCmd.PersistentFlags().StringVar(&a.week, "week", "", "only list the calendar week containing this date (2006-01-02)")

	rootCmd.AddCommand(demoCmd(a))
	rootCmd.AddCommand(simulateCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	a.cfg = cfg

	l, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.logger = l

	a.logger.Debug("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("office", cfg.OfficeName),
		zap.String("timezone", cfg.Location.String()),
		zap.Int("cancellation_limit", cfg.CancellationLimit),
	)
	return nil
}

// weekFilter parses --week. An empty flag yields the zero time, which
// disables filtering.
func (a *app) weekFilter() (time.Time, error) {
	if a.week == "" {
		return time.Time{}, nil
	}
	week, err := config.ParseDate(a.week, a.cfg.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --week: %w", err)
	}
	return week, nil
}
