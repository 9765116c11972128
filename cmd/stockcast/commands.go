package main

import (
	"github.com/spf13/cobra"

	"StockCast/internal/config"
)

// --- Global Command Variables ---
var (
	configPath   string
	cfg          *config.Config
	predictDays  int
	runOnStart   bool
	historyLimit int
	historyRunID string

	rootCmd = &cobra.Command{
		Use:           "stockcast",
		Short:         "Turn natural-language prompts into daily stock price forecasts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			if err := setupLogging(c); err != nil {
				return err
			}
			cfg = c
			return nil
		},
	}

	forecastCmd = &cobra.Command{
		Use:     "forecast [prompt...]",
		Short:   "Ask for a forecast in plain language, e.g. \"Forecast Qualcomm for 15 days\"",
		Aliases: []string{"ask"},
		Args:    cobra.MinimumNArgs(1),
		RunE:    runForecastCommand, // Defined in cmd_forecast.go
	}

	predictCmd = &cobra.Command{
		Use:   "predict SYMBOL",
		Short: "Forecast a ticker directly, without the language model",
		Args:  cobra.ExactArgs(1),
		RunE:  runPredictCommand, // Defined in cmd_forecast.go
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Run scheduled forecasts and answer prompts over Telegram",
		Args:  cobra.NoArgs,
		RunE:  runWatchCommand, // Defined in cmd_watch.go
	}

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List recent forecast runs from the SQLite audit log",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCommand, // Defined in cmd_history.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default configs/config.yaml or $CONFIG_PATH)")

	predictCmd.Flags().IntVarP(&predictDays, "days", "d", 0, "number of days to forecast (default 10)")
	watchCmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run every watch job once at startup")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "show the predicted rows of one run")

	rootCmd.AddCommand(forecastCmd, predictCmd, watchCmd, historyCmd)
}
