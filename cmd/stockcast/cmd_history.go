package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"StockCast/internal/errs"
	"StockCast/internal/notifier"
	"StockCast/internal/recorder"
)

func runHistoryCommand(cmd *cobra.Command, args []string) error {
	if cfg.Database.SQLitePath == "" {
		return &errs.ConfigurationError{Field: "database.sqlite_path", Reason: "is required for run history"}
	}
	rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		return err
	}
	defer rec.Close()

	out := cmd.OutOrStdout()
	if historyRunID != "" {
		preds, err := rec.PredictionsFor(historyRunID)
		if err != nil {
			return err
		}
		if len(preds) == 0 {
			fmt.Fprintf(out, "no predictions stored for run %s\n", historyRunID)
			return nil
		}
		for i, p := range preds {
			fmt.Fprintf(out, "day %d\t%.2f\n", i+1, p)
		}
		return nil
	}

	runs, err := rec.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	fmt.Fprint(out, notifier.FormatHistory(runs))
	return nil
}
