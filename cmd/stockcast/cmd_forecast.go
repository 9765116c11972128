package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"StockCast/internal/errs"
	"StockCast/internal/model"
	"StockCast/internal/notifier"
)

// runForecastCommand sends the prompt through the language model and prints the table or
// the model's text reply.
func runForecastCommand(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return fmt.Errorf("prompt is empty")
	}

	a, rec, err := newAgent(cfg, true)
	if err != nil {
		return err
	}
	defer rec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ans, err := a.Ask(ctx, "cli", prompt)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), notifier.FormatAnswer(ans))
	return nil
}

// predictRequest validates the --days flag. Zero selects the default horizon.
func predictRequest(symbol string, days int) (model.ForecastRequest, error) {
	if days < 0 || days > model.MaxPredictionDays {
		return model.ForecastRequest{}, &errs.InvalidRequest{
			Reason: fmt.Sprintf("--days must be between 1 and %d, got %d", model.MaxPredictionDays, days),
		}
	}
	return model.ForecastRequest{
		StockSymbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		PredictionDays: days,
	}, nil
}

func runPredictCommand(cmd *cobra.Command, args []string) error {
	a, rec, err := newAgent(cfg, false)
	if err != nil {
		return err
	}
	defer rec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := predictRequest(args[0], predictDays)
	if err != nil {
		return err
	}
	ans, err := a.Predict(ctx, "predict", req)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), notifier.FormatAnswer(ans))
	return nil
}
