package forecaster

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"StockCast/internal/calculator"
	"StockCast/internal/errs"
	"StockCast/internal/model"
	"StockCast/internal/strategy"
)

const (
	// MinSeriesLength is the shortest history that yields a positive input window.
	MinSeriesLength = 10
	// DefaultMaxSteps is the training budget when none is configured.
	DefaultMaxSteps = 200
	// DefaultLearningRate is the base gradient-descent rate when none is configured.
	DefaultLearningRate = 0.5
)

// SeriesSource supplies the price history for a symbol.
type SeriesSource interface {
	Collect(ctx context.Context, symbol string) (*model.PriceSeries, error)
}

// Options tunes the model built for each forecast. Zero values select defaults.
type Options struct {
	InputWindow  int // 0 derives floor(len/10) from the series
	MaxSteps     int
	LearningRate float64
}

// Dispatcher turns a ticker and horizon into a forecast. It keeps no state between calls:
// each call re-fetches the history and trains a fresh model.
type Dispatcher struct {
	source SeriesSource
	opts   Options
}

// NewDispatcher creates a Dispatcher reading history from source.
func NewDispatcher(source SeriesSource, opts Options) *Dispatcher {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultLearningRate
	}
	return &Dispatcher{source: source, opts: opts}
}

// Forecast predicts the next days closes for symbol. days == 0 selects
// model.DefaultPredictionDays.
func (d *Dispatcher) Forecast(ctx context.Context, symbol string, days int) (*model.ForecastResult, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, &errs.InvalidRequest{Reason: "stock symbol is empty"}
	}
	if days == 0 {
		days = model.DefaultPredictionDays
	}
	if days < 0 {
		return nil, &errs.InvalidRequest{Reason: fmt.Sprintf("prediction days must be positive, got %d", days)}
	}
	if days > model.MaxPredictionDays {
		return nil, &errs.InvalidRequest{Reason: fmt.Sprintf("prediction days must be at most %d, got %d", model.MaxPredictionDays, days)}
	}

	series, err := d.source.Collect(ctx, symbol)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &errs.DataUnavailable{Symbol: symbol, Err: err}
	}
	if len(series.Points) == 0 {
		return nil, &errs.DataUnavailable{Symbol: symbol}
	}
	n := len(series.Points)
	if n < MinSeriesLength {
		return nil, &errs.DegenerateSeries{Symbol: symbol, Points: n, Min: MinSeriesLength}
	}
	if days > n {
		return nil, &errs.InvalidRequest{Reason: fmt.Sprintf("prediction days %d exceed the %d points of history", days, n)}
	}

	window := n / 10
	if d.opts.InputWindow > 0 {
		window = min(d.opts.InputWindow, n-1)
	}

	m, err := NewModel(ModelConfig{
		InputWindow:  window,
		Horizon:      days,
		MaxSteps:     d.opts.MaxSteps,
		LearningRate: d.opts.LearningRate,
		ValSize:      days,
	})
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{"symbol": symbol, "points": n, "window": window, "horizon": days})
	log.Debug("fitting model")
	report, err := m.Fit(series.Closes())
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}
	if report.ValidationLen == 0 {
		log.Debug("series too short for a validation slice, trained on full history")
	}
	preds, err := m.Predict()
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	last := series.Last().Date
	rows := make([]model.ForecastRow, len(preds))
	for i, p := range preds {
		rows[i] = model.ForecastRow{
			Ticker:     symbol,
			Date:       last.AddDate(0, 0, i+1),
			Prediction: p,
		}
	}

	res := &model.ForecastResult{
		Ticker:  symbol,
		Rows:    rows,
		Summary: calculator.Summarize(series),
		Fit: model.FitStats{
			InputWindow:   window,
			MaxSteps:      d.opts.MaxSteps,
			StepsRun:      report.StepsRun,
			ValidationLen: report.ValidationLen,
			ValidationMAE: report.ValidationMAE,
			BaselineMAE:   report.BaselineMAE,
		},
	}
	res.Outlook = strategy.Evaluate(res)
	return res, nil
}
