package forecaster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/collector"
	"StockCast/internal/errs"
	"StockCast/internal/model"
)

func sineSeries(n int) []model.PricePoint {
	start := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]model.PricePoint, n)
	for i := range pts {
		pts[i] = model.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Close: 100 + 0.1*float64(i) + 5*math.Sin(float64(i)/6),
		}
	}
	return pts
}

func dispatcherFor(points []model.PricePoint, opts Options) (*Dispatcher, *collector.MockFetcher) {
	mock := &collector.MockFetcher{Points: points}
	return NewDispatcher(collector.NewCollector(mock, 0), opts), mock
}

func TestNewModel_RejectsBadConfig(t *testing.T) {
	base := ModelConfig{InputWindow: 2, Horizon: 3, MaxSteps: 10, LearningRate: 0.5}
	_, err := NewModel(base)
	require.NoError(t, err)

	bad := []ModelConfig{
		{InputWindow: 0, Horizon: 3, MaxSteps: 10, LearningRate: 0.5},
		{InputWindow: 2, Horizon: 0, MaxSteps: 10, LearningRate: 0.5},
		{InputWindow: 2, Horizon: 3, MaxSteps: -1, LearningRate: 0.5},
		{InputWindow: 2, Horizon: 3, MaxSteps: 10, LearningRate: 0},
		{InputWindow: 2, Horizon: 3, MaxSteps: 10, LearningRate: 0.5, ValSize: -1},
	}
	for _, cfg := range bad {
		_, err := NewModel(cfg)
		assert.Error(t, err, "%+v", cfg)
	}
}

func TestModel_PredictBeforeFit(t *testing.T) {
	m, err := NewModel(ModelConfig{InputWindow: 2, Horizon: 3, MaxSteps: 10, LearningRate: 0.5})
	require.NoError(t, err)
	_, err = m.Predict()
	assert.Error(t, err)
}

func TestModel_ConstantSeries(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 42
	}
	m, err := NewModel(ModelConfig{InputWindow: 5, Horizon: 4, MaxSteps: 100, LearningRate: 0.5, ValSize: 4})
	require.NoError(t, err)
	report, err := m.Fit(values)
	require.NoError(t, err)
	assert.InDelta(t, 0, report.ValidationMAE, 1e-9)

	preds, err := m.Predict()
	require.NoError(t, err)
	require.Len(t, preds, 4)
	for _, p := range preds {
		assert.InDelta(t, 42, p, 1e-6)
	}
}

func TestModel_NeverWorseThanBaselineOnValidation(t *testing.T) {
	pts := sineSeries(250)
	values := make([]float64, len(pts))
	for i, p := range pts {
		values[i] = p.Close
	}
	m, err := NewModel(ModelConfig{InputWindow: 25, Horizon: 10, MaxSteps: 200, LearningRate: 0.5, ValSize: 10})
	require.NoError(t, err)
	report, err := m.Fit(values)
	require.NoError(t, err)

	assert.Equal(t, 10, report.ValidationLen)
	assert.Equal(t, 200, report.StepsRun)
	assert.LessOrEqual(t, report.ValidationMAE, report.BaselineMAE+1e-9)

	preds, err := m.Predict()
	require.NoError(t, err)
	for _, p := range preds {
		assert.False(t, math.IsNaN(p) || math.IsInf(p, 0))
		assert.InDelta(t, 120, p, 40, "prediction should stay near the series level")
	}
}

func TestModel_SkipsValidationWhenTooShort(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	m, err := NewModel(ModelConfig{InputWindow: 1, Horizon: 10, MaxSteps: 5, LearningRate: 0.5, ValSize: 10})
	require.NoError(t, err)
	report, err := m.Fit(values)
	require.NoError(t, err)
	assert.Zero(t, report.ValidationLen)
	preds, err := m.Predict()
	require.NoError(t, err)
	assert.Len(t, preds, 10)
}

func TestForecast_ShapeAndDates(t *testing.T) {
	pts := sineSeries(250)
	d, _ := dispatcherFor(pts, Options{})

	for _, days := range []int{1, 7, 15, 30} {
		res, err := d.Forecast(context.Background(), "QCOM", days)
		require.NoError(t, err)
		require.Len(t, res.Rows, days)
		assert.Equal(t, "QCOM", res.Ticker)

		last := pts[len(pts)-1].Date
		for i, row := range res.Rows {
			assert.Equal(t, "QCOM", row.Ticker)
			assert.Equal(t, last.AddDate(0, 0, i+1), row.Date)
		}
		assert.Equal(t, 25, res.Fit.InputWindow)
		assert.Equal(t, DefaultMaxSteps, res.Fit.MaxSteps)
	}
}

func TestForecast_DefaultHorizon(t *testing.T) {
	d, _ := dispatcherFor(sineSeries(120), Options{})
	res, err := d.Forecast(context.Background(), "AAPL", 0)
	require.NoError(t, err)
	assert.Len(t, res.Rows, model.DefaultPredictionDays)
}

func TestForecast_HorizonEqualToSeriesLength(t *testing.T) {
	d, _ := dispatcherFor(sineSeries(12), Options{})
	res, err := d.Forecast(context.Background(), "AAPL", 12)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 12)
	assert.Zero(t, res.Fit.ValidationLen)
}

func TestForecast_WindowAndStepsIndependent(t *testing.T) {
	d, _ := dispatcherFor(sineSeries(100), Options{InputWindow: 7, MaxSteps: 3})
	res, err := d.Forecast(context.Background(), "AAPL", 5)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Fit.InputWindow)
	assert.Equal(t, 3, res.Fit.MaxSteps)
	assert.Equal(t, 3, res.Fit.StepsRun)
}

func TestForecast_DegenerateSeries(t *testing.T) {
	d, _ := dispatcherFor(sineSeries(9), Options{})
	_, err := d.Forecast(context.Background(), "TINY", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDegenerateSeries)

	var de *errs.DegenerateSeries
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 9, de.Points)
}

func TestForecast_DataUnavailable(t *testing.T) {
	mock := &collector.MockFetcher{Err: errors.New("yahoo api error: No data found")}
	d := NewDispatcher(collector.NewCollector(mock, 0), Options{})
	_, err := d.Forecast(context.Background(), "ZZZZ", 5)
	assert.ErrorIs(t, err, errs.ErrDataUnavailable)
	assert.NotErrorIs(t, err, errs.ErrDegenerateSeries)

	d, _ = dispatcherFor([]model.PricePoint{}, Options{})
	_, err = d.Forecast(context.Background(), "ZZZZ", 5)
	assert.ErrorIs(t, err, errs.ErrDataUnavailable)
}

func TestForecast_InvalidRequest(t *testing.T) {
	d, mock := dispatcherFor(sineSeries(50), Options{})
	_, err := d.Forecast(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	_, err = d.Forecast(context.Background(), "AAPL", -3)
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	assert.Zero(t, mock.Calls, "invalid requests must not reach the provider")
}

func TestForecast_HorizonBounds(t *testing.T) {
	d, mock := dispatcherFor(sineSeries(250), Options{})
	for _, days := range []int{model.MaxPredictionDays + 1, 1_000_000_000, math.MaxInt} {
		_, err := d.Forecast(context.Background(), "QCOM", days)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest, "days=%d", days)
	}
	assert.Zero(t, mock.Calls, "oversized horizons must not reach the provider")

	d, _ = dispatcherFor(sineSeries(40), Options{})
	_, err := d.Forecast(context.Background(), "QCOM", 41)
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	res, err := d.Forecast(context.Background(), "QCOM", 40)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 40)
}

type cancelledSource struct{}

func (cancelledSource) Collect(ctx context.Context, _ string) (*model.PriceSeries, error) {
	<-ctx.Done()
	return nil, fmt.Errorf("rate limit wait: %w", ctx.Err())
}

func TestForecast_CancelledIsNotDataUnavailable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDispatcher(cancelledSource{}, Options{}).Forecast(ctx, "QCOM", 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, errs.ErrDataUnavailable)
}

func TestForecast_RefetchesEveryCall(t *testing.T) {
	d, mock := dispatcherFor(sineSeries(50), Options{})
	for i := 0; i < 3; i++ {
		_, err := d.Forecast(context.Background(), "AAPL", 2)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, mock.Calls)
}

func TestForecast_Summary(t *testing.T) {
	pts := sineSeries(60)
	d, _ := dispatcherFor(pts, Options{})
	res, err := d.Forecast(context.Background(), "AAPL", 3)
	require.NoError(t, err)
	assert.Equal(t, 60, res.Summary.Points)
	assert.Equal(t, pts[59].Close, res.Summary.LastClose)
	assert.NotZero(t, res.Summary.SMA20)
	assert.NotZero(t, res.Summary.RSI14)
	require.NotNil(t, res.Outlook)
	assert.Len(t, res.Outlook.Factors, 4)
	assert.NotEmpty(t, res.Outlook.Label)
}
