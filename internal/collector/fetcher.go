package collector

import (
	"context"

	"StockCast/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	// FetchDailyCloses returns the daily closes covering the trailing `days` calendar days.
	FetchDailyCloses(ctx context.Context, symbol string, days int) (*model.PriceSeries, error)
	Name() string
}
