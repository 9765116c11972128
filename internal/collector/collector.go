package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"StockCast/internal/model"
)

// DefaultLookbackDays is the trailing window requested from the provider.
const DefaultLookbackDays = 365

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Points []model.PricePoint
	Err    error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyCloses(_ context.Context, symbol string, days int) (*model.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Points != nil {
		return &model.PriceSeries{Symbol: symbol, Points: m.Points, FetchedAt: time.Now()}, nil
	}
	return &model.PriceSeries{Symbol: symbol, Points: GenerateMockPoints(m.Price, days*5/7), FetchedAt: time.Now()}, nil
}

// GenerateMockPoints builds a gently rising series of count daily closes ending yesterday.
func GenerateMockPoints(basePrice float64, count int) []model.PricePoint {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		points[i] = model.PricePoint{
			Date:  today.AddDate(0, 0, -(count - i)),
			Close: basePrice * (1 + float64(i-count/2)*0.001),
		}
	}
	return points
}

// Collector rate-limits a Fetcher and normalizes what it returns.
type Collector struct {
	Fetcher      Fetcher
	LookbackDays int
	limiter      *rate.Limiter
}

// NewCollector creates a new Collector. requestsPerMinute <= 0 disables rate limiting.
func NewCollector(fetcher Fetcher, requestsPerMinute int) *Collector {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return &Collector{Fetcher: fetcher, LookbackDays: DefaultLookbackDays, limiter: limiter}
}

// Collect fetches the trailing daily closes for symbol. Non-finite or non-positive closes are
// dropped, duplicate dates keep the later value, and points older than the lookback window
// (measured from the last point) are trimmed.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	series, err := c.Fetcher.FetchDailyCloses(ctx, symbol, c.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("fetch daily closes from %s: %w", c.Fetcher.Name(), err)
	}

	raw := len(series.Points)
	series.Points = normalize(series.Points, c.LookbackDays)
	if dropped := raw - len(series.Points); dropped > 0 {
		logrus.WithFields(logrus.Fields{
			"symbol":  symbol,
			"source":  c.Fetcher.Name(),
			"dropped": dropped,
		}).Warn("dropped unusable price points")
	}
	return series, nil
}

func normalize(points []model.PricePoint, lookbackDays int) []model.PricePoint {
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 || lookbackDays <= 0 {
		return out
	}
	cutoff := out[len(out)-1].Date.AddDate(0, 0, -lookbackDays)
	start := 0
	for start < len(out) && out[start].Date.Before(cutoff) {
		start++
	}
	return out[start:]
}
