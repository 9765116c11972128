package calculator

import (
	"errors"
	"math"
	"time"

	"StockCast/internal/model"
)

// Calculate52WeekRange returns the highest and lowest close within 52 weeks of the last point.
func Calculate52WeekRange(series *model.PriceSeries) (high, low float64, err error) {
	if len(series.Points) == 0 {
		return 0, 0, errors.New("no price points provided")
	}
	cutoff := series.Last().Date.Add(-52 * 7 * 24 * time.Hour)
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range series.Points {
		if p.Date.Before(cutoff) {
			continue
		}
		high = math.Max(high, p.Close)
		low = math.Min(low, p.Close)
	}
	return high, low, nil
}
