package calculator

import (
	"github.com/sirupsen/logrus"

	"StockCast/internal/model"
)

// Summarize computes the descriptive statistics shown alongside a forecast.
// Indicators that cannot be computed are left at zero.
func Summarize(series *model.PriceSeries) model.SeriesSummary {
	sum := model.SeriesSummary{Points: len(series.Points)}
	if len(series.Points) == 0 {
		return sum
	}
	last := series.Last()
	sum.LastDate = last.Date
	sum.LastClose = last.Close

	log := logrus.WithField("symbol", series.Symbol)
	if ma, err := CalculateSMA20(series); err != nil {
		log.Warnf("SMA20 calculation failed: %v", err)
	} else {
		sum.SMA20 = ma
	}
	if h, l, err := Calculate52WeekRange(series); err != nil {
		log.Warnf("52-week range calculation failed: %v", err)
	} else {
		sum.High52w, sum.Low52w = h, l
	}
	if rsi, err := CalculateRSI(series.Closes(), 14); err != nil {
		log.Warnf("RSI14 calculation failed: %v", err)
	} else {
		sum.RSI14 = rsi
	}
	return sum
}
