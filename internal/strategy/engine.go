package strategy

import "StockCast/internal/model"

// Tiers maps a total score to an outlook label, highest first.
var Tiers = []struct {
	MinScore float64
	Label    string
}{
	{1.0, "strongly bullish"},
	{0.4, "bullish"},
	{-0.4, "neutral"},
	{-1.0, "bearish"},
}

// DefaultLabel is used for scores below the last tier.
const DefaultLabel = "strongly bearish"

func mapTier(totalScore float64) string {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t.Label
		}
	}
	return DefaultLabel
}

// Evaluate scores a finished forecast against its input history.
func Evaluate(res *model.ForecastResult) *model.Outlook {
	factors := []model.FactorScore{
		scoreForecastDrift(res),
		scoreTrend(res.Summary),
		scoreRSI(res.Summary),
		score52WeekPosition(res.Summary),
	}

	var total float64
	for _, f := range factors {
		total += f.Weighted
	}

	out := &model.Outlook{
		Factors:    factors,
		TotalScore: total,
		Label:      mapTier(total),
	}

	if rsi := res.Summary.RSI14; rsi > 85 {
		out.Warnings = append(out.Warnings, "RSI above 85: overbought")
	} else if rsi > 0 && rsi < 15 {
		out.Warnings = append(out.Warnings, "RSI below 15: oversold")
	}
	if f := res.Fit; f.ValidationLen > 0 && f.ValidationMAE > f.BaselineMAE {
		out.Warnings = append(out.Warnings, "model trails the last-value baseline on validation")
	}
	return out
}
