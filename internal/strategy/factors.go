package strategy

import (
	"fmt"

	"StockCast/internal/model"
)

func unavailable(name string, weight float64, why string) model.FactorScore {
	return model.FactorScore{Name: name, Weight: weight, Commentary: why}
}

func scored(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
	}
}

// scoreForecastDrift scores the move from the last close to the final predicted day.
// Weight: 0.40
func scoreForecastDrift(res *model.ForecastResult) model.FactorScore {
	const name, weight = "forecast drift", 0.40
	if len(res.Rows) == 0 || res.Summary.LastClose <= 0 {
		return unavailable(name, weight, "no forecast rows")
	}
	end := res.Rows[len(res.Rows)-1].Prediction
	drift := (end - res.Summary.LastClose) / res.Summary.LastClose * 100

	var score float64
	switch {
	case drift >= 10:
		score = 2.0
	case drift >= 5:
		score = 1.5
	case drift >= 2:
		score = 1.0
	case drift >= 0.5:
		score = 0.5
	case drift > -0.5:
		score = 0
	case drift > -2:
		score = -0.5
	case drift > -5:
		score = -1.0
	case drift > -10:
		score = -1.5
	default:
		score = -2.0
	}
	return scored(name, score, weight, fmt.Sprintf("%+.1f%% over %d days", drift, len(res.Rows)))
}

// scoreTrend scores the last close against the 20-day SMA.
// Weight: 0.20
func scoreTrend(s model.SeriesSummary) model.FactorScore {
	const name, weight = "SMA20 trend", 0.20
	if s.SMA20 == 0 {
		return unavailable(name, weight, "SMA20 unavailable")
	}
	dev := (s.LastClose - s.SMA20) / s.SMA20 * 100

	var score float64
	switch {
	case dev >= 5:
		score = 1.0
	case dev >= 0:
		score = 0.5
	case dev > -5:
		score = -0.5
	default:
		score = -1.0
	}
	return scored(name, score, weight, fmt.Sprintf("%+.1f%% vs SMA20", dev))
}

// scoreRSI reads RSI14 as a mean-reversion signal: oversold scores up, overbought scores down.
// Weight: 0.20
func scoreRSI(s model.SeriesSummary) model.FactorScore {
	const name, weight = "RSI14", 0.20
	if s.RSI14 == 0 {
		return unavailable(name, weight, "RSI unavailable")
	}
	rsi := s.RSI14

	var score float64
	switch {
	case rsi <= 20:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 45:
		score = 0.5
	case rsi <= 55:
		score = 0
	case rsi <= 70:
		score = -0.5
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return scored(name, score, weight, fmt.Sprintf("RSI=%.0f", rsi))
}

// score52WeekPosition scores where the last close sits in the 52-week range.
// Weight: 0.20
func score52WeekPosition(s model.SeriesSummary) model.FactorScore {
	const name, weight = "52w position", 0.20
	if s.High52w <= s.Low52w {
		return unavailable(name, weight, "52-week range unavailable")
	}
	pos := (s.LastClose - s.Low52w) / (s.High52w - s.Low52w)

	var score float64
	switch {
	case pos <= 0.2:
		score = 1.0
	case pos <= 0.4:
		score = 0.5
	case pos <= 0.6:
		score = 0
	case pos <= 0.8:
		score = -0.5
	default:
		score = -1.0
	}
	return scored(name, score, weight, fmt.Sprintf("%.0f%% of range", pos*100))
}
