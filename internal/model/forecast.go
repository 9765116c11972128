package model

import "time"

// ForecastRequest is what the extractor hands to the dispatcher.
type ForecastRequest struct {
	StockSymbol    string `json:"stock_symbol"`
	PredictionDays int    `json:"prediction_days"`
}

// ForecastRow is one predicted day.
type ForecastRow struct {
	Ticker     string
	Date       time.Time
	Prediction float64
}

// SeriesSummary describes the history a forecast was trained on.
type SeriesSummary struct {
	Points    int
	LastDate  time.Time
	LastClose float64
	SMA20     float64
	High52w   float64
	Low52w    float64
	RSI14     float64
}

// FitStats reports how the model was configured and how it did on the held-out slice.
type FitStats struct {
	InputWindow   int
	MaxSteps      int
	StepsRun      int
	ValidationLen int
	ValidationMAE float64
	BaselineMAE   float64 // last-value baseline on the same slice
}

// ForecastResult is the sole externally visible output of a forecast.
type ForecastResult struct {
	Ticker  string
	Rows    []ForecastRow
	Summary SeriesSummary
	Fit     FitStats
	Outlook *Outlook
}

// FactorScore is one scored input to the outlook.
type FactorScore struct {
	Name       string
	RawScore   float64 // -2 .. +2
	Weight     float64
	Weighted   float64
	Commentary string
}

// Outlook condenses a forecast and its history into a single directional label.
type Outlook struct {
	Factors    []FactorScore
	TotalScore float64
	Label      string
	Warnings   []string
}
