package model

import "time"

// DefaultPredictionDays is the forecast horizon used when a request does not name one.
const DefaultPredictionDays = 10

// MaxPredictionDays caps a requested horizon. A forecast also never runs past the length
// of its history.
const MaxPredictionDays = 365

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeries holds the daily closes for one ticker in chronological order.
type PriceSeries struct {
	Symbol    string
	Points    []PricePoint
	FetchedAt time.Time
}

// Closes returns the close prices in series order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Last returns the most recent point. The series must not be empty.
func (s *PriceSeries) Last() PricePoint {
	return s.Points[len(s.Points)-1]
}
