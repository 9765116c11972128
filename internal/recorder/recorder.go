package recorder

import (
	"time"

	"StockCast/internal/model"
)

// RunRecord captures one pipeline run for the audit log.
type RunRecord struct {
	ID             string
	StartedAt      time.Time
	Source         string // "cli", "predict", "watch:<job>", "telegram"
	Prompt         string
	Outcome        string // "forecast", "text_reply" or "error"
	Symbol         string
	PredictionDays int
	Reply          string
	Error          string
	Result         *model.ForecastResult
}

// RunSummary is one row of the run history.
type RunSummary struct {
	ID             string
	StartedAt      time.Time
	Source         string
	Prompt         string
	Outcome        string
	Symbol         string
	PredictionDays int
	ValidationMAE  float64
	Outlook        string
	Error          string
}

// Recorder persists pipeline runs for later inspection.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
