package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"StockCast/internal/extractor"
	"StockCast/internal/model"
	"StockCast/internal/recorder"
)

// Extractor turns a prompt into forecast arguments or a text reply.
type Extractor interface {
	Extract(ctx context.Context, prompt string) (*extractor.Outcome, error)
}

// Forecaster produces a forecast for a ticker.
type Forecaster interface {
	Forecast(ctx context.Context, symbol string, days int) (*model.ForecastResult, error)
}

// Answer is what one pipeline run produced. Exactly one of Forecast and Reply is set.
type Answer struct {
	RunID    string
	Prompt   string
	Request  *model.ForecastRequest
	Forecast *model.ForecastResult
	Reply    string
}

// IsForecast reports whether the run produced a forecast table.
func (a *Answer) IsForecast() bool { return a.Forecast != nil }

// Agent wires the extractor to the forecaster.
type Agent struct {
	Extractor  Extractor
	Forecaster Forecaster
	Recorder   recorder.Recorder
}

// New creates an Agent. A nil recorder is replaced by a no-op one.
func New(ex Extractor, fc Forecaster, rec recorder.Recorder) *Agent {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Agent{Extractor: ex, Forecaster: fc, Recorder: rec}
}

// Ask runs prompt through the extractor and, when it yields arguments, the forecaster.
// A text reply is passed through and the forecaster is not called. source labels the run
// in the audit log.
func (a *Agent) Ask(ctx context.Context, source, prompt string) (*Answer, error) {
	run := a.newRun(source, prompt)
	log := logrus.WithFields(logrus.Fields{"run_id": run.ID, "source": source})

	outcome, err := a.Extractor.Extract(ctx, prompt)
	if err != nil {
		a.finish(run, err)
		return nil, fmt.Errorf("extract parameters: %w", err)
	}

	ans := &Answer{RunID: run.ID, Prompt: prompt}
	if outcome.Kind != extractor.OutcomeArguments {
		log.Info("model replied without calling the forecast function")
		ans.Reply = outcome.Reply
		run.Outcome = "text_reply"
		run.Reply = outcome.Reply
		a.finish(run, nil)
		return ans, nil
	}

	ans.Request = outcome.Request
	log.WithFields(logrus.Fields{
		"symbol": outcome.Request.StockSymbol,
		"days":   outcome.Request.PredictionDays,
	}).Info("forecast requested")

	res, err := a.forecast(ctx, run, outcome.Request)
	if err != nil {
		return nil, err
	}
	ans.Forecast = res
	return ans, nil
}

// Predict skips the extractor and forecasts req directly.
func (a *Agent) Predict(ctx context.Context, source string, req model.ForecastRequest) (*Answer, error) {
	run := a.newRun(source, "")
	res, err := a.forecast(ctx, run, &req)
	if err != nil {
		return nil, err
	}
	return &Answer{RunID: run.ID, Request: &req, Forecast: res}, nil
}

func (a *Agent) forecast(ctx context.Context, run *recorder.RunRecord, req *model.ForecastRequest) (*model.ForecastResult, error) {
	run.Symbol = req.StockSymbol
	run.PredictionDays = req.PredictionDays

	res, err := a.Forecaster.Forecast(ctx, req.StockSymbol, req.PredictionDays)
	if err != nil {
		a.finish(run, err)
		return nil, fmt.Errorf("forecast %s: %w", req.StockSymbol, err)
	}
	run.Outcome = "forecast"
	run.PredictionDays = len(res.Rows)
	run.Result = res
	a.finish(run, nil)
	return res, nil
}

func (a *Agent) newRun(source, prompt string) *recorder.RunRecord {
	return &recorder.RunRecord{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Source:    source,
		Prompt:    prompt,
	}
}

// finish records the run. Recorder failures are logged and never fail the pipeline.
func (a *Agent) finish(run *recorder.RunRecord, runErr error) {
	if runErr != nil {
		run.Outcome = "error"
		run.Error = runErr.Error()
	}
	if err := a.Recorder.RecordRun(run); err != nil {
		logrus.WithField("run_id", run.ID).Errorf("record run: %v", err)
	}
}
