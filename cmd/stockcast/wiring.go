package main

import (
	"github.com/sirupsen/logrus"

	"StockCast/internal/agent"
	"StockCast/internal/collector"
	"StockCast/internal/config"
	"StockCast/internal/extractor"
	"StockCast/internal/forecaster"
	"StockCast/internal/recorder"
)

func newFetcher(c *config.Config) collector.Fetcher {
	if c.DataSource.Provider == "rest" {
		return collector.NewRESTFetcher(c.DataSource.BaseURL, c.DataSource.APIKey, c.Proxy)
	}
	return collector.NewYahooFetcher(c.Proxy)
}

func newDispatcher(c *config.Config) *forecaster.Dispatcher {
	fetcher := newFetcher(c)
	logrus.WithField("provider", fetcher.Name()).Info("data source ready")

	col := collector.NewCollector(fetcher, c.DataSource.RequestsPerMinute)
	col.LookbackDays = c.DataSource.LookbackDays
	return forecaster.NewDispatcher(col, forecaster.Options{
		InputWindow:  c.Forecast.InputWindow,
		MaxSteps:     c.Forecast.MaxSteps,
		LearningRate: c.Forecast.LearningRate,
	})
}

// newRecorder opens the SQLite audit log, falling back to a no-op recorder when it is
// disabled or cannot be opened.
func newRecorder(c *config.Config) recorder.Recorder {
	if c.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(c.Database.SQLitePath)
	if err != nil {
		logrus.Warnf("init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

// newAgent wires the full pipeline. withLLM=false leaves the extractor unset, which is
// enough for Agent.Predict.
func newAgent(c *config.Config, withLLM bool) (*agent.Agent, recorder.Recorder, error) {
	var ex agent.Extractor
	if withLLM {
		if err := c.ValidateLLM(); err != nil {
			return nil, nil, err
		}
		e, err := extractor.New(extractor.Config{
			APIKey:  c.OpenAI.APIKey,
			Model:   c.OpenAI.Model,
			BaseURL: c.OpenAI.BaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		ex = e
	}
	rec := newRecorder(c)
	return agent.New(ex, newDispatcher(c), rec), rec, nil
}
