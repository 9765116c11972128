package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"StockCast/internal/config"
	"StockCast/internal/errs"
)

// Exit codes reported for each error kind.
const (
	exitOK = iota
	exitFailure
	exitConfiguration
	exitRequestFailure
	exitMalformedArguments
	exitDataUnavailable
	exitDegenerateSeries
	exitInvalidRequest
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errs.ErrConfiguration):
		return exitConfiguration
	case errors.Is(err, errs.ErrRequestFailure):
		return exitRequestFailure
	case errors.Is(err, errs.ErrMalformedArguments):
		return exitMalformedArguments
	case errors.Is(err, errs.ErrDataUnavailable):
		return exitDataUnavailable
	case errors.Is(err, errs.ErrDegenerateSeries):
		return exitDegenerateSeries
	case errors.Is(err, errs.ErrInvalidRequest):
		return exitInvalidRequest
	default:
		return exitFailure
	}
}

// loadConfig reads the config file named by --config, falling back to CONFIG_PATH.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	c, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return c, nil
}

func setupLogging(c *config.Config) error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return &errs.ConfigurationError{Field: "log.level", Reason: err.Error()}
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	switch c.Log.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return &errs.ConfigurationError{Field: "log.format", Reason: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	return nil
}
