package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/sirupsen/logrus"

	"StockCast/internal/errs"
	"StockCast/internal/model"
)

// FunctionName is the single function declared to the model.
const FunctionName = "get_stock_forecast"

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

// OutcomeKind tells which branch of an Outcome is populated.
type OutcomeKind string

const (
	OutcomeArguments OutcomeKind = "arguments"
	OutcomeTextReply OutcomeKind = "text_reply"
)

// Outcome is the result of a successful extraction: either a forecast request or the
// model's free-text reply. Request failures are returned as *errs.RequestFailure instead.
type Outcome struct {
	Kind    OutcomeKind
	Request *model.ForecastRequest
	Reply   string
}

// Config holds what the extractor needs to reach the language model.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // empty uses the OpenAI default
}

// Extractor asks a chat-completion model to turn a prompt into forecast arguments.
type Extractor struct {
	client *openai.Client
	model  string
}

// New creates an Extractor. The API key must be supplied by the caller.
func New(cfg Config) (*Extractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &errs.ConfigurationError{Field: "openai.api_key", Reason: "is required"}
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	m := cfg.Model
	if m == "" {
		m = DefaultModel
	}
	return &Extractor{client: openai.NewClientWithConfig(clientCfg), model: m}, nil
}

// forecastTool declares get_stock_forecast(stock_symbol, prediction_days?).
func forecastTool() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        FunctionName,
			Description: "Forecast the daily closing price of a publicly traded stock.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"stock_symbol": {
						Type:        jsonschema.String,
						Description: "Ticker symbol of the stock, e.g. AAPL or QCOM.",
					},
					"prediction_days": {
						Type:        jsonschema.Integer,
						Description: fmt.Sprintf("Number of days to forecast, at most %d. Defaults to %d.", model.MaxPredictionDays, model.DefaultPredictionDays),
					},
				},
				Required: []string{"stock_symbol"},
			},
		},
	}
}

// Extract sends prompt as a single user message and lets the model decide whether to call
// the forecast function. It makes exactly one request and never retries.
func (e *Extractor) Extract(ctx context.Context, prompt string) (*Outcome, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Tools:      []openai.Tool{forecastTool()},
		ToolChoice: "auto",
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, toRequestFailure(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &errs.RequestFailure{Status: 200, Message: "response contained no choices"}
	}
	msg := resp.Choices[0].Message
	logrus.WithFields(logrus.Fields{
		"model":         e.model,
		"finish_reason": resp.Choices[0].FinishReason,
		"tool_calls":    len(msg.ToolCalls),
	}).Debug("chat completion received")

	if args, ok := functionArguments(msg); ok {
		fr, err := ParseArguments(args)
		if err != nil {
			return nil, err
		}
		return &Outcome{Kind: OutcomeArguments, Request: fr}, nil
	}
	return &Outcome{Kind: OutcomeTextReply, Reply: msg.Content}, nil
}

// functionArguments returns the argument payload of the first call to FunctionName, from
// either the tool-call list or the legacy function_call field.
func functionArguments(msg openai.ChatCompletionMessage) (string, bool) {
	for _, tc := range msg.ToolCalls {
		if tc.Type == openai.ToolTypeFunction && tc.Function.Name == FunctionName {
			return tc.Function.Arguments, true
		}
	}
	if msg.FunctionCall != nil && msg.FunctionCall.Name == FunctionName {
		return msg.FunctionCall.Arguments, true
	}
	return "", false
}

// ParseArguments decodes a function-call payload into a ForecastRequest, applying the
// default horizon when prediction_days is absent.
func ParseArguments(payload string) (*model.ForecastRequest, error) {
	var raw struct {
		StockSymbol    *string  `json:"stock_symbol"`
		PredictionDays *float64 `json:"prediction_days"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, &errs.MalformedArguments{Payload: payload, Reason: err.Error()}
	}
	if raw.StockSymbol == nil || strings.TrimSpace(*raw.StockSymbol) == "" {
		return nil, &errs.MalformedArguments{Payload: payload, Reason: "stock_symbol is missing"}
	}
	fr := &model.ForecastRequest{
		StockSymbol:    strings.ToUpper(strings.TrimSpace(*raw.StockSymbol)),
		PredictionDays: model.DefaultPredictionDays,
	}
	if raw.PredictionDays != nil {
		days := *raw.PredictionDays
		if days <= 0 || days != math.Trunc(days) {
			return nil, &errs.MalformedArguments{Payload: payload, Reason: "prediction_days must be a positive integer"}
		}
		if days > model.MaxPredictionDays {
			return nil, &errs.MalformedArguments{Payload: payload, Reason: fmt.Sprintf("prediction_days must be at most %d", model.MaxPredictionDays)}
		}
		fr.PredictionDays = int(days)
	}
	return fr, nil
}

func toRequestFailure(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &errs.RequestFailure{Status: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := string(reqErr.Body)
		if msg == "" && reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &errs.RequestFailure{Status: reqErr.HTTPStatusCode, Message: msg, Err: err}
	}
	return &errs.RequestFailure{Message: err.Error(), Err: err}
}
