package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCast/internal/agent"
	"StockCast/internal/model"
)

type stubAsker struct {
	mu      sync.Mutex
	calls   []string
	sources []string
	err     error
}

func (s *stubAsker) Ask(_ context.Context, source, prompt string) (*agent.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, prompt)
	s.sources = append(s.sources, source)
	if s.err != nil {
		return nil, s.err
	}
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	return &agent.Answer{Forecast: &model.ForecastResult{
		Ticker: "QCOM",
		Rows:   []model.ForecastRow{{Ticker: "QCOM", Date: day, Prediction: 1}},
	}}, nil
}

type stubSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubSender) SendWithRetry(_ context.Context, text string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	return nil
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), &stubAsker{}, &stubSender{})
	require.NoError(t, s.RegisterAll([]Job{
		{Name: "qcom", Cron: "0 0 22 * * 1-5", Prompt: "Forecast QCOM for 5 days"},
		{Name: "aapl", Cron: "0 30 22 * * 1-5", Prompt: "Forecast AAPL"},
	}))
	assert.Len(t, s.Cron.Entries(), 2)
	assert.Equal(t, []string{"aapl", "qcom"}, s.jobNames())
}

func TestRegisterAll_Rejects(t *testing.T) {
	s := NewScheduler(context.Background(), &stubAsker{}, &stubSender{})
	err := s.RegisterAll([]Job{{Name: "bad", Cron: "not a cron", Prompt: "x"}})
	assert.Error(t, err)

	s = NewScheduler(context.Background(), &stubAsker{}, &stubSender{})
	err = s.RegisterAll([]Job{
		{Name: "dup", Cron: "0 0 1 * * *", Prompt: "x"},
		{Name: "dup", Cron: "0 0 2 * * *", Prompt: "y"},
	})
	assert.ErrorContains(t, err, "duplicate job name")
}

func TestRunJob_SendsForecast(t *testing.T) {
	asker, sender := &stubAsker{}, &stubSender{}
	s := NewScheduler(context.Background(), asker, sender)
	s.RunJob(Job{Name: "qcom", Prompt: "Forecast QCOM"})

	assert.Equal(t, []string{"watch:qcom"}, asker.sources)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "QCOM forecast")
}

func TestRunJob_SendsFailure(t *testing.T) {
	sender := &stubSender{}
	s := NewScheduler(context.Background(), &stubAsker{err: errors.New("no price history for ZZZ")}, sender)
	s.RunJob(Job{Name: "zzz", Prompt: "Forecast ZZZ"})
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Forecast failed")
	assert.Contains(t, sender.sent[0], "no price history for ZZZ")
}

func TestRunAllNow(t *testing.T) {
	asker := &stubAsker{}
	s := NewScheduler(context.Background(), asker, &stubSender{})
	require.NoError(t, s.RegisterAll([]Job{
		{Name: "b", Cron: "0 0 1 * * *", Prompt: "second"},
		{Name: "a", Cron: "0 0 1 * * *", Prompt: "first"},
	}))
	s.RunAllNow()
	assert.Equal(t, []string{"first", "second"}, asker.calls)
}

func TestHandleCommand(t *testing.T) {
	asker, sender := &stubAsker{}, &stubSender{}
	s := NewScheduler(context.Background(), asker, sender)
	require.NoError(t, s.RegisterAll([]Job{{Name: "qcom", Cron: "0 0 22 * * *", Prompt: "Forecast QCOM"}}))
	ctx := context.Background()

	assert.Equal(t, helpText, s.HandleCommand(ctx, "/help"))
	assert.Equal(t, helpText, s.HandleCommand(ctx, "/unknown"))
	assert.Contains(t, s.HandleCommand(ctx, "/jobs"), "<b>qcom</b>")
	assert.Contains(t, s.HandleCommand(ctx, "/run nope"), "Unknown job")
	assert.Empty(t, asker.calls)

	assert.Equal(t, "", s.HandleCommand(ctx, "/run qcom"))
	assert.Len(t, sender.sent, 1)

	reply := s.HandleCommand(ctx, "Forecast QCOM for 1 day")
	assert.Contains(t, reply, "QCOM forecast")
	assert.Equal(t, "telegram", asker.sources[len(asker.sources)-1])
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(context.Background(), &stubAsker{}, &stubSender{})
	s.Start()
	s.Stop()
}

type blockingAsker struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingAsker) Ask(_ context.Context, _, _ string) (*agent.Answer, error) {
	close(b.started)
	<-b.release
	return &agent.Answer{Reply: "done"}, nil
}

func TestStopWaitsForRunAllNowAsync(t *testing.T) {
	asker := &blockingAsker{started: make(chan struct{}), release: make(chan struct{})}
	sender := &stubSender{}
	s := NewScheduler(context.Background(), asker, sender)
	require.NoError(t, s.RegisterAll([]Job{{Name: "qcom", Cron: "0 0 22 * * *", Prompt: "Forecast QCOM"}}))
	s.Start()
	s.RunAllNowAsync()
	<-asker.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a startup run was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(asker.release)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the run finished")
	}
	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Len(t, sender.sent, 1, "the run must complete its send before Stop returns")
}
