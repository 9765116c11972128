package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"StockCast/internal/agent"
	"StockCast/internal/notifier"
)

// Asker runs one prompt through the forecast pipeline.
type Asker interface {
	Ask(ctx context.Context, source, prompt string) (*agent.Answer, error)
}

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Job is a prompt run on a cron schedule.
type Job struct {
	Name   string
	Cron   string // six fields, seconds first
	Prompt string
}

const helpText = "Send a prompt such as <i>Forecast QCOM for 15 days</i>.\n" +
	"/jobs lists scheduled forecasts, /run &lt;name&gt; runs one now."

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Agent    Asker
	Notifier Sender
	Ctx      context.Context

	jobs map[string]Job
	wg   sync.WaitGroup // runs started outside cron
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a Asker, n Sender) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Agent:    a,
		Notifier: n,
		Ctx:      ctx,
		jobs:     make(map[string]Job),
	}
}

// RegisterAll registers every job. Names must be unique.
func (s *Scheduler) RegisterAll(jobs []Job) error {
	for _, j := range jobs {
		if _, dup := s.jobs[j.Name]; dup {
			return fmt.Errorf("duplicate job name %q", j.Name)
		}
		job := j
		if _, err := s.Cron.AddFunc(job.Cron, func() { s.RunJob(job) }); err != nil {
			return fmt.Errorf("register job %q: %w", job.Name, err)
		}
		s.jobs[job.Name] = job
		logrus.WithFields(logrus.Fields{"job": job.Name, "cron": job.Cron}).Info("registered watch job")
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logrus.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs, including RunAllNowAsync.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	logrus.Info("scheduler stopped")
}

// RunAllNow runs every registered job once, in name order.
func (s *Scheduler) RunAllNow() {
	for _, name := range s.jobNames() {
		s.RunJob(s.jobs[name])
	}
}

// RunAllNowAsync runs RunAllNow in the background. Stop waits for it.
func (s *Scheduler) RunAllNowAsync() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunAllNow()
	}()
}

// RunJob runs one job and posts the result.
func (s *Scheduler) RunJob(job Job) {
	log := logrus.WithField("job", job.Name)
	log.Info("running watch job")
	ans, err := s.Agent.Ask(s.Ctx, "watch:"+job.Name, job.Prompt)
	if err != nil {
		log.Errorf("watch job failed: %v", err)
		s.trySend(notifier.FormatError(job.Prompt, err))
		return
	}
	s.trySend(notifier.FormatTelegram(ans))
}

// HandleCommand processes a chat message and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	switch {
	case text == "/start" || text == "/help":
		return helpText
	case text == "/jobs":
		if len(s.jobs) == 0 {
			return "No scheduled forecasts."
		}
		var b strings.Builder
		for _, name := range s.jobNames() {
			j := s.jobs[name]
			fmt.Fprintf(&b, "• <b>%s</b> (%s): %s\n", name, j.Cron, j.Prompt)
		}
		return b.String()
	case strings.HasPrefix(text, "/run"):
		name := strings.TrimSpace(strings.TrimPrefix(text, "/run"))
		job, ok := s.jobs[name]
		if !ok {
			return fmt.Sprintf("Unknown job %q. Use /jobs to list them.", name)
		}
		s.RunJob(job)
		return ""
	case strings.HasPrefix(text, "/"):
		return helpText
	}

	ans, err := s.Agent.Ask(ctx, "telegram", text)
	if err != nil {
		logrus.Errorf("telegram prompt failed: %v", err)
		return notifier.FormatError(text, err)
	}
	return notifier.FormatTelegram(ans)
}

func (s *Scheduler) jobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logrus.Errorf("send notification: %v", err)
	}
}
