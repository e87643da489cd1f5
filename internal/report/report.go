// Package report turns a run's papers into a markdown report, persists it,
// delivers it over the configured channel, and cleans up afterwards.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"paperwatch/internal/config"
	"paperwatch/internal/core"
	"paperwatch/internal/email"
	"paperwatch/internal/logger"
	"paperwatch/internal/messaging"
	"paperwatch/internal/render"
)

const defaultRetryDelay = 5 * time.Second

// Channel delivers a rendered report somewhere.
type Channel interface {
	Name() string
	Send(ctx context.Context, content, reportPath string, paperCount int) error
}

// Outcome describes what the coordinator did with a run's report.
type Outcome struct {
	ReportPath string
	Delivered  bool
}

// Coordinator renders, saves, and delivers reports.
type Coordinator struct {
	reportDir   string
	autoCleanup bool
	maxAttempts int
	retryDelay  time.Duration
	channel     Channel

	// test seam
	sleep func(time.Duration)
}

// New wires the coordinator from configuration. When notifications are
// disabled the coordinator still renders and saves, but never delivers.
func New(cfg *config.Config) *Coordinator {
	c := &Coordinator{
		reportDir:   cfg.AI.ReportDir,
		autoCleanup: cfg.Storage.AutoCleanup,
		maxAttempts: cfg.Notification.MaxAttempts,
		retryDelay:  defaultRetryDelay,
		sleep:       time.Sleep,
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 3
	}
	if d, err := time.ParseDuration(cfg.Notification.RetryDelay); err == nil && d > 0 {
		c.retryDelay = d
	}

	if cfg.Notification.Enabled {
		switch cfg.Notification.Method {
		case "webhook":
			c.channel = &webhookChannel{client: messaging.NewWebhookClient(cfg.Notification.Webhook)}
		default:
			c.channel = &emailChannel{sender: email.NewSender(cfg.Notification.Email)}
		}
	}
	return c
}

// Process renders the report, writes it to disk, delivers it with retries,
// and removes the report and archived data files when delivery succeeded
// and auto-cleanup is on. dataFiles are the archive paths from this run.
func (c *Coordinator) Process(ctx context.Context, papers []core.Paper, dataFiles []string, now time.Time) (Outcome, error) {
	content := render.Render(papers, now)

	path, err := c.save(content, now)
	if err != nil {
		return Outcome{}, err
	}
	outcome := Outcome{ReportPath: path}

	if c.channel == nil {
		logger.Info("Notification disabled, report kept on disk", "path", path)
		return outcome, nil
	}

	if err := c.deliver(ctx, content, path, len(papers)); err != nil {
		return outcome, err
	}
	outcome.Delivered = true

	if c.autoCleanup {
		c.cleanup(path, dataFiles)
	}
	return outcome, nil
}

func (c *Coordinator) save(content string, now time.Time) (string, error) {
	if err := os.MkdirAll(c.reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(c.reportDir, "arxiv_report_"+now.Format("20060102_150405")+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	logger.Info("Report saved", "path", path)
	return path, nil
}

func (c *Coordinator) deliver(ctx context.Context, content, path string, paperCount int) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = c.channel.Send(ctx, content, path, paperCount)
		if lastErr == nil {
			logger.Info("Report delivered", "channel", c.channel.Name(), "attempt", attempt)
			return nil
		}
		logger.Warn("Delivery attempt failed", "channel", c.channel.Name(), "attempt", attempt, "error", lastErr.Error())
		if attempt < c.maxAttempts {
			c.sleep(c.retryDelay)
		}
	}
	return fmt.Errorf("delivery failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// cleanup removes the delivered report and the run's archived data files.
// Failures are logged, never propagated.
func (c *Coordinator) cleanup(reportPath string, dataFiles []string) {
	for _, path := range append([]string{reportPath}, dataFiles...) {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Cleanup failed", "path", path, "error", err.Error())
		}
	}
	logger.Info("Run artifacts cleaned up", "files", len(dataFiles)+1)
}

type emailChannel struct {
	sender *email.Sender
}

func (e *emailChannel) Name() string { return "email" }

func (e *emailChannel) Send(_ context.Context, content string, reportPath string, paperCount int) error {
	subject := fmt.Sprintf("arXiv Paper Watch - %d papers (%s)", paperCount, time.Now().Format("2006-01-02"))
	body := content
	if reportPath != "" {
		body = fmt.Sprintf("Your paper watch report is attached.\n\nPapers in this run: %d\n", paperCount)
	}
	return e.sender.Send(subject, body, reportPath)
}

type webhookChannel struct {
	client *messaging.WebhookClient
}

func (w *webhookChannel) Name() string { return "webhook" }

func (w *webhookChannel) Send(ctx context.Context, content string, _ string, paperCount int) error {
	return w.client.SendReport(ctx, content, paperCount)
}
