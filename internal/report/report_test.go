package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"paperwatch/internal/config"
	"paperwatch/internal/core"
)

type fakeChannel struct {
	failures    int
	calls       int
	lastContent string
	lastPath    string
}

func (f *fakeChannel) Name() string { return "fake" }

func (f *fakeChannel) Send(_ context.Context, content, reportPath string, _ int) error {
	f.calls++
	if f.calls <= f.failures {
		return fmt.Errorf("transient failure %d", f.calls)
	}
	f.lastContent = content
	f.lastPath = reportPath
	return nil
}

func testCoordinator(t *testing.T, channel Channel, autoCleanup bool) (*Coordinator, string) {
	t.Helper()
	dir := t.TempDir()
	c := New(&config.Config{
		AI:           config.AI{ReportDir: dir},
		Storage:      config.Storage{AutoCleanup: autoCleanup},
		Notification: config.Notification{MaxAttempts: 3, RetryDelay: "1ms"},
	})
	c.channel = channel
	c.sleep = func(time.Duration) {}
	return c, dir
}

func TestProcessSavesReport(t *testing.T) {
	c, dir := testCoordinator(t, nil, false)

	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	outcome, err := c.Process(context.Background(), []core.Paper{{Title: "T"}}, nil, now)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Delivered {
		t.Error("no channel means no delivery")
	}
	want := filepath.Join(dir, "arxiv_report_20240615_103000.md")
	if outcome.ReportPath != want {
		t.Errorf("path = %q, want %q", outcome.ReportPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("report not written: %v", err)
	}
}

func TestProcessRetriesUntilSuccess(t *testing.T) {
	ch := &fakeChannel{failures: 2}
	c, _ := testCoordinator(t, ch, false)

	outcome, err := c.Process(context.Background(), nil, nil, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Delivered {
		t.Error("expected delivery on third attempt")
	}
	if ch.calls != 3 {
		t.Errorf("calls = %d, want 3", ch.calls)
	}
}

func TestProcessGivesUpAfterMaxAttempts(t *testing.T) {
	ch := &fakeChannel{failures: 10}
	c, _ := testCoordinator(t, ch, true)

	outcome, err := c.Process(context.Background(), nil, nil, time.Now())
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if outcome.Delivered {
		t.Error("delivery should be false after exhausting attempts")
	}
	if ch.calls != 3 {
		t.Errorf("calls = %d, want 3", ch.calls)
	}
	// Failed delivery must never clean up.
	if _, statErr := os.Stat(outcome.ReportPath); statErr != nil {
		t.Errorf("report should survive failed delivery: %v", statErr)
	}
}

func TestProcessCleansUpAfterDelivery(t *testing.T) {
	c, dir := testCoordinator(t, &fakeChannel{}, true)

	dataFile := filepath.Join(dir, "papers_x.json")
	if err := os.WriteFile(dataFile, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	outcome, err := c.Process(context.Background(), nil, []string{dataFile}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Delivered {
		t.Fatal("expected delivery")
	}
	if _, err := os.Stat(outcome.ReportPath); !os.IsNotExist(err) {
		t.Error("report should be removed after delivery with auto-cleanup")
	}
	if _, err := os.Stat(dataFile); !os.IsNotExist(err) {
		t.Error("data file should be removed after delivery with auto-cleanup")
	}
}

func TestProcessKeepsFilesWithoutAutoCleanup(t *testing.T) {
	c, _ := testCoordinator(t, &fakeChannel{}, false)

	outcome, err := c.Process(context.Background(), nil, nil, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(outcome.ReportPath); err != nil {
		t.Errorf("report should be kept when auto-cleanup is off: %v", err)
	}
}
