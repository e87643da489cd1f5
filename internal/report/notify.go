package report

import (
	"context"
	"fmt"
	"strings"

	"paperwatch/internal/core"
	"paperwatch/internal/logger"
)

const summaryTitleLimit = 10

// Summary is the short human-readable recap of a run: outcome, count, and
// the leading paper titles.
func Summary(result core.RunResult) string {
	var b strings.Builder

	if result.Success {
		fmt.Fprintf(&b, "Run finished: %d papers", result.PaperCount)
	} else {
		fmt.Fprintf(&b, "Run failed: %s", result.Err)
	}
	if result.Delivered {
		b.WriteString(", report delivered")
	} else if result.ReportPath != "" {
		fmt.Fprintf(&b, ", report at %s", result.ReportPath)
	}
	if result.Success && result.Err != "" {
		fmt.Fprintf(&b, " (delivery error: %s)", result.Err)
	}
	b.WriteString("\n")

	for i, title := range result.Titles {
		if i == summaryTitleLimit {
			fmt.Fprintf(&b, "... and %d more\n", len(result.Titles)-summaryTitleLimit)
			break
		}
		fmt.Fprintf(&b, "- %s\n", title)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Notify sends the run summary through the delivery channel, separate from
// the markdown report. Best-effort: failures are logged and never
// propagate, and a disabled channel is a no-op.
func (c *Coordinator) Notify(ctx context.Context, result core.RunResult) {
	if c.channel == nil {
		return
	}
	if err := c.channel.Send(ctx, Summary(result), "", result.PaperCount); err != nil {
		logger.Warn("Run notification failed", "channel", c.channel.Name(), "error", err.Error())
	}
}
