package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

// maxFailureLines bounds how much of a failure message is printed.
const maxFailureLines = 5

// ComponentRow is one line of the per-component results table.
type ComponentRow struct {
	Component string
	Result    testparser.Result
}

// Results prints a run summary: optional per-component table, failures and
// the aggregate counts.
func (w *Writer) Results(summary testparser.Result, rows []ComponentRow, elapsed time.Duration) {
	if len(rows) > 0 {
		w.Println("")
		w.Println("%s", w.componentTable(rows, summary))
	}

	if len(summary.Failures) > 0 {
		w.Println("")
		w.Println("%s", w.red.Sprintf("Failures (%s):", humanize.Comma(int64(len(summary.Failures)))))
		for _, f := range summary.Failures {
			w.failure(f)
		}
	}

	w.Println("")
	w.SummaryItem("Total", humanize.Comma(int64(summary.Total)))
	w.SummaryPassed("Passed", humanize.Comma(int64(summary.Passed)))
	if summary.Failed > 0 {
		w.SummaryFailed("Failed", humanize.Comma(int64(summary.Failed)))
	} else {
		w.SummaryItem("Failed", "0")
	}
	if summary.Skipped > 0 {
		w.SummaryWarning("Skipped", humanize.Comma(int64(summary.Skipped)))
	}
	w.SummaryItem("Duration", FormatMillis(summary.Duration))
	if elapsed > 0 {
		w.SummaryItem("Wall time", FormatDuration(elapsed))
	}

	if summary.Succeeded() {
		w.FinalSuccess("All tests passed")
	} else {
		w.FinalFailure("%s failed", pluralize(summary.Failed, "test", "tests"))
	}
}

func (w *Writer) componentTable(rows []ComponentRow, summary testparser.Result) string {
	body := make([][]string, 0, len(rows))
	for _, r := range rows {
		status := w.green.Sprint("pass")
		if r.Result.Failed > 0 {
			status = w.red.Sprint("fail")
		}
		body = append(body, []string{
			r.Component,
			status,
			humanize.Comma(int64(r.Result.Passed)),
			humanize.Comma(int64(r.Result.Failed)),
			humanize.Comma(int64(r.Result.Skipped)),
			FormatMillis(r.Result.Duration),
		})
	}
	footer := []string{
		pluralize(len(rows), "component", "components"), "",
		humanize.Comma(int64(summary.Passed)),
		humanize.Comma(int64(summary.Failed)),
		humanize.Comma(int64(summary.Skipped)),
		FormatMillis(summary.Duration),
	}
	return renderTable([]string{"Component", "Status", "Passed", "Failed", "Skipped", "Duration"}, body, footer)
}

func (w *Writer) failure(f testparser.Failure) {
	name := f.Name
	if f.File != "" {
		name = fmt.Sprintf("%s (%s)", f.Name, f.File)
	}
	w.Println("  %s %s", w.red.Sprint("✗"), name)

	lines := strings.Split(strings.TrimRight(f.Message, "\n"), "\n")
	if len(lines) > maxFailureLines {
		lines = append(lines[:maxFailureLines], "...")
	}
	for _, line := range lines {
		w.Println("      %s", w.dim.Sprint(line))
	}
}

// FormatMillis renders a millisecond count ("850ms", "1.5s").
func FormatMillis(ms int64) string {
	return FormatDuration(time.Duration(ms) * time.Millisecond)
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return humanize.Comma(int64(n)) + " " + many
}
