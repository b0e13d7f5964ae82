package ui

import (
	"strconv"
	"time"

	"github.com/K0NGR3SS/dailycheck/internal/orchestrator"
	"github.com/pterm/pterm"
)

// ReportTable renders the run report as table rows, header first.
func ReportTable(report *orchestrator.Report) [][]string {
	data := [][]string{
		{"Task", "Status", "Anomalies", "Duration", "Error"},
	}

	for _, t := range report.Tasks {
		status := pterm.FgGreen.Sprint("OK")
		errText := "-"
		if t.Err != nil {
			status = pterm.FgRed.Sprint("FAILED")
			errText = t.Err.Error()
		}

		data = append(data, []string{
			pterm.FgCyan.Sprint(t.Name),
			status,
			strconv.Itoa(t.Anomalies),
			t.Duration.Round(time.Millisecond).String(),
			errText,
		})
	}
	return data
}

func PrintReport(report *orchestrator.Report) {
	_ = pterm.DefaultTable.WithHasHeader().WithData(ReportTable(report)).Render()

	if report.CompletionErr != nil {
		pterm.Warning.Printf("Completion notification failed: %v\n", report.CompletionErr)
	}

	if report.Degraded() {
		pterm.Error.Printf("Daily check degraded after %s\n", report.Duration.Round(time.Millisecond))
		return
	}
	pterm.Success.Printf("Daily check done in %s\n", report.Duration.Round(time.Millisecond))
}
