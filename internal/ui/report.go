package ui

import (
	"fmt"
	"time"
)

// ExecutionOutcome represents how a monitor session ended.
type ExecutionOutcome int

const (
	OutcomeSuccess ExecutionOutcome = iota
	OutcomeUserCancelled
	OutcomeError
)

func (o ExecutionOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeUserCancelled:
		return "cancelled"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// ReportData captures a monitor session's statistics for the post-run report.
// This is a pure data model with no rendering logic.
type ReportData struct {
	StartTime time.Time
	Duration  time.Duration

	MonitoredDirs []string

	EventsObserved int
	Created        int // "+" new attribution rows
	Resolved       int // "^" resolved via ancestry walk
	Touched        int // "~" touch-only, no new attribution
	Dropped        int // unmonitored path, ignored package, or failed store lookup

	Outcome ExecutionOutcome
}

func NewReportData() *ReportData {
	return &ReportData{
		StartTime: time.Now(),
		Outcome:   OutcomeSuccess,
	}
}

// Finalize sets the duration based on start time.
func (r *ReportData) Finalize() {
	r.Duration = time.Since(r.StartTime)
}

// Report renders the session report based on verbosity level.
func Report(data *ReportData) {
	data.Finalize()

	switch verbosityLevel {
	case VerbosityLevelSilent:
		reportSilent(data)
	case VerbosityLevelNormal:
		reportNormal(data)
	case VerbosityLevelVerbose:
		reportVerbose(data)
	}
}

// reportSilent produces no output; errors are already shown via ui.ErrorExit().
func reportSilent(data *ReportData) {
}

// reportNormal shows a single summary line.
func reportNormal(data *ReportData) {
	if data.Outcome == OutcomeError {
		return
	}

	var icon string
	switch data.Outcome {
	case OutcomeUserCancelled:
		icon = Colors.Yellow("✗")
	default:
		icon = Colors.Green("✓")
	}

	message := fmt.Sprintf("hdas: %d events observed, %d attributed, %d touched",
		data.EventsObserved, data.Created+data.Resolved, data.Touched)
	fmt.Printf("%s %s\n", icon, Colors.Dim(message))
}

// reportVerbose shows a detailed session breakdown.
func reportVerbose(data *ReportData) {
	fmt.Println()
	fmt.Println(Colors.Cyan("hdas Monitor Session"))
	fmt.Println(Colors.Normal("────────────────────────────────────────"))

	printOutcomeLine(data)

	fmt.Println()
	fmt.Printf("  %s %s\n", Colors.Bold("Duration:"), formatDuration(data.Duration))
	fmt.Printf("  %s %d\n", Colors.Bold("Monitored dirs:"), len(data.MonitoredDirs))
	for _, d := range data.MonitoredDirs {
		fmt.Printf("    - %s\n", d)
	}

	fmt.Println()
	fmt.Printf("  %s %d observed (+%d created, ^%d resolved, ~%d touched, %d dropped)\n",
		Colors.Bold("Events:"),
		data.EventsObserved,
		data.Created,
		data.Resolved,
		data.Touched,
		data.Dropped)

	fmt.Println()
}

func printOutcomeLine(data *ReportData) {
	switch data.Outcome {
	case OutcomeSuccess:
		fmt.Printf("  %s %s\n", Colors.Green("✓"), Colors.Green("Monitor session completed"))
	case OutcomeUserCancelled:
		fmt.Printf("  %s %s\n", Colors.Yellow("✗"), Colors.Yellow("Monitor session cancelled"))
	case OutcomeError:
		fmt.Printf("  %s %s\n", Colors.Red("✗"), Colors.Red("Monitor session failed with error"))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
