// Package orchestrator sequences deployment steps with structured results
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Status classifies the outcome of one step
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusWarning Status = "warning"
	StatusFatal   Status = "fatal"
)

// Result is the tagged outcome of one step
type Result struct {
	Name     string
	Status   Status
	Message  string
	Err      error
	Duration time.Duration
}

// Success builds a successful Result
func Success(msg string) Result {
	return Result{Status: StatusSuccess, Message: msg}
}

// Skipped builds a skipped Result, used when an optional feature is disabled
func Skipped(msg string) Result {
	return Result{Status: StatusSkipped, Message: msg}
}

// Warning builds a warning Result; the run continues
func Warning(err error, msg string) Result {
	return Result{Status: StatusWarning, Message: msg, Err: err}
}

// Fatal builds a fatal Result; the run stops
func Fatal(err error) Result {
	return Result{Status: StatusFatal, Err: err}
}

// Step is one entry of a deployment step table
type Step struct {
	Name string
	Run  func(ctx context.Context) Result
}

// RunReport aggregates the results of one run
type RunReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Results   []Result
}

// Failed reports whether the run stopped on a fatal step
func (r *RunReport) Failed() bool {
	for _, res := range r.Results {
		if res.Status == StatusFatal {
			return true
		}
	}
	return false
}

// Count returns how many results carry the given status
func (r *RunReport) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Runner walks a step table in order
type Runner struct {
	verbose bool
}

// NewRunner creates a Runner
func NewRunner(verbose bool) *Runner {
	return &Runner{verbose: verbose}
}

// Run executes steps sequentially. A fatal result or a cancelled context
// stops the run; warnings and skips are recorded and execution continues.
// The report always covers every step that ran.
func (r *Runner) Run(ctx context.Context, steps []Step) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}

	for _, step := range steps {
		select {
		case <-ctx.Done():
			report.Duration = time.Since(report.StartedAt)
			return report, fmt.Errorf("run cancelled before step %q: %w", step.Name, ctx.Err())
		default:
		}

		start := time.Now()
		result := step.Run(ctx)
		result.Name = step.Name
		result.Duration = time.Since(start)
		report.Results = append(report.Results, result)

		switch result.Status {
		case StatusFatal:
			report.Duration = time.Since(report.StartedAt)
			return report, fmt.Errorf("step %q failed: %w", step.Name, result.Err)
		case StatusWarning:
			if result.Err != nil {
				color.Yellow("⚠ %s: %v", step.Name, result.Err)
			} else {
				color.Yellow("⚠ %s: %s", step.Name, result.Message)
			}
		case StatusSkipped:
			color.Yellow("- %s (skipped): %s", step.Name, result.Message)
		default:
			if r.verbose && result.Message != "" {
				color.Green("✓ %s: %s", step.Name, result.Message)
			} else {
				color.Green("✓ %s", step.Name)
			}
		}
	}

	report.Duration = time.Since(report.StartedAt)
	return report, nil
}

// PrintSummary renders the run report as a table
func (r *RunReport) PrintSummary(out io.Writer) {
	fmt.Fprintf(out, "\nRun %s (%s)\n", r.RunID, r.Duration.Round(time.Millisecond))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSTATUS\tDURATION\tDETAIL")
	for _, res := range r.Results {
		detail := res.Message
		if res.Err != nil {
			detail = res.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.Name, res.Status, res.Duration.Round(time.Millisecond), detail)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d succeeded, %d warnings, %d skipped, %d fatal\n",
		r.Count(StatusSuccess), r.Count(StatusWarning), r.Count(StatusSkipped), r.Count(StatusFatal))
}
