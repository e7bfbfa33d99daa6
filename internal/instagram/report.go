package instagram

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"
)

// Run outcomes recorded in Report.Status.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// StepResult is the outcome of one automation step.
type StepResult struct {
	Name       string    `json:"name"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Report summarises one run. It never holds credentials or the comment text.
type Report struct {
	RunID         string       `json:"run_id"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    *time.Time   `json:"finished_at,omitempty"`
	ProfileURL    string       `json:"profile_url,omitempty"`
	CommentLength int          `json:"comment_length"`
	Headless      bool         `json:"headless"`
	Steps         []StepResult `json:"steps"`
	Status        string       `json:"status"`
	ErrorCode     ErrorCode    `json:"error_code,omitempty"`
	Error         string       `json:"error,omitempty"`
}

// NewReport starts a report with a fresh run ID.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Steps:     []StepResult{},
		Status:    StatusRunning,
	}
}

// AddStep records a finished step.
func (r *Report) AddStep(name string, started time.Time, err error) {
	step := StepResult{
		Name:       name,
		StartedAt:  started.UTC(),
		DurationMs: time.Since(started).Milliseconds(),
	}
	if err != nil {
		step.Error = err.Error()
	}
	r.Steps = append(r.Steps, step)
}

// Finish stamps the end time and final status.
func (r *Report) Finish(err error) {
	finished := time.Now().UTC()
	r.FinishedAt = &finished
	if err == nil {
		r.Status = StatusSuccess
		return
	}
	r.Status = StatusFailed
	r.ErrorCode = Classify(err)
	r.Error = err.Error()
}

// WriteReport writes r to path as indented JSON.
func (r *Report) WriteReport(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}
