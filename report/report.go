// Package report joins job summaries with their map class into flat rows.
package report

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/datarhei/jobhistory/history"
)

var (
	// ErrInconsistentSummary is returned if the attempts, durations and machines
	// of a summary don't refer to the same map attempts.
	ErrInconsistentSummary = errors.New("inconsistent summary")

	// ErrMachineMissing is returned if a map attempt has a duration but no machine.
	ErrMachineMissing = fmt.Errorf("machine missing: %w", ErrInconsistentSummary)
)

// Header are the column names of a row.
var Header = []string{
	"jobId",
	"mapClass",
	"launchTime",
	"taskAttemptId",
	"machineName",
	"taskCompletionTime",
}

// Row is one map attempt of a job.
type Row struct {
	JobID         string `json:"job_id"`
	MapClass      string `json:"map_class"`
	LaunchTime    string `json:"launch_time"`
	TaskAttemptID string `json:"task_attempt_id"`
	Machine       string `json:"machine"`
	Duration      int64  `json:"duration_ms"`
}

// Values returns the values of the row in the order of Header.
func (r Row) Values() []string {
	return []string{
		r.JobID,
		r.MapClass,
		r.LaunchTime,
		r.TaskAttemptID,
		r.Machine,
		strconv.FormatInt(r.Duration, 10),
	}
}

// Builder collects the rows of all jobs in the order they are added.
type Builder struct {
	rows []Row
	jobs int
}

func NewBuilder() *Builder {
	return &Builder{
		rows: []Row{},
	}
}

// Add adds one row for every map attempt of the summary, in the order of
// s.Attempts. Nothing is added if the summary is inconsistent, i.e. the
// attempts, durations and machines don't have the same ids.
func (b *Builder) Add(s history.Summary, mapClass string) error {
	if len(s.Durations) != len(s.Attempts) {
		return fmt.Errorf("job %s: %d attempts with %d durations: %w", s.JobID, len(s.Attempts), len(s.Durations), ErrInconsistentSummary)
	}

	rows := make([]Row, 0, len(s.Attempts))

	for _, id := range s.Attempts {
		duration, ok := s.Durations[id]
		if !ok {
			return fmt.Errorf("job %s: attempt %s has no duration: %w", s.JobID, id, ErrInconsistentSummary)
		}

		machine, ok := s.Machines[id]
		if !ok {
			return fmt.Errorf("job %s: attempt %s: %w", s.JobID, id, ErrMachineMissing)
		}

		rows = append(rows, Row{
			JobID:         s.JobID,
			MapClass:      mapClass,
			LaunchTime:    s.LaunchTime,
			TaskAttemptID: id,
			Machine:       machine,
			Duration:      duration,
		})
	}

	if len(s.Machines) != len(s.Attempts) {
		return fmt.Errorf("job %s: %d attempts with %d machines: %w", s.JobID, len(s.Attempts), len(s.Machines), ErrInconsistentSummary)
	}

	b.rows = append(b.rows, rows...)
	b.jobs++

	return nil
}

// Rows returns a copy of all rows.
func (b *Builder) Rows() []Row {
	return slices.Clone(b.rows)
}

// Jobs returns the number of jobs that have been added.
func (b *Builder) Jobs() int {
	return b.jobs
}
