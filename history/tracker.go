package history

import (
	"fmt"
	"strconv"
)

// Status is the status of a job.
type Status int

const (
	StatusRunning Status = iota
	StatusSuccess
	StatusFailed
	StatusKilled
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	case StatusKilled:
		return "KILLED"
	}

	return "UNKNOWN"
}

// Summary is the result of reading a complete history file.
type Summary struct {
	JobID string

	// LaunchTime as found in the file, empty if the file doesn't have one.
	LaunchTime string

	Status Status

	// Attempts are the ids of all completed map attempts in the order they
	// have been seen in the file.
	Attempts []string

	// Durations are the durations of the map attempts in milliseconds.
	Durations map[string]int64

	// Machines are the hosts the map attempts have been running on.
	Machines map[string]string
}

type attemptState int

const (
	attemptStarted attemptState = iota
	attemptCompleted
	attemptRemoved
)

// attempt keeps the times as found in the file. They are parsed in Summary
// such that invalid times of removed attempts don't matter.
type attempt struct {
	state attemptState

	start     string
	startLine int
	hasStart  bool

	end     string
	endLine int
	hasEnd  bool

	machine string
}

// Tracker collects the map attempts of one history file. Records have to be
// applied in the order of the file.
//
// An attempt is started by a MapAttempt record with a START_TIME and without
// a TASK_STATUS. It is completed by a record with TASK_STATUS SUCCESS. A record
// with TASK_STATUS FAILED or KILLED removes the attempt. A removed attempt
// ignores all further records.
type Tracker struct {
	name string
	line int

	jobID         string
	launchTime    string
	hasLaunchTime bool
	status        Status

	attempts map[string]*attempt
	order    []string
}

// NewTracker returns a tracker for the history file with the given name. The
// name is only used in errors.
func NewTracker(name string) *Tracker {
	return &Tracker{
		name:     name,
		status:   StatusRunning,
		attempts: map[string]*attempt{},
	}
}

// errorf returns an error for the current line.
func (t *Tracker) errorf(err error, format string, args ...interface{}) error {
	return t.lineErrorf(t.line, err, format, args...)
}

// fileErrorf returns an error that refers to the whole file.
func (t *Tracker) fileErrorf(err error, format string, args ...interface{}) error {
	return t.lineErrorf(0, err, format, args...)
}

func (t *Tracker) lineErrorf(line int, err error, format string, args ...interface{}) error {
	return &ParseError{
		Name:   t.name,
		Line:   line,
		Reason: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

// Abandoned returns whether the job has been killed or has failed.
func (t *Tracker) Abandoned() bool {
	return t.status == StatusKilled || t.status == StatusFailed
}

// Apply advances the tracker by one record. An error wrapping ErrJobAbandoned
// is returned as soon as the job is known to be killed or failed. Any further
// call will return the same kind of error.
func (t *Tracker) Apply(r Record) error {
	t.line++

	if t.Abandoned() {
		return t.errorf(ErrJobAbandoned, "job %s is %s", t.jobID, t.status)
	}

	switch r.Kind {
	case KindJob:
		return t.applyJob(r)
	case KindMapAttempt:
		return t.applyMapAttempt(r)
	}

	return nil
}

func (t *Tracker) applyJob(r Record) error {
	if len(t.jobID) == 0 {
		if id, ok := r.Get("JOBID"); ok {
			t.jobID = id
		}
	}

	if !t.hasLaunchTime {
		if launchTime, ok := r.Get("LAUNCH_TIME"); ok {
			t.launchTime = launchTime
			t.hasLaunchTime = true
		}
	}

	switch {
	case r.Is("JOB_STATUS", "KILLED"):
		t.status = StatusKilled
	case r.Is("JOB_STATUS", "FAILED"):
		t.status = StatusFailed
	case r.Is("JOB_STATUS", "SUCCESS"):
		t.status = StatusSuccess
	}

	if t.Abandoned() {
		return t.errorf(ErrJobAbandoned, "job %s is %s", t.jobID, t.status)
	}

	return nil
}

func (t *Tracker) applyMapAttempt(r Record) error {
	if !r.Is("TASK_TYPE", "MAP") {
		return nil
	}

	status, hasStatus := r.Get("TASK_STATUS")
	id, hasID := r.Get("TASK_ATTEMPT_ID")

	if !hasStatus {
		start, ok := r.Get("START_TIME")
		if !ok || !hasID {
			return nil
		}

		return t.start(id, start)
	}

	switch status {
	case "SUCCESS":
		if !hasID {
			return t.errorf(ErrMalformedRecord, "successful map attempt without TASK_ATTEMPT_ID")
		}

		return t.complete(id, r)
	case "FAILED", "KILLED":
		if !hasID {
			return nil
		}

		t.remove(id)
	}

	return nil
}

// attempt returns the state for the attempt with the given id. A new state is
// created if the id hasn't been seen before.
func (t *Tracker) attempt(id string) *attempt {
	a, ok := t.attempts[id]
	if !ok {
		a = &attempt{
			state: attemptStarted,
		}
		t.attempts[id] = a
		t.order = append(t.order, id)
	}

	return a
}

func (t *Tracker) start(id, value string) error {
	a := t.attempt(id)
	if a.state == attemptRemoved {
		return nil
	}

	a.start = value
	a.startLine = t.line
	a.hasStart = true

	return nil
}

func (t *Tracker) complete(id string, r Record) error {
	value, ok := r.Get("FINISH_TIME")
	if !ok {
		return t.errorf(ErrMalformedRecord, "successful map attempt %s without FINISH_TIME", id)
	}

	host, ok := r.Get("HOSTNAME")
	if !ok {
		return t.errorf(ErrMalformedRecord, "successful map attempt %s without HOSTNAME", id)
	}

	a := t.attempt(id)
	if a.state == attemptRemoved {
		return nil
	}

	a.state = attemptCompleted
	a.end = value
	a.endLine = t.line
	a.hasEnd = true
	a.machine = UnescapeHostname(host)

	return nil
}

// remove discards everything known about the attempt. Later records for
// this attempt are ignored.
func (t *Tracker) remove(id string) {
	a := t.attempt(id)

	*a = attempt{
		state: attemptRemoved,
	}
}

// Summary returns the summary of all records applied so far. An error is returned
// if the job has been abandoned or if not every started map attempt has been
// completed or removed, and vice versa.
func (t *Tracker) Summary() (Summary, error) {
	if t.Abandoned() {
		return Summary{}, t.fileErrorf(ErrJobAbandoned, "job %s is %s", t.jobID, t.status)
	}

	starts, ends := 0, 0

	for _, a := range t.attempts {
		if a.hasStart {
			starts++
		}

		if a.hasEnd {
			ends++
		}
	}

	if starts != ends {
		return Summary{}, t.fileErrorf(ErrAttemptInconsistency, "found %d start times and %d finish times for map attempts", starts, ends)
	}

	s := Summary{
		JobID:      t.jobID,
		LaunchTime: t.launchTime,
		Status:     t.status,
		Attempts:   []string{},
		Durations:  map[string]int64{},
		Machines:   map[string]string{},
	}

	for _, id := range t.order {
		a := t.attempts[id]

		if a.state == attemptRemoved {
			continue
		}

		if a.hasStart != a.hasEnd {
			if a.hasStart {
				return Summary{}, t.fileErrorf(ErrAttemptInconsistency, "map attempt %s has no finish time", id)
			}

			return Summary{}, t.fileErrorf(ErrAttemptInconsistency, "map attempt %s has no start time", id)
		}

		start, err := strconv.ParseInt(a.start, 10, 64)
		if err != nil {
			return Summary{}, t.lineErrorf(a.startLine, ErrMalformedRecord, "invalid START_TIME '%s' for attempt %s", a.start, id)
		}

		end, err := strconv.ParseInt(a.end, 10, 64)
		if err != nil {
			return Summary{}, t.lineErrorf(a.endLine, ErrMalformedRecord, "invalid FINISH_TIME '%s' for attempt %s", a.end, id)
		}

		s.Attempts = append(s.Attempts, id)
		s.Durations[id] = end - start
		s.Machines[id] = a.machine
	}

	return s, nil
}
