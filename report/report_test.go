package report

import (
	"bytes"
	"testing"

	"github.com/datarhei/jobhistory/history"

	"github.com/stretchr/testify/require"
)

func summary(jobID string, attempts ...string) history.Summary {
	s := history.Summary{
		JobID:      jobID,
		LaunchTime: "1000",
		Attempts:   attempts,
		Durations:  map[string]int64{},
		Machines:   map[string]string{},
	}

	for i, id := range attempts {
		s.Durations[id] = int64(10 * (i + 1))
		s.Machines[id] = "h1"
	}

	return s
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()

	require.NoError(t, b.Add(summary("job_2", "a3", "a1", "a2"), "com.acme.B"))
	require.NoError(t, b.Add(summary("job_1", "a1"), "com.acme.A"))

	rows := b.Rows()
	require.Equal(t, 4, len(rows))
	require.Equal(t, 2, b.Jobs())

	require.Equal(t, Row{JobID: "job_2", MapClass: "com.acme.B", LaunchTime: "1000", TaskAttemptID: "a3", Machine: "h1", Duration: 10}, rows[0])
	require.Equal(t, "a1", rows[1].TaskAttemptID)
	require.Equal(t, "a2", rows[2].TaskAttemptID)
	require.Equal(t, Row{JobID: "job_1", MapClass: "com.acme.A", LaunchTime: "1000", TaskAttemptID: "a1", Machine: "h1", Duration: 10}, rows[3])

	rows[0].JobID = "changed"
	require.Equal(t, "job_2", b.Rows()[0].JobID)
}

func TestBuilderEmptyJob(t *testing.T) {
	b := NewBuilder()

	require.NoError(t, b.Add(summary("job_1"), "com.acme.A"))
	require.Equal(t, 0, len(b.Rows()))
	require.Equal(t, 1, b.Jobs())
}

func TestBuilderMachineMissing(t *testing.T) {
	b := NewBuilder()

	s := summary("job_1", "a1", "a2")
	delete(s.Machines, "a2")

	err := b.Add(s, "com.acme.A")
	require.ErrorIs(t, err, ErrMachineMissing)
	require.ErrorIs(t, err, ErrInconsistentSummary)
	require.Equal(t, 0, len(b.Rows()))
	require.Equal(t, 0, b.Jobs())
}

func TestBuilderDurationMissing(t *testing.T) {
	b := NewBuilder()

	s := summary("job_1", "a1", "a2")
	delete(s.Durations, "a2")

	err := b.Add(s, "com.acme.A")
	require.ErrorIs(t, err, ErrInconsistentSummary)

	s = summary("job_1", "a1", "a2")
	delete(s.Durations, "a2")
	s.Durations["a3"] = 1

	err = b.Add(s, "com.acme.A")
	require.ErrorIs(t, err, ErrInconsistentSummary)
}

func TestBuilderExtraMachine(t *testing.T) {
	b := NewBuilder()

	s := summary("job_1", "a1", "a2")
	s.Machines["a3"] = "h3"

	err := b.Add(s, "com.acme.A")
	require.ErrorIs(t, err, ErrInconsistentSummary)
	require.NotErrorIs(t, err, ErrMachineMissing)
	require.Equal(t, 0, len(b.Rows()))
	require.Equal(t, 0, b.Jobs())
}

func TestCSVWriter(t *testing.T) {
	buf := bytes.Buffer{}

	w, err := NewWriter("csv", &buf)
	require.NoError(t, err)

	err = w.WriteRows([]Row{
		{JobID: "job_1", MapClass: "com.acme.M", LaunchTime: "1000", TaskAttemptID: "a1", Machine: "h1", Duration: 50},
	})
	require.NoError(t, err)

	require.Equal(t, "jobId,mapClass,launchTime,taskAttemptId,machineName,taskCompletionTime\njob_1,com.acme.M,1000,a1,h1,50\n", buf.String())
}

func TestCSVWriterNoRows(t *testing.T) {
	buf := bytes.Buffer{}

	require.NoError(t, NewCSVWriter(&buf).WriteRows(nil))
	require.Equal(t, "jobId,mapClass,launchTime,taskAttemptId,machineName,taskCompletionTime\n", buf.String())
}

func TestCSVWriterMachines(t *testing.T) {
	buf := bytes.Buffer{}

	err := NewCSVWriter(&buf).WriteMachines([]MachineStats{
		{Machine: "h1", Tasks: 3, Total: 350, Min: 50, Max: 200, Mean: 350.0 / 3},
	})
	require.NoError(t, err)

	require.Equal(t, "\nmachineName,tasks,totalTime,minTime,maxTime,meanTime\nh1,3,350,50,200,116.67\n", buf.String())
}

func TestJSONWriter(t *testing.T) {
	buf := bytes.Buffer{}

	w, err := NewWriter("json", &buf)
	require.NoError(t, err)

	err = w.WriteRows([]Row{
		{JobID: "job_1", MapClass: "com.acme.M", LaunchTime: "1000", TaskAttemptID: "a1", Machine: "h1", Duration: 50},
	})
	require.NoError(t, err)

	require.Equal(t, `{"job_id":"job_1","map_class":"com.acme.M","launch_time":"1000","task_attempt_id":"a1","machine":"h1","duration_ms":50}`+"\n", buf.String())
}

func TestUnknownFormat(t *testing.T) {
	_, err := NewWriter("xml", &bytes.Buffer{})
	require.Error(t, err)
}

func TestMachines(t *testing.T) {
	rows := []Row{
		{Machine: "h2", Duration: 100},
		{Machine: "h1", Duration: 50},
		{Machine: "h2", Duration: 300},
		{Machine: "h2", Duration: -10},
	}

	stats := Machines(rows)

	require.Equal(t, []MachineStats{
		{Machine: "h2", Tasks: 3, Total: 390, Min: -10, Max: 300, Mean: 130},
		{Machine: "h1", Tasks: 1, Total: 50, Min: 50, Max: 50, Mean: 50},
	}, stats)

	require.Equal(t, 0, len(Machines(nil)))
}
