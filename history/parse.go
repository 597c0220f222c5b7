package history

import (
	"bufio"
	"fmt"
	"io"

	"github.com/datarhei/jobhistory/log"
)

// MaxLineSize is the longest line that is accepted in a history file. Job
// records carry all counters on one line.
const MaxLineSize = 16 * 1024 * 1024

// Parse reads the history file from r and returns the summary of the job.
// The name of the file is only used for errors and logging. The returned
// error wraps one of ErrJobAbandoned, ErrAttemptInconsistency or
// ErrMalformedRecord, or it is an error from reading r.
func Parse(name string, r io.Reader, logger log.Logger) (Summary, error) {
	if logger == nil {
		logger = log.New("")
	}

	logger = logger.WithField("file", name)
	logger.Debug().Log("Parsing history file")

	t := NewTracker(name)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)

	line := 0

	for scanner.Scan() {
		line++

		record := ParseRecord(scanner.Text())

		if n := record.Malformed(); n != 0 {
			logger.Debug().WithFields(log.Fields{
				"line":      line,
				"kind":      record.Kind,
				"malformed": n,
			}).Log("Ignoring words that are not KEY=\"VALUE\" pairs")
		}

		if err := t.Apply(record); err != nil {
			return Summary{}, err
		}
	}

	if err := scanner.Err(); err != nil {
		return Summary{}, fmt.Errorf("%s: reading failed: %w", name, err)
	}

	s, err := t.Summary()
	if err != nil {
		return Summary{}, err
	}

	for _, id := range s.Attempts {
		if s.Durations[id] > 0 {
			continue
		}

		logger.Warn().WithFields(log.Fields{
			"job":      s.JobID,
			"attempt":  id,
			"duration": s.Durations[id],
		}).Log("Map attempt has a non-positive duration")
	}

	logger.Debug().WithFields(log.Fields{
		"job":      s.JobID,
		"attempts": len(s.Attempts),
	}).Log("Parsed history file")

	return s, nil
}
