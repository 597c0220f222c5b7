// Package history reads job history files as written by the job tracker
// and reconciles the map task attempts of a job.
//
// A history file consists of lines like
//
//	MapAttempt TASK_TYPE="MAP" TASK_ATTEMPT_ID="attempt_1" START_TIME="100" .
//
// The first word is the kind of the record, the following words are
// KEY="VALUE" pairs.
package history

import (
	"strings"
)

// Kinds of records
const (
	KindJob        = "Job"
	KindMapAttempt = "MapAttempt"
	KindMeta       = "Meta"
)

// Field is a single KEY="VALUE" pair of a record.
type Field struct {
	Key   string
	Value string
}

// Record is a single tokenized line of a history file.
type Record struct {
	// Kind is the first word of the line, e.g. Job or MapAttempt.
	Kind string

	fields []Field

	// malformed is the number of words that are not a KEY="VALUE" pair.
	malformed int
}

// ParseRecord splits a line at each space into words. The first word is
// the kind of the record. Every other word up to the terminating dot is
// parsed as a KEY="VALUE" pair. Malformed words are counted and skipped,
// they never produce a field.
func ParseRecord(line string) Record {
	line = strings.TrimRight(line, "\r\n")

	words := strings.Split(line, " ")

	r := Record{
		Kind: words[0],
	}

	words = words[1:]

	// A record is terminated by a single dot
	if len(words) != 0 && words[len(words)-1] == "." {
		words = words[:len(words)-1]
	}

	for _, word := range words {
		field, ok := parseField(word)
		if !ok {
			r.malformed++
			continue
		}

		r.fields = append(r.fields, field)
	}

	return r
}

// parseField parses a word of the form KEY="VALUE". A value with an opening
// quote needs a closing quote. A value without quotes is taken as is.
func parseField(word string) (Field, bool) {
	key, value, found := strings.Cut(word, "=")
	if !found || len(key) == 0 {
		return Field{}, false
	}

	if strings.HasPrefix(value, `"`) {
		if len(value) < 2 || !strings.HasSuffix(value, `"`) {
			return Field{}, false
		}

		value = value[1 : len(value)-1]
	}

	return Field{
		Key:   key,
		Value: value,
	}, true
}

// Malformed returns the number of words that could not be parsed as field.
func (r Record) Malformed() int {
	return r.malformed
}

// Get returns the value of the first field with the given key.
func (r Record) Get(key string) (string, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}

	return "", false
}

// Is returns whether the record has any field with the given key and value.
func (r Record) Is(key, value string) bool {
	for _, f := range r.fields {
		if f.Key == key && f.Value == value {
			return true
		}
	}

	return false
}

// UnescapeHostname replaces every escaped dot (\.) with a dot.
func UnescapeHostname(host string) string {
	return strings.ReplaceAll(host, `\.`, ".")
}
