package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/datarhei/jobhistory/encoding/json"
)

// Writer renders rows and machine statistics.
type Writer interface {
	WriteRows(rows []Row) error
	WriteMachines(stats []MachineStats) error
}

// NewWriter returns a writer for the format "csv" or "json".
func NewWriter(format string, w io.Writer) (Writer, error) {
	switch format {
	case "csv":
		return NewCSVWriter(w), nil
	case "json":
		return NewJSONWriter(w), nil
	}

	return nil, fmt.Errorf("unknown output format '%s'", format)
}

type csvWriter struct {
	writer io.Writer
}

// NewCSVWriter returns a writer that writes a header line followed by one line
// per row with the values joined by a comma. Values are written as is, they
// are not quoted.
func NewCSVWriter(w io.Writer) Writer {
	return &csvWriter{
		writer: w,
	}
}

func (w *csvWriter) write(header []string, lines [][]string) error {
	buf := bufio.NewWriter(w.writer)

	buf.WriteString(strings.Join(header, ","))
	buf.WriteByte('\n')

	for _, values := range lines {
		buf.WriteString(strings.Join(values, ","))
		buf.WriteByte('\n')
	}

	return buf.Flush()
}

func (w *csvWriter) WriteRows(rows []Row) error {
	lines := make([][]string, len(rows))
	for i, r := range rows {
		lines[i] = r.Values()
	}

	return w.write(Header, lines)
}

// WriteMachines writes the statistics as a separate table, preceded
// by an empty line.
func (w *csvWriter) WriteMachines(stats []MachineStats) error {
	if _, err := io.WriteString(w.writer, "\n"); err != nil {
		return err
	}

	lines := make([][]string, len(stats))
	for i, s := range stats {
		lines[i] = s.Values()
	}

	return w.write(MachineHeader, lines)
}

type jsonWriter struct {
	writer io.Writer
}

// NewJSONWriter returns a writer that writes one JSON object per line.
func NewJSONWriter(w io.Writer) Writer {
	return &jsonWriter{
		writer: w,
	}
}

func (w *jsonWriter) WriteRows(rows []Row) error {
	buf := bufio.NewWriter(w.writer)

	for _, r := range rows {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}

		buf.Write(data)
		buf.WriteByte('\n')
	}

	return buf.Flush()
}

func (w *jsonWriter) WriteMachines(stats []MachineStats) error {
	buf := bufio.NewWriter(w.writer)

	for _, s := range stats {
		data, err := json.Marshal(s)
		if err != nil {
			return err
		}

		buf.Write(data)
		buf.WriteByte('\n')
	}

	return buf.Flush()
}
