package log

import (
	"container/ring"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

type Writer interface {
	Write(e *Event) error
	Close()
}

type levelWriter struct {
	writer    io.Writer
	level     Level
	formatter Formatter
}

func (w *levelWriter) Write(e *Event) error {
	if w.level < e.Level || e.Level == Lsilent {
		return nil
	}

	_, err := w.writer.Write(w.formatter.Bytes(e))

	return err
}

func (w *levelWriter) Close() {}

// NewJSONWriter returns a writer that writes one JSON object per event
// if the level of the event is at least level.
func NewJSONWriter(w io.Writer, level Level) Writer {
	writer := &levelWriter{
		writer:    w,
		level:     level,
		formatter: NewJSONFormatter(),
	}

	return NewSyncWriter(writer)
}

// NewConsoleWriter returns a writer that writes events as key=value pairs.
// Colors are only used if w is a terminal.
func NewConsoleWriter(w io.Writer, level Level, useColor bool) Writer {
	writer := &levelWriter{
		writer: w,
		level:  level,
	}

	color := useColor

	if color {
		if w, ok := w.(*os.File); ok {
			if !isatty.IsTerminal(w.Fd()) && !isatty.IsCygwinTerminal(w.Fd()) {
				color = false
			}
		} else {
			color = false
		}
	}

	writer.formatter = NewConsoleFormatter(color)

	return NewSyncWriter(writer)
}

type syncWriter struct {
	mu     sync.Mutex
	writer Writer
}

func NewSyncWriter(writer Writer) Writer {
	return &syncWriter{
		writer: writer,
	}
}

func (w *syncWriter) Write(e *Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.writer.Write(e)
}

func (w *syncWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writer.Close()
}

// BufferWriter keeps the last events in memory.
type BufferWriter interface {
	Writer
	Events() []*Event
}

type bufferWriter struct {
	lines *ring.Ring
	lock  sync.RWMutex
	level Level
}

func NewBufferWriter(level Level, lines int) BufferWriter {
	b := &bufferWriter{
		level: level,
	}

	if lines > 0 {
		b.lines = ring.New(lines)
	}

	return b
}

func (w *bufferWriter) Write(e *Event) error {
	if w.level < e.Level || e.Level == Lsilent {
		return nil
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	if w.lines != nil {
		w.lines.Value = e.clone()
		w.lines = w.lines.Next()
	}

	return nil
}

func (w *bufferWriter) Close() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.lines = nil
}

func (w *bufferWriter) Events() []*Event {
	var lines = []*Event{}

	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.lines == nil {
		return lines
	}

	w.lines.Do(func(l interface{}) {
		if l == nil {
			return
		}

		lines = append(lines, l.(*Event).clone())
	})

	return lines
}
