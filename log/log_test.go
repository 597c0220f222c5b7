package log

import (
	"bufio"
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoglevelNames(t *testing.T) {
	assert.Equal(t, "DEBUG", Ldebug.String())
	assert.Equal(t, "ERROR", Lerror.String())
	assert.Equal(t, "WARN", Lwarn.String())
	assert.Equal(t, "INFO", Linfo.String())
	assert.Equal(t, `SILENT`, Lsilent.String())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	require.Equal(t, Lwarn, level)

	level, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	require.Equal(t, Ldebug, level)

	_, err = ParseLevel("verbose")
	require.Error(t, err)
}

func TestLogColorToNotTTY(t *testing.T) {
	var buffer bytes.Buffer
	writer := bufio.NewWriter(&buffer)

	w := NewConsoleWriter(writer, Linfo, true).(*syncWriter)
	formatter := w.writer.(*levelWriter).formatter.(*consoleFormatter)

	assert.NotEqual(t, true, formatter.color, "Color should not be used on a buffer logger")
}

func TestLogClone(t *testing.T) {
	var buffer bytes.Buffer
	writer := bufio.NewWriter(&buffer)

	logger := New("test").WithOutput(NewConsoleWriter(writer, Linfo, false))

	logger.Info().Log("info")
	writer.Flush()

	assert.Contains(t, buffer.String(), `component="test"`)

	buffer.Reset()

	logger2 := logger.WithComponent("tset")

	logger2.Info().Log("info")
	writer.Flush()

	assert.Contains(t, buffer.String(), `component="tset"`)
}

func TestLogFieldsAreNotShared(t *testing.T) {
	buffer := NewBufferWriter(Ldebug, 10)

	logger := New("test").WithOutput(buffer).WithField("job", "job_1")

	logger.WithField("attempt", "a1").Info().Log("first")
	logger.Info().Log("second")

	events := buffer.Events()
	require.Equal(t, 2, len(events))

	require.Equal(t, Fields{"job": "job_1", "attempt": "a1"}, events[0].Data)
	require.Equal(t, Fields{"job": "job_1"}, events[1].Data)
	require.Equal(t, "second", events[1].Message)
}

func TestLogWithoutOutput(t *testing.T) {
	logger := New("test")

	require.NotPanics(t, func() {
		logger.Warn().WithError(fmt.Errorf("boom")).Log("nothing")
		logger.Close()
	})
}

func TestLogLevels(t *testing.T) {
	levels := []Level{Lsilent, Lerror, Lwarn, Linfo, Ldebug}

	for _, level := range levels {
		var buffer bytes.Buffer
		writer := bufio.NewWriter(&buffer)

		logger := New("test").WithOutput(NewConsoleWriter(writer, level, false))

		emit := []func() Logger{logger.Error, logger.Warn, logger.Info, logger.Debug}

		for i, e := range emit {
			e().Log("message")
			writer.Flush()

			if Level(i+1) <= level {
				assert.NotEqual(t, 0, buffer.Len(), "%s: buffer should not be empty", level)
			} else {
				assert.Equal(t, 0, buffer.Len(), "%s: buffer should be empty", level)
			}

			buffer.Reset()
		}
	}
}
