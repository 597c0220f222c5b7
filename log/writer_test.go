package log

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testEvent() *Event {
	return &Event{
		logger:    &logger{},
		Time:      time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC),
		Level:     Linfo,
		Component: "test",
		Caller:    "me",
		Message:   "hello world",
		Data:      map[string]interface{}{"foo": "bar"},
	}
}

func TestJSONWriter(t *testing.T) {
	buffer := bytes.Buffer{}

	writer := NewJSONWriter(&buffer, Linfo)
	writer.Write(testEvent())

	require.Equal(t, `{"caller":"me","component":"test","foo":"bar","level":"INFO","msg":"hello world","ts":"2009-11-10T23:00:00Z"}`+"\n", buffer.String())
}

func TestJSONWriterError(t *testing.T) {
	buffer := bytes.Buffer{}

	e := testEvent()
	e.Data = Fields{"error": fmt.Errorf("failed")}

	writer := NewJSONWriter(&buffer, Linfo)
	writer.Write(e)

	require.Contains(t, buffer.String(), `"error":"failed"`)
}

func TestConsoleWriter(t *testing.T) {
	buffer := bytes.Buffer{}

	writer := NewConsoleWriter(&buffer, Linfo, false)
	writer.Write(testEvent())

	require.Equal(t, `ts=2009-11-10T23:00:00Z level=INFO component="test" msg="hello world" foo="bar"`+"\n", buffer.String())
}

func TestConsoleWriterLevel(t *testing.T) {
	buffer := bytes.Buffer{}

	e := testEvent()
	e.Level = Ldebug

	writer := NewConsoleWriter(&buffer, Linfo, false)
	writer.Write(e)

	require.Equal(t, 0, buffer.Len())
}

func TestBufferWriterRing(t *testing.T) {
	bufwriter := NewBufferWriter(Linfo, 2)

	for i := 0; i < 3; i++ {
		e := testEvent()
		e.Message = fmt.Sprintf("message %d", i)
		bufwriter.Write(e)
	}

	events := bufwriter.Events()
	require.Equal(t, 2, len(events))
	require.Equal(t, "message 1", events[0].Message)
	require.Equal(t, "message 2", events[1].Message)

	bufwriter.Close()
	require.Equal(t, 0, len(bufwriter.Events()))
}
