package json

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnmarshalSyntaxError(t *testing.T) {
	data := []byte("{\n  \"log_dir\": \"/logs\",\n  \"conf_dir\" \"/conf\"\n}")

	v := map[string]string{}

	err := Unmarshal(data, &v)
	require.Error(t, err)
	require.Contains(t, err.Error(), "syntax error at line 3")
}

func TestUnmarshalTypeError(t *testing.T) {
	data := []byte("{\n  \"machines\": \"yes\"\n}")

	v := struct {
		Machines bool `json:"machines"`
	}{}

	err := Unmarshal(data, &v)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expect type 'bool' for 'machines' at line 2")
}

func TestUnmarshalTypeErrorEndOfLine(t *testing.T) {
	data := []byte("{\n  \"log_dir\": \"/logs\",\n  \"machines\": 1\n}")

	v := struct {
		LogDir   string `json:"log_dir"`
		Machines bool   `json:"machines"`
	}{}

	err := Unmarshal(data, &v)
	require.Error(t, err)
	require.Contains(t, err.Error(), "at line 3, character 15")
}

func TestLineAndCharacter(t *testing.T) {
	input := []byte("ab\ncd\n")

	line, character, err := lineAndCharacter(input, 2)
	require.NoError(t, err)
	require.Equal(t, 1, line)
	require.Equal(t, 2, character)

	line, character, err = lineAndCharacter(input, 3)
	require.NoError(t, err)
	require.Equal(t, 1, line)
	require.Equal(t, 3, character)

	line, character, err = lineAndCharacter(input, 4)
	require.NoError(t, err)
	require.Equal(t, 2, line)
	require.Equal(t, 1, character)

	_, _, err = lineAndCharacter(input, 42)
	require.Error(t, err)
}

func TestUnmarshal(t *testing.T) {
	v := map[string]string{}

	err := Unmarshal([]byte(`{"log_dir":"/logs"}`), &v)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"log_dir": "/logs"}, v)
}
