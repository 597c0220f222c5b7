// Package json wraps encoding/json with error messages that point to the
// position of a syntax or type error in the input.
package json

import (
	"encoding/json"
	"fmt"
)

// Marshal is a wrapper for json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal is a wrapper for json.Unmarshal. Errors are already formatted
// with FormatError.
func Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return FormatError(data, err)
	}

	return nil
}

// FormatError takes the marshalled data and the error from Unmarshal and returns a detailed
// error message where the error was and what the error is.
func FormatError(input []byte, err error) error {
	if jsonError, ok := err.(*json.SyntaxError); ok {
		line, character, offsetError := lineAndCharacter(input, int(jsonError.Offset))
		if offsetError != nil {
			return err
		}

		return fmt.Errorf("syntax error at line %d, character %d: %w", line, character, err)
	}

	if jsonError, ok := err.(*json.UnmarshalTypeError); ok {
		line, character, offsetError := lineAndCharacter(input, int(jsonError.Offset))
		if offsetError != nil {
			return err
		}

		return fmt.Errorf("expect type '%s' for '%s' at line %d, character %d: %w", jsonError.Type.String(), jsonError.Field, line, character, err)
	}

	return err
}

func lineAndCharacter(input []byte, offset int) (line int, character int, err error) {
	lf := byte(0x0A)

	if offset > len(input) || offset < 0 {
		return 0, 0, fmt.Errorf("couldn't find offset %d within the input", offset)
	}

	// The offset is the number of bytes read, the error is at the last
	// byte read. Humans tend to count from 1.
	line = 1

	for i, b := range input[:offset] {
		character++

		if b == lf && i < offset-1 {
			line++
			character = 0
		}
	}

	return line, character, nil
}
