// Package value provides typed configuration values that can be set from
// their string representation, e.g. from an environment variable.
package value

// Value is a configuration value that is bound to a field of the config data.
type Value interface {
	// String returns the current value as string.
	String() string

	// Set parses val and stores it in the bound field. An error is returned
	// if val can't be parsed.
	Set(val string) error

	// Validate returns an error describing why the current value is not
	// acceptable, or nil.
	Validate() error

	// IsEmpty returns whether the value is the zero value of its type.
	IsEmpty() bool
}
