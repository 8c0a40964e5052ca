package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArguments indicates a platform call with the wrong arguments.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrNoConfigDir indicates that no candidate directory is available for
	// writing configuration.
	ErrNoConfigDir = errors.New("no configuration directory available")
)

// ParseError reports a configuration file that is not a JSON object.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Content is the raw file content.
	Content string
	// Err is the underlying decode error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
