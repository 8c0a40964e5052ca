package platform

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidReference is matched by every InvalidReferenceError.
	ErrInvalidReference = errors.New("invalid platform reference")

	// ErrMissing is matched by every MissingError.
	ErrMissing = errors.New("platform not found")
)

// InvalidReferenceError reports a name that cannot be referenced: an alias
// target or backend class that does not exist, or a removal that would leave
// the default alias dangling.
type InvalidReferenceError struct {
	// Name is the entry being set or removed.
	Name string
	// Target is the referenced name.
	Target string
	// Reason is a short human-readable explanation.
	Reason string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidReference, e.Target, e.Reason)
}

// Is reports whether target is ErrInvalidReference.
func (e *InvalidReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}

// MissingError reports a lookup or removal of a name with no record.
type MissingError struct {
	Name string
	// Known lists every name in the platform mapping.
	Known []string
	// Path is the configuration file the mapping was loaded from, if any.
	Path string
}

func (e *MissingError) Error() string {
	quoted := make([]string, len(e.Known))
	for i, n := range e.Known {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	from := e.Path
	if from == "" {
		from = "defaults"
	}
	return fmt.Sprintf("platform name %q not among [%s] (configuration from %s)",
		e.Name, strings.Join(quoted, ", "), from)
}

// Is reports whether target is ErrMissing.
func (e *MissingError) Is(target error) bool {
	return target == ErrMissing
}

// ErrInvalidRecord indicates an entry that is not a well-formed record or alias.
var ErrInvalidRecord = errors.New("invalid platform entry")
