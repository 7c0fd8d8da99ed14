package control

import (
	"errors"

	"github.com/olivoil/botdeck/internal/backend"
)

// ErrStaleEvent marks an event or result tagged for a profile other than the
// bound one. It is never shown to the operator.
var ErrStaleEvent = errors.New("event for a profile that is not bound")

// ValidationError is a missing or invalid input caught before any network
// call. It is surfaced as a blocking alert and never written to the log.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Describe renders err the way it appears in the operator log.
func Describe(err error) string {
	var (
		re *backend.RemoteError
		te *backend.TransportError
		ve *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &re):
		return "Error: " + re.Message
	case errors.As(err, &te):
		return "Network Error: " + te.Err.Error()
	default:
		return "Error: " + err.Error()
	}
}
