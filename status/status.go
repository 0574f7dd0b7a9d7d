// Package status defines the tri-valued result type every public
// PHOENIX operation returns, following the source's use of return
// codes instead of exceptions (preserved per the library's design
// notes on error-flow control).
package status

// Status classifies the outcome of a public operation.
type Status int

const (
	// Success is the normal path.
	Success Status = iota
	// ErrAPI signals caller misuse: null inputs where non-null is
	// required, zero size where positive is required, an enum at
	// its Invalid/Max sentinel, or calling an operation before its
	// prerequisite (bind_* before begin_render_pass, begin_render_pass
	// before begin_frame, create_* before library init).
	ErrAPI
	// ErrInternal signals a backend or library bug: the backend
	// returned a non-success code, a cache held a stale handle,
	// barrier analysis could not locate a required usage, or an
	// image layout was incompatible with the requested operation.
	ErrInternal
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case ErrAPI:
		return "ErrApi"
	case ErrInternal:
		return "ErrInternal"
	default:
		return "Status(?)"
	}
}

// OK reports whether s is Success.
func (s Status) OK() bool { return s == Success }

// Error implements the error interface so a Status can be returned or
// wrapped anywhere a plain error is expected (e.g. from functions that
// also need to interoperate with backend errors via %w).
func (s Status) Error() string { return s.String() }

// FromError classifies a plain error returned by a driver/backend
// call as ErrInternal — by the classification rule in the library's
// error-handling design, any non-nil backend error is a library or
// hardware-support bug, never caller misuse.
func FromError(err error) Status {
	if err == nil {
		return Success
	}
	return ErrInternal
}
