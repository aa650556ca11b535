// Package apperrors provides chainable application errors. An Error carries a
// message, the error it was derived from, any number of attached causes and an
// optional status code reported by a remote service. errors.Is matches against
// the whole derivation chain and every attached cause, so callers can test for
// an error kind and for the transport failure behind it with the same value.
package apperrors

// Error defines the interface for application errors. All methods that build
// errors return a new value and leave the receiver untouched.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // derives a new kind from the current one
	Msg(msg string) Error                  // replaces the message, keeps the kind
	MsgErr(msg string, err ...error) Error // replaces the message and attaches causes
	Err(err ...error) Error                // attaches causes, keeps the message
	SetStatusCode(int) Error               // records the status code reported remotely
	StatusCode() int                       // returns the recorded status code
	ErrorAll() string                      // message followed by every attached cause
	Causes() []error                       // attached causes in the order they were added
}
