package apperrors

import (
	"errors"
	"strings"
)

type appError struct {
	msg        string
	base       error
	causes     []error
	statuscode int
}

func (e *appError) Error() string {
	return e.msg
}

// ErrorAll joins the message with the messages of attached causes. Causes
// whose text is already contained in the message are skipped.
func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.msg)
	for _, err := range e.causes {
		if err == nil {
			continue
		}
		s := err.Error()
		if s == "" || strings.Contains(b.String(), s) {
			continue
		}
		b.WriteString(": ")
		b.WriteString(s)
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) Causes() []error {
	return e.causes
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statuscode: e.statuscode,
	}
}

func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		causes:     e.causes,
		statuscode: e.statuscode,
	}
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:        msg,
		base:       e,
		causes:     appendCauses(e.causes, errs),
		statuscode: statusFrom(e.statuscode, errs),
	}
}

func (e *appError) Err(errs ...error) Error {
	return &appError{
		msg:        e.msg,
		base:       e,
		causes:     appendCauses(e.causes, errs),
		statuscode: statusFrom(e.statuscode, errs),
	}
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

// Is reports whether target is the base chain or any attached cause.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.causes {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// New creates a root-level error kind.
func New(msg string) Error {
	return &appError{msg: msg}
}

// statusCoder is implemented by transport errors that know the remote status.
type statusCoder interface {
	StatusCode() int
}

func statusFrom(current int, errs []error) int {
	if current != 0 {
		return current
	}
	for _, err := range errs {
		var sc statusCoder
		if errors.As(err, &sc) && sc.StatusCode() != 0 {
			return sc.StatusCode()
		}
	}
	return 0
}

func appendCauses(existing, errs []error) []error {
	all := make([]error, 0, len(existing)+len(errs))
	all = append(all, existing...)
	for _, err := range errs {
		if err != nil {
			all = append(all, err)
		}
	}
	return all
}
