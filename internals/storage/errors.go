package storage

import "errors"

// ErrorKind classifies a failed registration.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindConnection
	KindExecution
)

var (
	ErrConnection = errors.New("connection failed")
	ErrExecution  = errors.New("execution failed")
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindExecution:
		return "execution"
	default:
		return "none"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindConnection:
		return ErrConnection
	case KindExecution:
		return ErrExecution
	default:
		return nil
	}
}

// Error carries the kind of failure and the driver error behind it.
// errors.Is(err, ErrConnection) and errors.Is(err, ErrExecution) match on Kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	prefix := "storage error"
	if s := e.Kind.sentinel(); s != nil {
		prefix = s.Error()
	}
	if e.Err == nil {
		return prefix
	}
	return prefix + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf reports the kind of a storage error, or KindNone for nil and foreign errors.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindNone
}
