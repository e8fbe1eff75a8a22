package errors

import "fmt"

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrMalformedLine        = fmt.Errorf("malformed protocol line")
	ErrUnknownCommand       = fmt.Errorf("unknown command")
	ErrServerStopped        = fmt.Errorf("server is stopped")
	ErrServerAlreadyStarted = fmt.Errorf("server already started")
	ErrAlreadyConnected     = fmt.Errorf("already connected")
	ErrNotConnected         = fmt.Errorf("not connected")
	ErrUnknownCypher        = fmt.Errorf("unknown cypher")
	ErrDecode               = fmt.Errorf("unable to decode payload")
	ErrInvalidConfig        = fmt.Errorf("invalid configuration")
	ErrLineTooLong          = fmt.Errorf("line exceeds maximum length")
)

// BindError is returned when the listening socket cannot be created.
// It is never retried.
type BindError struct {
	Address string
	Err     error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("unable to bind %s: %v", e.Address, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// ConnectError is returned by the client when the server cannot be reached.
type ConnectError struct {
	Address string
	Err     error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("unable to connect to %s: %v", e.Address, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }
