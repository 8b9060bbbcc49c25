package upstream

import "errors"

type Kind int

const (
	KindTransport Kind = iota
	KindTimeout
	KindStatus
	KindInvalidParams
	KindNotFound
)

var (
	ErrTimeout       = errors.New("upstream timeout")
	ErrInvalidParams = errors.New("invalid parameters")
	ErrNotFound      = errors.New("not found")
)

// Error is the single error kind surfaced by the client. Message is what
// the caller sees; Detail keeps the raw upstream explanation for logs.
type Error struct {
	Host       string
	Endpoint   string
	StatusCode int
	Kind       Kind
	Message    string
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrInvalidParams:
		return e.Kind == KindInvalidParams
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}
