package textkeep

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrIO             ErrorKind = "io"
	ErrSQL            ErrorKind = "sql"
	ErrSchema         ErrorKind = "schema"
	ErrSchemaNotFound ErrorKind = "schema_not_found"
	ErrMissingID      ErrorKind = "missing_id"
	ErrPayload        ErrorKind = "payload"
	ErrQuery          ErrorKind = "query"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func SchemaNotFoundError(where string) *Error {
	return &Error{Kind: ErrSchemaNotFound, Message: fmt.Sprintf("no document table at %s; create the index first", where)}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
