// Package apperr defines the error kinds the writer pipeline surfaces to users.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and HTTP mapping.
type Kind string

const (
	KindConfig     Kind = "config_error"
	KindUpstream   Kind = "upstream_error"
	KindParse      Kind = "parse_error"
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation_error"
)

// Error is the application error. Raw holds upstream content that must be
// shown to the user instead of being dropped (parse failures).
type Error struct {
	Kind    Kind
	Message string
	Raw     string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Config(message string, err error) *Error {
	return New(KindConfig, message, err)
}

func Upstream(message string, err error) *Error {
	return New(KindUpstream, message, err)
}

// Parse keeps the offending raw text so callers can display it verbatim.
func Parse(message, raw string, err error) *Error {
	e := New(KindParse, message, err)
	e.Raw = raw
	return e
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

func Validation(message string) *Error {
	return New(KindValidation, message, nil)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// RawOf returns the raw upstream text attached to err, if any.
func RawOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Raw
	}
	return ""
}

func IsConfig(err error) bool     { return KindOf(err) == KindConfig }
func IsUpstream(err error) bool   { return KindOf(err) == KindUpstream }
func IsParse(err error) bool      { return KindOf(err) == KindParse }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
