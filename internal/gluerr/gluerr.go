// Copyright 2026 The Docglue Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gluerr provides the error type used throughout docglue.
package gluerr

import (
	"fmt"

	"golang.org/x/xerrors"
)

// An ErrorCode describes the error's category.
type ErrorCode int

const (
	// Returned by the Code function on a nil error. It is not a valid
	// code for an error.
	OK ErrorCode = 0

	// The error could not be categorized.
	Unknown ErrorCode = 1

	// The document was not found.
	NotFound ErrorCode = 2

	// The document exists, but it should not.
	AlreadyExists ErrorCode = 3

	// A value given to a docglue API is incorrect.
	InvalidArgument ErrorCode = 4

	// A value assigned to a field does not have the field's type and
	// cannot be coerced to it.
	TypeMismatch ErrorCode = 5

	// A required field was unset at write time.
	RequiredField ErrorCode = 6

	// An attempt was made to change a value that can never change: a
	// constant or computed field, an auto timestamp, or a document ID
	// after first persistence.
	ImmutableField ErrorCode = 7

	// A value assigned to a Json field violates the field's attached
	// JSON Schema.
	SchemaViolation ErrorCode = 8

	// The operation was rejected because the system is not in a state
	// required for its execution.
	FailedPrecondition ErrorCode = 9

	// The underlying store failed to read, write or delete a document.
	Persistence ErrorCode = 10

	// Something unexpected happened. Internal errors always indicate
	// bugs in docglue (or possibly the underlying driver).
	Internal ErrorCode = 11

	// The feature is not implemented.
	Unimplemented ErrorCode = 12
)

func (c ErrorCode) String() string {
	switch c {
	case OK:
		return "OK"
	case Unknown:
		return "Unknown"
	case NotFound:
		return "NotFound"
	case AlreadyExists:
		return "AlreadyExists"
	case InvalidArgument:
		return "InvalidArgument"
	case TypeMismatch:
		return "TypeMismatch"
	case RequiredField:
		return "RequiredField"
	case ImmutableField:
		return "ImmutableField"
	case SchemaViolation:
		return "SchemaViolation"
	case FailedPrecondition:
		return "FailedPrecondition"
	case Persistence:
		return "Persistence"
	case Internal:
		return "Internal"
	case Unimplemented:
		return "Unimplemented"
	default:
		return fmt.Sprintf("ErrorCode(%d)", c)
	}
}

// An Error describes a docglue error.
type Error struct {
	Code  ErrorCode
	msg   string
	frame xerrors.Frame
	err   error
}

func (e *Error) Error() string {
	if e.msg == "" {
		return fmt.Sprintf("code=%v", e.Code)
	}
	return fmt.Sprintf("%s (code=%v)", e.msg, e.Code)
}

func (e *Error) Format(s fmt.State, c rune) {
	xerrors.FormatError(e, s, c)
}

func (e *Error) FormatError(p xerrors.Printer) (next error) {
	p.Print(e.Error())
	e.frame.Format(p)
	return e.err
}

// Unwrap returns the error underlying the receiver, which may be nil.
func (e *Error) Unwrap() error {
	return e.err
}

// New returns a new error with the given code, underlying error and message. Pass 1
// for the call depth if New is called from the function raising the error; pass 2 if
// it is called from a helper function that was invoked by the original function; and
// so on.
func New(c ErrorCode, err error, callDepth int, msg string) *Error {
	return &Error{
		Code:  c,
		msg:   msg,
		frame: xerrors.Caller(callDepth),
		err:   err,
	}
}

// Newf uses format and args to format a message, then calls New.
func Newf(c ErrorCode, err error, format string, args ...interface{}) *Error {
	return New(c, err, 1, fmt.Sprintf(format, args...))
}

// DoNotWrap reports whether an error should not be wrapped in the Error
// type from this package. It is true for errors that are already Errors:
// re-wrapping would bury the original code and frame.
func DoNotWrap(err error) bool {
	_, ok := err.(*Error)
	return ok
}

// ErrorAs is a helper for the ErrorAs method of drivers.
// It performs some initial nil checks, and does a single level of unwrapping
// when err is a *gluerr.Error. Then it calls its errorAs argument, which should
// be a driver implementation of ErrorAs.
func ErrorAs(err error, target interface{}, errorAs func(error, interface{}) bool) bool {
	if err == nil {
		return false
	}
	if target == nil {
		panic("ErrorAs target cannot be nil")
	}
	if e, ok := err.(*Error); ok {
		err = e.Unwrap()
		if err == nil {
			return false
		}
	}
	return errorAs(err, target)
}
