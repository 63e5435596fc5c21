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

// Package gluerrors provides support for getting error codes from
// errors returned by docglue APIs.
package gluerrors

import (
	"errors"

	"docglue.dev/internal/gluerr"
)

// An ErrorCode describes the error's category. Programs should act upon an error's
// code, not its message.
type ErrorCode = gluerr.ErrorCode

const (
	// Returned by the Code function on a nil error. It is not a valid
	// code for an error.
	OK ErrorCode = gluerr.OK

	// The error could not be categorized.
	Unknown ErrorCode = gluerr.Unknown

	// The document was not found.
	NotFound ErrorCode = gluerr.NotFound

	// The document exists, but it should not.
	AlreadyExists ErrorCode = gluerr.AlreadyExists

	// A value given to a docglue API is incorrect.
	InvalidArgument ErrorCode = gluerr.InvalidArgument

	// A value assigned to a field does not have the field's type and
	// cannot be coerced to it.
	TypeMismatch ErrorCode = gluerr.TypeMismatch

	// A required field was unset at write time.
	RequiredField ErrorCode = gluerr.RequiredField

	// An attempt was made to change a value that can never change: a
	// constant or computed field, an auto timestamp, or a document ID
	// after first persistence.
	ImmutableField ErrorCode = gluerr.ImmutableField

	// A value assigned to a Json field violates the field's attached
	// JSON Schema.
	SchemaViolation ErrorCode = gluerr.SchemaViolation

	// The operation was rejected because the system is not in a state
	// required for its execution.
	FailedPrecondition ErrorCode = gluerr.FailedPrecondition

	// The underlying store failed to read, write or delete a document.
	Persistence ErrorCode = gluerr.Persistence

	// Something unexpected happened. Internal errors always indicate
	// bugs in docglue (or possibly the underlying driver).
	Internal ErrorCode = gluerr.Internal

	// The feature is not implemented.
	Unimplemented ErrorCode = gluerr.Unimplemented
)

// Code returns the ErrorCode of err if it, or some error it wraps, is an *Error.
// It returns Unknown if err is a non-nil error of a different type.
// If err is nil, it returns the special code OK.
func Code(err error) ErrorCode {
	if err == nil {
		return OK
	}
	var e *gluerr.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}
