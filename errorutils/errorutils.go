// Copyright 2025 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errorutils provides functions for checking the platform-level error codes
// carried by the errors returned from this SDK.
package errorutils

import (
	"net/http"

	"github.com/firebase/firebase-client-go/internal"
)

// IsInvalidArgument checks if the given error was due to an invalid client argument.
func IsInvalidArgument(err error) bool {
	return hasPlatformErrorCode(err, internal.InvalidArgument)
}

// IsFailedPrecondition checks if the given error was because a request could not be
// executed in the current system state.
func IsFailedPrecondition(err error) bool {
	return hasPlatformErrorCode(err, internal.FailedPrecondition)
}

// IsOutOfRange checks if the given error was due to an invalid range specified by the
// client.
func IsOutOfRange(err error) bool {
	return hasPlatformErrorCode(err, internal.OutOfRange)
}

// IsUnauthenticated checks if the given error was caused by an unauthenticated request.
func IsUnauthenticated(err error) bool {
	return hasPlatformErrorCode(err, internal.Unauthenticated)
}

// IsPermissionDenied checks if the given error was due to a client not having
// sufficient permissions.
func IsPermissionDenied(err error) bool {
	return hasPlatformErrorCode(err, internal.PermissionDenied)
}

// IsNotFound checks if the given error was due to a specified resource being not found.
func IsNotFound(err error) bool {
	return hasPlatformErrorCode(err, internal.NotFound)
}

// IsConflict checks if the given error was due to a concurrency conflict, such as a
// read-modify-write conflict.
func IsConflict(err error) bool {
	return hasPlatformErrorCode(err, internal.Conflict)
}

// IsAborted checks if the given error was due to an aborted operation.
func IsAborted(err error) bool {
	return hasPlatformErrorCode(err, internal.Aborted)
}

// IsAlreadyExists checks if the given error was because a resource the client
// attempted to create already exists.
func IsAlreadyExists(err error) bool {
	return hasPlatformErrorCode(err, internal.AlreadyExists)
}

// IsResourceExhausted checks if the given error was caused by an out-of-resource
// condition, such as a per-user quota.
func IsResourceExhausted(err error) bool {
	return hasPlatformErrorCode(err, internal.ResourceExhausted)
}

// IsCancelled checks if the given error was due to an operation being cancelled,
// typically by the caller.
func IsCancelled(err error) bool {
	return hasPlatformErrorCode(err, internal.Cancelled)
}

// IsDataLoss checks if the given error was due to an unrecoverable data loss or
// corruption.
func IsDataLoss(err error) bool {
	return hasPlatformErrorCode(err, internal.DataLoss)
}

// IsUnknown checks if the given error was caused by an unknown server error.
func IsUnknown(err error) bool {
	return hasPlatformErrorCode(err, internal.Unknown)
}

// IsInternal checks if the given error was due to an internal server error.
func IsInternal(err error) bool {
	return hasPlatformErrorCode(err, internal.Internal)
}

// IsUnavailable checks if the given error was caused by an unavailable service.
func IsUnavailable(err error) bool {
	return hasPlatformErrorCode(err, internal.Unavailable)
}

// IsDeadlineExceeded checks if the given error was due to a request exceeding its
// deadline.
func IsDeadlineExceeded(err error) bool {
	return hasPlatformErrorCode(err, internal.DeadlineExceeded)
}

// IsUnimplemented checks if the given error was because the requested operation is
// not implemented by the server.
func IsUnimplemented(err error) bool {
	return hasPlatformErrorCode(err, internal.Unimplemented)
}

// HTTPResponse returns the http.Response instance associated with the given error, or
// nil when no response is available. The body of the returned response is already
// consumed; use the error message to access the response payload.
func HTTPResponse(err error) *http.Response {
	if fe, ok := err.(*internal.FirebaseError); ok {
		return fe.Response
	}
	return nil
}

func hasPlatformErrorCode(err error, code internal.ErrorCode) bool {
	fe, ok := err.(*internal.FirebaseError)
	return ok && fe.ErrorCode == code
}
