package main

import (
	"errors"
	"fmt"
	"net/http"
)

// errKind classifies application errors so the request boundary can map
// every failure to a single HTTP status and a short user-facing message.
type errKind int

const (
	errStore errKind = iota
	errInvalidInput
	errUnauthorized
	errNotFound
	errConflict
)

// appError carries a kind, a user-facing message and an optional cause.
// The cause is logged, never shown to the client.
type appError struct {
	kind    errKind
	message string
	err     error
}

func (e *appError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *appError) Unwrap() error {
	return e.err
}

// status maps the error kind to an HTTP status code. Not-owned and absent
// entries are collapsed into 404 so responses never reveal whether a row
// exists for another user. Duplicate usernames answer 400, matching the
// register form contract.
func (e *appError) status() int {
	switch e.kind {
	case errInvalidInput, errConflict:
		return http.StatusBadRequest
	case errUnauthorized:
		return http.StatusUnauthorized
	case errNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func invalidInputErr(message string) *appError {
	return &appError{kind: errInvalidInput, message: message}
}

func unauthorizedErr(message string) *appError {
	return &appError{kind: errUnauthorized, message: message}
}

func notFoundErr(message string) *appError {
	return &appError{kind: errNotFound, message: message}
}

func conflictErr(message string) *appError {
	return &appError{kind: errConflict, message: message}
}

func storeErr(message string, err error) *appError {
	return &appError{kind: errStore, message: message, err: err}
}

func errorStatus(err error) int {
	var ae *appError
	if errors.As(err, &ae) {
		return ae.status()
	}
	return http.StatusInternalServerError
}

// errorMessage returns the text safe to show the client. Store failures are
// replaced with a generic message so internal detail never leaks.
func errorMessage(err error) string {
	var ae *appError
	if errors.As(err, &ae) && ae.kind != errStore {
		return ae.message
	}
	return "Something went wrong"
}

func isKind(err error, kind errKind) bool {
	var ae *appError
	return errors.As(err, &ae) && ae.kind == kind
}
