package analysis

import "errors"

var (
	// ErrNotFound means a report or analysis id the operation requires does
	// not exist. Distinct from a known job with zero results so far.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput covers malformed dispatch parameters (empty camera
	// list, unreadable face image). Surfaced before any publish happens.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDispatchFailed means the publish to the message channel failed.
	// The channel is the only record that a job was requested, so this is
	// never swallowed.
	ErrDispatchFailed = errors.New("dispatch failed")

	// ErrUnresolvedVideo marks a detection record whose video has no camera
	// mapping. Per-record and non-fatal: timeline reconstruction logs and
	// skips such records instead of aborting.
	ErrUnresolvedVideo = errors.New("unresolved video")

	// ErrStoreUnavailable means the result store could not be queried.
	ErrStoreUnavailable = errors.New("result store unavailable")
)
