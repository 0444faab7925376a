package models

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when a question arrives before any document set was indexed.
var ErrNotReady = errors.New("no documents have been processed")

// ErrSessionClosed is returned for actions on a session that was torn down.
var ErrSessionClosed = errors.New("session closed")

// ExtractionError reports a single document that could not be read. It is never fatal.
type ExtractionError struct {
	File string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.File, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmptyInputError means a pipeline step produced nothing to work with.
type EmptyInputError struct {
	Reason string
}

func (e *EmptyInputError) Error() string { return e.Reason }

const (
	ReasonNoDocuments = "no documents uploaded"
	ReasonNoText      = "no text extracted"
	ReasonNoChunks    = "no chunks produced"
)

type IndexBuildError struct {
	Err error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("index build failed: %v", e.Err)
}

func (e *IndexBuildError) Unwrap() error { return e.Err }

// ConfigurationError blocks processing and answering until the setting is fixed.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid configuration: %s", e.Field)
}

// ModelCallError wraps a failure of retrieval or of the chat completion call.
type ModelCallError struct {
	Stage string
	Err   error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ModelCallError) Unwrap() error { return e.Err }
