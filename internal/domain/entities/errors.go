package entities

import (
	"errors"
	"fmt"
	"strings"
)

// MaxSnippetLength is the number of characters of raw upstream output kept
// when the output is not valid JSON
const MaxSnippetLength = 500

var (
	ErrUpstreamProcess           = errors.New("upstream process failed")
	ErrUpstreamTimeout           = errors.New("upstream process timed out")
	ErrEmptyUpstreamResponse     = errors.New("empty upstream response")
	ErrMalformedUpstreamResponse = errors.New("malformed upstream response")
	ErrSnapshotNotFound          = errors.New("market snapshot not found")
)

// UpstreamError describes a terminal failure of one upstream invocation.
// Kind is one of the sentinel errors above; Detail is the text returned to
// the client.
type UpstreamError struct {
	Kind    error
	Detail  string
	Stderr  string
	Snippet string
	Cause   error
}

func (e *UpstreamError) Error() string {
	return e.Detail
}

// Unwrap exposes both the kind and the underlying cause to errors.Is / errors.As
func (e *UpstreamError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NewProcessError builds the error for a non-zero exit or a failed start
func NewProcessError(label, stderr string, cause error) *UpstreamError {
	return &UpstreamError{
		Kind:   ErrUpstreamProcess,
		Detail: fmt.Sprintf("%s failed: %s", capitalize(label), stderr),
		Stderr: stderr,
		Cause:  cause,
	}
}

func NewTimeoutError(commandLine string, cause error) *UpstreamError {
	return &UpstreamError{
		Kind:   ErrUpstreamTimeout,
		Detail: "Timeout calling " + commandLine,
		Cause:  cause,
	}
}

func NewEmptyResponseError(commandLine string) *UpstreamError {
	return &UpstreamError{
		Kind:   ErrEmptyUpstreamResponse,
		Detail: "Empty response from " + commandLine,
	}
}

// NewMalformedResponseError builds the error for output that is not a single
// JSON value; raw is truncated to MaxSnippetLength characters
func NewMalformedResponseError(label string, parseErr error, raw string) *UpstreamError {
	snippet := TruncateRunes(raw, MaxSnippetLength)
	return &UpstreamError{
		Kind:    ErrMalformedUpstreamResponse,
		Detail:  fmt.Sprintf("Invalid JSON from %s: %v: %s", label, parseErr, snippet),
		Snippet: snippet,
		Cause:   parseErr,
	}
}

// TruncateRunes keeps at most max characters of s
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
