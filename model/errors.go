package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind identifies a terminal failure class of the analysis pipeline.
type ErrorKind string

const (
	KindInputInvalid         ErrorKind = "INPUT_INVALID"
	KindConfigMissing        ErrorKind = "CONFIG_MISSING"
	KindVideoNotFound        ErrorKind = "VIDEO_NOT_FOUND"
	KindNoCommentsAvailable  ErrorKind = "NO_COMMENTS_AVAILABLE"
	KindNoValidComments      ErrorKind = "NO_VALID_COMMENTS"
	KindUnparsableSentiment  ErrorKind = "UNPARSABLE_SENTIMENT"
	KindMalformedSentiment   ErrorKind = "MALFORMED_SENTIMENT"
	KindSentimentUnavailable ErrorKind = "SENTIMENT_UNAVAILABLE"
)

// Sentinels for errors.Is checks. They carry no cause.
var (
	ErrInputInvalid         = &AnalysisError{Kind: KindInputInvalid}
	ErrConfigMissing        = &AnalysisError{Kind: KindConfigMissing}
	ErrVideoNotFound        = &AnalysisError{Kind: KindVideoNotFound}
	ErrNoCommentsAvailable  = &AnalysisError{Kind: KindNoCommentsAvailable}
	ErrNoValidComments      = &AnalysisError{Kind: KindNoValidComments}
	ErrUnparsableSentiment  = &AnalysisError{Kind: KindUnparsableSentiment}
	ErrMalformedSentiment   = &AnalysisError{Kind: KindMalformedSentiment}
	ErrSentimentUnavailable = &AnalysisError{Kind: KindSentimentUnavailable}
)

var publicMessages = map[ErrorKind]string{
	KindInputInvalid:         "video ID is required",
	KindConfigMissing:        "the service is missing a required upstream credential",
	KindVideoNotFound:        "video does not exist or is not accessible",
	KindNoCommentsAvailable:  "no comments could be retrieved for this video",
	KindNoValidComments:      "no usable comment text was found for this video",
	KindUnparsableSentiment:  "sentiment analysis returned an unreadable result",
	KindMalformedSentiment:   "sentiment analysis returned an incomplete result",
	KindSentimentUnavailable: "sentiment analysis service is unavailable",
}

var httpStatuses = map[ErrorKind]int{
	KindInputInvalid:         http.StatusBadRequest,
	KindConfigMissing:        http.StatusInternalServerError,
	KindVideoNotFound:        http.StatusNotFound,
	KindNoCommentsAvailable:  http.StatusNotFound,
	KindNoValidComments:      http.StatusNotFound,
	KindUnparsableSentiment:  http.StatusBadGateway,
	KindMalformedSentiment:   http.StatusBadGateway,
	KindSentimentUnavailable: http.StatusBadGateway,
}

// AnalysisError is the only error type that leaves the pipeline. Transport
// failures are kept as Cause for logging and never shown to callers.
type AnalysisError struct {
	Kind   ErrorKind
	Detail string
	Cause  error
}

// NewError builds an AnalysisError of the given kind.
func NewError(kind ErrorKind, detail string, cause error) *AnalysisError {
	return &AnalysisError{Kind: kind, Detail: detail, Cause: cause}
}

func (e *AnalysisError) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is matches any AnalysisError of the same kind, so callers can compare against the sentinels.
func (e *AnalysisError) Is(target error) bool {
	t, ok := target.(*AnalysisError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// PublicMessage is the redacted, human readable message for callers.
func (e *AnalysisError) PublicMessage() string {
	if msg, ok := publicMessages[e.Kind]; ok {
		return msg
	}
	return "analysis failed"
}

// HTTPStatus maps the error kind to a response status.
func (e *AnalysisError) HTTPStatus() int {
	if status, ok := httpStatuses[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AsAnalysisError extracts the AnalysisError from err, wrapping unknown errors
// so that callers always receive a redacted message.
func AsAnalysisError(err error) *AnalysisError {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}
	return &AnalysisError{Kind: "INTERNAL", Cause: err}
}
