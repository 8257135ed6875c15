package domain

import (
	"errors"
	"net/http"
)

// Stage is a state of a single dispatch. A call moves from StageIdle through
// StageSendAttempted and ends in StageSucceeded or StageFailed.
type Stage string

const (
	StageIdle           Stage = "idle"
	StageTemplateLoaded Stage = "template_loaded"
	StageSubstituted    Stage = "substituted"
	StageSendAttempted  Stage = "send_attempted"
	StageSucceeded      Stage = "succeeded"
	StageFailed         Stage = "failed"
)

var ErrUnknownKind = errors.New("unknown notification kind")

// DispatchError is the single failure kind returned by the dispatcher. Reason
// is safe to show to callers; Err holds the underlying cause for logs. Stage is
// the last stage reached before the failure.
type DispatchError struct {
	Kind   Kind
	Stage  Stage
	Reason string
	Err    error
}

func (e *DispatchError) Error() string {
	return "could not send email: " + e.Reason
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

func (e *DispatchError) HTTPStatus() int {
	return http.StatusInternalServerError
}
