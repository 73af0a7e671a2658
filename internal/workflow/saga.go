package workflow

import (
	"context"
	"fmt"

	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
)

// Policy says what a failing step does to its operation.
type Policy int

const (
	// Fatal aborts the operation and returns the step's error.
	Fatal Policy = iota
	// BestEffort records a warning and lets the operation continue.
	BestEffort
)

// Step is one unit of a multi-write operation. Run returns a plain-language
// description of what it did, or "" when it had nothing to do.
type Step struct {
	Name   string
	Policy Policy
	Run    func(ctx context.Context) (string, error)
}

// RecordRef identifies a row touched by an operation.
type RecordRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Transcript is the ordered account of an operation, returned even when
// some best-effort steps failed.
type Transcript struct {
	Actions   []string    `json:"actions"`
	Warnings  []string    `json:"warnings"`
	NextSteps []string    `json:"nextSteps"`
	Created   []RecordRef `json:"created"`
	Updated   []RecordRef `json:"updated"`
}

func newTranscript() *Transcript {
	return &Transcript{
		Actions:   []string{},
		Warnings:  []string{},
		NextSteps: []string{},
		Created:   []RecordRef{},
		Updated:   []RecordRef{},
	}
}

func (t *Transcript) action(format string, args ...interface{}) {
	t.Actions = append(t.Actions, fmt.Sprintf(format, args...))
}

func (t *Transcript) warn(format string, args ...interface{}) {
	t.Warnings = append(t.Warnings, fmt.Sprintf(format, args...))
}

func (t *Transcript) created(kind string, id uuid.UUID) {
	t.Created = append(t.Created, RecordRef{Type: kind, ID: id.String()})
}

func (t *Transcript) updated(kind string, id uuid.UUID) {
	t.Updated = append(t.Updated, RecordRef{Type: kind, ID: id.String()})
}

// PartialFailure is the error detail of an operation whose Fatal step failed
// after earlier steps had already written. Transcript lists those writes so
// the caller can reuse them instead of creating duplicates on retry.
type PartialFailure struct {
	FailedStep string      `json:"failedStep"`
	Transcript *Transcript `json:"transcript"`
}

// runSteps executes steps in order. A failing Fatal step stops the run and
// its error is returned; a failing BestEffort step becomes a warning. Nothing
// already done is rolled back.
func (s *Service) runSteps(ctx context.Context, operation string, tr *Transcript, steps []Step) error {
	for _, step := range steps {
		action, err := step.Run(ctx)
		if err != nil {
			if step.Policy == Fatal {
				if apperr.Is(err, apperr.KindWrite) {
					s.log.WithContext(ctx).DatabaseError(operation+": "+step.Name, err)
				}
				return stopped(step.Name, err, tr)
			}
			tr.warn("%s failed: %v", step.Name, err)
			s.log.WithContext(ctx).WorkflowWarning(operation, step.Name, err)
			continue
		}
		if action != "" {
			tr.Actions = append(tr.Actions, action)
		}
	}
	return nil
}

// stopped attaches the transcript to err when something was already written.
// The returned error keeps the kind, message and suggestions of err.
func stopped(stepName string, err error, tr *Transcript) error {
	if len(tr.Created) == 0 && len(tr.Updated) == 0 {
		return err
	}
	kind, message := apperr.KindWrite, stepName+" failed"
	var suggestions []string
	if appErr, ok := apperr.As(err); ok {
		kind, message, suggestions = appErr.Kind, appErr.Message, appErr.Suggestions
	}
	return apperr.Wrap(kind, message, err).
		WithSuggestions(suggestions).
		WithDetails(PartialFailure{FailedStep: stepName, Transcript: tr})
}
