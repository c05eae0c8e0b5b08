package flow

import (
	"github.com/hamrahbot/sabt/internal/session"
	"github.com/hamrahbot/sabt/internal/steps"
	"github.com/hamrahbot/sabt/internal/users"
)

// ResultKind names what the transport layer should render next.
type ResultKind int

const (
	// AskDecision: unknown phone, ask whether to register.
	AskDecision ResultKind = iota
	// Verified: known customer re-verified, welcome back.
	Verified
	// Prompt: show the current step's question.
	Prompt
	// Invalid: answer rejected, show the step's error and re-prompt.
	Invalid
	// Summary: all steps answered, show confirmation summary.
	Summary
	// Committed: registration persisted.
	Committed
	// Updated: profile edit persisted.
	Updated
	// Cancelled: conversation aborted, session cleared.
	Cancelled
	// Failed: conversation aborted by an error, session cleared.
	Failed
)

// FailReason distinguishes user-visible failure messages.
type FailReason int

const (
	FailNone FailReason = iota
	// FailIncomplete: confirmation reached with required fields missing.
	FailIncomplete
	// FailDuplicatePhone: the phone number is already registered.
	FailDuplicatePhone
	// FailInternal: storage or systemic error.
	FailInternal
)

// Result is the outcome of one flow operation, rendered by the
// telegram layer.
type Result struct {
	Kind ResultKind

	// Step is set for Prompt and Invalid.
	Step steps.Step
	// CanGoBack reports whether a back navigation target exists for
	// the prompted step.
	CanGoBack bool

	// User is set for Verified, Committed and Updated.
	User *users.User

	// Session is a snapshot used to render the Summary.
	Session *session.Session

	// Reason is set for Failed.
	Reason FailReason
}

func prompt(s *session.Session) *Result {
	return &Result{Kind: Prompt, Step: s.CurrentStep, CanGoBack: s.PreviousStep != nil}
}

func invalid(s *session.Session) *Result {
	return &Result{Kind: Invalid, Step: s.CurrentStep, CanGoBack: s.PreviousStep != nil}
}
