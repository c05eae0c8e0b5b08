// Package session holds the ephemeral per-user conversation state used
// by the registration and charge flows. Sessions live only for the
// duration of an interaction and are lost on restart; the Store
// abstraction lets multi-process deployments swap the in-memory map
// for a shared redis instance.
package session

import (
	"context"

	"github.com/hamrahbot/sabt/internal/steps"
)

// State names the coarse position of a user inside a conversation.
type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingDecision     State = "awaiting_decision"
	StateStepInProgress       State = "step_in_progress"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateAwaitingChargeAmount State = "awaiting_charge_amount"
)

// Session is the per-user scratchpad of a conversation. Fields maps a
// step to its collected answer; a present key with a nil value records
// an explicitly skipped optional step.
type Session struct {
	State        State                   `json:"state"`
	Fields       map[steps.Step]*string  `json:"fields,omitempty"`
	PhoneNumber  string                  `json:"phone_number,omitempty"`
	ReferrerCode string                  `json:"referrer_code,omitempty"`
	CurrentStep  steps.Step              `json:"current_step"`
	PreviousStep *steps.Step             `json:"previous_step,omitempty"`
	IsEditing    bool                    `json:"is_editing,omitempty"`
	ChargeRef    string                  `json:"charge_ref,omitempty"`
	ChargeAmount int64                   `json:"charge_amount,omitempty"`
}

// New returns an empty idle session.
func New() *Session {
	return &Session{State: StateIdle, Fields: make(map[steps.Step]*string)}
}

// Field returns the collected answer for a step. ok reports whether
// the step was answered at all; a nil value with ok=true means the
// optional step was skipped.
func (s *Session) Field(st steps.Step) (value *string, ok bool) {
	if s.Fields == nil {
		return nil, false
	}
	v, ok := s.Fields[st]
	return v, ok
}

// SetField stores the answer for a step.
func (s *Session) SetField(st steps.Step, value *string) {
	if s.Fields == nil {
		s.Fields = make(map[steps.Step]*string)
	}
	s.Fields[st] = value
}

// FieldString returns the answer as a plain string, empty when unset
// or skipped.
func (s *Session) FieldString(st steps.Step) string {
	if v, ok := s.Field(st); ok && v != nil {
		return *v
	}
	return ""
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Fields = make(map[steps.Step]*string, len(s.Fields))
	for k, v := range s.Fields {
		if v == nil {
			out.Fields[k] = nil
			continue
		}
		val := *v
		out.Fields[k] = &val
	}
	if s.PreviousStep != nil {
		prev := *s.PreviousStep
		out.PreviousStep = &prev
	}
	return &out
}

// Store persists conversation sessions keyed by user identity.
// Implementations must return a fresh empty session for unknown users.
// Callers are expected to serialize events per user; the store itself
// only guarantees safety of concurrent access for different users.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, userID int64, s *Session) error
	Clear(ctx context.Context, userID int64) error
}
