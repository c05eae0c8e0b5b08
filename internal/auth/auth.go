// Package auth decides whether an incoming update may reach its
// handler. The decision is pure: classification of the update and the
// customer lookup happen at the transport layer, Decide only applies
// the access table.
package auth

import (
	"time"

	"github.com/hamrahbot/sabt/internal/users"
)

// EventKind classifies the incoming update.
type EventKind int

const (
	KindMessage EventKind = iota
	KindCallback
	KindContact
)

// Event is the pre-classified shape of one incoming update.
type Event struct {
	// HasActor is false for updates without a sender (channel posts,
	// service messages); such updates are never gated.
	HasActor bool
	UserID   int64
	Kind     EventKind

	// IsStart marks the /start command, including deep-link payloads.
	IsStart bool
	// IsRegistrationAction marks callbacks and texts that belong to
	// the registration flow itself (step navigation, confirmation,
	// cancellation).
	IsRegistrationAction bool
}

// Verdict is the outcome of the access decision.
type Verdict int

const (
	// VerdictDefer passes the update through untouched. Used for
	// actorless updates and for contact shares, which must always
	// reach the verification handler.
	VerdictDefer Verdict = iota
	// VerdictAllow admits a verified customer; the transport attaches
	// the customer record for downstream handlers.
	VerdictAllow
	// VerdictChallenge stops the update and asks a known customer to
	// re-share their contact because verification is missing or stale.
	VerdictChallenge
	// VerdictRegister routes an unknown user into the registration
	// flow instead of their requested action.
	VerdictRegister
	// VerdictBlock stops the update with a registration notice.
	VerdictBlock
	// VerdictDisabled stops the update because the account was
	// deactivated by an operator.
	VerdictDisabled
)

func (v Verdict) String() string {
	switch v {
	case VerdictDefer:
		return "defer"
	case VerdictAllow:
		return "allow"
	case VerdictChallenge:
		return "challenge"
	case VerdictRegister:
		return "register"
	case VerdictBlock:
		return "block"
	case VerdictDisabled:
		return "disabled"
	}
	return "unknown"
}

// Engine applies the access table. Window is how long a contact
// verification stays fresh; Now is injectable for tests and defaults
// to time.Now.
type Engine struct {
	Window time.Duration
	Now    func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Decide returns the verdict for an event. rec is the customer row
// bound to the event's telegram account, nil when none exists.
// inFlight reports whether the user has a conversation in progress.
func (e *Engine) Decide(ev Event, rec *users.User, inFlight bool) Verdict {
	if !ev.HasActor {
		return VerdictDefer
	}
	if ev.Kind == KindContact {
		// Contact shares carry the verification itself and must reach
		// the contact handler even for unknown or stale users.
		return VerdictDefer
	}

	if rec == nil {
		if inFlight || ev.IsStart || ev.IsRegistrationAction {
			return VerdictRegister
		}
		return VerdictBlock
	}

	if !rec.IsActive {
		return VerdictDisabled
	}
	if rec.VerifiedWithin(e.Window, e.now()) {
		return VerdictAllow
	}
	return VerdictChallenge
}
