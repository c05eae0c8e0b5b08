// Package flow implements the registration conversation engine. The
// engine is transport-free: it consumes classified inputs, mutates the
// conversation session and returns typed results that the telegram
// layer renders. All persistence goes through the Directory and the
// session Store.
package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hamrahbot/sabt/core/logger"
	"github.com/hamrahbot/sabt/internal/session"
	"github.com/hamrahbot/sabt/internal/steps"
	"github.com/hamrahbot/sabt/internal/users"
)

// Directory is the subset of the customer repository the flow needs.
type Directory interface {
	ByPhone(ctx context.Context, phone string) (*users.User, error)
	ByReferralCode(ctx context.Context, code string) (*users.User, error)
	Create(ctx context.Context, p users.CreateParams) (*users.User, error)
	MarkVerified(ctx context.Context, id, telegramID int64) (*users.User, error)
	UpdateProfile(ctx context.Context, id int64, upd users.ProfileUpdate) (*users.User, error)
	AddCredit(ctx context.Context, id, amount int64) (int64, error)
}

// Notifier delivers best-effort messages outside the current update,
// such as the referral reward notice to the referrer.
type Notifier interface {
	ReferralReward(ctx context.Context, telegramID, amount, balance int64) error
}

// Sentinel errors for callers that misdrive the conversation.
var (
	// ErrNoConversation: the operation needs an in-flight conversation.
	ErrNoConversation = errors.New("no conversation in progress")
	// ErrNoPendingPhone: Accept was called before a contact was shared.
	ErrNoPendingPhone = errors.New("no pending phone number")
)

// Engine drives registration conversations.
type Engine struct {
	sessions session.Store
	dir      Directory
	notifier Notifier
	reward   int64
}

// New constructs an Engine. reward is the credit granted to a referrer
// per completed registration; zero disables rewarding. notifier may be
// nil when rewards are disabled.
func New(store session.Store, dir Directory, notifier Notifier, reward int64) *Engine {
	return &Engine{sessions: store, dir: dir, notifier: notifier, reward: reward}
}

// InProgress reports whether the user has a conversation that should
// swallow free-text input.
func (e *Engine) InProgress(ctx context.Context, userID int64) (bool, error) {
	s, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	switch s.State {
	case session.StateStepInProgress, session.StateAwaitingDecision, session.StateAwaitingConfirmation:
		return true, nil
	}
	return false, nil
}

// AttachReferrer records a referral deep-link payload on the session.
// Unknown codes are dropped silently; the sender never learns whether
// a code was valid.
func (e *Engine) AttachReferrer(ctx context.Context, userID int64, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	if _, err := e.dir.ByReferralCode(ctx, code); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			logger.Debug(ctx, "flow", "referral_code_ignored",
				slog.String("code", logger.Sanitize(code)))
			return nil
		}
		return err
	}
	s, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	s.ReferrerCode = code
	return e.sessions.Put(ctx, userID, s)
}

// SubmitContact handles a shared contact. A phone already in the
// directory re-verifies its owner; an unknown phone opens the
// registration decision.
func (e *Engine) SubmitContact(ctx context.Context, userID, telegramID int64, phone string) (*Result, error) {
	normalized := users.NormalizePhone(phone)

	existing, err := e.dir.ByPhone(ctx, normalized)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		verified, err := e.dir.MarkVerified(ctx, existing.ID, telegramID)
		if err != nil {
			return nil, err
		}
		if err := e.sessions.Clear(ctx, userID); err != nil {
			return nil, err
		}
		return &Result{Kind: Verified, User: verified}, nil
	}

	s, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.State = session.StateAwaitingDecision
	s.PhoneNumber = normalized
	if err := e.sessions.Put(ctx, userID, s); err != nil {
		return nil, err
	}
	return &Result{Kind: AskDecision}, nil
}

// Accept starts the step chain after the user agrees to register.
func (e *Engine) Accept(ctx context.Context, userID int64) (*Result, error) {
	s, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.State != session.StateAwaitingDecision {
		return nil, ErrNoConversation
	}
	if s.PhoneNumber == "" {
		return nil, ErrNoPendingPhone
	}
	s.State = session.StateStepInProgress
	s.CurrentStep = steps.First()
	s.PreviousStep = nil
	if err := e.sessions.Put(ctx, userID, s); err != nil {
		return nil, err
	}
	return prompt(s), nil
}

// Answer feeds a free-text answer into the current step. Valid answers
// advance the chain; "/skip" advances only optional steps, otherwise
// it is treated as an ordinary answer and rejected by the validator.
func (e *Engine) Answer(ctx context.Context, userID int64, text string) (*Result, error) {
	s, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.State != session.StateStepInProgress {
		return nil, ErrNoConversation
	}
	def, ok := steps.Lookup(s.CurrentStep)
	if !ok {
		return e.fail(ctx, userID, FailInternal)
	}

	answer := strings.TrimSpace(text)
	switch {
	case def.Optional && answer == steps.SkipToken:
		s.SetField(s.CurrentStep, nil)
	case def.Validate(answer):
		s.SetField(s.CurrentStep, &answer)
	default:
		return invalid(s), nil
	}

	cur := s.CurrentStep
	if def.Next == steps.Confirmation {
		s.State = session.StateAwaitingConfirmation
		if err := e.sessions.Put(ctx, userID, s); err != nil {
			return nil, err
		}
		return &Result{Kind: Summary, Session: s.Clone()}, nil
	}
	s.CurrentStep = def.Next
	s.PreviousStep = &cur
	if err := e.sessions.Put(ctx, userID, s); err != nil {
		return nil, err
	}
	return prompt(s), nil
}

// Back re-prompts the previous step. Already collected answers are
// kept; answering again overwrites them.
func (e *Engine) Back(ctx context.Context, userID int64) (*Result, error) {
	s, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.State != session.StateStepInProgress {
		return nil, ErrNoConversation
	}
	if s.PreviousStep == nil {
		// Already at the first step; show it again.
		return prompt(s), nil
	}
	s.CurrentStep = *s.PreviousStep
	if prev, ok := steps.Prev(s.CurrentStep); ok {
		s.PreviousStep = &prev
	} else {
		s.PreviousStep = nil
	}
	if err := e.sessions.Put(ctx, userID, s); err != nil {
		return nil, err
	}
	return prompt(s), nil
}

// JumpTo re-opens a single step from the confirmation summary. After
// the step is answered the chain continues forward through its
// configured successors.
func (e *Engine) JumpTo(ctx context.Context, userID int64, step steps.Step) (*Result, error) {
	s, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.State != session.StateAwaitingConfirmation {
		return nil, ErrNoConversation
	}
	if !step.Valid() {
		return nil, ErrNoConversation
	}
	s.State = session.StateStepInProgress
	s.CurrentStep = step
	if prev, ok := steps.Prev(step); ok {
		s.PreviousStep = &prev
	} else {
		s.PreviousStep = nil
	}
	if err := e.sessions.Put(ctx, userID, s); err != nil {
		return nil, err
	}
	return prompt(s), nil
}

// Confirm persists the conversation. For a fresh registration it
// creates the customer and credits the referrer; when actor is set and
// the session is in edit mode it updates the actor's profile instead.
func (e *Engine) Confirm(ctx context.Context, userID, telegramID int64, actor *users.User) (*Result, error) {
	s, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.State != session.StateAwaitingConfirmation {
		return nil, ErrNoConversation
	}

	fields, reason := collectFields(s)
	if reason != FailNone {
		return e.fail(ctx, userID, reason)
	}

	if s.IsEditing && actor != nil {
		return e.confirmEdit(ctx, userID, actor.ID, fields)
	}
	return e.confirmCreate(ctx, userID, telegramID, s, fields)
}

// Cancel aborts the conversation unconditionally.
func (e *Engine) Cancel(ctx context.Context, userID int64) (*Result, error) {
	if err := e.sessions.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return &Result{Kind: Cancelled}, nil
}

// BeginEdit seeds a confirmation-state session from an existing
// profile so single fields can be re-opened with JumpTo.
func (e *Engine) BeginEdit(ctx context.Context, userID int64, u *users.User) (*Result, error) {
	s := session.New()
	s.State = session.StateAwaitingConfirmation
	s.IsEditing = true
	s.PhoneNumber = u.PhoneNumber

	first, last := u.FirstName, u.LastName
	s.SetField(steps.FirstName, &first)
	s.SetField(steps.LastName, &last)
	if u.NationalID.Valid {
		nid := u.NationalID.String
		s.SetField(steps.NationalID, &nid)
	} else {
		s.SetField(steps.NationalID, nil)
	}
	birth := u.BirthDate
	s.SetField(steps.BirthDate, &birth)
	gender := u.Gender.Label()
	s.SetField(steps.Gender, &gender)

	if err := e.sessions.Put(ctx, userID, s); err != nil {
		return nil, err
	}
	return &Result{Kind: Summary, Session: s.Clone()}, nil
}

type collected struct {
	firstName  string
	lastName   string
	nationalID *string
	birthDate  string
	gender     users.Gender
}

// collectFields validates that every required step has an answer and
// maps the gender label to its stored enum.
func collectFields(s *session.Session) (collected, FailReason) {
	var c collected
	for _, st := range steps.All() {
		def, _ := steps.Lookup(st)
		v, ok := s.Field(st)
		if !ok || (v == nil && !def.Optional) {
			return c, FailIncomplete
		}
		switch st {
		case steps.FirstName:
			c.firstName = *v
		case steps.LastName:
			c.lastName = *v
		case steps.NationalID:
			c.nationalID = v
		case steps.BirthDate:
			c.birthDate = *v
		case steps.Gender:
			g, ok := users.ParseGender(*v)
			if !ok {
				return c, FailIncomplete
			}
			c.gender = g
		}
	}
	return c, FailNone
}

func (e *Engine) confirmCreate(ctx context.Context, userID, telegramID int64, s *session.Session, c collected) (*Result, error) {
	if s.PhoneNumber == "" {
		return e.fail(ctx, userID, FailIncomplete)
	}

	var referrer *users.User
	if s.ReferrerCode != "" {
		ref, err := e.dir.ByReferralCode(ctx, s.ReferrerCode)
		if err != nil && !errors.Is(err, users.ErrNotFound) {
			return nil, err
		}
		referrer = ref
	}

	params := users.CreateParams{
		TelegramID:  telegramID,
		PhoneNumber: s.PhoneNumber,
		FirstName:   c.firstName,
		LastName:    c.lastName,
		NationalID:  c.nationalID,
		BirthDate:   c.birthDate,
		Gender:      c.gender,
	}
	if referrer != nil {
		params.ReferrerID = &referrer.ID
	}

	created, err := e.dir.Create(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrPhoneExists), errors.Is(err, users.ErrTelegramIDExists):
			return e.fail(ctx, userID, FailDuplicatePhone)
		default:
			logger.Error(ctx, "flow", "registration_create_failed", slog.Any("err", err))
			return e.fail(ctx, userID, FailInternal)
		}
	}

	// Only verified referrers are rewarded; attribution is recorded
	// either way.
	if referrer != nil && referrer.Verified() && e.reward > 0 {
		e.creditReferrer(ctx, referrer, created)
	}

	if err := e.sessions.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return &Result{Kind: Committed, User: created}, nil
}

func (e *Engine) confirmEdit(ctx context.Context, userID, rowID int64, c collected) (*Result, error) {
	upd := users.ProfileUpdate{
		FirstName: &c.firstName,
		LastName:  &c.lastName,
		BirthDate: &c.birthDate,
		Gender:    &c.gender,
	}
	if c.nationalID != nil {
		upd.NationalID = c.nationalID
	} else {
		upd.ClearNationalID = true
	}

	updated, err := e.dir.UpdateProfile(ctx, rowID, upd)
	if err != nil {
		logger.Error(ctx, "flow", "profile_update_failed", slog.Any("err", err))
		return e.fail(ctx, userID, FailInternal)
	}
	if err := e.sessions.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return &Result{Kind: Updated, User: updated}, nil
}

// creditReferrer grants the reward and notifies the referrer. Both
// steps are best-effort: a completed registration is never rolled back
// because the reward or its notice failed.
func (e *Engine) creditReferrer(ctx context.Context, referrer, created *users.User) {
	balance, err := e.dir.AddCredit(ctx, referrer.ID, e.reward)
	if err != nil {
		logger.Error(ctx, "flow", "referral_reward_failed",
			slog.Int64("referrer_id", referrer.ID),
			slog.Int64("new_user_id", created.ID),
			slog.Any("err", err))
		return
	}
	logger.Info(ctx, "flow", "referral_reward_granted",
		slog.Int64("referrer_id", referrer.ID),
		slog.Int64("new_user_id", created.ID),
		slog.Int64("amount", e.reward),
		slog.Int64("balance", balance))

	if e.notifier == nil || !referrer.TelegramID.Valid {
		return
	}
	if err := e.notifier.ReferralReward(ctx, referrer.TelegramID.Int64, e.reward, balance); err != nil {
		logger.Warn(ctx, "flow", "referral_notice_failed",
			slog.Int64("referrer_id", referrer.ID), slog.Any("err", err))
	}
}

func (e *Engine) fail(ctx context.Context, userID int64, reason FailReason) (*Result, error) {
	if err := e.sessions.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return &Result{Kind: Failed, Reason: reason}, nil
}
