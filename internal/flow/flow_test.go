package flow

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamrahbot/sabt/internal/session"
	"github.com/hamrahbot/sabt/internal/steps"
	"github.com/hamrahbot/sabt/internal/users"
)

type fakeDirectory struct {
	byPhone    map[string]*users.User
	byCode     map[string]*users.User
	created    []users.CreateParams
	credits    map[int64]int64
	verified   []int64
	createErr  error
	nextID     int64
	updateCall *users.ProfileUpdate
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		byPhone: map[string]*users.User{},
		byCode:  map[string]*users.User{},
		credits: map[int64]int64{},
		nextID:  100,
	}
}

func (f *fakeDirectory) ByPhone(_ context.Context, phone string) (*users.User, error) {
	if u, ok := f.byPhone[phone]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

func (f *fakeDirectory) ByReferralCode(_ context.Context, code string) (*users.User, error) {
	if u, ok := f.byCode[code]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

func (f *fakeDirectory) Create(_ context.Context, p users.CreateParams) (*users.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, p)
	f.nextID++
	u := &users.User{
		ID:          f.nextID,
		TelegramID:  sql.NullInt64{Int64: p.TelegramID, Valid: true},
		PhoneNumber: p.PhoneNumber,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		BirthDate:   p.BirthDate,
		Gender:      p.Gender,
	}
	return u, nil
}

func (f *fakeDirectory) MarkVerified(_ context.Context, id, telegramID int64) (*users.User, error) {
	f.verified = append(f.verified, id)
	return &users.User{ID: id, TelegramID: sql.NullInt64{Int64: telegramID, Valid: true}}, nil
}

func (f *fakeDirectory) UpdateProfile(_ context.Context, id int64, upd users.ProfileUpdate) (*users.User, error) {
	f.updateCall = &upd
	return &users.User{ID: id}, nil
}

func (f *fakeDirectory) AddCredit(_ context.Context, id, amount int64) (int64, error) {
	f.credits[id] += amount
	return f.credits[id], nil
}

type fakeNotifier struct {
	notices []int64
	err     error
}

func (n *fakeNotifier) ReferralReward(_ context.Context, telegramID, _, _ int64) error {
	n.notices = append(n.notices, telegramID)
	return n.err
}

func testEngine(t *testing.T) (*Engine, *fakeDirectory, *fakeNotifier, session.Store) {
	t.Helper()
	dir := newFakeDirectory()
	notifier := &fakeNotifier{}
	store := session.NewMemoryStore()
	return New(store, dir, notifier, 500), dir, notifier, store
}

const (
	userID     = int64(1)
	telegramID = int64(9000)
)

func answerAllSteps(t *testing.T, e *Engine) *Result {
	t.Helper()
	ctx := context.Background()

	answers := []string{"علی", "رضایی", "/skip", "1375/05/14", steps.GenderMale}
	var res *Result
	for _, a := range answers {
		var err error
		res, err = e.Answer(ctx, userID, a)
		require.NoError(t, err)
		require.NotEqual(t, Invalid, res.Kind, "answer %q rejected", a)
	}
	return res
}

func startRegistration(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()

	res, err := e.SubmitContact(ctx, userID, telegramID, "+989121234567")
	require.NoError(t, err)
	require.Equal(t, AskDecision, res.Kind)

	res, err = e.Accept(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, Prompt, res.Kind)
	require.Equal(t, steps.FirstName, res.Step)
	require.False(t, res.CanGoBack)
}

func TestRegistrationRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, dir, _, _ := testEngine(t)

	startRegistration(t, e)
	res := answerAllSteps(t, e)
	require.Equal(t, Summary, res.Kind)
	require.NotNil(t, res.Session)
	assert.Equal(t, "علی", res.Session.FieldString(steps.FirstName))

	res, err := e.Confirm(ctx, userID, telegramID, nil)
	require.NoError(t, err)
	require.Equal(t, Committed, res.Kind)
	require.Len(t, dir.created, 1)

	p := dir.created[0]
	assert.Equal(t, "09121234567", p.PhoneNumber, "phone stored normalized")
	assert.Equal(t, users.GenderMale, p.Gender)
	assert.Nil(t, p.NationalID, "skipped optional step stays empty")
	assert.Nil(t, p.ReferrerID)

	in, err := e.InProgress(ctx, userID)
	require.NoError(t, err)
	assert.False(t, in, "session cleared after commit")
}

func TestSkipOnRequiredStepNeverAdvances(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := testEngine(t)
	startRegistration(t, e)

	res, err := e.Answer(ctx, userID, steps.SkipToken)
	require.NoError(t, err)
	assert.Equal(t, Invalid, res.Kind)
	assert.Equal(t, steps.FirstName, res.Step, "still on the first step")
}

func TestBackNavigationKeepsAnswers(t *testing.T) {
	ctx := context.Background()
	e, _, _, store := testEngine(t)
	startRegistration(t, e)

	res, err := e.Answer(ctx, userID, "علی")
	require.NoError(t, err)
	require.Equal(t, steps.LastName, res.Step)
	require.True(t, res.CanGoBack)

	res, err = e.Back(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, Prompt, res.Kind)
	assert.Equal(t, steps.FirstName, res.Step)

	s, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "علی", s.FieldString(steps.FirstName), "answer kept on back")

	res, err = e.Answer(ctx, userID, "حسین")
	require.NoError(t, err)
	assert.Equal(t, steps.LastName, res.Step)

	s, err = store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "حسین", s.FieldString(steps.FirstName), "re-answer overwrites")
}

func TestJumpFromConfirmationFlowsForward(t *testing.T) {
	ctx := context.Background()
	e, _, _, _ := testEngine(t)
	startRegistration(t, e)
	answerAllSteps(t, e)

	res, err := e.JumpTo(ctx, userID, steps.BirthDate)
	require.NoError(t, err)
	require.Equal(t, Prompt, res.Kind)
	require.Equal(t, steps.BirthDate, res.Step)

	// Completing the jumped step continues through the successor, not
	// straight back to the summary.
	res, err = e.Answer(ctx, userID, "1370/01/01")
	require.NoError(t, err)
	assert.Equal(t, Prompt, res.Kind)
	assert.Equal(t, steps.Gender, res.Step)

	res, err = e.Answer(ctx, userID, steps.GenderFemale)
	require.NoError(t, err)
	assert.Equal(t, Summary, res.Kind)
	assert.Equal(t, "1370/01/01", res.Session.FieldString(steps.BirthDate))
}

func TestReferralRewardGrantedExactlyOnce(t *testing.T) {
	ctx := context.Background()
	e, dir, notifier, _ := testEngine(t)

	referrer := &users.User{
		ID:             50,
		TelegramID:     sql.NullInt64{Int64: 7777, Valid: true},
		IsActive:       true,
		ReferralCode:   sql.NullString{String: "abc123", Valid: true},
		LastVerifiedAt: sql.NullTime{Time: time.Now(), Valid: true},
	}
	dir.byCode["abc123"] = referrer

	require.NoError(t, e.AttachReferrer(ctx, userID, "abc123"))
	startRegistration(t, e)
	answerAllSteps(t, e)

	res, err := e.Confirm(ctx, userID, telegramID, nil)
	require.NoError(t, err)
	require.Equal(t, Committed, res.Kind)

	require.Len(t, dir.created, 1)
	require.NotNil(t, dir.created[0].ReferrerID)
	assert.Equal(t, int64(50), *dir.created[0].ReferrerID)
	assert.Equal(t, int64(500), dir.credits[50])
	assert.Equal(t, []int64{7777}, notifier.notices)

	// A second confirm has no session to work with.
	_, err = e.Confirm(ctx, userID, telegramID, nil)
	assert.ErrorIs(t, err, ErrNoConversation)
	assert.Equal(t, int64(500), dir.credits[50], "reward not granted twice")
}

func TestUnknownReferralCodeSilentlyDropped(t *testing.T) {
	ctx := context.Background()
	e, dir, _, store := testEngine(t)

	require.NoError(t, e.AttachReferrer(ctx, userID, "nope99"))
	s, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, s.ReferrerCode)

	startRegistration(t, e)
	answerAllSteps(t, e)
	res, err := e.Confirm(ctx, userID, telegramID, nil)
	require.NoError(t, err)
	require.Equal(t, Committed, res.Kind)
	assert.Nil(t, dir.created[0].ReferrerID)
}

func TestKnownPhoneReVerifies(t *testing.T) {
	ctx := context.Background()
	e, dir, _, _ := testEngine(t)

	dir.byPhone["09121234567"] = &users.User{ID: 3, PhoneNumber: "09121234567"}

	res, err := e.SubmitContact(ctx, userID, telegramID, "+98 912 123 45 67")
	require.NoError(t, err)
	assert.Equal(t, Verified, res.Kind)
	assert.Equal(t, []int64{3}, dir.verified)
}

func TestDuplicatePhoneOnCommitClearsSession(t *testing.T) {
	ctx := context.Background()
	e, dir, _, _ := testEngine(t)
	startRegistration(t, e)
	answerAllSteps(t, e)

	dir.createErr = users.ErrPhoneExists
	res, err := e.Confirm(ctx, userID, telegramID, nil)
	require.NoError(t, err)
	assert.Equal(t, Failed, res.Kind)
	assert.Equal(t, FailDuplicatePhone, res.Reason)

	in, err := e.InProgress(ctx, userID)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestCancelClearsUnconditionally(t *testing.T) {
	ctx := context.Background()
	e, dir, _, _ := testEngine(t)
	startRegistration(t, e)

	res, err := e.Cancel(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, Cancelled, res.Kind)
	assert.Empty(t, dir.created)

	in, err := e.InProgress(ctx, userID)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestAcceptWithoutPendingPhone(t *testing.T) {
	ctx := context.Background()
	e, _, _, store := testEngine(t)

	s := session.New()
	s.State = session.StateAwaitingDecision
	require.NoError(t, store.Put(ctx, userID, s))

	_, err := e.Accept(ctx, userID)
	assert.ErrorIs(t, err, ErrNoPendingPhone)
}

func TestBeginEditUpdatesProfile(t *testing.T) {
	ctx := context.Background()
	e, dir, _, _ := testEngine(t)

	u := &users.User{
		ID:          8,
		TelegramID:  sql.NullInt64{Int64: telegramID, Valid: true},
		PhoneNumber: "09121234567",
		FirstName:   "علی",
		LastName:    "رضایی",
		BirthDate:   "1375/05/14",
		Gender:      users.GenderMale,
	}

	res, err := e.BeginEdit(ctx, userID, u)
	require.NoError(t, err)
	require.Equal(t, Summary, res.Kind)

	res, err = e.JumpTo(ctx, userID, steps.FirstName)
	require.NoError(t, err)
	require.Equal(t, Prompt, res.Kind)

	answers := []string{"مریم", "رضایی", "/skip", "1375/05/14", steps.GenderFemale}
	for _, a := range answers {
		res, err = e.Answer(ctx, userID, a)
		require.NoError(t, err)
	}
	require.Equal(t, Summary, res.Kind)

	res, err = e.Confirm(ctx, userID, telegramID, u)
	require.NoError(t, err)
	assert.Equal(t, Updated, res.Kind)
	assert.Empty(t, dir.created, "edit never creates a row")
	require.NotNil(t, dir.updateCall)
	assert.Equal(t, "مریم", *dir.updateCall.FirstName)
	assert.True(t, dir.updateCall.ClearNationalID)
	assert.Equal(t, users.GenderFemale, *dir.updateCall.Gender)
}

func TestConfirmWithMissingFieldsFails(t *testing.T) {
	ctx := context.Background()
	e, _, _, store := testEngine(t)

	s := session.New()
	s.State = session.StateAwaitingConfirmation
	s.PhoneNumber = "09121234567"
	first := "علی"
	s.SetField(steps.FirstName, &first)
	require.NoError(t, store.Put(ctx, userID, s))

	res, err := e.Confirm(ctx, userID, telegramID, nil)
	require.NoError(t, err)
	assert.Equal(t, Failed, res.Kind)
	assert.Equal(t, FailIncomplete, res.Reason)
}
