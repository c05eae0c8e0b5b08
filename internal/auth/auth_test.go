package auth

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hamrahbot/sabt/internal/users"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return &Engine{
		Window: 30 * 24 * time.Hour,
		Now:    func() time.Time { return testNow },
	}
}

func verifiedUser(ago time.Duration) *users.User {
	return &users.User{
		TelegramID:     sql.NullInt64{Int64: 42, Valid: true},
		IsActive:       true,
		LastVerifiedAt: sql.NullTime{Time: testNow.Add(-ago), Valid: true},
	}
}

func TestDecideTable(t *testing.T) {
	e := testEngine()

	cases := []struct {
		name     string
		ev       Event
		rec      *users.User
		inFlight bool
		want     Verdict
	}{
		{
			name: "no actor passes through",
			ev:   Event{HasActor: false},
			want: VerdictDefer,
		},
		{
			name: "contact always reaches verification handler",
			ev:   Event{HasActor: true, UserID: 1, Kind: KindContact},
			want: VerdictDefer,
		},
		{
			name: "fresh verification allowed",
			ev:   Event{HasActor: true, UserID: 42, Kind: KindMessage},
			rec:  verifiedUser(29 * 24 * time.Hour),
			want: VerdictAllow,
		},
		{
			name: "stale verification challenged even when active",
			ev:   Event{HasActor: true, UserID: 42, Kind: KindMessage},
			rec:  verifiedUser(31 * 24 * time.Hour),
			want: VerdictChallenge,
		},
		{
			name: "never verified row challenged",
			ev:   Event{HasActor: true, UserID: 42, Kind: KindMessage},
			rec:  &users.User{TelegramID: sql.NullInt64{Int64: 42, Valid: true}, IsActive: true},
			want: VerdictChallenge,
		},
		{
			name: "deactivated account blocked even with fresh verification",
			ev:   Event{HasActor: true, UserID: 42, Kind: KindMessage},
			rec: func() *users.User {
				u := verifiedUser(time.Hour)
				u.IsActive = false
				return u
			}(),
			want: VerdictDisabled,
		},
		{
			name: "unknown user on /start routed to registration",
			ev:   Event{HasActor: true, UserID: 7, Kind: KindMessage, IsStart: true},
			want: VerdictRegister,
		},
		{
			name: "unknown user on registration callback routed",
			ev:   Event{HasActor: true, UserID: 7, Kind: KindCallback, IsRegistrationAction: true},
			want: VerdictRegister,
		},
		{
			name:     "unknown user mid-conversation routed",
			ev:       Event{HasActor: true, UserID: 7, Kind: KindMessage},
			inFlight: true,
			want:     VerdictRegister,
		},
		{
			name: "unknown user elsewhere blocked",
			ev:   Event{HasActor: true, UserID: 7, Kind: KindMessage},
			want: VerdictBlock,
		},
		{
			name:     "stale verification challenged even mid-conversation",
			ev:       Event{HasActor: true, UserID: 42, Kind: KindMessage},
			rec:      verifiedUser(60 * 24 * time.Hour),
			inFlight: true,
			want:     VerdictChallenge,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Decide(tc.ev, tc.rec, tc.inFlight))
		})
	}
}

func TestDecideWindowBoundaryInclusive(t *testing.T) {
	e := testEngine()
	ev := Event{HasActor: true, UserID: 42, Kind: KindMessage}

	assert.Equal(t, VerdictAllow, e.Decide(ev, verifiedUser(e.Window), false))
	assert.Equal(t, VerdictChallenge, e.Decide(ev, verifiedUser(e.Window+time.Second), false))
}

func TestNowDefaultsToWallClock(t *testing.T) {
	e := &Engine{Window: time.Hour}
	rec := &users.User{
		TelegramID:     sql.NullInt64{Int64: 1, Valid: true},
		IsActive:       true,
		LastVerifiedAt: sql.NullTime{Time: time.Now(), Valid: true},
	}
	ev := Event{HasActor: true, UserID: 1, Kind: KindMessage}
	assert.Equal(t, VerdictAllow, e.Decide(ev, rec, false))
}
