package users

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamrahbot/sabt/internal/steps"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+989121234567":     "09121234567",
		"00989121234567":    "09121234567",
		"989121234567":      "09121234567",
		"09121234567":       "09121234567",
		"+98 912 123 45 67": "09121234567",
		"0912-123-4567":     "09121234567",
		"12345":             "12345", // unrecognized shape passes through
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), "input %q", in)
	}
}

func TestNewReferralCodeShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := NewReferralCode()
		require.NoError(t, err)
		assert.Len(t, code, 8, "6 bytes encode to 8 url-safe chars")
		assert.NotContains(t, code, "+")
		assert.NotContains(t, code, "/")
		assert.NotContains(t, code, "=")
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90, "codes should be effectively unique")
}

func TestParseGender(t *testing.T) {
	g, ok := ParseGender(steps.GenderMale)
	require.True(t, ok)
	assert.Equal(t, GenderMale, g)
	assert.Equal(t, steps.GenderMale, g.Label())

	g, ok = ParseGender(steps.GenderFemale)
	require.True(t, ok)
	assert.Equal(t, GenderFemale, g)

	_, ok = ParseGender("male")
	assert.False(t, ok, "stored enum is not a keyboard answer")
}

func TestVerifiedWithin(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	u := &User{
		TelegramID:     sql.NullInt64{Int64: 42, Valid: true},
		LastVerifiedAt: sql.NullTime{Time: now.Add(-29 * 24 * time.Hour), Valid: true},
	}
	window := 30 * 24 * time.Hour

	assert.True(t, u.VerifiedWithin(window, now))

	u.LastVerifiedAt.Time = now.Add(-31 * 24 * time.Hour)
	assert.False(t, u.VerifiedWithin(window, now))

	u.LastVerifiedAt.Valid = false
	assert.False(t, u.Verified())
	assert.False(t, u.VerifiedWithin(window, now))
}
