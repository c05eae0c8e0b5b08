package bot

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamrahbot/sabt/internal/session"
	"github.com/hamrahbot/sabt/internal/steps"
	"github.com/hamrahbot/sabt/internal/users"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"5000", 5000, true},
		{" 5000 ", 5000, true},
		{"5,000", 5000, true},
		{"۵۰۰۰", 5000, true},
		{"٥٠٠٠", 5000, true},
		{"۱۲۳۴۵", 12345, true},
		{"0", 0, false},
		{"-100", 0, false},
		{"abc", 0, false},
		{"12a", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestRenderSummaryEscapesAndMarksSkipped(t *testing.T) {
	s := session.New()
	first := "<b>علی</b>"
	s.SetField(steps.FirstName, &first)
	s.SetField(steps.NationalID, nil)
	s.PhoneNumber = "09121234567"

	out := renderSummary(s)
	assert.Contains(t, out, "&lt;b&gt;علی&lt;/b&gt;")
	assert.NotContains(t, out, "<b>علی</b>")
	assert.Contains(t, out, textSummarySkipped)
	assert.Contains(t, out, "09121234567")
}

func TestRenderProfile(t *testing.T) {
	u := &users.User{
		FirstName:    "علی",
		LastName:     "رضایی",
		PhoneNumber:  "09121234567",
		BirthDate:    "1375/05/14",
		Gender:       users.GenderMale,
		Credit:       2500,
		ReferralCode: sql.NullString{String: "abc123", Valid: true},
	}
	out := renderProfile(u)
	assert.Contains(t, out, "علی")
	assert.Contains(t, out, steps.GenderMale)
	assert.Contains(t, out, "2500")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, textSummarySkipped, "missing national id shown as skipped")
}

func TestSummaryKeyboardCoversAllSteps(t *testing.T) {
	markup := summaryKeyboard()
	// One edit row per step plus the confirm/cancel row.
	require.Len(t, markup.InlineKeyboard, len(steps.All())+1)
	last := markup.InlineKeyboard[len(markup.InlineKeyboard)-1]
	require.Len(t, last, 2)
	assert.Equal(t, textBtnConfirm, last[0].Text)
}

func TestRegistrationCallbacksCoverConversationKeys(t *testing.T) {
	for _, key := range []string{cbStartRegistration, cbCancelDecision, cbStepBack, cbEditStep, cbConfirm, cbCancelFlow} {
		assert.True(t, registrationCallbacks[key], "key %s must pass the gate", key)
	}
	assert.False(t, registrationCallbacks[cbChargeCredit])
	assert.False(t, registrationCallbacks[cbVerifyPayment])
}
