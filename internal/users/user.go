// Package users holds the customer model and its postgres repository.
package users

import (
	"database/sql"
	"time"

	"github.com/hamrahbot/sabt/internal/steps"
)

// Gender is the stored gender enum.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender maps a keyboard answer to the stored enum.
func ParseGender(answer string) (Gender, bool) {
	switch answer {
	case steps.GenderMale:
		return GenderMale, true
	case steps.GenderFemale:
		return GenderFemale, true
	}
	return "", false
}

// Label returns the user-facing Persian label of the gender.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return steps.GenderMale
	case GenderFemale:
		return steps.GenderFemale
	}
	return string(g)
}

// User is one customer row. TelegramID is nullable: operators may
// pre-seed customers by phone number before they ever open the bot,
// and the row is bound to a telegram account on first verification.
type User struct {
	ID             int64          `db:"id"`
	TelegramID     sql.NullInt64  `db:"telegram_id"`
	PhoneNumber    string         `db:"phone_number"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	NationalID     sql.NullString `db:"national_id"`
	BirthDate      string         `db:"birth_date"`
	Gender         Gender         `db:"gender"`
	Credit         int64          `db:"credit"`
	IsActive       bool           `db:"is_active"`
	ReferralCode   sql.NullString `db:"referral_code"`
	ReferrerID     sql.NullInt64  `db:"referrer_id"`
	LastVerifiedAt sql.NullTime   `db:"last_verified_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// Verified reports whether the user has completed a contact
// verification at least once.
func (u *User) Verified() bool {
	return u.TelegramID.Valid && u.LastVerifiedAt.Valid
}

// VerifiedWithin reports whether the last verification happened inside
// the given window ending at now.
func (u *User) VerifiedWithin(window time.Duration, now time.Time) bool {
	if !u.Verified() {
		return false
	}
	return now.Sub(u.LastVerifiedAt.Time) <= window
}

// FullName returns "first last" for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
