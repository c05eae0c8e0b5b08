package users

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when no customer matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrPhoneExists is returned when a create collides on phone number.
	ErrPhoneExists = errors.New("phone number already registered")
	// ErrReferralCodeExists signals a referral code collision; callers
	// regenerate and retry.
	ErrReferralCodeExists = errors.New("referral code already taken")
	// ErrTelegramIDExists is returned when the telegram account is
	// already bound to another customer row.
	ErrTelegramIDExists = errors.New("telegram account already registered")
)

// mapConflict translates a postgres unique violation into a typed
// error based on the violated constraint.
func mapConflict(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}
	switch pqErr.Constraint {
	case "customers_phone_number_key":
		return ErrPhoneExists
	case "customers_referral_code_key":
		return ErrReferralCodeExists
	case "customers_telegram_id_key":
		return ErrTelegramIDExists
	}
	return err
}
