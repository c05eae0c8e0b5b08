package users

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const referralCodeBytes = 6

// NewReferralCode generates a short URL-safe referral code. Collisions
// are resolved by the repository retrying on the unique constraint.
func NewReferralCode() (string, error) {
	buf := make([]byte, referralCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("referral code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
