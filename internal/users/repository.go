package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, telegram_id, phone_number, first_name, last_name,
	national_id, birth_date, gender, credit, is_active, referral_code,
	referrer_id, last_verified_at, created_at, updated_at`

// maxReferralAttempts bounds regeneration retries on referral code
// collisions during Create.
const maxReferralAttempts = 5

// Repository is the postgres-backed customer store.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ByTelegramID looks a customer up by bound telegram account.
func (r *Repository) ByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	var u User
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE telegram_id = $1`, userColumns)
	if err := r.db.GetContext(ctx, &u, query, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by telegram id: %w", err)
	}
	return &u, nil
}

// ByPhone looks a customer up by normalized phone number.
func (r *Repository) ByPhone(ctx context.Context, phone string) (*User, error) {
	var u User
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE phone_number = $1`, userColumns)
	if err := r.db.GetContext(ctx, &u, query, NormalizePhone(phone)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by phone: %w", err)
	}
	return &u, nil
}

// ByReferralCode resolves a referral code to its owner.
func (r *Repository) ByReferralCode(ctx context.Context, code string) (*User, error) {
	var u User
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE referral_code = $1`, userColumns)
	if err := r.db.GetContext(ctx, &u, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by referral code: %w", err)
	}
	return &u, nil
}

// CreateParams carries the fields of a new registration.
type CreateParams struct {
	TelegramID  int64
	PhoneNumber string
	FirstName   string
	LastName    string
	NationalID  *string
	BirthDate   string
	Gender      Gender
	ReferrerID  *int64
}

// Create inserts a fully registered customer with a freshly generated
// referral code, regenerating on code collisions. Phone and telegram
// conflicts surface as typed errors.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*User, error) {
	query := fmt.Sprintf(`
		INSERT INTO customers
			(telegram_id, phone_number, first_name, last_name, national_id,
			 birth_date, gender, referral_code, referrer_id, last_verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING %s`, userColumns)

	phone := NormalizePhone(p.PhoneNumber)
	var lastErr error
	for attempt := 0; attempt < maxReferralAttempts; attempt++ {
		code, err := NewReferralCode()
		if err != nil {
			return nil, err
		}
		var u User
		err = r.db.GetContext(ctx, &u, query,
			p.TelegramID, phone, p.FirstName, p.LastName, p.NationalID,
			p.BirthDate, p.Gender, code, p.ReferrerID)
		if err == nil {
			return &u, nil
		}
		lastErr = mapConflict(err)
		if errors.Is(lastErr, ErrReferralCodeExists) {
			continue
		}
		return nil, lastErr
	}
	return nil, fmt.Errorf("create user: %w", lastErr)
}

// ProfileUpdate names the editable profile fields. Nil members are
// left untouched; ClearNationalID removes the stored national id.
type ProfileUpdate struct {
	FirstName       *string
	LastName        *string
	NationalID      *string
	ClearNationalID bool
	BirthDate       *string
	Gender          *Gender
}

// UpdateProfile applies a partial profile edit to a customer.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE customers SET
			first_name  = COALESCE($2, first_name),
			last_name   = COALESCE($3, last_name),
			national_id = CASE WHEN $4 THEN NULL ELSE COALESCE($5, national_id) END,
			birth_date  = COALESCE($6, birth_date),
			gender      = COALESCE($7, gender),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING %s`, userColumns)

	var gender *string
	if upd.Gender != nil {
		g := string(*upd.Gender)
		gender = &g
	}
	var u User
	err := r.db.GetContext(ctx, &u, query, id,
		upd.FirstName, upd.LastName, upd.ClearNationalID, upd.NationalID,
		upd.BirthDate, gender)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &u, nil
}

// MarkVerified records a successful contact verification. On the first
// verification of a pre-seeded row it binds the telegram account and
// assigns the referral code; the row is locked so the first-time
// transition stays atomic. Referral code collisions restart the whole
// transaction with a fresh code.
func (r *Repository) MarkVerified(ctx context.Context, id, telegramID int64) (*User, error) {
	var lastErr error
	for attempt := 0; attempt < maxReferralAttempts; attempt++ {
		u, err := r.markVerifiedOnce(ctx, id, telegramID)
		if err == nil {
			return u, nil
		}
		lastErr = err
		if errors.Is(err, ErrReferralCodeExists) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("mark verified: %w", lastErr)
}

func (r *Repository) markVerifiedOnce(ctx context.Context, id, telegramID int64) (*User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mark verified: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current User
	lockQuery := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1 FOR UPDATE`, userColumns)
	if err := tx.GetContext(ctx, &current, lockQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mark verified: lock: %w", err)
	}
	if current.TelegramID.Valid && current.TelegramID.Int64 != telegramID {
		return nil, ErrTelegramIDExists
	}

	// The referral code is assigned exactly once, at the first
	// verification of a row that never got one, and never changes.
	var code *string
	if !current.ReferralCode.Valid {
		generated, err := NewReferralCode()
		if err != nil {
			return nil, err
		}
		code = &generated
	}

	var u User
	query := fmt.Sprintf(`
		UPDATE customers SET
			telegram_id = $2,
			referral_code = COALESCE(referral_code, $3),
			last_verified_at = NOW(),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, userColumns)
	if err := tx.GetContext(ctx, &u, query, id, telegramID, code); err != nil {
		return nil, mapConflict(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("mark verified: commit: %w", err)
	}
	return &u, nil
}

// AddCredit atomically increments a customer's credit balance and
// returns the new balance.
func (r *Repository) AddCredit(ctx context.Context, id int64, amount int64) (int64, error) {
	var credit int64
	query := `
		UPDATE customers SET credit = credit + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING credit`
	if err := r.db.GetContext(ctx, &credit, query, id, amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("add credit: %w", err)
	}
	return credit, nil
}

// Touch updates last_verified_at without rebinding the account, used
// when a still-bound user re-shares their contact.
func (r *Repository) Touch(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE customers SET last_verified_at = $2, updated_at = NOW() WHERE id = $1`,
		id, at)
	if err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
