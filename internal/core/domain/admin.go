package domain

import "time"

// Admin password bounds in bytes. bcrypt ignores nothing past 72 bytes and
// refuses longer input.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// CheckPassword rejects passwords outside the accepted length bounds.
func CheckPassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

type Admin struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
