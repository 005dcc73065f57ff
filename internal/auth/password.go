package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	apperrors "storyframe-ai/pkg/errors"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

// HashPassword returns the hex-encoded SHA-256 digest of the password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func VerifyPassword(password, hash string) bool {
	return HashPassword(password) == hash
}

// ValidateUsername 用户名3-50位，仅字母、数字、下划线
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return apperrors.ErrInvalidUsername
	}
	return nil
}

// ValidatePassword 至少6位，必须同时包含字母和数字
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return apperrors.ErrWeakPassword
	}
	hasLetter, hasDigit := false, false
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.ErrWeakPassword
	}
	return nil
}
