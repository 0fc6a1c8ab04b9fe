// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token format")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// MinPasswordLength is enforced when an owner account is created
const MinPasswordLength = 8

// GenerateID returns a random UUID string for database rows
func GenerateID() string {
	return uuid.NewString()
}

// GenerateSessionToken creates a random bearer token for a login session
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32) // 256 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// HashSessionToken derives the value stored in the sessions table.
// Only the HMAC is persisted, so a leaked database does not yield usable tokens.
func HashSessionToken(token, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// ParseBearerToken extracts the token from an Authorization header value
func ParseBearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrInvalidToken
	}
	return token, nil
}

// HashPassword hashes an owner password with bcrypt
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password with its bcrypt hash
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// missingAccountHash is compared against when no owner matches the email,
// so an unknown address costs the same bcrypt work as a wrong password.
var missingAccountHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("no account matches this email"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("auth: failed to hash placeholder password: %v", err))
	}
	return hash
})

// RejectPassword runs a bcrypt comparison that never succeeds and returns
// ErrInvalidCredentials. Login calls it when the email is unknown.
func RejectPassword(password string) error {
	bcrypt.CompareHashAndPassword(missingAccountHash(), []byte(password))
	return ErrInvalidCredentials
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
