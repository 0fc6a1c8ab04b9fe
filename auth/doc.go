// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides owner authentication primitives.

# Passwords

Owner passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, attempt) // ErrInvalidCredentials on mismatch

Passwords shorter than MinPasswordLength are rejected with ErrWeakPassword.

# Session Tokens

A login issues a random 32-byte bearer token:

	token, err := auth.GenerateSessionToken()

Only HashSessionToken(token, secret), an HMAC-SHA256 keyed with the server's
session secret, is written to the database. Requests present the raw token:

	Authorization: Bearer <token>

ParseBearerToken extracts it from the header.

# ID Generation

Database rows use random UUIDs:

	id := auth.GenerateID()
*/
package auth
