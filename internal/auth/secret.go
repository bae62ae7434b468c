// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package auth

import (
	"crypto/rand"

	"github.com/samber/oops"
)

// Charset and length profiles for the two secrets the login dialog issues.
const (
	// TempPasswordLength and TempPasswordCharset produce the temporary
	// recovery password mailed during legacy-account recovery.
	TempPasswordLength  = 6
	TempPasswordCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

	// ValidationCodeLength and ValidationCodeCharset produce the numeric
	// code mailed to confirm a newly supplied address.
	ValidationCodeLength  = 4
	ValidationCodeCharset = "0123456789"
)

// GenerateSecret returns a string of exactly length characters, each drawn
// uniformly from charset using crypto/rand. Rejection sampling keeps the
// distribution uniform regardless of charset size.
func GenerateSecret(length int, charset string) (string, error) {
	if length <= 0 {
		return "", oops.Code("SECRET_INVALID_LENGTH").
			With("length", length).
			Errorf("secret length must be positive")
	}
	if len(charset) == 0 || len(charset) > 256 {
		return "", oops.Code("SECRET_INVALID_CHARSET").
			With("charset_size", len(charset)).
			Errorf("charset must contain between 1 and 256 characters")
	}

	// Largest multiple of len(charset) that fits in a byte; bytes at or
	// above it are rejected so every index stays equally likely.
	limit := 256 - 256%len(charset)

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", oops.Code("SECRET_GENERATE_FAILED").
				With("operation", "crypto/rand.Read").
				Wrap(err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, charset[int(b)%len(charset)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}

// GenerateTempPassword returns a temporary recovery password.
func GenerateTempPassword() (string, error) {
	return GenerateSecret(TempPasswordLength, TempPasswordCharset)
}

// GenerateValidationCode returns a 4-digit e-mail verification code.
func GenerateValidationCode() (string, error) {
	return GenerateSecret(ValidationCodeLength, ValidationCodeCharset)
}
