package util

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	saltLen             = 16

	passwordScheme = "argon2id"
)

var (
	ErrMalformedHash = errors.New("malformed password hash")

	dummyOnce sync.Once
	dummyHash string
)

// GenerateSalt returns n random bytes.
func GenerateSalt(n int) ([]byte, error) {
	salt := make([]byte, n)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// HashPassword derives an argon2id digest encoded as "argon2id$<salt>$<hash>".
func HashPassword(password string) (string, error) {
	salt, err := GenerateSalt(saltLen)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return strings.Join([]string{
		passwordScheme,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	}, "$"), nil
}

// VerifyPassword checks password against an encoded digest in constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != passwordScheme {
		return false, ErrMalformedHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedHash
	}
	got := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// DummyPasswordHash returns a valid digest of a random password. Verifying against it
// costs the same as a real check, for identifiers that match no user.
func DummyPasswordHash() string {
	dummyOnce.Do(func() {
		salt, err := GenerateSalt(saltLen)
		if err != nil {
			salt = make([]byte, saltLen)
		}
		h, err := HashPassword(base64.RawStdEncoding.EncodeToString(salt))
		if err != nil {
			// Malformed on purpose; verification then fails fast but still fails.
			h = passwordScheme + "$$"
		}
		dummyHash = h
	})
	return dummyHash
}
