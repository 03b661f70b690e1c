package util

import (
	"strings"
	"testing"
	"time"

	"github.com/ariebrainware/medibook/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() model.User {
	u := model.User{Username: "dr.house", Email: "house@example.com", Role: model.RoleDoctor}
	u.ID = 12
	return u
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issued := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer([]byte("secret"), 30*time.Minute).WithClock(func() time.Time { return issued })

	token, claims, err := issuer.Issue(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(12), got.UserID)
	assert.Equal(t, "dr.house", got.Username)
	assert.Equal(t, model.RoleDoctor, got.Role)
	assert.Equal(t, claims.ID, got.ID)
	assert.Equal(t, issued.Add(30*time.Minute), got.ExpiresAt.Time)
}

func TestTokenIssuer_UniqueIDs(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Minute)
	_, a, err := issuer.Issue(testUser())
	require.NoError(t, err)
	_, b, err := issuer.Issue(testUser())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer([]byte("secret"), 30*time.Minute).WithClock(func() time.Time { return issued })
	token, _, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = issuer.WithClock(func() time.Time { return issued.Add(29 * time.Minute) }).Verify(token)
	assert.NoError(t, err)

	_, err = issuer.WithClock(func() time.Time { return issued.Add(31 * time.Minute) }).Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_SignatureInvalid(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Minute)
	token, _, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("other-secret"), time.Minute).Verify(token)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	_, err = issuer.Verify(parts[0] + "." + parts[1] + "." + string(sig))
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestTokenIssuer_Malformed(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Minute)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Verify(token)
		assert.ErrorIs(t, err, ErrTokenMalformed, token)
	}
}

func TestTokenIssuer_MissingSecret(t *testing.T) {
	issuer := NewTokenIssuer(nil, time.Minute)
	_, _, err := issuer.Issue(testUser())
	assert.ErrorIs(t, err, ErrSigningKeyMissing)
}
