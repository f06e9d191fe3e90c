package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
    raw, err := NewAccessToken("s3cret", TokenClaims{Subject: 42, Email: "p@example.com", Role: RolePaciente}, time.Minute)
    require.NoError(t, err)

    got, err := ParseAccessToken("s3cret", raw)
    require.NoError(t, err)
    assert.Equal(t, TokenClaims{Subject: 42, Email: "p@example.com", Role: RolePaciente}, got)

    _, err = ParseAccessToken("other", raw)
    assert.Error(t, err)
}

func TestParseAccessToken_NumericSubject(t *testing.T) {
    raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub": 7, "role": RoleAdministrador, "exp": time.Now().Add(time.Minute).Unix(),
    }).SignedString([]byte("k"))
    require.NoError(t, err)

    got, err := ParseAccessToken("k", raw)
    require.NoError(t, err)
    assert.Equal(t, int64(7), got.Subject)
    assert.Empty(t, got.Email)
}

func TestParseAccessToken_RejectsBadSubjectAndExpiry(t *testing.T) {
    raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "abc"}).SignedString([]byte("k"))
    _, err := ParseAccessToken("k", raw)
    assert.ErrorIs(t, err, ErrInvalidClaims)

    expired, _ := NewAccessToken("k", TokenClaims{Subject: 1}, -time.Minute)
    _, err = ParseAccessToken("k", expired)
    assert.Error(t, err)
}
