package utils // package utils provides helpers for patient access tokens

import (
    "errors"  // errors defines the sentinel returned for malformed claims
    "fmt"     // fmt converts numeric subjects to ids
    "strconv" // strconv parses string subjects
    "time"    // time computes expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for signing and parsing tokens
)

// Roles carried in the "role" claim of tokens issued by the spa backend.
const (
    RolePaciente      = "PACIENTE"
    RoleAdministrador = "ADMINISTRADOR"
)

// ErrInvalidClaims is returned when a token verifies but lacks a usable
// subject.
var ErrInvalidClaims = errors.New("invalid token claims")

// TokenClaims is the identity extracted from a verified access token.
//
// Fields:
//  Subject – backend id of the authenticated user (patient id for patients).
//  Email   – address receipts are sent to; may be empty.
//  Role    – PACIENTE or ADMINISTRADOR.
type TokenClaims struct {
    Subject int64
    Email   string
    Role    string
}

// ParseAccessToken verifies an HS256 token signed with secret and returns
// its identity claims.  Tokens signed with any other method are rejected.
func ParseAccessToken(secret, raw string) (TokenClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
        }
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    if err != nil {
        return TokenClaims{}, err
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok || !tok.Valid {
        return TokenClaims{}, ErrInvalidClaims
    }
    sub, err := subjectID(claims["sub"])
    if err != nil {
        return TokenClaims{}, err
    }
    out := TokenClaims{Subject: sub}
    out.Email, _ = claims["email"].(string)
    out.Role, _ = claims["role"].(string)
    return out, nil
}

// subjectID accepts the subject as a JSON number or a decimal string.
func subjectID(v interface{}) (int64, error) {
    switch s := v.(type) {
    case float64:
        if s <= 0 || s != float64(int64(s)) {
            return 0, ErrInvalidClaims
        }
        return int64(s), nil
    case string:
        n, err := strconv.ParseInt(s, 10, 64)
        if err != nil || n <= 0 {
            return 0, ErrInvalidClaims
        }
        return n, nil
    }
    return 0, ErrInvalidClaims
}

// NewAccessToken builds and signs an HS256 token with the claims the
// middleware reads.  The spa backend issues the real tokens; this is
// used by tests and local tooling.
func NewAccessToken(secret string, c TokenClaims, ttl time.Duration) (string, error) {
    now := time.Now().UTC()
    claims := jwt.MapClaims{
        "sub":   strconv.FormatInt(c.Subject, 10),
        "email": c.Email,
        "role":  c.Role,
        "exp":   now.Add(ttl).Unix(),
        "iat":   now.Unix(),
    }
    return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
