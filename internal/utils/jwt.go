package utils // package utils provides helper functions for owner token creation

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
    Token string    `json:"token"`
    Exp   time.Time `json:"expires_at"`
}

// NewAccessToken builds and signs an HS256 JWT for an owner of orgID.  The
// token carries sub, role, org, exp and iat claims; the owner routes read
// sub, role and org.
func NewAccessToken(secret, subject, role, orgID string, ttl time.Duration, now time.Time) (AccessToken, error) {
    if secret == "" || subject == "" || orgID == "" {
        return AccessToken{}, errors.New("secret, subject and org are required")
    }
    if ttl <= 0 {
        return AccessToken{}, errors.New("token ttl must be positive")
    }
    now = now.UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":  subject,
        "role": role,
        "org":  orgID,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
