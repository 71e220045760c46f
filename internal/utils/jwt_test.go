package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
    now := time.Now()
    tok, err := NewAccessToken("s3cret", "owner-1", "OWNER", "org-1", time.Hour, now)
    require.NoError(t, err)
    assert.Equal(t, now.UTC().Add(time.Hour).Unix(), tok.Exp.Unix())

    claims := jwt.MapClaims{}
    parsed, err := jwt.ParseWithClaims(tok.Token, claims, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
    require.NoError(t, err)
    assert.True(t, parsed.Valid)
    assert.Equal(t, "owner-1", claims["sub"])
    assert.Equal(t, "OWNER", claims["role"])
    assert.Equal(t, "org-1", claims["org"])
}

func TestNewAccessTokenRejectsBadInput(t *testing.T) {
    _, err := NewAccessToken("", "owner-1", "OWNER", "org-1", time.Hour, time.Now())
    assert.Error(t, err)
    _, err = NewAccessToken("s", "owner-1", "OWNER", "", time.Hour, time.Now())
    assert.Error(t, err)
    _, err = NewAccessToken("s", "owner-1", "OWNER", "org-1", 0, time.Now())
    assert.Error(t, err)
}
