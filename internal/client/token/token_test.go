package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return s
}

func TestDecode_StringSubject(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := sign(t, jwt.MapClaims{"sub": "42", "exp": exp.Unix()})

	c, err := Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", c.Subject)
	assert.True(t, exp.Equal(c.ExpiresAt))
}

func TestDecode_NumericSubject(t *testing.T) {
	tok := sign(t, jwt.MapClaims{"sub": 7, "exp": time.Now().Add(time.Minute).Unix()})

	c, err := Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "7", c.Subject)
}

func TestDecode_IgnoresSignature(t *testing.T) {
	tok := sign(t, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(time.Minute).Unix()})
	tampered := tok[:len(tok)-4] + "AAAA"

	_, err := Decode(tampered)
	require.NoError(t, err)
}

func TestDecode_Malformed(t *testing.T) {
	for name, tok := range map[string]string{
		"empty":       "",
		"garbage":     "not-a-token",
		"bad base64":  "a.b.c",
		"missing exp": sign(t, jwt.MapClaims{"sub": "1"}),
		"string exp":  sign(t, jwt.MapClaims{"sub": "1", "exp": "tomorrow"}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(tok)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.True(t, IsExpired(Claims{ExpiresAt: now.Add(-time.Second)}, now))
	assert.True(t, IsExpired(Claims{ExpiresAt: now}, now), "exp == now is expired")
	assert.False(t, IsExpired(Claims{ExpiresAt: now.Add(time.Second)}, now))
}

func TestUsable(t *testing.T) {
	now := time.Now()
	fresh := sign(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	stale := sign(t, jwt.MapClaims{"exp": now.Add(-time.Second).Unix()})

	assert.True(t, Usable(fresh, now))
	assert.False(t, Usable(stale, now))
	assert.False(t, Usable("junk", now))
}
