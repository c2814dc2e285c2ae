// Package token decodes access tokens into the claims the client inspects
// locally. Signatures are not verified: the server validates every request,
// the client only uses the expiry to skip requests that are bound to fail.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned for tokens that cannot be decoded or lack an
// expiry. Callers treat it exactly like an expired token.
var ErrMalformed = errors.New("malformed token")

// Claims is the locally inspected subset of an access token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

var parser = jwt.NewParser()

// Decode parses tok without verifying its signature.
func Decode(tok string) (Claims, error) {
	if tok == "" {
		return Claims{}, fmt.Errorf("%w: empty", ErrMalformed)
	}

	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tok, mc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if exp == nil {
		return Claims{}, fmt.Errorf("%w: no exp claim", ErrMalformed)
	}

	return Claims{Subject: subject(mc), ExpiresAt: exp.Time}, nil
}

// subject accepts both string and numeric "sub" values; some issuers put
// the integer user id there verbatim.
func subject(mc jwt.MapClaims) string {
	switch v := mc["sub"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

// IsExpired reports whether the claims are no longer valid at now. A token
// whose exp equals now is already expired.
func IsExpired(c Claims, now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Usable decodes tok and reports whether it is well formed and unexpired at
// now.
func Usable(tok string, now time.Time) bool {
	c, err := Decode(tok)
	if err != nil {
		return false
	}
	return !IsExpired(c, now)
}
