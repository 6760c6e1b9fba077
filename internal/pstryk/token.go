package pstryk

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTimes holds the issued-at and expiry instants carried in a JWT payload,
// both in UTC. Expiry here is informational bookkeeping: staleness is
// discovered through a live 401, not enforced proactively.
type TokenTimes struct {
	IssuedAt time.Time
	Expires  time.Time
}

// DecodeTokenTimes extracts the iat and exp claims from a compact JWT without
// verifying the signature. The issuer is trusted by possession of a valid
// session, so the signature is not independently re-verified.
func DecodeTokenTimes(token string) (TokenTimes, error) {
	if token == "" {
		return TokenTimes{}, &DecodeError{Err: errors.New("empty token")}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenTimes{}, &DecodeError{Err: err}
	}

	var times TokenTimes
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		times.IssuedAt = iat.Time.UTC()
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		times.Expires = exp.Time.UTC()
	}
	return times, nil
}
