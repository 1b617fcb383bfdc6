package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"argip-api/internal/apperr"
)

type Claims struct {
	jwt.RegisteredClaims
}

// TokenService signs and checks HS256 access tokens. Tokens are stateless;
// expiry is the only way one stops being valid.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue returns a token for subject that expires after the configured TTL.
func (s *TokenService) Issue(subject string) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.Storage(err)
	}
	return signed, nil
}

// Verify returns the subject of a valid token. A token is valid while now is
// strictly before its expiry.
func (s *TokenService) Verify(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.ErrExpiredToken
		}
		return "", &apperr.Error{Kind: apperr.KindInvalidToken, Message: apperr.ErrInvalidToken.Message, Err: err}
	}
	if !token.Valid || claims.Subject == "" {
		return "", apperr.ErrInvalidToken
	}
	return claims.Subject, nil
}
