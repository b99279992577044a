package security

import (
	"crypto/rand"
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
)

// MinSigningKeyLen is the smallest HS256 key accepted, in bytes.
const MinSigningKeyLen = 32

const refreshTokenLen = 32

// TokenSettings carries the JWT configuration. Expires is in minutes and
// RefreshTokenExpires in days, both kept as their raw configured text.
type TokenSettings struct {
	Key                 string
	ValidIssuer         string
	ValidAudience       string
	Expires             string
	RefreshTokenExpires string
}

type Claims struct {
	jwt.RegisteredClaims
}

type TokenMinter struct {
	settings TokenSettings
	now      func() time.Time
}

func NewTokenMinter(settings TokenSettings) *TokenMinter {
	return &TokenMinter{settings: settings, now: time.Now}
}

func (m *TokenMinter) MintAccessToken(username string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", oops.Code(apperr.CodeInvalidArgument).With("field", "username").Wrap(apperr.ErrInvalidArgument)
	}
	key := []byte(m.settings.Key)
	if len(key) < MinSigningKeyLen {
		return "", oops.Code(apperr.CodeInvalidKeyLength).
			With("key_bytes", len(key)).
			With("min_bytes", MinSigningKeyLen).
			Wrap(apperr.ErrInvalidKeyLength)
	}
	ttl, err := parseTTL(m.settings.Expires, time.Minute, "expires")
	if err != nil {
		return "", err
	}

	now := m.now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    m.settings.ValidIssuer,
		Audience:  jwt.ClaimStrings{m.settings.ValidAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// MintRefreshToken returns 32 random bytes base64 encoded and the moment they expire.
func (m *TokenMinter) MintRefreshToken() (string, time.Time, error) {
	ttl, err := parseTTL(m.settings.RefreshTokenExpires, 24*time.Hour, "refresh_token_expires")
	if err != nil {
		return "", time.Time{}, err
	}
	b := make([]byte, refreshTokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", time.Time{}, oops.Code("REFRESH_TOKEN_FAILED").Wrap(err)
	}
	expiry := m.now().Add(ttl).UTC()
	return base64.StdEncoding.EncodeToString(b), expiry, nil
}

// ParseAccessToken verifies signature, issuer, audience and expiry.
func (m *TokenMinter) ParseAccessToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(m.settings.Key), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.settings.ValidIssuer),
		jwt.WithAudience(m.settings.ValidAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, oops.Code(apperr.CodeUnauthorized).Wrapf(apperr.ErrUnauthorized, "parse access token: %v", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, oops.Code(apperr.CodeUnauthorized).Wrap(apperr.ErrUnauthorized)
	}
	return claims, nil
}

// parseTTL reads raw as a positive count of unit. Counts that do not fit in
// a time.Duration are rejected.
func parseTTL(raw string, unit time.Duration, setting string) (time.Duration, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v >= float64(math.MaxInt64)/float64(unit) {
		return 0, oops.Code(apperr.CodeFormat).With("setting", setting).With("value", raw).Wrap(apperr.ErrFormat)
	}
	return time.Duration(v * float64(unit)), nil
}
