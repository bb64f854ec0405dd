// Package token issues signed, time-bounded room join credentials.
//
// Tokens use the LiveKit access-token shape: an HS256 JWT whose issuer is
// the API key and whose video claim carries the room join grant. They are
// transient artifacts, recomputed per request and never persisted.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/gather.space/internal/platform/errors"
)

// DefaultTTL bounds token validity when no TTL is configured.
const DefaultTTL = 6 * time.Hour

// VideoGrant is the room access claim consumed by the media transport.
type VideoGrant struct {
	RoomJoin bool   `json:"roomJoin"`
	Room     string `json:"room"`
}

// Claims is the full signed claim set of a join token.
type Claims struct {
	jwt.RegisteredClaims
	Name  string     `json:"name"`
	Video VideoGrant `json:"video"`
}

// Issuer builds join tokens from the service signing credentials.
type Issuer struct {
	key    string
	secret string
	ttl    time.Duration

	// Now is the clock used for nbf/exp claims; tests override it.
	Now func() time.Time
}

// NewIssuer creates an issuer for the given key/secret pair. A zero ttl
// falls back to DefaultTTL.
func NewIssuer(key, secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		key:    strings.TrimSpace(key),
		secret: strings.TrimSpace(secret),
		ttl:    ttl,
		Now:    time.Now,
	}
}

// Issue signs a join token binding the identity to the room slug.
func (i *Issuer) Issue(identity, displayName, roomSlug string) (string, error) {
	if i == nil || i.key == "" || i.secret == "" {
		return "", apperrors.New(
			apperrors.CodeSigningConfigMissing,
			"service signing key and secret must be configured",
		)
	}

	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	issuedAt := now().UTC()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.key,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
		Name: displayName,
		Video: VideoGrant{
			RoomJoin: true,
			Room:     roomSlug,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.secret))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUnknown, "sign join token", err)
	}
	return signed, nil
}
