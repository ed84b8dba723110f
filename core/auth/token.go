// Package auth issues and verifies the bearer tokens handed out at registration and login.
//
// Tokens are stateless HS256 JWTs: a token is valid iff its signature verifies
// against the current secret and the current time is strictly before its expiry.
// Nothing is stored server side, so a token cannot be revoked before it expires.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// DefaultTTL is the lifetime of a token.
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken is returned for any token that does not verify.
// Malformed, tampered, wrongly signed and expired tokens are deliberately not told apart.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated principal a token was issued for.
type Identity struct {
	ID   string    `json:"id"`
	Role user.Role `json:"role"`
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Role user.Role `json:"role"`
}

type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	nowFunc func() time.Time // mockable
}

var _ user.TokenIssuer = (*TokenManager)(nil)

func NewTokenManager(secret []byte, ttl time.Duration, issuer string) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenManager{
		secret:  secret,
		ttl:     ttl,
		issuer:  issuer,
		nowFunc: time.Now,
	}
}

func NewTokenManagerFromConfig(conf *core.Config) *TokenManager {
	return NewTokenManager([]byte(conf.SecretKey), conf.Server.JWTExpirationDelta, conf.AppName)
}

// Issue generates a signed token for id, expiring after the manager's TTL.
func (tm *TokenManager) Issue(id Identity) (string, error) {
	if id.ID == "" || !id.Role.IsValid() {
		return "", errors.New("incomplete identity")
	}
	now := tm.nowFunc()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
		Role: id.Role,
	}

	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// IssueToken implements user.TokenIssuer.
func (tm *TokenManager) IssueToken(usr user.User) (string, error) {
	return tm.Issue(Identity{ID: usr.ID, Role: usr.Role})
}

// Verify returns the Identity carried by token, or ErrInvalidToken.
func (tm *TokenManager) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (interface{}, error) { return tm.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(tm.issuer),
		jwt.WithTimeFunc(tm.nowFunc),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" || !claims.Role.IsValid() {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: claims.Subject, Role: claims.Role}, nil
}
