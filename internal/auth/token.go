package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stockroom/stockroom/internal/model"
)

// Token verification errors. Callers collapse both into a single 401 at the
// HTTP boundary, but the distinction is preserved here.
var (
	// ErrTokenInvalid covers malformed encoding, signature mismatch and tampering.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// claimUser is the user record embedded in a session token.
type claimUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// sessionClaims is the signed payload of a session token.
//
// Tokens issued at signup carry the user under "result" and tokens issued at
// login carry it under "user". Both shapes verify identically; userID is the
// single place that normalizes them. Never branch on field presence at call
// sites.
type sessionClaims struct {
	jwt.RegisteredClaims
	User   *claimUser `json:"user,omitempty"`
	Result *claimUser `json:"result,omitempty"`
}

// userID resolves the embedded identifier regardless of claim shape.
func (c *sessionClaims) userID() string {
	switch {
	case c.User != nil:
		return c.User.ID
	case c.Result != nil:
		return c.Result.ID
	default:
		return ""
	}
}

// TokenService issues and verifies signed session tokens.
// The signing secret and token lifetime are injected at construction and
// fixed for the lifetime of the process; there is no revocation list, so
// expiry is the only invalidation mechanism.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService with the given signing secret and
// token lifetime.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// IssueSignup issues a token for a freshly created account.
// The claim is embedded under the "result" field.
func (s *TokenService) IssueSignup(user *model.User) (string, error) {
	claims := s.baseClaims()
	claims.Result = toClaimUser(user)
	return s.sign(claims)
}

// IssueLogin issues a token for an existing account that just authenticated.
// The claim is embedded under the "user" field.
func (s *TokenService) IssueLogin(user *model.User) (string, error) {
	claims := s.baseClaims()
	claims.User = toClaimUser(user)
	return s.sign(claims)
}

// Verify checks the token signature and expiry and returns the embedded user
// identifier. Returns ErrTokenExpired for a well-formed but stale token and
// ErrTokenInvalid for everything else.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &sessionClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	id := claims.userID()
	if id == "" {
		return "", ErrTokenInvalid
	}

	return id, nil
}

func (s *TokenService) baseClaims() *sessionClaims {
	now := s.now()
	return &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
}

func (s *TokenService) sign(claims *sessionClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func toClaimUser(user *model.User) *claimUser {
	return &claimUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
