package service

import (
	"errors"
	"time"

	"github.com/Agus3160/blog-web-app-server-go/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for malformed tokens, bad signatures, or
	// tokens signed for a different purpose
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenConfig holds the secret and lifetime of one token purpose
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// TokenService issues and verifies the three token kinds. Each kind is
// signed with its own HS256 secret, so a token minted for one purpose never
// verifies under another.
type TokenService struct {
	access  TokenConfig
	refresh TokenConfig
	reset   TokenConfig
}

// NewTokenService creates a TokenService
func NewTokenService(access, refresh, reset TokenConfig) *TokenService {
	return &TokenService{access: access, refresh: refresh, reset: reset}
}

type sessionClaims struct {
	Session domain.SessionPayload `json:"session"`
	jwt.RegisteredClaims
}

type resetClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// AccessTTL returns the configured access token lifetime
func (s *TokenService) AccessTTL() time.Duration { return s.access.TTL }

// RefreshTTL returns the configured refresh token lifetime
func (s *TokenService) RefreshTTL() time.Duration { return s.refresh.TTL }

// IssueAccess signs an access token carrying the session payload
func (s *TokenService) IssueAccess(session domain.SessionPayload) (string, error) {
	return signSession(session, s.access)
}

// IssueRefresh signs a refresh token carrying the session payload
func (s *TokenService) IssueRefresh(session domain.SessionPayload) (string, error) {
	return signSession(session, s.refresh)
}

// IssueReset signs a password reset token carrying only the user ID
func (s *TokenService) IssueReset(userID string) (string, error) {
	now := time.Now()
	claims := resetClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.reset.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.reset.Secret))
}

// VerifyAccess validates an access token and returns its session payload.
// Expiry is reported as ErrTokenExpired; every other failure as
// ErrTokenInvalid.
func (s *TokenService) VerifyAccess(tokenString string) (*domain.SessionPayload, error) {
	return verifySession(tokenString, s.access, true)
}

// VerifyRefresh validates a refresh token and returns its session payload.
// All failures, expiry included, are reported as ErrTokenInvalid.
func (s *TokenService) VerifyRefresh(tokenString string) (*domain.SessionPayload, error) {
	return verifySession(tokenString, s.refresh, false)
}

// VerifyReset validates a password reset token and returns the user ID it
// was minted for. All failures are reported as ErrTokenInvalid.
func (s *TokenService) VerifyReset(tokenString string) (string, error) {
	claims := &resetClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(s.reset.Secret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", ErrTokenInvalid
	}
	if claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}

func signSession(session domain.SessionPayload, cfg TokenConfig) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Session: session,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

func verifySession(tokenString string, cfg TokenConfig, distinguishExpiry bool) (*domain.SessionPayload, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(cfg.Secret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if distinguishExpiry && errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.Session.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return &claims.Session, nil
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}
}
