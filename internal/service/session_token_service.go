package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ppm/internal/config"
	"ppm/internal/domain"
)

const sessionAudience = "session"

// SessionClaims identifies one browsing session.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// SessionTokenService issues and validates the signed browser-session token.
// Tokens carry no expiry; the cookie holding them ends with the browser session.
type SessionTokenService interface {
	Issue() (token, sessionID string, err error)
	Validate(token string) (*SessionClaims, error)
}

type sessionTokenService struct {
	cfg config.SessionConfig
	now func() time.Time
}

// NewSessionTokenService creates a new SessionTokenService implementation.
func NewSessionTokenService(cfg config.SessionConfig) SessionTokenService {
	return &sessionTokenService{cfg: cfg, now: time.Now}
}

func (s *sessionTokenService) Issue() (string, string, error) {
	sessionID := uuid.New().String()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.cfg.Issuer,
			Subject:  sessionID,
			IssuedAt: jwt.NewNumericDate(s.now().UTC()),
			Audience: jwt.ClaimStrings{sessionAudience},
		},
		SessionID: sessionID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", "", fmt.Errorf("signing session token: %w", err)
	}
	return token, sessionID, nil
}

func (s *sessionTokenService) Validate(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing session token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	if !slices.Contains(aud, sessionAudience) || claims.SessionID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
