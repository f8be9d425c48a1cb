package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session son los tokens emitidos por un login exitoso. El login no los persiste:
// se entregan al SessionHandler (capa de sesión externa).
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64

	// Subject y ExpiresAt salen del access token sin verificar firma; sirven
	// para logs y UI, nunca para decisiones de autorización.
	Subject   string
	ExpiresAt time.Time
}

// SessionHandler recibe la sesión de un login exitoso.
type SessionHandler func(ctx context.Context, s *Session)

func newSession(resp loginResponse) *Session {
	s := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, claims); err == nil {
		if sub, err := claims.GetSubject(); err == nil {
			s.Subject = sub
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.ExpiresAt = exp.Time
		}
	}
	if s.ExpiresAt.IsZero() && resp.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return s
}
