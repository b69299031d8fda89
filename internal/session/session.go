// Package session supplies the current user identity. Consumers re-read it
// per event to decide whether an event is about the local player.
package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Identity describes the locally signed-in user.
type Identity struct {
	UserID string
	Name   string
}

// Provider yields the current identity. Implementations must be cheap; they
// are consulted once per consumed event.
type Provider interface {
	Current() Identity
}

// Static is a fixed identity, used for local games and tests.
type Static struct {
	Identity Identity
}

func (s Static) Current() Identity { return s.Identity }

// TokenProvider derives the identity from the session token the server
// issued at login. The token is decoded without signature verification; the
// signature belongs to the server, the client only reads its own claims.
type TokenProvider struct {
	// Token returns the current raw session token. Re-read per call so the
	// provider follows token refreshes.
	Token func() string
}

func (p *TokenProvider) Current() Identity {
	raw := p.Token()
	if raw == "" {
		return Identity{}
	}
	id, err := ParseIdentity(raw)
	if err != nil {
		return Identity{}
	}
	return id
}

// ParseIdentity extracts the user identity from a session token.
func ParseIdentity(raw string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Identity{}, fmt.Errorf("parse session token: %w", err)
	}
	id := Identity{}
	if sub, err := claims.GetSubject(); err == nil {
		id.UserID = sub
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	if id.UserID == "" {
		return Identity{}, fmt.Errorf("session token carries no subject")
	}
	return id, nil
}
