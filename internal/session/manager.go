// Package session resolves the caller's identity from a signed session
// token. The token itself is issued by the surrounding application's
// auth system; this package only reads the identifiers the encryption
// subsystem needs.
package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskvault/internal/model"
)

// Claims carries the key identifiers inside a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID  uuid.UUID  `json:"user_id"`
	GroupID *uuid.UUID `json:"group_id,omitempty"`
}

// Manager validates session tokens signed with a symmetric HMAC secret.
type Manager struct {
	secretKey string
}

// NewManager creates a session manager with the provided secret key.
func NewManager(secretKey string) *Manager {
	return &Manager{secretKey: secretKey}
}

// ParseIdentity validates tokenString and extracts the caller's identity.
func (m *Manager) ParseIdentity(tokenString string) (model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return model.Identity{}, fmt.Errorf("invalid session token")
	}
	if claims.UserID == uuid.Nil {
		return model.Identity{}, model.ErrMissingKeyIdentifier
	}

	return model.Identity{UserID: claims.UserID, GroupID: claims.GroupID}, nil
}
