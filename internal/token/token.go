// internal/token/token.go
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Manager issues and validates the access/refresh bearer token pair.
type Manager struct {
	secret        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewManager(secret string, accessExpiry, refreshExpiry time.Duration) *Manager {
	return &Manager{
		secret:        secret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GeneratePair returns an access and a refresh token for the user.
func (m *Manager) GeneratePair(userID int) (string, string, error) {
	access, err := m.generate(userID, "access", m.accessExpiry)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := m.generate(userID, "refresh", m.refreshExpiry)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return access, refresh, nil
}

func (m *Manager) generate(userID int, tokenType string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"type":    tokenType,
		"exp":     time.Now().Add(expiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// ValidateAccess validates an access token and returns the user ID.
func (m *Manager) ValidateAccess(tokenString string) (int, error) {
	return m.validate(tokenString, "access")
}

// ValidateRefresh validates a refresh token and returns the user ID.
func (m *Manager) ValidateRefresh(tokenString string) (int, error) {
	return m.validate(tokenString, "refresh")
}

func (m *Manager) validate(tokenString, wantType string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != wantType {
		return 0, fmt.Errorf("token is not an %s token", wantType)
	}

	// JWT claims decode numbers as float64
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("user_id not found in token")
	}

	return int(userID), nil
}
