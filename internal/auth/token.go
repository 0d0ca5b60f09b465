// Package auth issues and resolves access tokens and hashes passwords.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/pratyek/grocery-app/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Actor is the authenticated identity behind a request.
type Actor struct {
	UserID int64
	Role   model.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func (a Actor) Authenticated() bool {
	return a.UserID > 0
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TokenManager signs HS256 tokens carrying sub (user id) and role.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
}

func NewTokenManager(secret string, ttl time.Duration, clock Clock) *TokenManager {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, clock: clock}
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) Issue(user model.User) (string, time.Time, error) {
	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Resolve validates the signature and expiry and returns the actor.
func (m *TokenManager) Resolve(raw string) (Actor, error) {
	if raw == "" {
		return Actor{}, ErrInvalidToken
	}

	parser := jwt.Parser{}
	token, err := parser.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, ErrInvalidToken
	}

	userID, err := parseUserID(claims["sub"])
	if err != nil || userID <= 0 {
		return Actor{}, ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	switch model.Role(role) {
	case model.RoleBuyer, model.RoleAdmin:
	default:
		return Actor{}, ErrInvalidToken
	}

	return Actor{UserID: userID, Role: model.Role(role)}, nil
}

func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}
