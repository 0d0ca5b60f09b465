package repository

import (
	"context"

	"github.com/pratyek/grocery-app/internal/domain/cart"
)

// Ephemeral per-session cart storage. Load returns an empty slice for an
// unknown or expired session.
type CartSessionStore interface {
	Load(ctx context.Context, sessionID string) ([]cart.Line, error)
	Save(ctx context.Context, sessionID string, lines []cart.Line) error
	Delete(ctx context.Context, sessionID string) error
}
