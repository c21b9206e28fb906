package storage

import (
	"context"
	"time"

	"github.com/mcoot/mindroll/internal/model"
)

// Storage defines the interface for user and token persistence.
// Rooms live only in the room controller and are never persisted.
type Storage interface {
	// User operations
	// CreateUser fails with model.ErrUserExists if the username is taken
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, username string) (*model.User, error)

	// Token operations
	SaveToken(ctx context.Context, token *model.Token) error
	GetToken(ctx context.Context, signature string) (*model.Token, error)
	DeleteToken(ctx context.Context, signature string) error
	// DeleteExpiredTokens removes tokens with ExpiresAt <= now and returns how many were removed
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error)
}
