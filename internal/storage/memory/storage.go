package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/mindroll/internal/model"
	"github.com/mcoot/mindroll/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users  map[string]*model.User
	tokens map[string]*model.Token
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:  make(map[string]*model.User),
		tokens: make(map[string]*model.Token),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return model.ErrUserExists
	}
	stored := *user
	s.users[user.Username] = &stored
	return nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

// Token operations

func (s *Storage) SaveToken(ctx context.Context, token *model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *token
	stored.User = nil
	s.tokens[token.Signature] = &stored
	return nil
}

func (s *Storage) GetToken(ctx context.Context, signature string) (*model.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[signature]
	if !ok {
		return nil, model.ErrTokenNotFound
	}
	out := *token
	return &out, nil
}

func (s *Storage) DeleteToken(ctx context.Context, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, signature)
	return nil
}

func (s *Storage) DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for sig, token := range s.tokens {
		if token.Expired(now) {
			delete(s.tokens, sig)
			removed++
		}
	}
	return removed, nil
}
