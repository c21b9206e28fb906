package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/mindroll/internal/dependencies/clock"
	"github.com/mcoot/mindroll/internal/model"
	"github.com/mcoot/mindroll/internal/storage"
)

// UserStore is the part of the user service the token service relies on
type UserStore interface {
	VerifyCredentials(ctx context.Context, username, password string) bool
	GetUser(ctx context.Context, username string) (*model.User, error)
}

// Config holds configuration for the auth service
type Config struct {
	// Secret keys every token signature
	Secret []byte
	// DefaultTTL applies when Authenticate is called without a TTL
	DefaultTTL time.Duration
}

// DefaultConfig returns default auth configuration. The secret must still be set.
func DefaultConfig() Config {
	return Config{
		DefaultTTL: time.Hour,
	}
}

// Service issues and validates bearer tokens
type Service struct {
	storage storage.Storage
	users   UserStore
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config
}

// New creates a new auth Service
func New(storage storage.Storage, users UserStore, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultConfig().DefaultTTL
	}
	return &Service{
		storage: storage,
		users:   users,
		clock:   clock,
		logger:  logger.With(slog.String("component", "auth")),
		cfg:     cfg,
	}
}

// Authenticate verifies the credentials and issues a token valid for ttl.
// A non-positive ttl uses the configured default.
func (s *Service) Authenticate(ctx context.Context, username, password string, ttl time.Duration) (*model.Token, error) {
	username = strings.TrimSpace(username)
	if !s.users.VerifyCredentials(ctx, username, password) {
		return nil, model.ErrInvalidCredentials
	}
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}

	// JWT expiry has second precision
	expiresAt := s.clock.Now().Add(ttl).Truncate(time.Second)
	signature, err := s.sign(username, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	token := &model.Token{
		Signature: signature,
		Username:  username,
		ExpiresAt: expiresAt,
	}
	if err := s.storage.SaveToken(ctx, token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}

	s.logger.Info("token issued",
		slog.String("username", username),
		slog.Time("expires_at", expiresAt),
	)
	return token, nil
}

// Validate looks up a token by its signature and checks it is still good.
// The returned token has its User resolved.
func (s *Service) Validate(ctx context.Context, signature string) (*model.Token, error) {
	if signature == "" {
		return nil, model.ErrInvalidToken
	}

	token, err := s.storage.GetToken(ctx, signature)
	if err != nil {
		if !errors.Is(err, model.ErrTokenNotFound) {
			s.logger.Error("failed to load token", slog.String("error", err.Error()))
		}
		return nil, model.ErrInvalidToken
	}

	if token.Expired(s.clock.Now()) {
		return nil, model.ErrInvalidToken
	}

	expected, err := s.sign(token.Username, token.ExpiresAt)
	if err != nil || expected != token.Signature {
		s.logger.Warn("token signature mismatch", slog.String("username", token.Username))
		if err := s.storage.DeleteToken(ctx, signature); err != nil {
			s.logger.Error("failed to delete forged token", slog.String("error", err.Error()))
		}
		return nil, model.ErrInvalidToken
	}

	user, err := s.users.GetUser(ctx, token.Username)
	if err != nil {
		return nil, model.ErrInvalidToken
	}
	token.User = user
	return token, nil
}

// CleanExpiredTokens removes expired token records (call periodically)
func (s *Service) CleanExpiredTokens(ctx context.Context) (int, error) {
	removed, err := s.storage.DeleteExpiredTokens(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	if removed > 0 {
		s.logger.Info("expired tokens removed", slog.Int("count", removed))
	}
	return removed, nil
}

// RunJanitor calls CleanExpiredTokens every interval until ctx is done
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.CleanExpiredTokens(ctx); err != nil {
				s.logger.Error("token janitor failed", slog.String("error", err.Error()))
			}
		}
	}
}

// sign derives the signature for a user and expiry. The same inputs always
// produce the same signature.
func (s *Service) sign(username string, expiresAt time.Time) (string, error) {
	if len(s.cfg.Secret) == 0 {
		return "", errors.New("token secret is empty")
	}
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
}
