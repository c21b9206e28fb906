package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/mindroll/internal/dependencies/clock"
	"github.com/mcoot/mindroll/internal/model"
	"github.com/mcoot/mindroll/internal/storage"
)

// Config holds configuration for the user store
type Config struct {
	// AdminUsers are granted the ADMIN role when they register
	AdminUsers []string
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost
	HashCost int
}

// Service stores accounts and verifies their credentials
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
	cfg     Config
}

// New creates a new user Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "users")),
		cfg:     cfg,
	}
}

// AddUser registers a new account, hashing the password
func (s *Service) AddUser(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", model.ErrInvalidArgs)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.HashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	role := model.RoleUser
	if slices.Contains(s.cfg.AdminUsers, username) {
		role = model.RoleAdmin
	}

	user := &model.User{
		Username:     username,
		DisplayName:  username,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return err
	}

	s.logger.Info("user registered",
		slog.String("username", username),
		slog.String("role", string(role)),
	)
	return nil
}

// VerifyCredentials reports whether password matches the stored hash.
// Unknown users and storage failures both verify as false.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) bool {
	username = strings.TrimSpace(username)
	user, err := s.storage.GetUser(ctx, username)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			s.logger.Error("failed to load user",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// GetUser returns the account for username
func (s *Service) GetUser(ctx context.Context, username string) (*model.User, error) {
	return s.storage.GetUser(ctx, username)
}
