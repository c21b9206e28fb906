package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mindroll/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// User tests

func (s *StorageSuite) TestCreateAndGetUser() {
	user := &model.User{
		Username:     "alice",
		DisplayName:  "alice",
		Role:         model.RoleAdmin,
		PasswordHash: "hash123",
		CreatedAt:    time.Now(),
	}

	err := s.storage.CreateUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
	s.Equal(model.RoleAdmin, retrieved.Role)
	s.Equal("hash123", retrieved.PasswordHash)
}

func (s *StorageSuite) TestCreateUserFailsIfExists() {
	_ = s.storage.CreateUser(s.ctx, &model.User{Username: "alice", PasswordHash: "first"})

	err := s.storage.CreateUser(s.ctx, &model.User{Username: "alice", PasswordHash: "second"})
	s.ErrorIs(err, model.ErrUserExists)

	retrieved, _ := s.storage.GetUser(s.ctx, "alice")
	s.Equal("first", retrieved.PasswordHash)
}

func (s *StorageSuite) TestUserHasNoTTL() {
	_ = s.storage.CreateUser(s.ctx, &model.User{Username: "alice"})

	s.Equal(time.Duration(0), s.mini.TTL(userKey("alice")))
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Token tests

func (s *StorageSuite) TestSaveAndGetToken() {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	err := s.storage.SaveToken(s.ctx, &model.Token{Signature: "sig", Username: "alice", ExpiresAt: expires})
	s.Require().NoError(err)

	token, err := s.storage.GetToken(s.ctx, "sig")
	s.Require().NoError(err)
	s.Equal("alice", token.Username)
	s.True(expires.Equal(token.ExpiresAt))
}

func (s *StorageSuite) TestTokenKeyExpires() {
	_ = s.storage.SaveToken(s.ctx, &model.Token{Signature: "sig", Username: "alice", ExpiresAt: time.Now().Add(time.Hour)})

	s.True(s.mini.TTL(tokenKey("sig")) > 0, "token should carry a TTL")

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetToken(s.ctx, "sig")
	s.ErrorIs(err, model.ErrTokenNotFound)
}

func (s *StorageSuite) TestGetTokenNotFound() {
	_, err := s.storage.GetToken(s.ctx, "missing")
	s.ErrorIs(err, model.ErrTokenNotFound)
}

func (s *StorageSuite) TestDeleteToken() {
	_ = s.storage.SaveToken(s.ctx, &model.Token{Signature: "sig", ExpiresAt: time.Now().Add(time.Hour)})

	s.Require().NoError(s.storage.DeleteToken(s.ctx, "sig"))

	_, err := s.storage.GetToken(s.ctx, "sig")
	s.ErrorIs(err, model.ErrTokenNotFound)
}

func (s *StorageSuite) TestDeleteExpiredTokensIsNoop() {
	removed, err := s.storage.DeleteExpiredTokens(s.ctx, time.Now())
	s.Require().NoError(err)
	s.Equal(0, removed)
}
