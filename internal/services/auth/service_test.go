package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/mindroll/internal/dependencies/mocks"
	"github.com/mcoot/mindroll/internal/model"
	"github.com/mcoot/mindroll/internal/services/users"
	"github.com/mcoot/mindroll/internal/storage/memory"
	"github.com/mcoot/mindroll/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	users   *users.Service
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.users = users.New(s.storage, s.clock, logger, users.Config{HashCost: bcrypt.MinCost})

	cfg := DefaultConfig()
	cfg.Secret = []byte("test-secret")
	s.service = New(s.storage, s.users, s.clock, cfg, logger)
	s.ctx = context.Background()

	s.Require().NoError(s.users.AddUser(s.ctx, "alice", "password123"))
}

// Authenticate tests

func (s *ServiceSuite) TestAuthenticateSucceeds() {
	token, err := s.service.Authenticate(s.ctx, "alice", "password123", 0)
	s.Require().NoError(err)

	s.NotEmpty(token.Signature)
	s.Equal("alice", token.Username)
	s.Equal(s.clock.Now().Add(time.Hour), token.ExpiresAt)
}

func (s *ServiceSuite) TestAuthenticatePersistsToken() {
	token, _ := s.service.Authenticate(s.ctx, "alice", "password123", 0)

	stored, err := s.storage.GetToken(s.ctx, token.Signature)
	s.Require().NoError(err)
	s.Equal("alice", stored.Username)
}

func (s *ServiceSuite) TestAuthenticateUsesGivenTTL() {
	token, err := s.service.Authenticate(s.ctx, "alice", "password123", 30*time.Second)
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(30*time.Second), token.ExpiresAt)
}

func (s *ServiceSuite) TestAuthenticateTruncatesExpiryToSeconds() {
	s.clock.Advance(750 * time.Millisecond)

	token, err := s.service.Authenticate(s.ctx, "alice", "password123", time.Minute)
	s.Require().NoError(err)
	s.Equal(0, token.ExpiresAt.Nanosecond())
}

func (s *ServiceSuite) TestAuthenticateTrimsUsername() {
	token, err := s.service.Authenticate(s.ctx, " alice ", "password123", 0)
	s.Require().NoError(err)
	s.Equal("alice", token.Username)

	_, err = s.service.Validate(s.ctx, token.Signature)
	s.NoError(err)
}

func (s *ServiceSuite) TestAuthenticateFailsWithWrongPassword() {
	_, err := s.service.Authenticate(s.ctx, "alice", "wrongpassword", 0)
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateFailsWithUnknownUser() {
	_, err := s.service.Authenticate(s.ctx, "nobody", "password123", 0)
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestSignatureIsDeterministic() {
	expires := s.clock.Now().Add(time.Hour)

	first, err := s.service.sign("alice", expires)
	s.Require().NoError(err)
	second, _ := s.service.sign("alice", expires)
	other, _ := s.service.sign("bob", expires)

	s.Equal(first, second)
	s.NotEqual(first, other)
}

func (s *ServiceSuite) TestSignatureDependsOnSecret() {
	expires := s.clock.Now().Add(time.Hour)
	otherCfg := DefaultConfig()
	otherCfg.Secret = []byte("another-secret")
	other := New(s.storage, s.users, s.clock, otherCfg, testutil.NopLogger())

	mine, _ := s.service.sign("alice", expires)
	theirs, _ := other.sign("alice", expires)
	s.NotEqual(mine, theirs)
}

// Validate tests

func (s *ServiceSuite) TestValidateSucceeds() {
	token, _ := s.service.Authenticate(s.ctx, "alice", "password123", 0)

	validated, err := s.service.Validate(s.ctx, token.Signature)
	s.Require().NoError(err)
	s.Equal("alice", validated.Username)
	s.Require().NotNil(validated.User)
	s.Equal(model.RoleUser, validated.User.Role)
}

func (s *ServiceSuite) TestValidateFailsWithUnknownSignature() {
	_, err := s.service.Validate(s.ctx, "invalid_token")
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateFailsWithEmptySignature() {
	_, err := s.service.Validate(s.ctx, "")
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateFailsWhenExpired() {
	token, _ := s.service.Authenticate(s.ctx, "alice", "password123", time.Minute)

	s.clock.Advance(time.Minute)

	_, err := s.service.Validate(s.ctx, token.Signature)
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateSucceedsJustBeforeExpiry() {
	token, _ := s.service.Authenticate(s.ctx, "alice", "password123", time.Minute)

	s.clock.Advance(time.Minute - time.Second)

	_, err := s.service.Validate(s.ctx, token.Signature)
	s.NoError(err)
}

func (s *ServiceSuite) TestValidateDetectsTamperedRecord() {
	token, _ := s.service.Authenticate(s.ctx, "alice", "password123", time.Minute)

	// extend the stored expiry without re-signing
	tampered := *token
	tampered.ExpiresAt = token.ExpiresAt.Add(24 * time.Hour)
	s.Require().NoError(s.storage.SaveToken(s.ctx, &tampered))

	_, err := s.service.Validate(s.ctx, token.Signature)
	s.ErrorIs(err, model.ErrInvalidToken)

	_, err = s.storage.GetToken(s.ctx, token.Signature)
	s.ErrorIs(err, model.ErrTokenNotFound, "forged record should be dropped")
}

func (s *ServiceSuite) TestValidateFailsWhenUserIsMissing() {
	expires := s.clock.Now().Add(time.Hour)
	sig, err := s.service.sign("ghost", expires)
	s.Require().NoError(err)
	s.Require().NoError(s.storage.SaveToken(s.ctx, &model.Token{Signature: sig, Username: "ghost", ExpiresAt: expires}))

	_, err = s.service.Validate(s.ctx, sig)
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateDoesNotRemoveExpiredToken() {
	token, _ := s.service.Authenticate(s.ctx, "alice", "password123", time.Minute)
	s.clock.Advance(time.Hour)

	_, _ = s.service.Validate(s.ctx, token.Signature)

	_, err := s.storage.GetToken(s.ctx, token.Signature)
	s.NoError(err)
}

func (s *ServiceSuite) TestAuthenticateFailsWithoutSecret() {
	bare := New(s.storage, s.users, s.clock, DefaultConfig(), testutil.NopLogger())

	_, err := bare.Authenticate(s.ctx, "alice", "password123", 0)
	s.Error(err)
}

// CleanExpiredTokens tests

func (s *ServiceSuite) TestCleanExpiredTokensRemovesExpired() {
	s.Require().NoError(s.users.AddUser(s.ctx, "bob", "hunter2"))
	token1, _ := s.service.Authenticate(s.ctx, "alice", "password123", time.Hour)

	s.clock.Advance(2 * time.Hour)

	token2, _ := s.service.Authenticate(s.ctx, "bob", "hunter2", time.Hour)

	removed, err := s.service.CleanExpiredTokens(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, err = s.storage.GetToken(s.ctx, token1.Signature)
	s.ErrorIs(err, model.ErrTokenNotFound)

	_, err = s.service.Validate(s.ctx, token2.Signature)
	s.NoError(err)
}

func (s *ServiceSuite) TestRunJanitorStopsWithContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		s.service.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("janitor did not stop")
	}
}
