package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/mindroll/internal/dependencies/mocks"
	"github.com/mcoot/mindroll/internal/model"
	"github.com/mcoot/mindroll/internal/storage/memory"
	"github.com/mcoot/mindroll/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger(), Config{
		AdminUsers: []string{"root"},
		HashCost:   bcrypt.MinCost,
	})
	s.ctx = context.Background()
}

// AddUser tests

func (s *ServiceSuite) TestAddUserSucceeds() {
	err := s.service.AddUser(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", user.DisplayName)
	s.Equal(model.RoleUser, user.Role)
	s.Equal(s.clock.Now(), user.CreatedAt)
}

func (s *ServiceSuite) TestAddUserHashesPassword() {
	_ = s.service.AddUser(s.ctx, "alice", "password123")

	user, _ := s.storage.GetUser(s.ctx, "alice")
	s.NotEmpty(user.PasswordHash)
	s.NotEqual("password123", user.PasswordHash)
}

func (s *ServiceSuite) TestAddUserFailsIfUsernameExists() {
	_ = s.service.AddUser(s.ctx, "alice", "password123")

	err := s.service.AddUser(s.ctx, "alice", "different")
	s.ErrorIs(err, model.ErrUserExists)
}

func (s *ServiceSuite) TestAddUserRejectsEmptyFields() {
	s.ErrorIs(s.service.AddUser(s.ctx, "", "pw"), model.ErrInvalidArgs)
	s.ErrorIs(s.service.AddUser(s.ctx, "   ", "pw"), model.ErrInvalidArgs)
	s.ErrorIs(s.service.AddUser(s.ctx, "alice", ""), model.ErrInvalidArgs)
}

func (s *ServiceSuite) TestAddUserGrantsAdminRole() {
	s.Require().NoError(s.service.AddUser(s.ctx, "root", "secret"))

	user, err := s.service.GetUser(s.ctx, "root")
	s.Require().NoError(err)
	s.True(user.IsAdmin())
}

// VerifyCredentials tests

func (s *ServiceSuite) TestVerifyCredentialsAcceptsCorrectPassword() {
	_ = s.service.AddUser(s.ctx, "alice", "password123")

	s.True(s.service.VerifyCredentials(s.ctx, "alice", "password123"))
}

func (s *ServiceSuite) TestVerifyCredentialsRejectsWrongPassword() {
	_ = s.service.AddUser(s.ctx, "alice", "password123")

	s.False(s.service.VerifyCredentials(s.ctx, "alice", "wrongpassword"))
}

func (s *ServiceSuite) TestVerifyCredentialsTrimsUsername() {
	s.Require().NoError(s.service.AddUser(s.ctx, " alice ", "password123"))

	s.True(s.service.VerifyCredentials(s.ctx, " alice", "password123"))
	s.True(s.service.VerifyCredentials(s.ctx, "alice", "password123"))
}

func (s *ServiceSuite) TestVerifyCredentialsRejectsUnknownUser() {
	s.False(s.service.VerifyCredentials(s.ctx, "nobody", "password123"))
}

// GetUser tests

func (s *ServiceSuite) TestGetUserNotFound() {
	_, err := s.service.GetUser(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}
