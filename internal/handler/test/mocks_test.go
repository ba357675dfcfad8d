package test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"postfeed/internal/auth"
	"postfeed/internal/models"
	"postfeed/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*service.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (auth.User, error) {
	args := m.Called(tokenString)
	return args.Get(0).(auth.User), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetIdentity(ctx context.Context, userID string) (*models.Identity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func (m *MockUserService) SaveIdentity(ctx context.Context, caller auth.User, userID string, identity models.Identity) (*models.Identity, error) {
	args := m.Called(ctx, caller, userID, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func (m *MockUserService) SetAvatar(ctx context.Context, caller auth.User, userID, fileName string, data []byte) (*models.Identity, error) {
	args := m.Called(ctx, caller, userID, fileName, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Create(ctx context.Context, caller auth.User, content string, tags []string) (*models.Post, error) {
	args := m.Called(ctx, caller, content, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) List(ctx context.Context, tag string) ([]models.Post, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostService) UpdateContent(ctx context.Context, caller auth.User, postID, content string) error {
	args := m.Called(ctx, caller, postID, content)
	return args.Error(0)
}

func (m *MockPostService) Delete(ctx context.Context, caller auth.User, postID string) error {
	args := m.Called(ctx, caller, postID)
	return args.Error(0)
}

func (m *MockPostService) AddImage(ctx context.Context, caller auth.User, postID, fileName string, data []byte) (*models.Post, error) {
	args := m.Called(ctx, caller, postID, fileName, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) RemoveImage(ctx context.Context, caller auth.User, postID string, index int) (*models.Post, error) {
	args := m.Called(ctx, caller, postID, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Check(ctx context.Context) (*service.HealthStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(*service.HealthStatus), args.Error(1)
}
