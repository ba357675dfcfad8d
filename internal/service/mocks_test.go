package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"postfeed/internal/models"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Save(ctx context.Context, identity *models.Identity) error {
	return m.Called(ctx, identity).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID string) (*models.Identity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

type mockCredentialRepo struct {
	mock.Mock
}

func (m *mockCredentialRepo) Create(ctx context.Context, cred *models.Credential, password string) error {
	args := m.Called(ctx, cred, password)
	if args.Error(0) == nil {
		cred.UserID = "user-new"
	}
	return args.Error(0)
}

func (m *mockCredentialRepo) GetByID(ctx context.Context, userID string) (*models.Credential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credential), args.Error(1)
}

func (m *mockCredentialRepo) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credential), args.Error(1)
}

func (m *mockCredentialRepo) VerifyPassword(ctx context.Context, email, password string) (*models.Credential, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credential), args.Error(1)
}

func (m *mockCredentialRepo) UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error {
	return m.Called(ctx, userID, refreshToken, expiryTime).Error(0)
}

func (m *mockCredentialRepo) GetByRefreshToken(ctx context.Context, refreshToken string) (*models.Credential, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credential), args.Error(1)
}

func (m *mockCredentialRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	if args.Error(0) == nil {
		post.ID = "post-new"
		post.CreatedAt = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	}
	return args.Error(0)
}

func (m *mockPostRepo) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// hand out a copy so callers may mutate it
	post := *args.Get(0).(*models.Post)
	post.Images = append([]string(nil), post.Images...)
	return &post, args.Error(1)
}

func (m *mockPostRepo) List(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *mockPostRepo) UpdateContent(ctx context.Context, postID, content string) error {
	return m.Called(ctx, postID, content).Error(0)
}

func (m *mockPostRepo) Delete(ctx context.Context, postID string) error {
	return m.Called(ctx, postID).Error(0)
}

func (m *mockPostRepo) AppendImage(ctx context.Context, postID, imageRef string) error {
	return m.Called(ctx, postID, imageRef).Error(0)
}

func (m *mockPostRepo) RemoveImage(ctx context.Context, postID, imageRef string) error {
	return m.Called(ctx, postID, imageRef).Error(0)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) UploadImage(ctx context.Context, prefix, ownerID, fileName string, data []byte) (string, string, error) {
	args := m.Called(ctx, prefix, ownerID, fileName, data)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockStorage) DeleteImage(ctx context.Context, objectName string) error {
	return m.Called(ctx, objectName).Error(0)
}

func (m *mockStorage) ObjectName(imageURL string) (string, bool) {
	args := m.Called(imageURL)
	return args.String(0), args.Bool(1)
}

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockSchemaRepo struct {
	mock.Mock
}

func (m *mockSchemaRepo) CountTables(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
