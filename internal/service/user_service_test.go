package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"postfeed/internal/auth"
	"postfeed/internal/common"
	"postfeed/internal/logging"
	"postfeed/internal/models"
	"postfeed/internal/storage"
)

func newUserService() (UserService, *mockUserRepo, *mockStorage) {
	users := new(mockUserRepo)
	store := new(mockStorage)
	return NewUserService(users, store, logging.Discard()), users, store
}

func TestUserService_SaveIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("self write keys by path id", func(t *testing.T) {
		svc, users, _ := newUserService()
		users.On("Save", ctx, &models.Identity{ID: "user-a", Name: "Alice", About: "hi"}).Return(nil)

		saved, err := svc.SaveIdentity(ctx, owner, "user-a", models.Identity{ID: "spoofed", Name: "Alice", About: "hi"})
		require.NoError(t, err)
		assert.Equal(t, "user-a", saved.ID)
		users.AssertExpectations(t)
	})

	t.Run("other user", func(t *testing.T) {
		svc, users, _ := newUserService()

		_, err := svc.SaveIdentity(ctx, owner, "user-b", models.Identity{Name: "Bob"})
		assert.ErrorIs(t, err, common.ErrForbidden)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc, _, _ := newUserService()

		_, err := svc.SaveIdentity(ctx, auth.User{}, "user-b", models.Identity{Name: "Bob"})
		assert.ErrorIs(t, err, common.ErrUnauthenticated)
	})
}

func TestUserService_SetAvatar(t *testing.T) {
	ctx := context.Background()
	data := []byte("jpeg")

	svc, users, store := newUserService()
	users.On("GetByID", ctx, "user-a").Return(&models.Identity{
		ID: "user-a", Name: "Alice", Avatar: "http://cdn/images/avatars/user-a/old.jpg",
	}, nil)
	store.On("UploadImage", ctx, storage.PrefixAvatars, "user-a", "me.jpg", data).
		Return("avatars/user-a/new.jpg", "http://cdn/images/avatars/user-a/new.jpg", nil)
	users.On("Save", ctx, mock.MatchedBy(func(i *models.Identity) bool {
		return i.Avatar == "http://cdn/images/avatars/user-a/new.jpg" && i.Name == "Alice"
	})).Return(nil)
	store.On("ObjectName", "http://cdn/images/avatars/user-a/old.jpg").Return("avatars/user-a/old.jpg", true)
	store.On("DeleteImage", ctx, "avatars/user-a/old.jpg").Return(nil)

	identity, err := svc.SetAvatar(ctx, owner, "user-a", "me.jpg", data)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/images/avatars/user-a/new.jpg", identity.Avatar)

	users.AssertExpectations(t)
	store.AssertExpectations(t)
}
