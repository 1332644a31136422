package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/internal/usecase"
	"skillmatch-backend/pkg/apperror"
)

func TestNotificationEmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejects unknown type", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		uc := usecase.NewNotificationUsecase(repo, new(MockConnectionRepo))

		err := uc.Emit(ctx, "bob", domain.NotificationType("PROMO"), "buy now")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Stores unread notification", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		uc := usecase.NewNotificationUsecase(repo, new(MockConnectionRepo))
		repo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.RecipientID == "bob" && !n.Read && n.Type == domain.NotificationNewJob
		})).Return(nil)

		require.NoError(t, uc.Emit(ctx, "bob", domain.NotificationNewJob, "Acme is hiring"))
		repo.AssertExpectations(t)
	})

	t.Run("Unknown recipient", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		uc := usecase.NewNotificationUsecase(repo, new(MockConnectionRepo))
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrNotFound)

		err := uc.Emit(ctx, "ghost", domain.NotificationNewJob, "x")
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})
}

func TestNotificationFanOut(t *testing.T) {
	ctx := context.Background()

	t.Run("Notifies every accepted connection", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		conns := new(MockConnectionRepo)
		uc := usecase.NewNotificationUsecase(repo, conns)
		conns.On("ListAcceptedIDs", ctx, "alice").Return([]string{"bob", "carol"}, nil)
		repo.On("CreateMany", ctx, []string{"bob", "carol"}, domain.NotificationNewPost, "new post").Return(int64(2), nil)

		require.NoError(t, uc.FanOut(ctx, "alice", domain.NotificationNewPost, "new post"))
		repo.AssertExpectations(t)
	})

	t.Run("No connections is a no-op", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		conns := new(MockConnectionRepo)
		uc := usecase.NewNotificationUsecase(repo, conns)
		conns.On("ListAcceptedIDs", ctx, "alice").Return([]string{}, nil)

		require.NoError(t, uc.FanOut(ctx, "alice", domain.NotificationNewPost, "new post"))
		repo.AssertNotCalled(t, "CreateMany", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNotificationOwnership(t *testing.T) {
	ctx := context.Background()
	owned := &domain.Notification{ID: 3, RecipientID: "bob"}

	t.Run("Owner marks read", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		uc := usecase.NewNotificationUsecase(repo, new(MockConnectionRepo))
		repo.On("GetByID", ctx, int64(3)).Return(owned, nil)
		repo.On("MarkRead", ctx, int64(3)).Return(nil)

		assert.NoError(t, uc.MarkRead(ctx, 3, "bob"))
	})

	t.Run("Others are forbidden", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		uc := usecase.NewNotificationUsecase(repo, new(MockConnectionRepo))
		repo.On("GetByID", ctx, int64(3)).Return(owned, nil)

		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(uc.MarkRead(ctx, 3, "alice")))
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(uc.Delete(ctx, 3, "alice")))
		repo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Missing notification", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		uc := usecase.NewNotificationUsecase(repo, new(MockConnectionRepo))
		repo.On("GetByID", ctx, int64(4)).Return(nil, domain.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(uc.Delete(ctx, 4, "bob")))
	})

	t.Run("Delete tolerates a concurrent delete", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		uc := usecase.NewNotificationUsecase(repo, new(MockConnectionRepo))
		repo.On("GetByID", ctx, int64(3)).Return(owned, nil)
		repo.On("Delete", ctx, int64(3)).Return(domain.ErrNotFound)

		assert.NoError(t, uc.Delete(ctx, 3, "bob"))
	})

	t.Run("Counts and bulk read", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		uc := usecase.NewNotificationUsecase(repo, new(MockConnectionRepo))
		repo.On("CountUnread", ctx, "bob").Return(int64(4), nil)
		repo.On("MarkAllRead", ctx, "bob").Return(int64(4), nil)

		count, err := uc.UnreadCount(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)

		updated, err := uc.MarkAllRead(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(4), updated)
	})
}
