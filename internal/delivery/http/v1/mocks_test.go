package v1_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"skillmatch-backend/internal/domain"
)

type MockAuthUC struct{ mock.Mock }

func (m *MockAuthUC) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthUC) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthUC) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockJobUC struct{ mock.Mock }

func (m *MockJobUC) CreateJob(ctx context.Context, actor domain.Actor, in domain.JobInput) (*domain.Job, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobUC) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobUC) ListJobs(ctx context.Context, query string, page, pageSize int) ([]domain.Job, int64, error) {
	args := m.Called(ctx, query, page, pageSize)
	return args.Get(0).([]domain.Job), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobUC) ListMyJobs(ctx context.Context, actor domain.Actor) ([]domain.Job, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobUC) UpdateJob(ctx context.Context, actor domain.Actor, id int64, in domain.JobInput) (*domain.Job, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobUC) DeleteJob(ctx context.Context, actor domain.Actor, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockApplicationUC struct{ mock.Mock }

func (m *MockApplicationUC) Apply(ctx context.Context, actor domain.Actor, jobID int64, in domain.ApplyInput) (*domain.Application, error) {
	args := m.Called(ctx, actor, jobID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationUC) MyApplications(ctx context.Context, actor domain.Actor) ([]domain.Application, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationUC) AppliedJobIDs(ctx context.Context, actor domain.Actor) ([]int64, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockApplicationUC) ListByJob(ctx context.Context, actor domain.Actor, jobID int64) ([]domain.Application, error) {
	args := m.Called(ctx, actor, jobID)
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationUC) UpdateStatus(ctx context.Context, actor domain.Actor, applicationID int64, status domain.ApplicationStatus) (*domain.Application, error) {
	args := m.Called(ctx, actor, applicationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationUC) ExportApplications(ctx context.Context, actor domain.Actor, jobID int64) ([]byte, string, error) {
	args := m.Called(ctx, actor, jobID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type MockConnectionUC struct{ mock.Mock }

func (m *MockConnectionUC) SendRequest(ctx context.Context, senderID, receiverID string) (*domain.Connection, error) {
	args := m.Called(ctx, senderID, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *MockConnectionUC) AcceptRequest(ctx context.Context, connectionID int64, actingUserID string) (*domain.Connection, error) {
	args := m.Called(ctx, connectionID, actingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Connection), args.Error(1)
}

func (m *MockConnectionUC) RemoveConnection(ctx context.Context, connectionID int64, actingUserID string) error {
	return m.Called(ctx, connectionID, actingUserID).Error(0)
}

func (m *MockConnectionUC) ListConnections(ctx context.Context, userID string) ([]domain.ConnectionPeer, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.ConnectionPeer), args.Error(1)
}

func (m *MockConnectionUC) ListSentPending(ctx context.Context, userID string) ([]domain.ConnectionPeer, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.ConnectionPeer), args.Error(1)
}

func (m *MockConnectionUC) ListReceivedPending(ctx context.Context, userID string) ([]domain.ConnectionPeer, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.ConnectionPeer), args.Error(1)
}

func (m *MockConnectionUC) ConnectionStatus(ctx context.Context, userID, otherID string) (*domain.ConnectionState, error) {
	args := m.Called(ctx, userID, otherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConnectionState), args.Error(1)
}

func (m *MockConnectionUC) Suggestions(ctx context.Context, userID string, limit int) ([]domain.Suggestion, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.Suggestion), args.Error(1)
}

type MockNotificationUC struct{ mock.Mock }

func (m *MockNotificationUC) Emit(ctx context.Context, recipientID string, typ domain.NotificationType, message string) error {
	return m.Called(ctx, recipientID, typ, message).Error(0)
}

func (m *MockNotificationUC) FanOut(ctx context.Context, actorID string, typ domain.NotificationType, message string) error {
	return m.Called(ctx, actorID, typ, message).Error(0)
}

func (m *MockNotificationUC) List(ctx context.Context, ownerID string) ([]domain.Notification, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationUC) UnreadCount(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationUC) MarkRead(ctx context.Context, id int64, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *MockNotificationUC) MarkAllRead(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationUC) Delete(ctx context.Context, id int64, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

type MockFeedUC struct{ mock.Mock }

func (m *MockFeedUC) VisiblePosts(ctx context.Context, userID string) ([]domain.Post, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Post), args.Error(1)
}

func (m *MockFeedUC) CreatePost(ctx context.Context, actor domain.Actor, in domain.CreatePostInput) (*domain.Post, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockFeedUC) DeletePost(ctx context.Context, postID int64, actor domain.Actor) error {
	return m.Called(ctx, postID, actor).Error(0)
}

func (m *MockFeedUC) ToggleLike(ctx context.Context, postID int64, userID string) (*domain.LikeResult, error) {
	args := m.Called(ctx, postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LikeResult), args.Error(1)
}

func (m *MockFeedUC) AddComment(ctx context.Context, postID int64, userID, content string) (*domain.Comment, error) {
	args := m.Called(ctx, postID, userID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockFeedUC) DeleteComment(ctx context.Context, postID, commentID int64, actingUserID string) error {
	return m.Called(ctx, postID, commentID, actingUserID).Error(0)
}

type stubHealth struct {
	status  map[string]string
	healthy bool
}

func (s stubHealth) Check(context.Context) (map[string]string, bool) {
	return s.status, s.healthy
}
