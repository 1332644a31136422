package domain

import (
	"context"
	"time"
)

type NotificationType string

const (
	NotificationConnectionRequest  NotificationType = "CONNECTION_REQUEST"
	NotificationConnectionAccepted NotificationType = "CONNECTION_ACCEPTED"
	NotificationNewPost            NotificationType = "NEW_POST"
	NotificationNewJob             NotificationType = "NEW_JOB"
	NotificationApplicationStatus  NotificationType = "APPLICATION_STATUS"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationConnectionRequest, NotificationConnectionAccepted,
		NotificationNewPost, NotificationNewJob, NotificationApplicationStatus:
		return true
	}
	return false
}

type Notification struct {
	ID          int64            `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

type NotificationRepository interface {
	// Create returns ErrNotFound when the recipient does not exist.
	Create(ctx context.Context, n *Notification) error
	CreateMany(ctx context.Context, recipientIDs []string, typ NotificationType, message string) (int64, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByRecipient(ctx context.Context, recipientID string) ([]Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// NotificationEmitter is the side-effect surface other usecases depend on.
type NotificationEmitter interface {
	Emit(ctx context.Context, recipientID string, typ NotificationType, message string) error
	FanOut(ctx context.Context, actorID string, typ NotificationType, message string) error
}

type NotificationUsecase interface {
	NotificationEmitter
	List(ctx context.Context, ownerID string) ([]Notification, error)
	UnreadCount(ctx context.Context, ownerID string) (int64, error)
	MarkRead(ctx context.Context, id int64, ownerID string) error
	MarkAllRead(ctx context.Context, ownerID string) (int64, error)
	Delete(ctx context.Context, id int64, ownerID string) error
}
