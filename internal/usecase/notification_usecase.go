package usecase

import (
	"context"
	"errors"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
)

type notificationUsecase struct {
	repo     domain.NotificationRepository
	connRepo domain.ConnectionRepository
}

func NewNotificationUsecase(repo domain.NotificationRepository, connRepo domain.ConnectionRepository) domain.NotificationUsecase {
	return &notificationUsecase{repo: repo, connRepo: connRepo}
}

// Emit stores a notification for one recipient.
func (u *notificationUsecase) Emit(ctx context.Context, recipientID string, typ domain.NotificationType, message string) error {
	if !typ.Valid() {
		return apperror.BadRequest("Unknown notification type")
	}
	n := &domain.Notification{RecipientID: recipientID, Type: typ, Message: message}
	if err := u.repo.Create(ctx, n); err != nil {
		return fromRepo(err, "Recipient not found")
	}
	return nil
}

// FanOut notifies every accepted connection of actorID.
func (u *notificationUsecase) FanOut(ctx context.Context, actorID string, typ domain.NotificationType, message string) error {
	if !typ.Valid() {
		return apperror.BadRequest("Unknown notification type")
	}
	peers, err := u.connRepo.ListAcceptedIDs(ctx, actorID)
	if err != nil {
		return apperror.Internal(err)
	}
	if len(peers) == 0 {
		return nil
	}
	if _, err := u.repo.CreateMany(ctx, peers, typ, message); err != nil {
		return fromRepo(err, "Recipient not found")
	}
	return nil
}

func (u *notificationUsecase) List(ctx context.Context, ownerID string) ([]domain.Notification, error) {
	list, err := u.repo.ListByRecipient(ctx, ownerID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return list, nil
}

func (u *notificationUsecase) UnreadCount(ctx context.Context, ownerID string) (int64, error) {
	count, err := u.repo.CountUnread(ctx, ownerID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

// owned loads a notification and checks it belongs to ownerID.
func (u *notificationUsecase) owned(ctx context.Context, id int64, ownerID string) error {
	n, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return fromRepo(err, "Notification not found")
	}
	if n.RecipientID != ownerID {
		return apperror.Forbidden("You can only manage your own notifications")
	}
	return nil
}

func (u *notificationUsecase) MarkRead(ctx context.Context, id int64, ownerID string) error {
	if err := u.owned(ctx, id, ownerID); err != nil {
		return err
	}
	return fromRepo(u.repo.MarkRead(ctx, id), "Notification not found")
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context, ownerID string) (int64, error) {
	n, err := u.repo.MarkAllRead(ctx, ownerID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func (u *notificationUsecase) Delete(ctx context.Context, id int64, ownerID string) error {
	if err := u.owned(ctx, id, ownerID); err != nil {
		return err
	}
	err := u.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		// lost a race with another delete; the end state is the same
		return nil
	}
	return fromRepo(err, "Notification not found")
}
