package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillmatch-backend/internal/domain"
)

type notificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) domain.NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, type, message)
		VALUES ($1, $2, $3)
		RETURNING id, read, created_at`
	err := r.db.QueryRow(ctx, query, n.RecipientID, n.Type, n.Message).Scan(&n.ID, &n.Read, &n.CreatedAt)
	return translate("create notification", err)
}

// CreateMany inserts one row per recipient in a single statement.
func (r *notificationRepo) CreateMany(ctx context.Context, recipientIDs []string, typ domain.NotificationType, message string) (int64, error) {
	if len(recipientIDs) == 0 {
		return 0, nil
	}
	query := `
		INSERT INTO notifications (recipient_id, type, message)
		SELECT rid, $2, $3 FROM unnest($1::uuid[]) AS rid`
	tag, err := r.db.Exec(ctx, query, recipientIDs, typ, message)
	if err != nil {
		return 0, translate("fan out notifications", err)
	}
	return tag.RowsAffected(), nil
}

const notificationColumns = `id, recipient_id, type, message, read, created_at`

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	if err := row.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		return nil, translate("get notification", err)
	}
	return n, nil
}

func (r *notificationRepo) ListByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, recipientID)
	if err != nil {
		return nil, translate("list notifications", err)
	}
	defer rows.Close()

	list := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, translate("scan notification", err)
		}
		list = append(list, *n)
	}
	return list, translate("list notifications", rows.Err())
}

func (r *notificationRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT read`, recipientID).Scan(&count)
	return count, translate("count unread", err)
}

func (r *notificationRepo) MarkRead(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return translate("mark notification read", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("mark notification read", pgx.ErrNoRows)
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND NOT read`, recipientID)
	if err != nil {
		return 0, translate("mark all read", err)
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return translate("delete notification", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete notification", pgx.ErrNoRows)
	}
	return nil
}
