package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"skillmatch-backend/internal/domain"
)

type connectionRepo struct {
	db *pgxpool.Pool
}

func NewConnectionRepository(db *pgxpool.Pool) domain.ConnectionRepository {
	return &connectionRepo{db: db}
}

// Create relies on connections_pair_idx for pair uniqueness; a concurrent
// request in either direction surfaces as ErrConflict.
func (r *connectionRepo) Create(ctx context.Context, senderID, receiverID string) (*domain.Connection, error) {
	query := `
		INSERT INTO connections (sender_id, receiver_id, status)
		VALUES ($1, $2, 'PENDING')
		RETURNING id`

	var id int64
	if err := r.db.QueryRow(ctx, query, senderID, receiverID).Scan(&id); err != nil {
		return nil, translate("create connection", err)
	}
	return r.GetByID(ctx, id)
}

const connectionSelect = `
	SELECT c.id, c.sender_id, c.receiver_id, c.status, c.created_at, c.updated_at,
		s.id, s.name, s.username, s.role, sp.profile_picture,
		rc.id, rc.name, rc.username, rc.role, rp.profile_picture
	FROM connections c
	JOIN users s ON s.id = c.sender_id
	LEFT JOIN profiles sp ON sp.user_id = s.id
	JOIN users rc ON rc.id = c.receiver_id
	LEFT JOIN profiles rp ON rp.user_id = rc.id`

func scanConnection(row rowScanner) (*domain.Connection, error) {
	var (
		c        domain.Connection
		sender   domain.UserSummary
		receiver domain.UserSummary
	)
	dest := []any{&c.ID, &c.SenderID, &c.ReceiverID, &c.Status, &c.CreatedAt, &c.UpdatedAt}
	dest = append(dest, summaryDest(&sender)...)
	dest = append(dest, summaryDest(&receiver)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.Sender = &sender
	c.Receiver = &receiver
	return &c, nil
}

func (r *connectionRepo) GetByID(ctx context.Context, id int64) (*domain.Connection, error) {
	c, err := scanConnection(r.db.QueryRow(ctx, connectionSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, translate("get connection", err)
	}
	return c, nil
}

func (r *connectionRepo) FindBetween(ctx context.Context, userA, userB string) (*domain.Connection, error) {
	query := connectionSelect + `
		WHERE (c.sender_id = $1 AND c.receiver_id = $2)
		   OR (c.sender_id = $2 AND c.receiver_id = $1)`
	c, err := scanConnection(r.db.QueryRow(ctx, query, userA, userB))
	if err != nil {
		return nil, translate("find connection", err)
	}
	return c, nil
}

// Accept is a single conditional update, so two concurrent accepts cannot both win.
func (r *connectionRepo) Accept(ctx context.Context, id int64, receiverID string) (*domain.Connection, error) {
	query := `
		UPDATE connections
		SET status = 'ACCEPTED', updated_at = NOW()
		WHERE id = $1 AND receiver_id = $2 AND status = 'PENDING'`

	tag, err := r.db.Exec(ctx, query, id, receiverID)
	if err != nil {
		return nil, translate("accept connection", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, translate("accept connection", pgx.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

func (r *connectionRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return translate("delete connection", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete connection", pgx.ErrNoRows)
	}
	return nil
}

// listPeers returns the opposite endpoint of each matching edge.
func (r *connectionRepo) listPeers(ctx context.Context, where string, userID string) ([]domain.ConnectionPeer, error) {
	query := `
		SELECT c.id, c.updated_at, ` + summaryColumns + `
		FROM connections c
		JOIN users u ON u.id = CASE WHEN c.sender_id = $1 THEN c.receiver_id ELSE c.sender_id END
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE ` + where + `
		ORDER BY c.updated_at DESC, c.id DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, translate("list connections", err)
	}
	defer rows.Close()

	peers := []domain.ConnectionPeer{}
	for rows.Next() {
		var peer domain.ConnectionPeer
		dest := append([]any{&peer.ConnectionID, &peer.Since}, summaryDest(&peer.User)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, translate("scan connection", err)
		}
		peers = append(peers, peer)
	}
	return peers, translate("list connections", rows.Err())
}

func (r *connectionRepo) ListAccepted(ctx context.Context, userID string) ([]domain.ConnectionPeer, error) {
	return r.listPeers(ctx, `(c.sender_id = $1 OR c.receiver_id = $1) AND c.status = 'ACCEPTED'`, userID)
}

func (r *connectionRepo) ListSentPending(ctx context.Context, userID string) ([]domain.ConnectionPeer, error) {
	return r.listPeers(ctx, `c.sender_id = $1 AND c.status = 'PENDING'`, userID)
}

func (r *connectionRepo) ListReceivedPending(ctx context.Context, userID string) ([]domain.ConnectionPeer, error) {
	return r.listPeers(ctx, `c.receiver_id = $1 AND c.status = 'PENDING'`, userID)
}

func (r *connectionRepo) ListAcceptedIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END
		FROM connections
		WHERE (sender_id = $1 OR receiver_id = $1) AND status = 'ACCEPTED'`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, translate("list connection ids", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, translate("scan connection id", err)
		}
		ids = append(ids, id)
	}
	return ids, translate("list connection ids", rows.Err())
}

// SuggestionPool lists every other user with no edge of any status to userID,
// oldest accounts first.
func (r *connectionRepo) SuggestionPool(ctx context.Context, userID string) ([]domain.SuggestionCandidate, error) {
	query := `
		SELECT ` + summaryColumns + `, COALESCE(p.skills, '{}')
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.id <> $1
		  AND NOT EXISTS (
			SELECT 1 FROM connections c
			WHERE (c.sender_id = $1 AND c.receiver_id = u.id)
			   OR (c.receiver_id = $1 AND c.sender_id = u.id)
		  )
		ORDER BY u.created_at ASC, u.id ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, translate("suggestion pool", err)
	}
	defer rows.Close()

	pool := []domain.SuggestionCandidate{}
	for rows.Next() {
		var cand domain.SuggestionCandidate
		dest := append(summaryDest(&cand.User), pq.Array(&cand.Skills))
		if err := rows.Scan(dest...); err != nil {
			return nil, translate("scan suggestion", err)
		}
		pool = append(pool, cand)
	}
	return pool, translate("suggestion pool", rows.Err())
}
