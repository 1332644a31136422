package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
	"skillmatch-backend/pkg/logger"
)

const (
	DefaultSuggestionLimit = 10
	MaxSuggestionLimit     = 50
)

type connectionUsecase struct {
	connRepo    domain.ConnectionRepository
	userRepo    domain.UserRepository
	profileRepo domain.ProfileRepository
	notifier    domain.NotificationEmitter
}

func NewConnectionUsecase(
	connRepo domain.ConnectionRepository,
	userRepo domain.UserRepository,
	profileRepo domain.ProfileRepository,
	notifier domain.NotificationEmitter,
) domain.ConnectionUsecase {
	return &connectionUsecase{
		connRepo:    connRepo,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
	}
}

// SendRequest creates a PENDING edge. Any existing edge for the pair, in
// either direction and of any status, is a conflict.
func (u *connectionUsecase) SendRequest(ctx context.Context, senderID, receiverID string) (*domain.Connection, error) {
	if senderID == receiverID {
		return nil, apperror.Conflict("You cannot connect with yourself")
	}

	if _, err := u.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, fromRepo(err, "User not found")
	}

	existing, err := u.connRepo.FindBetween(ctx, senderID, receiverID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("A connection or pending request already exists with this user")
	}

	conn, err := u.connRepo.Create(ctx, senderID, receiverID)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("A connection or pending request already exists with this user")
		}
		return nil, fromRepo(err, "User not found")
	}

	u.notify(ctx, receiverID, domain.NotificationConnectionRequest,
		fmt.Sprintf("%s sent you a connection request", displayName(conn.Sender)))
	return conn, nil
}

// AcceptRequest only succeeds for the receiver of a PENDING edge.
func (u *connectionUsecase) AcceptRequest(ctx context.Context, connectionID int64, actingUserID string) (*domain.Connection, error) {
	conn, err := u.connRepo.Accept(ctx, connectionID, actingUserID)
	if err != nil {
		return nil, fromRepo(err, "Pending connection request not found")
	}

	u.notify(ctx, conn.SenderID, domain.NotificationConnectionAccepted,
		fmt.Sprintf("%s accepted your connection request", displayName(conn.Receiver)))
	return conn, nil
}

// RemoveConnection covers decline, cancel and unfriend. Nothing is kept.
func (u *connectionUsecase) RemoveConnection(ctx context.Context, connectionID int64, actingUserID string) error {
	conn, err := u.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return fromRepo(err, "Connection not found")
	}
	if !conn.Involves(actingUserID) {
		return apperror.Forbidden("You are not part of this connection")
	}
	return fromRepo(u.connRepo.Delete(ctx, connectionID), "Connection not found")
}

func (u *connectionUsecase) ListConnections(ctx context.Context, userID string) ([]domain.ConnectionPeer, error) {
	peers, err := u.connRepo.ListAccepted(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return peers, nil
}

func (u *connectionUsecase) ListSentPending(ctx context.Context, userID string) ([]domain.ConnectionPeer, error) {
	peers, err := u.connRepo.ListSentPending(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return peers, nil
}

func (u *connectionUsecase) ListReceivedPending(ctx context.Context, userID string) ([]domain.ConnectionPeer, error) {
	peers, err := u.connRepo.ListReceivedPending(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return peers, nil
}

func (u *connectionUsecase) ConnectionStatus(ctx context.Context, userID, otherID string) (*domain.ConnectionState, error) {
	none := &domain.ConnectionState{Status: domain.ConnectionNone}
	if userID == otherID {
		return none, nil
	}

	conn, err := u.connRepo.FindBetween(ctx, userID, otherID)
	if errors.Is(err, domain.ErrNotFound) {
		return none, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	state := &domain.ConnectionState{Status: conn.Status, ConnectionID: &conn.ID, Direction: "received"}
	if conn.SenderID == userID {
		state.Direction = "sent"
	}
	return state, nil
}

// Suggestions ranks users with no edge to userID by shared skills, plus one
// point for the same role. Ties keep the pool order (oldest account first).
func (u *connectionUsecase) Suggestions(ctx context.Context, userID string, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if limit > MaxSuggestionLimit {
		limit = MaxSuggestionLimit
	}

	self, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fromRepo(err, "User not found")
	}

	var mySkills []string
	profile, err := u.profileRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		mySkills = profile.Skills
	case !errors.Is(err, domain.ErrNotFound):
		return nil, apperror.Internal(err)
	}

	pool, err := u.connRepo.SuggestionPool(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	suggestions := make([]domain.Suggestion, 0, len(pool))
	for _, cand := range pool {
		if cand.User.ID == userID {
			continue
		}
		suggestions = append(suggestions, domain.Suggestion{
			User:  cand.User,
			Score: suggestionScore(mySkills, self.Role, cand),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

func suggestionScore(mySkills []string, myRole domain.Role, cand domain.SuggestionCandidate) int {
	mine := make(map[string]struct{}, len(mySkills))
	for _, s := range mySkills {
		mine[s] = struct{}{}
	}

	score := 0
	seen := make(map[string]struct{}, len(cand.Skills))
	for _, s := range cand.Skills {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := mine[s]; ok {
			score++
		}
	}
	if cand.User.Role == myRole {
		score++
	}
	return score
}

func (u *connectionUsecase) notify(ctx context.Context, recipientID string, typ domain.NotificationType, message string) {
	if err := u.notifier.Emit(ctx, recipientID, typ, message); err != nil {
		logger.Log.Warn("Failed to emit notification", "type", typ, "recipient_id", recipientID, "error", err)
	}
}

func displayName(s *domain.UserSummary) string {
	if s == nil || s.Name == "" {
		return "Someone"
	}
	return s.Name
}
