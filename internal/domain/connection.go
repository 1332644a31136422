package domain

import (
	"context"
	"time"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "PENDING"
	ConnectionAccepted ConnectionStatus = "ACCEPTED"
	// ConnectionNone is only reported by status lookups; it is never stored.
	ConnectionNone ConnectionStatus = "NONE"
)

// Connection is a directed request edge. Once accepted it is read as undirected.
type Connection struct {
	ID         int64            `json:"id"`
	SenderID   string           `json:"sender_id"`
	ReceiverID string           `json:"receiver_id"`
	Status     ConnectionStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	Sender   *UserSummary `json:"sender,omitempty"`
	Receiver *UserSummary `json:"receiver,omitempty"`
}

// Involves reports whether userID is one of the two endpoints.
func (c *Connection) Involves(userID string) bool {
	return c.SenderID == userID || c.ReceiverID == userID
}

// ConnectionPeer is the other endpoint of an edge as seen from one user.
type ConnectionPeer struct {
	ConnectionID int64       `json:"connection_id"`
	User         UserSummary `json:"user"`
	Since        time.Time   `json:"since"`
}

type ConnectionState struct {
	Status       ConnectionStatus `json:"status"`
	ConnectionID *int64           `json:"connection_id,omitempty"`
	Direction    string           `json:"direction,omitempty"` // sent | received
}

// SuggestionCandidate is a user with no edge of any status to the requesting user.
type SuggestionCandidate struct {
	User   UserSummary
	Skills []string
}

type Suggestion struct {
	User  UserSummary `json:"user"`
	Score int         `json:"score"`
}

type ConnectionRepository interface {
	// Create returns ErrConflict when an edge already exists for the unordered pair.
	Create(ctx context.Context, senderID, receiverID string) (*Connection, error)
	GetByID(ctx context.Context, id int64) (*Connection, error)
	FindBetween(ctx context.Context, userA, userB string) (*Connection, error)
	// Accept flips a PENDING edge received by receiverID; ErrNotFound otherwise.
	Accept(ctx context.Context, id int64, receiverID string) (*Connection, error)
	Delete(ctx context.Context, id int64) error
	ListAccepted(ctx context.Context, userID string) ([]ConnectionPeer, error)
	ListAcceptedIDs(ctx context.Context, userID string) ([]string, error)
	ListSentPending(ctx context.Context, userID string) ([]ConnectionPeer, error)
	ListReceivedPending(ctx context.Context, userID string) ([]ConnectionPeer, error)
	SuggestionPool(ctx context.Context, userID string) ([]SuggestionCandidate, error)
}

type ConnectionUsecase interface {
	SendRequest(ctx context.Context, senderID, receiverID string) (*Connection, error)
	AcceptRequest(ctx context.Context, connectionID int64, actingUserID string) (*Connection, error)
	RemoveConnection(ctx context.Context, connectionID int64, actingUserID string) error
	ListConnections(ctx context.Context, userID string) ([]ConnectionPeer, error)
	ListSentPending(ctx context.Context, userID string) ([]ConnectionPeer, error)
	ListReceivedPending(ctx context.Context, userID string) ([]ConnectionPeer, error)
	ConnectionStatus(ctx context.Context, userID, otherID string) (*ConnectionState, error)
	Suggestions(ctx context.Context, userID string, limit int) ([]Suggestion, error)
}
