package domain

import (
	"context"
	"time"
)

type Post struct {
	ID        int64        `json:"id"`
	AuthorID  string       `json:"author_id"`
	Content   string       `json:"content"`
	ImagePath *string      `json:"image_path,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"`

	Comments []Comment  `json:"comments"`
	Likes    []PostLike `json:"likes"`
}

type Comment struct {
	ID        int64        `json:"id"`
	PostID    int64        `json:"post_id"`
	AuthorID  string       `json:"author_id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"`
}

type PostLike struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type LikeAction string

const (
	LikeActionLiked   LikeAction = "liked"
	LikeActionUnliked LikeAction = "unliked"
)

type LikeResult struct {
	Action LikeAction `json:"action"`
	Likes  []PostLike `json:"likes"`
}

type CreatePostInput struct {
	Content string
	Image   *Upload
}

type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	Delete(ctx context.Context, id int64) error
	// ListByAuthors returns posts newest first, without comments or likes.
	ListByAuthors(ctx context.Context, authorIDs []string) ([]Post, error)
	// ListComments returns comments for the given posts, oldest first.
	ListComments(ctx context.Context, postIDs []int64) ([]Comment, error)
	ListLikes(ctx context.Context, postIDs []int64) (map[int64][]PostLike, error)
	// ToggleLike removes the like if present, otherwise adds it, in one transaction.
	// ErrConflict means a concurrent toggle by the same user changed the row first.
	ToggleLike(ctx context.Context, postID int64, userID string) (LikeAction, error)
	CreateComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, id int64) (*Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

type FeedUsecase interface {
	VisiblePosts(ctx context.Context, userID string) ([]Post, error)
	CreatePost(ctx context.Context, actor Actor, in CreatePostInput) (*Post, error)
	DeletePost(ctx context.Context, postID int64, actor Actor) error
	ToggleLike(ctx context.Context, postID int64, userID string) (*LikeResult, error)
	AddComment(ctx context.Context, postID int64, userID, content string) (*Comment, error)
	DeleteComment(ctx context.Context, postID, commentID int64, actingUserID string) error
}
