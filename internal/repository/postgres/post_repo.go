package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillmatch-backend/internal/domain"
)

type postRepo struct {
	db *pgxpool.Pool
}

func NewPostRepository(db *pgxpool.Pool) domain.PostRepository {
	return &postRepo{db: db}
}

func (r *postRepo) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (author_id, content, image_path)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, post.AuthorID, post.Content, post.ImagePath).Scan(&post.ID, &post.CreatedAt)
	return translate("create post", err)
}

const postSelect = `
	SELECT po.id, po.author_id, po.content, po.image_path, po.created_at, ` + summaryColumns + `
	FROM posts po
	JOIN users u ON u.id = po.author_id
	LEFT JOIN profiles p ON p.user_id = u.id`

func scanPost(row rowScanner) (*domain.Post, error) {
	var (
		post   domain.Post
		author domain.UserSummary
	)
	dest := append([]any{&post.ID, &post.AuthorID, &post.Content, &post.ImagePath, &post.CreatedAt}, summaryDest(&author)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	post.Author = &author
	post.Comments = []domain.Comment{}
	post.Likes = []domain.PostLike{}
	return &post, nil
}

func (r *postRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := scanPost(r.db.QueryRow(ctx, postSelect+` WHERE po.id = $1`, id))
	if err != nil {
		return nil, translate("get post", err)
	}
	return post, nil
}

func (r *postRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return translate("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete post", pgx.ErrNoRows)
	}
	return nil
}

func (r *postRepo) ListByAuthors(ctx context.Context, authorIDs []string) ([]domain.Post, error) {
	posts := []domain.Post{}
	if len(authorIDs) == 0 {
		return posts, nil
	}

	rows, err := r.db.Query(ctx, postSelect+`
		WHERE po.author_id = ANY($1::uuid[])
		ORDER BY po.created_at DESC, po.id DESC`, authorIDs)
	if err != nil {
		return nil, translate("list posts", err)
	}
	defer rows.Close()

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, translate("scan post", err)
		}
		posts = append(posts, *post)
	}
	return posts, translate("list posts", rows.Err())
}

func (r *postRepo) ListComments(ctx context.Context, postIDs []int64) ([]domain.Comment, error) {
	comments := []domain.Comment{}
	if len(postIDs) == 0 {
		return comments, nil
	}

	query := `
		SELECT cm.id, cm.post_id, cm.author_id, cm.content, cm.created_at, ` + summaryColumns + `
		FROM comments cm
		JOIN users u ON u.id = cm.author_id
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE cm.post_id = ANY($1::bigint[])
		ORDER BY cm.created_at ASC, cm.id ASC`

	rows, err := r.db.Query(ctx, query, postIDs)
	if err != nil {
		return nil, translate("list comments", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, translate("scan comment", err)
		}
		comments = append(comments, *c)
	}
	return comments, translate("list comments", rows.Err())
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var (
		c      domain.Comment
		author domain.UserSummary
	)
	dest := append([]any{&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt}, summaryDest(&author)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.Author = &author
	return &c, nil
}

func (r *postRepo) ListLikes(ctx context.Context, postIDs []int64) (map[int64][]domain.PostLike, error) {
	likes := make(map[int64][]domain.PostLike, len(postIDs))
	if len(postIDs) == 0 {
		return likes, nil
	}

	query := `
		SELECT l.post_id, u.id, u.name
		FROM post_likes l
		JOIN users u ON u.id = l.user_id
		WHERE l.post_id = ANY($1::bigint[])
		ORDER BY l.created_at ASC`

	rows, err := r.db.Query(ctx, query, postIDs)
	if err != nil {
		return nil, translate("list likes", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID int64
			like   domain.PostLike
		)
		if err := rows.Scan(&postID, &like.UserID, &like.Name); err != nil {
			return nil, translate("scan like", err)
		}
		likes[postID] = append(likes[postID], like)
	}
	return likes, translate("list likes", rows.Err())
}

// ToggleLike deletes the (post, user) row if present, otherwise inserts it.
// Both statements run in one transaction keyed on the primary key.
func (r *postRepo) ToggleLike(ctx context.Context, postID int64, userID string) (domain.LikeAction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", translate("begin toggle like", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return "", translate("unlike post", err)
	}

	deleted := tag.RowsAffected()
	var inserted int64
	if deleted == 0 {
		tag, err = tx.Exec(ctx, `
			INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
			ON CONFLICT (post_id, user_id) DO NOTHING`, postID, userID)
		if err != nil {
			return "", translate("like post", err)
		}
		inserted = tag.RowsAffected()
	}

	action, err := likeOutcome(deleted, inserted)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", translate("commit toggle like", err)
	}
	return action, nil
}

// likeOutcome names what a toggle did. Neither statement touching a row means a
// concurrent toggle by the same user inserted first, so this one changed nothing.
func likeOutcome(deleted, inserted int64) (domain.LikeAction, error) {
	switch {
	case deleted > 0:
		return domain.LikeActionUnliked, nil
	case inserted > 0:
		return domain.LikeActionLiked, nil
	default:
		return "", fmt.Errorf("toggle like: concurrent toggle: %w", domain.ErrConflict)
	}
}

func (r *postRepo) CreateComment(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, c.PostID, c.AuthorID, c.Content).Scan(&c.ID, &c.CreatedAt)
	return translate("create comment", err)
}

func (r *postRepo) GetComment(ctx context.Context, id int64) (*domain.Comment, error) {
	query := `
		SELECT cm.id, cm.post_id, cm.author_id, cm.content, cm.created_at, ` + summaryColumns + `
		FROM comments cm
		JOIN users u ON u.id = cm.author_id
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE cm.id = $1`
	c, err := scanComment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("get comment", err)
	}
	return c, nil
}

func (r *postRepo) DeleteComment(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return translate("delete comment", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete comment", pgx.ErrNoRows)
	}
	return nil
}
