package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
	"skillmatch-backend/pkg/imaging"
	"skillmatch-backend/pkg/logger"
	"skillmatch-backend/pkg/security"
)

const (
	maxPostLength    = 3000
	maxCommentLength = 1000
)

type feedUsecase struct {
	postRepo domain.PostRepository
	connRepo domain.ConnectionRepository
	storage  domain.FileStorage
	notifier domain.NotificationEmitter
}

func NewFeedUsecase(
	postRepo domain.PostRepository,
	connRepo domain.ConnectionRepository,
	storage domain.FileStorage,
	notifier domain.NotificationEmitter,
) domain.FeedUsecase {
	return &feedUsecase{
		postRepo: postRepo,
		connRepo: connRepo,
		storage:  storage,
		notifier: notifier,
	}
}

// VisiblePosts returns posts by the user and their accepted connections,
// newest first, with comments and likes attached.
func (u *feedUsecase) VisiblePosts(ctx context.Context, userID string) ([]domain.Post, error) {
	peers, err := u.connRepo.ListAcceptedIDs(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	authors := append([]string{userID}, peers...)

	posts, err := u.postRepo.ListByAuthors(ctx, authors)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(posts) == 0 {
		return []domain.Post{}, nil
	}

	postIDs := make([]int64, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID
	}

	var (
		comments []domain.Comment
		likes    map[int64][]domain.PostLike
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = u.postRepo.ListComments(gctx, postIDs)
		return err
	})
	g.Go(func() error {
		var err error
		likes, err = u.postRepo.ListLikes(gctx, postIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal(err)
	}

	byPost := make(map[int64][]domain.Comment, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}
	for i := range posts {
		posts[i].Comments = nonNilComments(byPost[posts[i].ID])
		posts[i].Likes = nonNilLikes(likes[posts[i].ID])
	}
	return posts, nil
}

func (u *feedUsecase) CreatePost(ctx context.Context, actor domain.Actor, in domain.CreatePostInput) (*domain.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && in.Image == nil {
		return nil, apperror.BadRequest("Post content or an image is required")
	}
	if utf8.RuneCountInString(content) > maxPostLength {
		return nil, apperror.BadRequest(fmt.Sprintf("Post content must be at most %d characters", maxPostLength))
	}

	post := &domain.Post{AuthorID: actor.UserID, Content: content}
	if in.Image != nil {
		path, err := u.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		post.ImagePath = &path
	}

	if err := u.postRepo.Create(ctx, post); err != nil {
		return nil, fromRepo(err, "User not found")
	}

	if err := u.notifier.FanOut(ctx, actor.UserID, domain.NotificationNewPost, "A connection shared a new post"); err != nil {
		logger.Log.Warn("Failed to fan out post notification", "post_id", post.ID, "error", err)
	}

	created, err := u.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		// the row exists; answer with what we have
		logger.Log.Warn("Failed to reload created post", "post_id", post.ID, "error", err)
		post.Comments = []domain.Comment{}
		post.Likes = []domain.PostLike{}
		return post, nil
	}
	return created, nil
}

// storeImage validates, downsizes and saves a post image before any row references it.
func (u *feedUsecase) storeImage(ctx context.Context, img *domain.Upload) (string, error) {
	if err := security.ImagePolicy.Validate(img.Filename, img.Data); err != nil {
		return "", apperror.BadRequest(err.Error())
	}

	data, err := imaging.Downscale(img.Data, imaging.PostMaxEdge)
	if err != nil {
		logger.Log.Warn("Rejected undecodable post image", "filename", img.Filename, "error", err)
		return "", apperror.BadRequest("Image could not be processed")
	}
	name := strings.TrimSuffix(img.Filename, filepath.Ext(img.Filename)) + ".jpg"

	path, err := u.storage.Save(ctx, domain.FileCategoryPost, name, data)
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("store post image: %w", err))
	}
	return path, nil
}

func (u *feedUsecase) DeletePost(ctx context.Context, postID int64, actor domain.Actor) error {
	post, err := u.postRepo.GetByID(ctx, postID)
	if err != nil {
		return fromRepo(err, "Post not found")
	}
	if post.AuthorID != actor.UserID {
		return apperror.Forbidden("You can only delete your own posts")
	}
	if err := u.postRepo.Delete(ctx, postID); err != nil {
		return fromRepo(err, "Post not found")
	}

	if post.ImagePath != nil {
		if err := u.storage.Delete(ctx, *post.ImagePath); err != nil {
			logger.Log.Warn("Failed to remove post image", "post_id", postID, "error", err)
		}
	}
	return nil
}

// ToggleLike flips the caller's like and returns the resulting like set.
func (u *feedUsecase) ToggleLike(ctx context.Context, postID int64, userID string) (*domain.LikeResult, error) {
	if _, err := u.postRepo.GetByID(ctx, postID); err != nil {
		return nil, fromRepo(err, "Post not found")
	}

	action, err := u.postRepo.ToggleLike(ctx, postID, userID)
	if errors.Is(err, domain.ErrConflict) {
		return nil, apperror.Conflict("Like is already being updated, try again")
	}
	if err != nil {
		return nil, fromRepo(err, "Post not found")
	}

	likes, err := u.postRepo.ListLikes(ctx, []int64{postID})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.LikeResult{Action: action, Likes: nonNilLikes(likes[postID])}, nil
}

func (u *feedUsecase) AddComment(ctx context.Context, postID int64, userID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.BadRequest("Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, apperror.BadRequest(fmt.Sprintf("Comment must be at most %d characters", maxCommentLength))
	}

	if _, err := u.postRepo.GetByID(ctx, postID); err != nil {
		return nil, fromRepo(err, "Post not found")
	}

	comment := &domain.Comment{PostID: postID, AuthorID: userID, Content: content}
	if err := u.postRepo.CreateComment(ctx, comment); err != nil {
		return nil, fromRepo(err, "Post not found")
	}

	if full, err := u.postRepo.GetComment(ctx, comment.ID); err == nil {
		return full, nil
	}
	return comment, nil
}

func (u *feedUsecase) DeleteComment(ctx context.Context, postID, commentID int64, actingUserID string) error {
	comment, err := u.postRepo.GetComment(ctx, commentID)
	if err != nil {
		return fromRepo(err, "Comment not found")
	}
	if comment.PostID != postID {
		return apperror.NotFound("Comment not found")
	}
	if comment.AuthorID != actingUserID {
		return apperror.Forbidden("You can only delete your own comments")
	}
	return fromRepo(u.postRepo.DeleteComment(ctx, commentID), "Comment not found")
}

func nonNilComments(c []domain.Comment) []domain.Comment {
	if c == nil {
		return []domain.Comment{}
	}
	return c
}

func nonNilLikes(l []domain.PostLike) []domain.PostLike {
	if l == nil {
		return []domain.PostLike{}
	}
	return l
}
