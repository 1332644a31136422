package usecase_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/internal/usecase"
	"skillmatch-backend/pkg/apperror"
)

type feedDeps struct {
	posts    *MockPostRepo
	conns    *MockConnectionRepo
	storage  *MockStorage
	notifier *MockNotifier
	uc       domain.FeedUsecase
}

func newFeedDeps() feedDeps {
	d := feedDeps{
		posts:    new(MockPostRepo),
		conns:    new(MockConnectionRepo),
		storage:  new(MockStorage),
		notifier: new(MockNotifier),
	}
	d.uc = usecase.NewFeedUsecase(d.posts, d.conns, d.storage, d.notifier)
	return d
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestVisiblePosts(t *testing.T) {
	ctx := context.Background()

	t.Run("Own posts are visible without connections", func(t *testing.T) {
		d := newFeedDeps()
		d.conns.On("ListAcceptedIDs", mock.Anything, "alice").Return([]string{}, nil)
		d.posts.On("ListByAuthors", mock.Anything, []string{"alice"}).
			Return([]domain.Post{{ID: 1, AuthorID: "alice", Content: "hello"}}, nil)
		d.posts.On("ListComments", mock.Anything, []int64{1}).Return([]domain.Comment{}, nil)
		d.posts.On("ListLikes", mock.Anything, []int64{1}).Return(map[int64][]domain.PostLike{}, nil)

		posts, err := d.uc.VisiblePosts(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.NotNil(t, posts[0].Comments)
		assert.NotNil(t, posts[0].Likes)
	})

	t.Run("Attaches comments and likes per post", func(t *testing.T) {
		d := newFeedDeps()
		d.conns.On("ListAcceptedIDs", mock.Anything, "alice").Return([]string{"bob"}, nil)
		d.posts.On("ListByAuthors", mock.Anything, []string{"alice", "bob"}).Return([]domain.Post{
			{ID: 2, AuthorID: "bob"},
			{ID: 1, AuthorID: "alice"},
		}, nil)
		d.posts.On("ListComments", mock.Anything, []int64{2, 1}).Return([]domain.Comment{
			{ID: 10, PostID: 1, Content: "first"},
			{ID: 11, PostID: 1, Content: "second"},
		}, nil)
		d.posts.On("ListLikes", mock.Anything, []int64{2, 1}).Return(map[int64][]domain.PostLike{
			2: {{UserID: "alice", Name: "Alice"}},
		}, nil)

		posts, err := d.uc.VisiblePosts(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Empty(t, posts[0].Comments)
		assert.Len(t, posts[0].Likes, 1)
		assert.Equal(t, "first", posts[1].Comments[0].Content)
		assert.Equal(t, "second", posts[1].Comments[1].Content)
		assert.Empty(t, posts[1].Likes)
	})

	t.Run("Empty feed", func(t *testing.T) {
		d := newFeedDeps()
		d.conns.On("ListAcceptedIDs", mock.Anything, "alice").Return([]string{}, nil)
		d.posts.On("ListByAuthors", mock.Anything, []string{"alice"}).Return([]domain.Post{}, nil)

		posts, err := d.uc.VisiblePosts(ctx, "alice")
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
		d.posts.AssertNotCalled(t, "ListComments", mock.Anything, mock.Anything)
	})

	t.Run("Comment load failure", func(t *testing.T) {
		d := newFeedDeps()
		d.conns.On("ListAcceptedIDs", mock.Anything, "alice").Return([]string{}, nil)
		d.posts.On("ListByAuthors", mock.Anything, []string{"alice"}).Return([]domain.Post{{ID: 1}}, nil)
		d.posts.On("ListComments", mock.Anything, []int64{1}).Return(nil, assert.AnError)
		d.posts.On("ListLikes", mock.Anything, []int64{1}).Return(map[int64][]domain.PostLike{}, nil).Maybe()

		_, err := d.uc.VisiblePosts(ctx, "alice")
		assert.Equal(t, http.StatusInternalServerError, apperror.CodeOf(err))
	})
}

// A post made after an accepted request shows up in the other side's feed.
func TestFeedAfterAcceptedConnection(t *testing.T) {
	ctx := context.Background()
	conns := new(MockConnectionRepo)
	users := new(MockUserRepo)
	posts := new(MockPostRepo)
	notifier := new(MockNotifier)

	connUC := usecase.NewConnectionUsecase(conns, users, new(MockProfileRepo), notifier)
	feedUC := usecase.NewFeedUsecase(posts, conns, new(MockStorage), notifier)

	users.On("GetByID", ctx, "bob").Return(&domain.User{ID: "bob"}, nil)
	conns.On("FindBetween", ctx, "alice", "bob").Return(nil, domain.ErrNotFound)
	conns.On("Create", ctx, "alice", "bob").Return(&domain.Connection{ID: 1, SenderID: "alice", ReceiverID: "bob", Status: domain.ConnectionPending}, nil)
	conns.On("Accept", ctx, int64(1), "bob").Return(&domain.Connection{ID: 1, SenderID: "alice", ReceiverID: "bob", Status: domain.ConnectionAccepted}, nil)
	notifier.On("Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	notifier.On("FanOut", mock.Anything, "bob", domain.NotificationNewPost, mock.Anything).Return(nil)

	_, err := connUC.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = connUC.AcceptRequest(ctx, 1, "bob")
	require.NoError(t, err)

	posts.On("Create", ctx, mock.AnythingOfType("*domain.Post")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Post).ID = 42
	}).Return(nil)
	posts.On("GetByID", ctx, int64(42)).Return(&domain.Post{ID: 42, AuthorID: "bob", Content: "we're hiring"}, nil)

	_, err = feedUC.CreatePost(ctx, domain.Actor{UserID: "bob"}, domain.CreatePostInput{Content: "we're hiring"})
	require.NoError(t, err)

	conns.On("ListAcceptedIDs", mock.Anything, "alice").Return([]string{"bob"}, nil)
	posts.On("ListByAuthors", mock.Anything, []string{"alice", "bob"}).
		Return([]domain.Post{{ID: 42, AuthorID: "bob", Content: "we're hiring"}}, nil)
	posts.On("ListComments", mock.Anything, []int64{42}).Return([]domain.Comment{}, nil)
	posts.On("ListLikes", mock.Anything, []int64{42}).Return(map[int64][]domain.PostLike{}, nil)

	feed, err := feedUC.VisiblePosts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "bob", feed[0].AuthorID)
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{UserID: "alice", Role: domain.RoleCandidate}

	t.Run("Requires content or image", func(t *testing.T) {
		d := newFeedDeps()
		_, err := d.uc.CreatePost(ctx, actor, domain.CreatePostInput{Content: "   "})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Rejects overly long content", func(t *testing.T) {
		d := newFeedDeps()
		_, err := d.uc.CreatePost(ctx, actor, domain.CreatePostInput{Content: strings.Repeat("a", 3001)})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Rejects non-image upload", func(t *testing.T) {
		d := newFeedDeps()
		_, err := d.uc.CreatePost(ctx, actor, domain.CreatePostInput{
			Image: &domain.Upload{Filename: "x.pdf", Data: []byte("%PDF-1.4")},
		})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
		d.storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Rejects an image that passes the signature check but cannot be decoded", func(t *testing.T) {
		d := newFeedDeps()
		_, err := d.uc.CreatePost(ctx, actor, domain.CreatePostInput{
			Image: &domain.Upload{Filename: "clip.webp", Data: []byte("RIFF\x24\x00\x00\x00WEBPVP8 garbage")},
		})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
		d.storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		d.posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Stores a resized image", func(t *testing.T) {
		d := newFeedDeps()
		d.storage.On("Save", ctx, domain.FileCategoryPost, "photo.jpg", mock.Anything).Return("post/abc.jpg", nil)
		d.posts.On("Create", ctx, mock.MatchedBy(func(p *domain.Post) bool {
			return p.ImagePath != nil && *p.ImagePath == "post/abc.jpg" && p.Content == ""
		})).Return(nil)
		d.notifier.On("FanOut", ctx, "alice", domain.NotificationNewPost, mock.Anything).Return(assert.AnError)
		d.posts.On("GetByID", ctx, int64(0)).Return(nil, domain.ErrNotFound)

		post, err := d.uc.CreatePost(ctx, actor, domain.CreatePostInput{
			Image: &domain.Upload{Filename: "photo.png", Data: pngBytes(t, 32, 16)},
		})
		require.NoError(t, err)
		assert.Equal(t, "post/abc.jpg", *post.ImagePath)
		d.storage.AssertExpectations(t)
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	imgPath := "post/a.jpg"

	t.Run("Author deletes post and image", func(t *testing.T) {
		d := newFeedDeps()
		d.posts.On("GetByID", ctx, int64(1)).Return(&domain.Post{ID: 1, AuthorID: "alice", ImagePath: &imgPath}, nil)
		d.posts.On("Delete", ctx, int64(1)).Return(nil)
		d.storage.On("Delete", ctx, imgPath).Return(nil)

		require.NoError(t, d.uc.DeletePost(ctx, 1, domain.Actor{UserID: "alice"}))
		d.storage.AssertExpectations(t)
	})

	t.Run("Others are forbidden", func(t *testing.T) {
		d := newFeedDeps()
		d.posts.On("GetByID", ctx, int64(1)).Return(&domain.Post{ID: 1, AuthorID: "alice"}, nil)

		err := d.uc.DeletePost(ctx, 1, domain.Actor{UserID: "bob"})
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
		d.posts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	d := newFeedDeps()
	d.posts.On("GetByID", ctx, int64(1)).Return(&domain.Post{ID: 1}, nil)
	d.posts.On("ToggleLike", ctx, int64(1), "bob").Return(domain.LikeActionLiked, nil).Once()
	d.posts.On("ListLikes", ctx, []int64{1}).Return(map[int64][]domain.PostLike{1: {{UserID: "bob", Name: "Bob"}}}, nil).Once()
	d.posts.On("ToggleLike", ctx, int64(1), "bob").Return(domain.LikeActionUnliked, nil).Once()
	d.posts.On("ListLikes", ctx, []int64{1}).Return(map[int64][]domain.PostLike{}, nil).Once()

	first, err := d.uc.ToggleLike(ctx, 1, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.LikeActionLiked, first.Action)
	assert.Len(t, first.Likes, 1)

	second, err := d.uc.ToggleLike(ctx, 1, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.LikeActionUnliked, second.Action)
	assert.NotNil(t, second.Likes)
	assert.Empty(t, second.Likes)
}

func TestToggleLikeLosingConcurrentToggleIsConflict(t *testing.T) {
	ctx := context.Background()
	d := newFeedDeps()
	d.posts.On("GetByID", ctx, int64(1)).Return(&domain.Post{ID: 1}, nil)
	d.posts.On("ToggleLike", ctx, int64(1), "bob").Return(domain.LikeAction(""), domain.ErrConflict)

	_, err := d.uc.ToggleLike(ctx, 1, "bob")
	assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	d.posts.AssertNotCalled(t, "ListLikes", mock.Anything, mock.Anything)
}

func TestComments(t *testing.T) {
	ctx := context.Background()

	t.Run("Add to missing post", func(t *testing.T) {
		d := newFeedDeps()
		d.posts.On("GetByID", ctx, int64(9)).Return(nil, domain.ErrNotFound)

		_, err := d.uc.AddComment(ctx, 9, "bob", "nice")
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("Add returns the stored comment", func(t *testing.T) {
		d := newFeedDeps()
		d.posts.On("GetByID", ctx, int64(1)).Return(&domain.Post{ID: 1}, nil)
		d.posts.On("CreateComment", ctx, mock.AnythingOfType("*domain.Comment")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Comment).ID = 5
		}).Return(nil)
		d.posts.On("GetComment", ctx, int64(5)).Return(&domain.Comment{ID: 5, PostID: 1, Content: "nice",
			Author: &domain.UserSummary{ID: "bob", Name: "Bob"}}, nil)

		c, err := d.uc.AddComment(ctx, 1, "bob", "  nice ")
		require.NoError(t, err)
		assert.Equal(t, "Bob", c.Author.Name)
	})

	t.Run("Delete checks post and author", func(t *testing.T) {
		d := newFeedDeps()
		d.posts.On("GetComment", ctx, int64(5)).Return(&domain.Comment{ID: 5, PostID: 1, AuthorID: "bob"}, nil)
		d.posts.On("DeleteComment", ctx, int64(5)).Return(nil)

		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(d.uc.DeleteComment(ctx, 2, 5, "bob")))
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(d.uc.DeleteComment(ctx, 1, 5, "alice")))
		assert.NoError(t, d.uc.DeleteComment(ctx, 1, 5, "bob"))
	})
}
