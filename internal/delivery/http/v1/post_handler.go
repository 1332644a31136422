package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/delivery/http/middleware"
	"skillmatch-backend/internal/delivery/http/response"
	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
)

type PostHandler struct {
	feedUC domain.FeedUsecase
}

func NewPostHandler(r *gin.RouterGroup, feedUC domain.FeedUsecase) {
	handler := &PostHandler{feedUC: feedUC}

	posts := r.Group("/posts")
	{
		posts.GET("/feed", handler.Feed)
		posts.POST("", handler.Create)
		posts.DELETE("/:id", handler.Delete)
		posts.POST("/:id/like", handler.ToggleLike)
		posts.POST("/:id/comments", handler.AddComment)
		posts.DELETE("/:id/comments/:commentId", handler.DeleteComment)
	}
}

type CreatePostRequest struct {
	Content string `json:"content"`
}

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// Feed godoc
// @Summary      Home feed
// @Description  Posts by the caller and accepted connections, newest first
// @Tags         posts
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Post}
// @Router       /posts/feed [get]
// @Security     BearerAuth
func (h *PostHandler) Feed(c *gin.Context) {
	posts, err := h.feedUC.VisiblePosts(c, middleware.CurrentActor(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Feed", posts)
}

// Create godoc
// @Summary      Create a post
// @Description  JSON body, or multipart with content and an optional image
// @Tags         posts
// @Accept       json,mpfd
// @Produce      json
// @Param        content  formData  string  false  "Post text"
// @Param        image    formData  file    false  "Image"
// @Success      201      {object}  response.Response{data=domain.Post}
// @Failure      400      {object}  response.Response
// @Router       /posts [post]
// @Security     BearerAuth
func (h *PostHandler) Create(c *gin.Context) {
	var in domain.CreatePostInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		image, err := formUpload(c, "image")
		if err != nil {
			c.Error(err)
			return
		}
		in = domain.CreatePostInput{Content: c.PostForm("content"), Image: image}
	} else {
		var req CreatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.BadRequest("Invalid request body"))
			return
		}
		in.Content = req.Content
	}

	post, err := h.feedUC.CreatePost(c, middleware.CurrentActor(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Post created", post)
}

// Delete godoc
// @Summary      Delete own post
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /posts/{id} [delete]
// @Security     BearerAuth
func (h *PostHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.feedUC.DeletePost(c, id, middleware.CurrentActor(c)); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Post deleted", nil)
}

// ToggleLike godoc
// @Summary      Like or unlike a post
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  response.Response{data=domain.LikeResult}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /posts/{id}/like [post]
// @Security     BearerAuth
func (h *PostHandler) ToggleLike(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	result, err := h.feedUC.ToggleLike(c, id, middleware.CurrentActor(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Post "+string(result.Action), result)
}

// AddComment godoc
// @Summary      Comment on a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id       path      int             true  "Post ID"
// @Param        comment  body      CommentRequest  true  "Comment"
// @Success      201      {object}  response.Response{data=domain.Comment}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /posts/{id}/comments [post]
// @Security     BearerAuth
func (h *PostHandler) AddComment(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Comment content is required"))
		return
	}

	comment, err := h.feedUC.AddComment(c, id, middleware.CurrentActor(c).UserID, req.Content)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Comment added", comment)
}

// DeleteComment godoc
// @Summary      Delete own comment
// @Tags         posts
// @Produce      json
// @Param        id         path      int  true  "Post ID"
// @Param        commentId  path      int  true  "Comment ID"
// @Success      200        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /posts/{id}/comments/{commentId} [delete]
// @Security     BearerAuth
func (h *PostHandler) DeleteComment(c *gin.Context) {
	postID, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	commentID, err := pathID(c, "commentId")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.feedUC.DeleteComment(c, postID, commentID, middleware.CurrentActor(c).UserID); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Comment deleted", nil)
}
