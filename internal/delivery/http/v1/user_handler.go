package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/delivery/http/middleware"
	"skillmatch-backend/internal/delivery/http/response"
	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
)

type UserHandler struct {
	userUC domain.UserUsecase
}

func NewUserHandler(r *gin.RouterGroup, userUC domain.UserUsecase) {
	handler := &UserHandler{userUC: userUC}

	users := r.Group("/users")
	{
		users.GET("/search", handler.Search)
		users.GET("/:id", handler.Get)
		users.DELETE("/me", handler.DeleteMe)
		users.PUT("/me/profile", handler.UpdateProfile)
		users.POST("/me/profile-picture", handler.UpdateProfilePicture)
	}
}

// Search godoc
// @Summary      Search users
// @Description  Case-insensitive search on name and username, exact username first
// @Tags         users
// @Produce      json
// @Param        q      query     string  true   "Search text"
// @Param        limit  query     int     false  "Max results (default 20, max 50)"
// @Success      200    {object}  response.Response{data=[]domain.UserSummary}
// @Failure      400    {object}  response.Response
// @Router       /users/search [get]
// @Security     BearerAuth
func (h *UserHandler) Search(c *gin.Context) {
	users, err := h.userUC.Search(c, c.Query("q"), queryInt(c, "limit", 0))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Users found", users)
}

// Get godoc
// @Summary      Get a user with profile
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.UserDetail}
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (h *UserHandler) Get(c *gin.Context) {
	detail, err := h.userUC.GetUser(c, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User details", detail)
}

// UpdateProfile godoc
// @Summary      Replace own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        profile  body      domain.UpdateProfileInput  true  "Profile"
// @Success      200      {object}  response.Response{data=domain.Profile}
// @Failure      400      {object}  response.Response
// @Router       /users/me/profile [put]
// @Security     BearerAuth
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req domain.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	profile, err := h.userUC.UpdateProfile(c, middleware.CurrentActor(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", profile)
}

// UpdateProfilePicture godoc
// @Summary      Upload profile picture
// @Description  Accepts jpg, png, gif or webp up to 5 MB. Stored downscaled as JPEG.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        picture  formData  file  true  "Image"
// @Success      200      {object}  response.Response{data=domain.Profile}
// @Failure      400      {object}  response.Response
// @Router       /users/me/profile-picture [post]
// @Security     BearerAuth
func (h *UserHandler) UpdateProfilePicture(c *gin.Context) {
	upload, err := formUpload(c, "picture")
	if err != nil {
		c.Error(err)
		return
	}

	profile, err := h.userUC.UpdateProfilePicture(c, middleware.CurrentActor(c), upload)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile picture updated", profile)
}

// DeleteMe godoc
// @Summary      Delete own account
// @Description  Removes the user and everything they own
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /users/me [delete]
// @Security     BearerAuth
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.userUC.DeleteAccount(c, middleware.CurrentActor(c)); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Account deleted", nil)
}
