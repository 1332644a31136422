package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/delivery/http/response"
	"skillmatch-backend/internal/domain"
)

type ResumeMatchHandler struct {
	matchUC domain.ResumeMatchUsecase
}

func NewResumeMatchHandler(r *gin.RouterGroup, matchUC domain.ResumeMatchUsecase) {
	handler := &ResumeMatchHandler{matchUC: matchUC}

	r.POST("/resume-match", handler.Analyze)
	r.GET("/resume-match/health", handler.Health)
}

// Analyze godoc
// @Summary      Score a resume against a job description
// @Description  Forwards to the analysis service. pdf, doc or docx up to 10 MB.
// @Tags         resume-match
// @Accept       multipart/form-data
// @Produce      json
// @Param        resume           formData  file    true  "Resume"
// @Param        job_description  formData  string  true  "Job description"
// @Success      200              {object}  response.Response{data=domain.MatchResult}
// @Failure      400              {object}  response.Response
// @Failure      503              {object}  response.Response
// @Router       /resume-match [post]
// @Security     BearerAuth
func (h *ResumeMatchHandler) Analyze(c *gin.Context) {
	resume, err := formUpload(c, "resume")
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.matchUC.Analyze(c, resume, c.PostForm("job_description"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resume analyzed", result)
}

// Health godoc
// @Summary      Analysis service health
// @Tags         resume-match
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /resume-match/health [get]
// @Security     BearerAuth
func (h *ResumeMatchHandler) Health(c *gin.Context) {
	if err := h.matchUC.Health(c); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Analysis service operational", nil)
}
