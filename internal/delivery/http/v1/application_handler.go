package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/delivery/http/middleware"
	"skillmatch-backend/internal/delivery/http/response"
	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes
func NewApplicationHandler(r *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	r.POST("/jobs/:id/apply", handler.Apply)
	r.GET("/jobs/:id/applications", handler.ListForJob)
	r.GET("/jobs/:id/applications/export", handler.Export)
	r.PATCH("/applications/:id/status", handler.UpdateStatus)

	candidates := r.Group("/candidates")
	{
		candidates.GET("/applications", handler.MyApplications)
		candidates.GET("/applied-jobs", handler.AppliedJobs)
	}
}

type UpdateStatusRequest struct {
	Status domain.ApplicationStatus `json:"status" binding:"required"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Candidate only. Resume must be pdf, doc or docx up to 5 MB.
// @Tags         applications
// @Accept       multipart/form-data
// @Produce      json
// @Param        id               path      int     true   "Job ID"
// @Param        resume           formData  file    true   "Resume"
// @Param        expected_salary  formData  string  false  "Expected salary"
// @Param        notice_period    formData  string  false  "Notice period"
// @Param        availability     formData  string  false  "Availability"
// @Success      201              {object}  response.Response{data=domain.Application}
// @Failure      400              {object}  response.Response
// @Failure      403              {object}  response.Response
// @Failure      409              {object}  response.Response
// @Router       /jobs/{id}/apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	resume, err := formUpload(c, "resume")
	if err != nil {
		c.Error(err)
		return
	}

	app, err := h.applicationUC.Apply(c, middleware.CurrentActor(c), jobID, domain.ApplyInput{
		Resume:         resume,
		ExpectedSalary: c.PostForm("expected_salary"),
		NoticePeriod:   c.PostForm("notice_period"),
		Availability:   c.PostForm("availability"),
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}

// MyApplications godoc
// @Summary      Get my applications
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      403  {object}  response.Response
// @Router       /candidates/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) MyApplications(c *gin.Context) {
	apps, err := h.applicationUC.MyApplications(c, middleware.CurrentActor(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

// AppliedJobs godoc
// @Summary      IDs of jobs I applied to
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]int64}
// @Router       /candidates/applied-jobs [get]
// @Security     BearerAuth
func (h *ApplicationHandler) AppliedJobs(c *gin.Context) {
	ids, err := h.applicationUC.AppliedJobIDs(c, middleware.CurrentActor(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applied jobs", ids)
}

// ListForJob godoc
// @Summary      List applications for a job
// @Description  Job owner only
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	apps, err := h.applicationUC.ListByJob(c, middleware.CurrentActor(c), jobID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

// Export godoc
// @Summary      Export applications as XLSX
// @Description  Job owner only
// @Tags         applications
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path      int  true  "Job ID"
// @Success      200  {file}    binary
// @Failure      403  {object}  response.Response
// @Router       /jobs/{id}/applications/export [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Export(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	data, filename, err := h.applicationUC.ExportApplications(c, middleware.CurrentActor(c), jobID)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// UpdateStatus godoc
// @Summary      Accept or reject an application
// @Description  Job owner only. PENDING moves to ACCEPTED or REJECTED once; the candidate is emailed.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Application ID"
// @Param        body  body      UpdateStatusRequest  true  "New status"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /applications/{id}/status [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Status is required"))
		return
	}

	app, err := h.applicationUC.UpdateStatus(c, middleware.CurrentActor(c), id, req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application status updated", app)
}
