package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
	"skillmatch-backend/pkg/document"
	"skillmatch-backend/pkg/logger"
	"skillmatch-backend/pkg/security"
)

const maxApplicationFieldLength = 100

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	storage         domain.FileStorage
	mailer          domain.Mailer
	notifier        domain.NotificationEmitter
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	storage domain.FileStorage,
	mailer domain.Mailer,
	notifier domain.NotificationEmitter,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		applicationRepo: appRepo,
		jobRepo:         jobRepo,
		storage:         storage,
		mailer:          mailer,
		notifier:        notifier,
	}
}

// Apply stores the resume and records the application with its saved marker.
func (uc *applicationUsecase) Apply(ctx context.Context, actor domain.Actor, jobID int64, in domain.ApplyInput) (*domain.Application, error) {
	// 1. Only candidates apply
	if actor.Role != domain.RoleCandidate {
		return nil, apperror.Forbidden("Only candidates can apply to jobs")
	}

	// 2. Validate the resume before touching the database
	if in.Resume == nil {
		return nil, apperror.BadRequest("Resume file is required")
	}
	if err := security.ResumePolicy.Validate(in.Resume.Filename, in.Resume.Data); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	salary, notice, availability, err := optionalFields(in)
	if err != nil {
		return nil, err
	}

	// 3. Job must exist
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fromRepo(err, "Job not found")
	}

	// 4. Check for duplicate application
	exists, err := uc.applicationRepo.CheckExists(ctx, jobID, actor.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.Conflict("You have already applied to this job")
	}

	// 5. Best-effort text excerpt for recruiters
	var excerpt *string
	if text, err := document.Excerpt(in.Resume.Filename, in.Resume.Data); err != nil {
		logger.Log.Warn("Resume text extraction failed", "job_id", jobID, "error", err)
	} else if text != "" {
		excerpt = &text
	}

	// 6. File first, then the row that references it
	path, err := uc.storage.Save(ctx, domain.FileCategoryResume, in.Resume.Filename, in.Resume.Data)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("store resume: %w", err))
	}

	now := time.Now()
	app := &domain.Application{
		JobID:          jobID,
		CandidateID:    actor.UserID,
		Status:         domain.ApplicationPending,
		ResumePath:     path,
		ExpectedSalary: salary,
		NoticePeriod:   notice,
		Availability:   availability,
		ResumeExcerpt:  excerpt,
		CreatedAt:      now,
		UpdatedAt:      now,
		JobTitle:       &job.Title,
		Company:        &job.Company,
	}
	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("You have already applied to this job")
		}
		return nil, fromRepo(err, "Job not found")
	}
	return app, nil
}

func optionalFields(in domain.ApplyInput) (salary, notice, availability *string, err error) {
	fields := []struct {
		label string
		value string
		dst   **string
	}{
		{"Expected salary", in.ExpectedSalary, &salary},
		{"Notice period", in.NoticePeriod, &notice},
		{"Availability", in.Availability, &availability},
	}
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		if utf8.RuneCountInString(v) > maxApplicationFieldLength {
			return nil, nil, nil, apperror.BadRequest(fmt.Sprintf("%s must be at most %d characters", f.label, maxApplicationFieldLength))
		}
		*f.dst = &v
	}
	return salary, notice, availability, nil
}

// MyApplications returns all applications for the current candidate
func (uc *applicationUsecase) MyApplications(ctx context.Context, actor domain.Actor) ([]domain.Application, error) {
	if actor.Role != domain.RoleCandidate {
		return nil, apperror.Forbidden("Only candidates have applications")
	}
	apps, err := uc.applicationRepo.GetByCandidateID(ctx, actor.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// AppliedJobIDs returns the saved set used by clients to disable Apply buttons
func (uc *applicationUsecase) AppliedJobIDs(ctx context.Context, actor domain.Actor) ([]int64, error) {
	ids, err := uc.applicationRepo.SavedJobIDs(ctx, actor.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return ids, nil
}

// ListByJob returns all applications for a job (owner only)
func (uc *applicationUsecase) ListByJob(ctx context.Context, actor domain.Actor, jobID int64) ([]domain.Application, error) {
	if _, err := uc.validateJobOwnership(ctx, actor, jobID); err != nil {
		return nil, err
	}
	apps, err := uc.applicationRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

// UpdateStatus decides a PENDING application. Email and notification are
// side effects: their failures are logged and never undo the decision.
func (uc *applicationUsecase) UpdateStatus(ctx context.Context, actor domain.Actor, applicationID int64, status domain.ApplicationStatus) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fromRepo(err, "Application not found")
	}

	job, err := uc.validateJobOwnership(ctx, actor, app.JobID)
	if err != nil {
		return nil, err
	}

	if status != domain.ApplicationAccepted && status != domain.ApplicationRejected {
		return nil, apperror.BadRequest("Status must be ACCEPTED or REJECTED")
	}
	if !app.Status.CanTransitionTo(status) {
		return nil, apperror.Conflict(fmt.Sprintf("Application was already %s", strings.ToLower(string(app.Status))))
	}

	if err := uc.applicationRepo.UpdateStatus(ctx, applicationID, status); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("Application was already decided")
		}
		return nil, fromRepo(err, "Application not found")
	}
	app.Status = status
	app.UpdatedAt = time.Now()

	uc.sendDecisionEmail(ctx, app, job)

	verb := "accepted"
	if status == domain.ApplicationRejected {
		verb = "rejected"
	}
	msg := fmt.Sprintf("Your application for %s at %s was %s", job.Title, job.Company, verb)
	if err := uc.notifier.Emit(ctx, app.CandidateID, domain.NotificationApplicationStatus, msg); err != nil {
		logger.Log.Warn("Failed to emit application notification", "application_id", app.ID, "error", err)
	}
	return app, nil
}

func (uc *applicationUsecase) sendDecisionEmail(ctx context.Context, app *domain.Application, job *domain.Job) {
	if app.CandidateEmail == nil || *app.CandidateEmail == "" {
		logger.Log.Warn("Skipping decision email, candidate has no email", "application_id", app.ID)
		return
	}

	tmpl := domain.EmailApplicationAccepted
	if app.Status == domain.ApplicationRejected {
		tmpl = domain.EmailApplicationRejected
	}
	name := ""
	if app.CandidateName != nil {
		name = *app.CandidateName
	}

	err := uc.mailer.Send(ctx, domain.EmailMessage{
		To:       *app.CandidateEmail,
		Template: tmpl,
		Data: map[string]string{
			"candidate_name": name,
			"job_title":      job.Title,
			"company":        job.Company,
		},
	})
	if err != nil {
		logger.Log.Warn("Failed to send decision email", "application_id", app.ID, "template", tmpl, "error", err)
	}
}

// ExportApplications renders a job's applications as an XLSX workbook
func (uc *applicationUsecase) ExportApplications(ctx context.Context, actor domain.Actor, jobID int64) ([]byte, string, error) {
	job, err := uc.validateJobOwnership(ctx, actor, jobID)
	if err != nil {
		return nil, "", err
	}
	apps, err := uc.applicationRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	data, err := exportExcel(job, apps)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	filename := fmt.Sprintf("applications_job_%d_%s.xlsx", jobID, time.Now().Format("20060102_150405"))
	return data, filename, nil
}

var exportHeaders = []string{
	"CANDIDATE", "EMAIL", "STATUS", "EXPECTED SALARY", "NOTICE PERIOD", "AVAILABILITY", "APPLIED AT", "RESUME EXCERPT",
}

func exportExcel(job *domain.Job, apps []domain.Application) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Applications"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#0A66C2"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, app := range apps {
		values := []any{
			deref(app.CandidateName),
			deref(app.CandidateEmail),
			string(app.Status),
			deref(app.ExpectedSalary),
			deref(app.NoticePeriod),
			deref(app.Availability),
			app.CreatedAt.Format(time.RFC3339),
			deref(app.ResumeExcerpt),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range exportHeaders {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}
	f.SetDocProps(&excelize.DocProperties{Title: job.Title + " applications", Creator: "SkillMatch"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// validateJobOwnership loads the job and checks the actor posted it
func (uc *applicationUsecase) validateJobOwnership(ctx context.Context, actor domain.Actor, jobID int64) (*domain.Job, error) {
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fromRepo(err, "Job not found")
	}
	if job.RecruiterID != actor.UserID {
		return nil, apperror.Forbidden("You do not have access to this job")
	}
	return job, nil
}
