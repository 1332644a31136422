package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
	"skillmatch-backend/pkg/logger"
	"skillmatch-backend/pkg/validation"
)

const (
	defaultJobPageSize    = 20
	maxJobPageSize        = 100
	defaultEmploymentType = "FULL_TIME"
)

type jobUsecase struct {
	jobRepo  domain.JobRepository
	validate *validator.Validate
	notifier domain.NotificationEmitter
}

func NewJobUsecase(jobRepo domain.JobRepository, validate *validator.Validate, notifier domain.NotificationEmitter) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:  jobRepo,
		validate: validate,
		notifier: notifier,
	}
}

func (u *jobUsecase) CreateJob(ctx context.Context, actor domain.Actor, in domain.JobInput) (*domain.Job, error) {
	if actor.Role != domain.RoleRecruiter {
		return nil, apperror.Forbidden("Only recruiters can post jobs")
	}
	in = normalizeJobInput(in)
	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	now := time.Now()
	job := &domain.Job{RecruiterID: actor.UserID, CreatedAt: now, UpdatedAt: now}
	applyJobInput(job, in)

	if err := u.jobRepo.Create(ctx, job); err != nil {
		return nil, fromRepo(err, "Recruiter not found")
	}

	msg := fmt.Sprintf("%s is hiring: %s", job.Company, job.Title)
	if err := u.notifier.FanOut(ctx, actor.UserID, domain.NotificationNewJob, msg); err != nil {
		logger.Log.Warn("Failed to fan out job notification", "job_id", job.ID, "error", err)
	}
	return job, nil
}

func (u *jobUsecase) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "Job not found")
	}
	return job, nil
}

func (u *jobUsecase) ListJobs(ctx context.Context, query string, page, pageSize int) ([]domain.Job, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultJobPageSize
	}
	if pageSize > maxJobPageSize {
		pageSize = maxJobPageSize
	}

	jobs, total, err := u.jobRepo.Fetch(ctx, strings.TrimSpace(query), pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return jobs, total, nil
}

func (u *jobUsecase) ListMyJobs(ctx context.Context, actor domain.Actor) ([]domain.Job, error) {
	if actor.Role != domain.RoleRecruiter {
		return nil, apperror.Forbidden("Only recruiters have posted jobs")
	}
	jobs, err := u.jobRepo.FetchByRecruiter(ctx, actor.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return jobs, nil
}

func (u *jobUsecase) UpdateJob(ctx context.Context, actor domain.Actor, id int64, in domain.JobInput) (*domain.Job, error) {
	job, err := u.ownedJob(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in = normalizeJobInput(in)
	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	applyJobInput(job, in)
	job.UpdatedAt = time.Now()
	if err := u.jobRepo.Update(ctx, job); err != nil {
		return nil, fromRepo(err, "Job not found")
	}
	return job, nil
}

// DeleteJob removes the job with its applications and saved markers.
func (u *jobUsecase) DeleteJob(ctx context.Context, actor domain.Actor, id int64) error {
	if _, err := u.ownedJob(ctx, actor, id); err != nil {
		return err
	}
	return fromRepo(u.jobRepo.Delete(ctx, id), "Job not found")
}

func (u *jobUsecase) ownedJob(ctx context.Context, actor domain.Actor, id int64) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "Job not found")
	}
	if job.RecruiterID != actor.UserID {
		return nil, apperror.Forbidden("You do not own this job")
	}
	return job, nil
}

func normalizeJobInput(in domain.JobInput) domain.JobInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Company = strings.TrimSpace(in.Company)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.EmploymentType = strings.ToUpper(strings.TrimSpace(in.EmploymentType))
	if in.EmploymentType == "" {
		in.EmploymentType = defaultEmploymentType
	}
	in.Skills = dedupeSkills(in.Skills)
	requirements := make([]string, 0, len(in.Requirements))
	for _, r := range in.Requirements {
		if r = strings.TrimSpace(r); r != "" {
			requirements = append(requirements, r)
		}
	}
	in.Requirements = requirements
	return in
}

func applyJobInput(job *domain.Job, in domain.JobInput) {
	job.Title = in.Title
	job.Company = in.Company
	job.Location = in.Location
	job.EmploymentType = in.EmploymentType
	job.Description = in.Description
	job.Skills = in.Skills
	job.Requirements = in.Requirements
}
