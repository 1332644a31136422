package domain

import (
	"context"
	"time"
)

type Job struct {
	ID             int64     `json:"id"`
	RecruiterID    string    `json:"recruiter_id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	EmploymentType string    `json:"employment_type"`
	Description    string    `json:"description"`
	Skills         []string  `json:"skills"`
	Requirements   []string  `json:"requirements"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	ApplicationCount int `json:"application_count"`
}

type JobInput struct {
	Title          string   `json:"title" validate:"required,max=160"`
	Company        string   `json:"company" validate:"required,max=160"`
	Location       string   `json:"location" validate:"required,max=160"`
	EmploymentType string   `json:"employment_type" validate:"omitempty,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP REMOTE"`
	Description    string   `json:"description" validate:"required,max=10000"`
	Skills         []string `json:"skills" validate:"max=30,dive,min=1,max=50"`
	Requirements   []string `json:"requirements" validate:"max=30,dive,min=1,max=500"`
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	Fetch(ctx context.Context, query string, limit, offset int) ([]Job, int64, error)
	FetchByRecruiter(ctx context.Context, recruiterID string) ([]Job, error)
	Update(ctx context.Context, job *Job) error
	// Delete removes the job together with its applications and saved-set rows.
	Delete(ctx context.Context, id int64) error
}

type JobUsecase interface {
	CreateJob(ctx context.Context, actor Actor, in JobInput) (*Job, error)
	GetJob(ctx context.Context, id int64) (*Job, error)
	ListJobs(ctx context.Context, query string, page, pageSize int) ([]Job, int64, error)
	ListMyJobs(ctx context.Context, actor Actor) ([]Job, error)
	UpdateJob(ctx context.Context, actor Actor, id int64, in JobInput) (*Job, error)
	DeleteJob(ctx context.Context, actor Actor, id int64) error
}
