package domain

import (
	"context"
	"time"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// CanTransitionTo encodes PENDING -> ACCEPTED | REJECTED with no further moves.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	switch s {
	case ApplicationPending:
		return next == ApplicationAccepted || next == ApplicationRejected
	case ApplicationAccepted, ApplicationRejected:
		return false
	}
	return false
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

type Application struct {
	ID             int64             `json:"id"`
	JobID          int64             `json:"job_id"`
	CandidateID    string            `json:"candidate_id"`
	Status         ApplicationStatus `json:"status"`
	ResumePath     string            `json:"resume_path"`
	ExpectedSalary *string           `json:"expected_salary,omitempty"`
	NoticePeriod   *string           `json:"notice_period,omitempty"`
	Availability   *string           `json:"availability,omitempty"`
	ResumeExcerpt  *string           `json:"resume_excerpt,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	// Joined data for list responses
	CandidateName  *string `json:"candidate_name,omitempty"`
	CandidateEmail *string `json:"candidate_email,omitempty"`
	JobTitle       *string `json:"job_title,omitempty"`
	Company        *string `json:"company,omitempty"`
}

type ApplyInput struct {
	Resume         *Upload
	ExpectedSalary string
	NoticePeriod   string
	Availability   string
}

type ApplicationRepository interface {
	// Create inserts the application and the saved-set marker in one transaction.
	// It returns ErrConflict when either already exists.
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	GetByJobID(ctx context.Context, jobID int64) ([]Application, error)
	GetByCandidateID(ctx context.Context, candidateID string) ([]Application, error)
	CheckExists(ctx context.Context, jobID int64, candidateID string) (bool, error)
	// UpdateStatus moves a PENDING application; ErrConflict if it is no longer PENDING.
	UpdateStatus(ctx context.Context, id int64, status ApplicationStatus) error
	SavedJobIDs(ctx context.Context, candidateID string) ([]int64, error)
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, actor Actor, jobID int64, in ApplyInput) (*Application, error)
	MyApplications(ctx context.Context, actor Actor) ([]Application, error)
	AppliedJobIDs(ctx context.Context, actor Actor) ([]int64, error)
	ListByJob(ctx context.Context, actor Actor, jobID int64) ([]Application, error)
	UpdateStatus(ctx context.Context, actor Actor, applicationID int64, status ApplicationStatus) (*Application, error)
	ExportApplications(ctx context.Context, actor Actor, jobID int64) ([]byte, string, error)
}
