package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillmatch-backend/internal/domain"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

// Create inserts the application and its saved-set marker together.
// Either unique key firing means the candidate already applied.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return translate("begin apply", err)
	}
	defer tx.Rollback(ctx)

	if app.Status == "" {
		app.Status = domain.ApplicationPending
	}

	query := `
		INSERT INTO applications (job_id, candidate_id, status, resume_path, expected_salary, notice_period, availability, resume_excerpt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err = tx.QueryRow(ctx, query,
		app.JobID, app.CandidateID, app.Status, app.ResumePath,
		app.ExpectedSalary, app.NoticePeriod, app.Availability, app.ResumeExcerpt,
		app.CreatedAt, app.UpdatedAt,
	).Scan(&app.ID)
	if err != nil {
		return translate("create application", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO job_saved (job_id, candidate_id) VALUES ($1, $2)`, app.JobID, app.CandidateID)
	if err != nil {
		return translate("mark job saved", err)
	}

	return translate("commit apply", tx.Commit(ctx))
}

const applicationSelect = `
	SELECT a.id, a.job_id, a.candidate_id, a.status, a.resume_path,
		a.expected_salary, a.notice_period, a.availability, a.resume_excerpt,
		a.created_at, a.updated_at,
		u.name, u.email, j.title, j.company
	FROM applications a
	LEFT JOIN users u ON u.id = a.candidate_id
	LEFT JOIN jobs j ON j.id = a.job_id`

func scanApplication(row rowScanner) (*domain.Application, error) {
	var app domain.Application
	err := row.Scan(
		&app.ID, &app.JobID, &app.CandidateID, &app.Status, &app.ResumePath,
		&app.ExpectedSalary, &app.NoticePeriod, &app.Availability, &app.ResumeExcerpt,
		&app.CreatedAt, &app.UpdatedAt,
		&app.CandidateName, &app.CandidateEmail, &app.JobTitle, &app.Company,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByID retrieves an application with joined candidate and job data
func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, translate("get application", err)
	}
	return app, nil
}

func (r *applicationRepo) list(ctx context.Context, op, where string, arg any) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx, applicationSelect+` WHERE `+where+` ORDER BY a.created_at DESC, a.id DESC`, arg)
	if err != nil {
		return nil, translate(op, err)
	}
	defer rows.Close()

	applications := []domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, translate("scan application", err)
		}
		applications = append(applications, *app)
	}
	return applications, translate(op, rows.Err())
}

// GetByJobID retrieves all applications for a job, newest first
func (r *applicationRepo) GetByJobID(ctx context.Context, jobID int64) ([]domain.Application, error) {
	return r.list(ctx, "list job applications", `a.job_id = $1`, jobID)
}

// GetByCandidateID retrieves a candidate's applications with job titles
func (r *applicationRepo) GetByCandidateID(ctx context.Context, candidateID string) ([]domain.Application, error) {
	return r.list(ctx, "list candidate applications", `a.candidate_id = $1`, candidateID)
}

// CheckExists reports an existing application or saved-set marker for the pair
func (r *applicationRepo) CheckExists(ctx context.Context, jobID int64, candidateID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM applications WHERE job_id = $1 AND candidate_id = $2)
	           OR EXISTS(SELECT 1 FROM job_saved WHERE job_id = $1 AND candidate_id = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, jobID, candidateID).Scan(&exists)
	return exists, translate("check application", err)
}

// UpdateStatus only moves PENDING rows. A missing row and a decided row are
// told apart so callers can answer NotFound or Conflict.
func (r *applicationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE applications SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`, id, status)
	if err != nil {
		return translate("update application status", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, id).Scan(&exists); err != nil {
		return translate("update application status", err)
	}
	if !exists {
		return translate("update application status", pgx.ErrNoRows)
	}
	return translate("update application status", errAlreadyDecided)
}

func (r *applicationRepo) SavedJobIDs(ctx context.Context, candidateID string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT job_id FROM job_saved WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return nil, translate("list saved jobs", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, translate("scan saved job", err)
		}
		ids = append(ids, id)
	}
	return ids, translate("list saved jobs", rows.Err())
}
