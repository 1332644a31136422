package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"skillmatch-backend/internal/domain"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `INSERT INTO jobs (recruiter_id, title, company, location, employment_type, description, skills, requirements, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := r.db.QueryRow(ctx, query,
		job.RecruiterID, job.Title, job.Company, job.Location, job.EmploymentType, job.Description,
		pq.Array(nonNil(job.Skills)), pq.Array(nonNil(job.Requirements)),
		job.CreatedAt, job.UpdatedAt,
	).Scan(&job.ID)
	return translate("create job", err)
}

const jobSelect = `
	SELECT j.id, j.recruiter_id, j.title, j.company, j.location, j.employment_type, j.description,
		j.skills, j.requirements, j.created_at, j.updated_at,
		(SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id) AS application_count`

func scanJob(row rowScanner, extra ...any) (*domain.Job, error) {
	var job domain.Job
	dest := []any{
		&job.ID, &job.RecruiterID, &job.Title, &job.Company, &job.Location, &job.EmploymentType, &job.Description,
		pq.Array(&job.Skills), pq.Array(&job.Requirements), &job.CreatedAt, &job.UpdatedAt,
		&job.ApplicationCount,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	job.Skills = nonNil(job.Skills)
	job.Requirements = nonNil(job.Requirements)
	return &job, nil
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, jobSelect+` FROM jobs j WHERE j.id = $1`, id))
	if err != nil {
		return nil, translate("get job", err)
	}
	return job, nil
}

// Fetch pages through jobs newest first. query filters title, company,
// location and skills case-insensitively; total is the unpaged match count.
func (r *jobRepo) Fetch(ctx context.Context, q string, limit, offset int) ([]domain.Job, int64, error) {
	query := jobSelect + `, COUNT(*) OVER() AS total
		FROM jobs j
		WHERE $1 = ''
		   OR j.title ILIKE '%' || $1 || '%'
		   OR j.company ILIKE '%' || $1 || '%'
		   OR j.location ILIKE '%' || $1 || '%'
		   OR EXISTS (SELECT 1 FROM unnest(j.skills) s WHERE s ILIKE '%' || $1 || '%')
		ORDER BY j.created_at DESC, j.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, escapeLike(q), limit, offset)
	if err != nil {
		return nil, 0, translate("fetch jobs", err)
	}
	defer rows.Close()

	var (
		jobs  = []domain.Job{}
		total int64
	)
	for rows.Next() {
		job, err := scanJob(rows, &total)
		if err != nil {
			return nil, 0, translate("scan job", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate("fetch jobs", err)
	}

	// an offset past the end returns no rows, so no window total either
	if len(jobs) == 0 && offset > 0 {
		err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs j
			WHERE $1 = ''
			   OR j.title ILIKE '%' || $1 || '%'
			   OR j.company ILIKE '%' || $1 || '%'
			   OR j.location ILIKE '%' || $1 || '%'
			   OR EXISTS (SELECT 1 FROM unnest(j.skills) s WHERE s ILIKE '%' || $1 || '%')`, escapeLike(q)).Scan(&total)
		if err != nil {
			return nil, 0, translate("count jobs", err)
		}
	}
	return jobs, total, nil
}

func (r *jobRepo) FetchByRecruiter(ctx context.Context, recruiterID string) ([]domain.Job, error) {
	rows, err := r.db.Query(ctx, jobSelect+` FROM jobs j WHERE j.recruiter_id = $1 ORDER BY j.created_at DESC, j.id DESC`, recruiterID)
	if err != nil {
		return nil, translate("fetch recruiter jobs", err)
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, translate("scan job", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, translate("fetch recruiter jobs", rows.Err())
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs SET
			title = $2, company = $3, location = $4, employment_type = $5, description = $6,
			skills = $7, requirements = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		job.ID, job.Title, job.Company, job.Location, job.EmploymentType, job.Description,
		pq.Array(nonNil(job.Skills)), pq.Array(nonNil(job.Requirements)), job.UpdatedAt,
	)
	if err != nil {
		return translate("update job", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("update job", pgx.ErrNoRows)
	}
	return nil
}

// Delete removes applications, saved-set rows and the job in one transaction.
func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return translate("begin delete job", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM applications WHERE job_id = $1`, id); err != nil {
		return translate("delete job applications", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM job_saved WHERE job_id = $1`, id); err != nil {
		return translate("delete saved jobs", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return translate("delete job", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete job", pgx.ErrNoRows)
	}
	return translate("commit delete job", tx.Commit(ctx))
}
