package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillmatch-backend/internal/domain"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, name, email, username, password_hash, role, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.Username, user.PasswordHash, user.Role,
		user.CreatedAt, user.UpdatedAt,
	)
	return translate("create user", err)
}

const userColumns = `id, name, email, username, password_hash, role, created_at, updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Username, &user.PasswordHash, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, translate("get user", err)
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, translate("get user by email", err)
	}
	return user, nil
}

// Search matches name or username case-insensitively, exact username hits first.
func (r *userRepo) Search(ctx context.Context, q string, limit int) ([]domain.UserSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.name ILIKE '%' || $1 || '%' OR u.username ILIKE '%' || $1 || '%'
		ORDER BY (LOWER(u.username) = LOWER($1)) DESC, u.name ASC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, escapeLike(q), limit)
	if err != nil {
		return nil, translate("search users", err)
	}
	defer rows.Close()

	users := []domain.UserSummary{}
	for rows.Next() {
		var s domain.UserSummary
		if err := rows.Scan(summaryDest(&s)...); err != nil {
			return nil, translate("scan user", err)
		}
		users = append(users, s)
	}
	return users, translate("search users", rows.Err())
}

// Delete removes the account. Jobs go first so their applications and saved
// rows are gone before the owning user row, mirroring the job delete path.
func (r *userRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return translate("begin delete user", err)
	}
	defer tx.Rollback(ctx)

	steps := []string{
		`DELETE FROM applications WHERE job_id IN (SELECT id FROM jobs WHERE recruiter_id = $1)`,
		`DELETE FROM job_saved WHERE job_id IN (SELECT id FROM jobs WHERE recruiter_id = $1)`,
		`DELETE FROM jobs WHERE recruiter_id = $1`,
	}
	for _, stmt := range steps {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return translate("delete user data", err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translate("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("delete user", pgx.ErrNoRows)
	}
	return translate("commit delete user", tx.Commit(ctx))
}
