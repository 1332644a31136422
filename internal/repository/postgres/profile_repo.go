package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"skillmatch-backend/internal/domain"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT user_id, about, skills, profile_picture, experience, education, updated_at
		FROM profiles
		WHERE user_id = $1`

	var (
		p          domain.Profile
		skills     []string
		experience []byte
		education  []byte
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.About, pq.Array(&skills), &p.ProfilePicture, &experience, &education, &p.UpdatedAt,
	)
	if err != nil {
		return nil, translate("get profile", err)
	}
	p.Skills = nonNil(skills)

	if err := json.Unmarshal(experience, &p.Experience); err != nil {
		return nil, fmt.Errorf("decode experience: %w", err)
	}
	if err := json.Unmarshal(education, &p.Education); err != nil {
		return nil, fmt.Errorf("decode education: %w", err)
	}
	if p.Experience == nil {
		p.Experience = []domain.Experience{}
	}
	if p.Education == nil {
		p.Education = []domain.Education{}
	}
	return &p, nil
}

// Upsert writes the editable fields; the picture column is left alone.
func (r *profileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	experience, err := json.Marshal(nonNilSlice(p.Experience))
	if err != nil {
		return fmt.Errorf("encode experience: %w", err)
	}
	education, err := json.Marshal(nonNilSlice(p.Education))
	if err != nil {
		return fmt.Errorf("encode education: %w", err)
	}

	query := `
		INSERT INTO profiles (user_id, about, skills, experience, education, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			about = EXCLUDED.about,
			skills = EXCLUDED.skills,
			experience = EXCLUDED.experience,
			education = EXCLUDED.education,
			updated_at = EXCLUDED.updated_at
		RETURNING profile_picture`

	err = r.db.QueryRow(ctx, query,
		p.UserID, p.About, pq.Array(nonNil(p.Skills)), string(experience), string(education), p.UpdatedAt,
	).Scan(&p.ProfilePicture)
	return translate("upsert profile", err)
}

func (r *profileRepo) UpdatePicture(ctx context.Context, userID, path string) error {
	query := `
		INSERT INTO profiles (user_id, profile_picture, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			profile_picture = EXCLUDED.profile_picture,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query, userID, path)
	return translate("update profile picture", err)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
