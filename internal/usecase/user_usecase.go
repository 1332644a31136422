package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
	"skillmatch-backend/pkg/imaging"
	"skillmatch-backend/pkg/logger"
	"skillmatch-backend/pkg/security"
	"skillmatch-backend/pkg/validation"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

type userUsecase struct {
	userRepo    domain.UserRepository
	profileRepo domain.ProfileRepository
	storage     domain.FileStorage
	validate    *validator.Validate
	secLogger   *security.SecurityLogger
}

func NewUserUsecase(
	userRepo domain.UserRepository,
	profileRepo domain.ProfileRepository,
	storage domain.FileStorage,
	validate *validator.Validate,
	secLogger *security.SecurityLogger,
) domain.UserUsecase {
	return &userUsecase{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		storage:     storage,
		validate:    validate,
		secLogger:   secLogger,
	}
}

func (u *userUsecase) GetUser(ctx context.Context, id string) (*domain.UserDetail, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "User not found")
	}
	profile, err := u.loadProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.UserDetail{User: user, Profile: profile}, nil
}

// loadProfile returns an empty profile for users who never edited theirs.
func (u *userUsecase) loadProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := u.profileRepo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Profile{
			UserID:     userID,
			Skills:     []string{},
			Experience: []domain.Experience{},
			Education:  []domain.Education{},
		}, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return profile, nil
}

func (u *userUsecase) Search(ctx context.Context, query string, limit int) ([]domain.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.BadRequest("Search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	users, err := u.userRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return users, nil
}

func (u *userUsecase) UpdateProfile(ctx context.Context, actor domain.Actor, in domain.UpdateProfileInput) (*domain.Profile, error) {
	in.About = strings.TrimSpace(in.About)
	in.Skills = dedupeSkills(in.Skills)

	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}
	for _, e := range in.Experience {
		if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
			return nil, apperror.BadRequest(fmt.Sprintf("Experience %q ends before it starts", e.Title))
		}
	}
	for _, e := range in.Education {
		if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
			return nil, apperror.BadRequest(fmt.Sprintf("Education at %q ends before it starts", e.School))
		}
	}

	profile := &domain.Profile{
		UserID:     actor.UserID,
		About:      in.About,
		Skills:     in.Skills,
		Experience: in.Experience,
		Education:  in.Education,
		UpdatedAt:  time.Now(),
	}
	if profile.Experience == nil {
		profile.Experience = []domain.Experience{}
	}
	if profile.Education == nil {
		profile.Education = []domain.Education{}
	}

	if err := u.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fromRepo(err, "User not found")
	}
	return profile, nil
}

// dedupeSkills trims entries, drops blanks and keeps the first occurrence.
func dedupeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (u *userUsecase) UpdateProfilePicture(ctx context.Context, actor domain.Actor, upload *domain.Upload) (*domain.Profile, error) {
	if upload == nil {
		return nil, apperror.BadRequest("Profile picture is required")
	}
	if err := security.ImagePolicy.Validate(upload.Filename, upload.Data); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	previous, err := u.loadProfile(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	data, err := imaging.Downscale(upload.Data, imaging.ProfileMaxEdge)
	if err != nil {
		logger.Log.Warn("Rejected undecodable profile picture", "user_id", actor.UserID, "error", err)
		return nil, apperror.BadRequest("Image could not be processed")
	}
	name := strings.TrimSuffix(upload.Filename, filepath.Ext(upload.Filename)) + ".jpg"

	path, err := u.storage.Save(ctx, domain.FileCategoryProfile, name, data)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("store profile picture: %w", err))
	}
	if err := u.profileRepo.UpdatePicture(ctx, actor.UserID, path); err != nil {
		return nil, fromRepo(err, "User not found")
	}

	if previous.ProfilePicture != nil && *previous.ProfilePicture != path {
		if err := u.storage.Delete(ctx, *previous.ProfilePicture); err != nil {
			logger.Log.Warn("Failed to remove old profile picture", "user_id", actor.UserID, "error", err)
		}
	}

	previous.ProfilePicture = &path
	return previous, nil
}

func (u *userUsecase) DeleteAccount(ctx context.Context, actor domain.Actor) error {
	if err := u.userRepo.Delete(ctx, actor.UserID); err != nil {
		return fromRepo(err, "User not found")
	}
	u.secLogger.LogUserEvent(ctx, security.EventAccountDeleted, actor.UserID)
	return nil
}
