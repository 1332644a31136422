package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
	"skillmatch-backend/pkg/security"
	"skillmatch-backend/pkg/validation"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

// dummyHash keeps the unknown-email path as slow as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("skillmatch-timing-guard"), bcrypt.DefaultCost)

type authUsecase struct {
	userRepo  domain.UserRepository
	tokens    TokenIssuer
	validate  *validator.Validate
	secLogger *security.SecurityLogger
}

func NewAuthUsecase(userRepo domain.UserRepository, tokens TokenIssuer, validate *validator.Validate, secLogger *security.SecurityLogger) domain.AuthUsecase {
	return &authUsecase{
		userRepo:  userRepo,
		tokens:    tokens,
		validate:  validate,
		secLogger: secLogger,
	}
}

func (u *authUsecase) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))

	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("Email or username is already taken")
		}
		return nil, apperror.Internal(err)
	}
	u.secLogger.LogUserEvent(ctx, security.EventRegistered, user.ID)

	return u.issue(user)
}

func (u *authUsecase) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.BadRequest("Email and password are required")
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Internal(err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		u.secLogger.LogLoginFailed(ctx, email, "unknown_email")
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		u.secLogger.LogLoginFailed(ctx, email, "wrong_password")
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	u.secLogger.LogUserEvent(ctx, security.EventLoginSuccess, user.ID)
	return u.issue(user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "User not found")
	}
	return user, nil
}

func (u *authUsecase) issue(user *domain.User) (*domain.AuthResult, error) {
	token, err := u.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.AuthResult{Token: token, User: user}, nil
}
