package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/internal/usecase"
	"skillmatch-backend/pkg/apperror"
	"skillmatch-backend/pkg/security"
	"skillmatch-backend/pkg/validation"
)

func nopSecurityLogger() *security.SecurityLogger {
	return security.NewSecurityLogger(zap.NewNop(), "skillmatch-test", "test")
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	valid := domain.RegisterInput{
		Name:     "Jane Doe",
		Email:    "  Jane@Example.com ",
		Username: "JaneDoe",
		Password: "s3cret-pass",
		Role:     domain.RoleCandidate,
	}

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		tokens := new(MockTokens)
		uc := usecase.NewAuthUsecase(users, tokens, validation.New(), nopSecurityLogger())

		users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "jane@example.com" && u.Username == "janedoe" &&
				u.ID != "" && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")) == nil
		})).Return(nil)
		tokens.On("Issue", mock.Anything, "CANDIDATE").Return("signed", nil)

		res, err := uc.Register(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, "signed", res.Token)
		assert.Equal(t, domain.RoleCandidate, res.User.Role)
	})

	t.Run("Validation failure", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(users, new(MockTokens), validation.New(), nopSecurityLogger())

		in := valid
		in.Role = "ADMIN"
		_, err := uc.Register(ctx, in)
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Taken email", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(users, new(MockTokens), validation.New(), nopSecurityLogger())
		users.On("Create", ctx, mock.Anything).Return(domain.ErrConflict)

		_, err := uc.Register(ctx, valid)
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{ID: "u-1", Email: "jane@example.com", PasswordHash: string(hash), Role: domain.RoleRecruiter}

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		tokens := new(MockTokens)
		uc := usecase.NewAuthUsecase(users, tokens, validation.New(), nopSecurityLogger())
		users.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)
		tokens.On("Issue", "u-1", "RECRUITER").Return("signed", nil)

		res, err := uc.Login(ctx, "Jane@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, "signed", res.Token)
	})

	t.Run("Wrong password and unknown email look the same", func(t *testing.T) {
		users := new(MockUserRepo)
		uc := usecase.NewAuthUsecase(users, new(MockTokens), validation.New(), nopSecurityLogger())
		users.On("GetByEmail", ctx, "jane@example.com").Return(user, nil)
		users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, domain.ErrNotFound)

		_, wrongPass := uc.Login(ctx, "jane@example.com", "nope")
		_, unknown := uc.Login(ctx, "nobody@example.com", "nope")
		assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(wrongPass))
		assert.Equal(t, wrongPass.Error(), unknown.Error())
	})

	t.Run("Missing credentials", func(t *testing.T) {
		uc := usecase.NewAuthUsecase(new(MockUserRepo), new(MockTokens), validation.New(), nopSecurityLogger())
		_, err := uc.Login(ctx, "", "x")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})
}
