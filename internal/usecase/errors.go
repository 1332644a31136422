package usecase

import (
	"errors"
	"net/http"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
)

// fromRepo converts repository sentinels into client-facing errors.
func fromRepo(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return apperror.New(http.StatusNotFound, notFound, err)
	case errors.Is(err, domain.ErrConflict):
		return apperror.New(http.StatusConflict, "Resource already exists", err)
	default:
		return apperror.Internal(err)
	}
}
