package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/apperror"
)

// maxUploadBytes caps what a handler reads into memory. Per-feature limits
// are enforced by the usecases.
const maxUploadBytes = 10 << 20

func errUploadTooLarge() error {
	return apperror.BadRequest(fmt.Sprintf("File exceeds %d MB", maxUploadBytes>>20))
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest(fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

// formUpload reads an optional multipart file. A missing field returns nil, nil.
func formUpload(c *gin.Context, field string) (*domain.Upload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.BadRequest("Invalid multipart form")
	}
	if header.Size > maxUploadBytes {
		return nil, errUploadTooLarge()
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("read upload: %w", err))
	}
	if len(data) > maxUploadBytes {
		return nil, errUploadTooLarge()
	}

	return &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
