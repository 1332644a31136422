package domain

import "context"

type FileCategory string

const (
	FileCategoryProfile FileCategory = "profile"
	FileCategoryPost    FileCategory = "post"
	FileCategoryResume  FileCategory = "resume"
)

// Upload is an uploaded file already read into memory by the delivery layer.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u *Upload) Size() int64 {
	if u == nil {
		return 0
	}
	return int64(len(u.Data))
}

// FileStorage persists uploaded binaries and returns a stable relative path.
type FileStorage interface {
	Save(ctx context.Context, category FileCategory, filename string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
}
