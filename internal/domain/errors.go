package domain

import "errors"

// Repository sentinels. Usecases translate these into apperror values; they never
// reach the HTTP layer as-is.
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource conflict")
)
