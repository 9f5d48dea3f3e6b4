package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("requested resource not found")
	ErrConflict   = errors.New("resource conflict")
	ErrGeneration = errors.New("problem set generation failed")
	ErrGrading    = errors.New("grading failed")
	ErrStore      = errors.New("storage failure")
)

// HTTPStatusFromError maps domain errors to HTTP status codes. Every
// orchestration step wraps one of the sentinel kinds above, so the first
// failing step decides the response status.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrGeneration) || errors.Is(err, ErrGrading) {
		return http.StatusBadGateway
	}

	// Unique violations (share code collisions) come back from lib/pq.
	// Checked before the store kind so a tagged violation still conflicts.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// WrapStore tags a persistence failure with the store kind. The driver
// error stays in the chain so finer mappings (unique violations) still
// apply.
func WrapStore(err error) error {
	return fmt.Errorf("%w: %w", ErrStore, err)
}
