package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: fmt.Errorf("image required: %w", ErrValidation), want: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("assignment a1: %w", ErrNotFound), want: http.StatusNotFound},
		{name: "conflict", err: fmt.Errorf("duplicate: %w", ErrConflict), want: http.StatusConflict},
		{name: "generation", err: fmt.Errorf("3 problems: %w", ErrGeneration), want: http.StatusBadGateway},
		{name: "grading", err: fmt.Errorf("timeout: %w", ErrGrading), want: http.StatusBadGateway},
		{name: "wrapped store failure", err: fmt.Errorf("failed to create: %w", WrapStore(errors.New("connection refused"))), want: http.StatusInternalServerError},
		{
			// A share-code collision is a store failure too, but the
			// unique violation wins the finer mapping.
			name: "unique violation inside store wrap",
			err:  fmt.Errorf("failed to create: %w", WrapStore(&pq.Error{Code: "23505"})),
			want: http.StatusConflict,
		},
		{name: "unclassified", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromError(tt.err); got != tt.want {
				t.Errorf("HTTPStatusFromError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWrapStoreKeepsTheChain(t *testing.T) {
	cause := &pq.Error{Code: "23505"}
	err := fmt.Errorf("failed to create assignment: %w", WrapStore(cause))

	if !errors.Is(err, ErrStore) {
		t.Error("wrapped error lost the store kind")
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		t.Error("wrapped error lost the driver error")
	}
}
