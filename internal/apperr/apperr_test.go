package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("bad input"), want: http.StatusBadRequest},
		{name: "notFound", err: NotFound("order"), want: http.StatusNotFound},
		{name: "conflict", err: Conflict("stale", nil), want: http.StatusConflict},
		{name: "internal", err: Internal("boom", errors.New("db down")), want: http.StatusInternalServerError},
		{name: "plainError", err: errors.New("x"), want: http.StatusInternalServerError},
		{name: "wrapped", err: fmt.Errorf("ctx: %w", NotFound("table")), want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicMessage(t *testing.T) {
	err := Internal("Could not save order", errors.New("connection refused"))
	if got := PublicMessage(err); got != "Could not save order" {
		t.Errorf("PublicMessage() = %q", got)
	}

	err = Validation("invalid order", "table_number must be positive", "items are required")
	want := "invalid order: table_number must be positive; items are required"
	if got := PublicMessage(err); got != want {
		t.Errorf("PublicMessage() = %q, want %q", got, want)
	}

	if got := PublicMessage(errors.New("secret")); got != "Internal server error" {
		t.Errorf("PublicMessage() = %q", got)
	}
}
