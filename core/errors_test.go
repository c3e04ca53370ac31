package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("disk I/O error")

	tests := []struct {
		name     string
		err      error
		kind     error
		wantText string
	}{
		{
			name:     "validation",
			err:      NewValidationError("source", "Missing required parameter: source"),
			kind:     ErrValidation,
			wantText: "Missing required parameter: source",
		},
		{
			name:     "not found",
			err:      NewNotFoundError("Source not found: nonexistent"),
			kind:     ErrNotFound,
			wantText: "Source not found: nonexistent",
		},
		{
			name:     "search",
			err:      &SearchError{Cause: cause},
			kind:     ErrSearch,
			wantText: "Search failed: disk I/O error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("tool call: %w", tt.err)
			if !errors.Is(wrapped, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", wrapped, tt.kind)
			}
			if tt.err.Error() != tt.wantText {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.wantText)
			}
		})
	}

	if !errors.Is(&SearchError{Cause: cause}, cause) {
		t.Errorf("SearchError should unwrap to its cause")
	}
	if errors.Is(NewNotFoundError("x"), ErrValidation) {
		t.Errorf("NotFoundError must not match ErrValidation")
	}
}
