package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindAuth, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindDependency, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("approve: %w", NotFound("User not found."))
	if got := KindOf(err); got != KindNotFound {
		t.Errorf("KindOf() = %v, want %v", got, KindNotFound)
	}
	if got := MessageOf(err); got != "User not found." {
		t.Errorf("MessageOf() = %q", got)
	}
}

func TestKindOf_PlainErrorIsDependency(t *testing.T) {
	err := errors.New("connection refused")
	if got := KindOf(err); got != KindDependency {
		t.Errorf("KindOf() = %v, want dependency", got)
	}
	if MessageOf(err) == err.Error() {
		t.Error("MessageOf() must not leak the underlying error text")
	}
}

func TestIs_MatchesByKind(t *testing.T) {
	err := Conflict("An account with this email already exists.")
	if !errors.Is(err, Conflict("")) {
		t.Error("expected errors.Is to match by kind")
	}
	if errors.Is(err, NotFound("")) {
		t.Error("expected errors.Is not to match a different kind")
	}
}

func TestDependency_UnwrapsCause(t *testing.T) {
	cause := errors.New("mongo down")
	err := Dependency("Failed to save.", cause)
	if !errors.Is(err, cause) {
		t.Error("expected Dependency to unwrap to its cause")
	}
}
