package utils

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{NotFoundError("missing"), ErrorKindNotFound},
		{ConflictError("duplicate"), ErrorKindConflict},
		{UnauthorizedError("forbidden"), ErrorKindUnauthorized},
		{InvalidStateError("bad state"), ErrorKindInvalidState},
		{ExternalIOError("upload failed", errors.New("io")), ErrorKindExternalIO},
		{errors.New("plain"), ErrorKindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("failed to accept upgrade: %w", ConflictError("already decided"))
	if !IsConflict(err) {
		t.Fatalf("wrapped conflict not recognized: %v", err)
	}

	twice := fmt.Errorf("request failed: %w", err)
	if !IsConflict(twice) {
		t.Fatalf("doubly wrapped conflict not recognized: %v", twice)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := ExternalIOError("failed to store payment proof", cause)

	if !errors.Is(err, cause) {
		t.Fatal("AppError must expose its cause through Unwrap")
	}
	if err.Error() != "failed to store payment proof: connection reset" {
		t.Fatalf("Error() = %q", err.Error())
	}

	bare := NotFoundError("user not found")
	if bare.Error() != "user not found" {
		t.Fatalf("Error() = %q", bare.Error())
	}
}
