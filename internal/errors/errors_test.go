package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	plain := New(ValidationFailed, "name must not be empty")
	if plain.Error() != "[VALIDATION_FAILED] name must not be empty" {
		t.Errorf("Error() = %q", plain.Error())
	}

	cause := fmt.Errorf("disk full")
	wrapped := Wrap(StorageFailure, "write record", cause)
	if wrapped.Error() != "[STORAGE_FAILURE] write record: disk full" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	wrapped := Wrap(EvidenceIO, "render artifact", cause)
	if !stderrors.Is(wrapped, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(New(NotFound, "missing")) != NotFound {
		t.Error("CodeOf should return the error's code")
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("CodeOf on a foreign error should be empty")
	}
	if CodeOf(nil) != "" {
		t.Error("CodeOf(nil) should be empty")
	}
}

func TestPredicates(t *testing.T) {
	if !IsNotFound(Newf(NotFound, "system %s not found", "x")) {
		t.Error("IsNotFound should match NOT_FOUND")
	}
	if IsNotFound(New(ValidationFailed, "nope")) {
		t.Error("IsNotFound should not match other codes")
	}
	if !IsValidation(New(ValidationFailed, "bad input")) {
		t.Error("IsValidation should match VALIDATION_FAILED")
	}
	wrapped := fmt.Errorf("context: %w", New(NotFound, "inner"))
	if !IsNotFound(wrapped) {
		t.Error("predicates should see through wrapping")
	}
}
