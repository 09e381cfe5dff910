package vsmgo

import (
	"errors"
	"testing"
)

func TestOpErrorWrapsAndUnwraps(t *testing.T) {
	err := WrapError("load", ErrNotFound)

	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("WrapError() did not produce an *OpError: %v", err)
	}
	if opErr.Op != "load" {
		t.Fatalf("OpError.Op = %q, want load", opErr.Op)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("errors.Is(err, ErrNotFound) = false, want true")
	}
}

func TestWrapErrorPassesThroughNil(t *testing.T) {
	if err := WrapError("load", nil); err != nil {
		t.Fatalf("WrapError(op, nil) = %v, want nil", err)
	}
}
