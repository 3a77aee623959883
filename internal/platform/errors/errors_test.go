package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeCharacterNotFound, "character not found: a")
	wrapped := fmt.Errorf("dispatch: %w", err)

	if !stderrors.Is(wrapped, New(CodeCharacterNotFound, "other message")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(wrapped, New(CodeCrewNotFound, "")) {
		t.Fatal("expected different code not to match")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(CodeCommandPayloadInvalid, "payload invalid", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"character validation", New(CodeCharacterInsufficientDots, "x"), KindCharacterValidation},
		{"equipment validation", New(CodeEquipmentLocked, "x"), KindEquipmentValidation},
		{"crew validation", New(CodeCrewMomentumNotEnough, "x"), KindCrewValidation},
		{"clock validation", New(CodeClockSizeInvalid, "x"), KindClockValidation},
		{"not found wrapped", fmt.Errorf("ctx: %w", NotFound(CodeClockNotFound, "clock", "c1")), KindNotFound},
		{"plain error", stderrors.New("x"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsValidationAndNotFound(t *testing.T) {
	if !IsValidation(New(CodeCharacterGroupCount, "x")) {
		t.Fatal("expected validation")
	}
	if IsValidation(NotFound(CodeTraitNotFound, "trait", "t1")) {
		t.Fatal("not found is not validation")
	}
	if !IsNotFound(NotFound(CodeTraitNotFound, "trait", "t1")) {
		t.Fatal("expected not found")
	}
}

func TestNotFoundMetadata(t *testing.T) {
	err := NotFound(CodeCharacterNotFound, "character", "char-1")
	if err.Message != "character not found: char-1" {
		t.Fatalf("message = %q", err.Message)
	}
	if err.Metadata["id"] != "char-1" || err.Metadata["entity"] != "character" {
		t.Fatalf("metadata = %v", err.Metadata)
	}
}
