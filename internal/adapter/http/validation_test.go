package http

import (
	"errors"
	"strings"
	"testing"
)

func TestHex32Validation(t *testing.T) {
	type P struct {
		UserID string `validate:"hex32"`
	}
	cv := NewValidator()

	// valid: 32-char lowercase hex
	ok := P{UserID: strings.Repeat("a", 32)}
	if err := cv.Validate(ok); err != nil {
		t.Fatalf("expected valid hex32, got err: %v", err)
	}

	// invalid samples
	for _, s := range []string{
		"",                                  // empty
		strings.Repeat("A", 32),             // uppercase
		"deadbeef",                          // too short
		strings.Repeat("g", 32),             // non-hex char
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",   // 31 chars
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x", // 33 with extra
	} {
		bad := P{UserID: s}
		err := cv.Validate(bad)
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		fe := ToFieldErrors(err)
		if !containsFieldMsg(fe, "UserID", "32-char lowercase hex") {
			t.Fatalf("expected hex32 message for %q, got: %+v", s, fe)
		}
	}
}

func TestRequiredAndEnumMapping(t *testing.T) {
	type P struct {
		Title    string `validate:"required,max=10"`
		Priority string `validate:"oneof=low normal high urgent"`
		Action   string `validate:"oneof=approve reject return delegate"`
	}
	cv := NewValidator()

	// Intentionally violate all
	err := cv.Validate(P{
		Title:    "",        // required
		Priority: "extreme", // not in the enum
		Action:   "nudge",   // not in the enum
	})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	if !containsFieldMsg(fe, "Title", "is required") {
		t.Fatalf("missing 'is required' for Title: %+v", fe)
	}
	if !containsFieldMsg(fe, "Priority", "must be one of: low normal high urgent") {
		t.Fatalf("missing oneof message for Priority: %+v", fe)
	}
	if !containsFieldMsg(fe, "Action", "must be one of: approve reject return delegate") {
		t.Fatalf("missing oneof message for Action: %+v", fe)
	}

	// max mapping
	err = cv.Validate(P{Title: strings.Repeat("x", 11), Priority: "low", Action: "approve"})
	if err == nil {
		t.Fatalf("expected max violation")
	}
	fe = ToFieldErrors(err)
	if !containsFieldMsg(fe, "Title", "at most 10") {
		t.Fatalf("missing max message for Title: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	err := errors.New("boom")
	fe := ToFieldErrors(err)
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}
