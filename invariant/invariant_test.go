package invariant_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/posh-lang/posh/invariant"
)

// TestPreconditionPass verifies Precondition does not panic when condition is true
func TestPreconditionPass(t *testing.T) {
	// Should not panic
	x := 1
	invariant.Precondition(true, "this should pass")
	invariant.Precondition(x == 1, "math works")
	invariant.Precondition(len("hello") > 0, "string not empty")
}

// TestPreconditionFail verifies Precondition panics with correct message
func TestPreconditionFail(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for false precondition")
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, "PRECONDITION VIOLATION") {
			t.Errorf("expected PRECONDITION VIOLATION, got: %s", msg)
		}
		if !strings.Contains(msg, "tokens must not be empty") {
			t.Errorf("expected custom message, got: %s", msg)
		}
		if !strings.Contains(msg, "at ") {
			t.Errorf("expected stack trace context, got: %s", msg)
		}
	}()

	invariant.Precondition(false, "tokens must not be empty")
}

// TestInvariantPass verifies Invariant does not panic when condition is true
func TestInvariantPass(t *testing.T) {
	// Should not panic
	invariant.Invariant(true, "this should pass")
	pos := 5
	prevPos := 4
	invariant.Invariant(pos > prevPos, "position advanced")
}

// TestInvariantFail verifies Invariant panics with formatted message
func TestInvariantFail(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for false invariant")
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, "INVARIANT VIOLATION") {
			t.Errorf("expected INVARIANT VIOLATION, got: %s", msg)
		}
		if !strings.Contains(msg, "token index 7 out of range") {
			t.Errorf("expected formatted message, got: %s", msg)
		}
	}()

	invariant.Invariant(false, "token index %d out of range", 7)
}

// TestNotNilPass verifies NotNil does not panic for non-nil values
func TestNotNilPass(t *testing.T) {
	invariant.NotNil("value", "str")
	invariant.NotNil([]int{1}, "slice")
	x := 1
	invariant.NotNil(&x, "ptr")
}

// TestNotNilFail verifies NotNil panics for nil and typed-nil values
func TestNotNilFail(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
	}{
		{"untyped_nil", nil},
		{"typed_nil_pointer", (*int)(nil)},
		{"nil_slice", []int(nil)},
		{"nil_map", map[string]int(nil)},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic for nil value")
				}
				msg := fmt.Sprintf("%v", r)
				if !strings.Contains(msg, "must not be nil") {
					t.Errorf("expected nil message, got: %s", msg)
				}
			}()
			invariant.NotNil(tt.value, tt.name)
		})
	}
}
