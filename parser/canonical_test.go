package parser_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/posh-lang/posh/parser"
)

func canonicalFor(t *testing.T, input string) *parser.CanonicalTree {
	t.Helper()
	result := mustParse(t, input)
	return parser.Canonicalize(result.Tree)
}

func TestCanonicalEncodingIsDeterministic(t *testing.T) {
	inputs := []string{
		"ls",
		"ls test; echo hello",
		"cat notes | grep todo | wc -l",
		"! grep x && echo none",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := canonicalFor(t, input).MarshalBinary()
			if err != nil {
				t.Fatal(err)
			}
			second, err := canonicalFor(t, input).MarshalBinary()
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(first, second) {
				t.Error("identical parses produced different encodings")
			}
		})
	}
}

func TestCanonicalHashDistinguishesTrees(t *testing.T) {
	pairs := [][2]string{
		{"ls a", "ls b"},
		{"a | b", "a; b"},
		{"a && b", "a || b"},
		{"! grep x", "grep x"},
	}

	for _, pair := range pairs {
		first, err := canonicalFor(t, pair[0]).Hash()
		if err != nil {
			t.Fatal(err)
		}
		second, err := canonicalFor(t, pair[1]).Hash()
		if err != nil {
			t.Fatal(err)
		}
		if first == second {
			t.Errorf("%q and %q hash identically", pair[0], pair[1])
		}
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	original := canonicalFor(t, "ls test; echo hello | sort")

	data, err := original.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	var decoded parser.CanonicalTree
	if err := decoded.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(original, &decoded); diff != "" {
		t.Errorf("round trip mismatch (-original +decoded):\n%s", diff)
	}
	if decoded.Version != 1 {
		t.Errorf("Version = %d, want 1", decoded.Version)
	}
}

func TestCanonicalizeDoesNotConsumeTheTree(t *testing.T) {
	result := mustParse(t, "ls test")
	parser.Canonicalize(result.Tree)

	got := drainWords(t, result.Tree)
	want := []string{"ls", "test"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree was disturbed by Canonicalize (-expected +actual):\n%s", diff)
	}
}
