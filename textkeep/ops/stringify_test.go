package ops

import "testing"

func TestStringifyScalars(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string unchanged", "keep me", "keep me"},
		{"empty string", "", ""},
		{"float", 3.5, "3.5"},
		{"integral float", float64(42), "42"},
		{"zero is kept", float64(0), "0"},
		{"bool false is kept", false, "false"},
		{"bool true", true, "true"},
		{"int", 7, "7"},
		{"unsupported type", struct{}{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Stringify(tc.in); got != tc.want {
				t.Fatalf("Stringify(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStringifyNested(t *testing.T) {
	long := "this is definitely over fifteen chars"

	got := Stringify(map[string]any{"a": "short", "b": long})
	if got != long {
		t.Fatalf("short leaf not dropped: %q", got)
	}

	// strictly greater than 15 runes: a 15-rune leaf is dropped
	if got := Stringify([]any{"123456789012345"}); got != "" {
		t.Fatalf("15-rune leaf kept: %q", got)
	}
	if got := Stringify([]any{"1234567890123456"}); got != "1234567890123456" {
		t.Fatalf("16-rune leaf dropped: %q", got)
	}

	if got := Stringify([]any{}); got != "" {
		t.Fatalf("empty array should stringify to empty, got %q", got)
	}

	// map keys visited in sorted order for a deterministic join
	got = Stringify(map[string]any{
		"z": "zebra paragraph long enough here",
		"a": "aardvark paragraph long enough too",
	})
	want := "aardvark paragraph long enough too zebra paragraph long enough here"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// numbers and short strings inside structures never leak in
	got = Stringify(map[string]any{
		"n":    float64(12345678901234567),
		"deep": []any{map[string]any{"s": "nested prose that is long enough"}},
	})
	if got != "nested prose that is long enough" {
		t.Fatalf("got %q", got)
	}
}
