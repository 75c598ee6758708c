// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "testing"

// TestGenerate verifies slug normalization from arbitrary titles.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "Hello World", want: "hello-world"},
		{name: "punctuation stripped", input: "Hello, World! 2026", want: "hello-world-2026"},
		{name: "already a slug", input: "summer-launch", want: "summer-launch"},
		{name: "extra whitespace", input: "  Summer   Launch  ", want: "summer-launch"},
		{name: "consecutive hyphens collapse", input: "a -- b", want: "a-b"},
		{name: "only punctuation", input: "!!!", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestUnique verifies collision resolution with numeric suffixes.
func TestUnique(t *testing.T) {
	taken := map[string]bool{
		"summer-launch":   true,
		"summer-launch-2": true,
	}
	exists := func(candidate string) (bool, error) {
		return taken[candidate], nil
	}

	got, err := Unique("Summer Launch", exists)
	if err != nil {
		t.Fatalf("Unique() error: %v", err)
	}
	if got != "summer-launch-3" {
		t.Errorf("Unique() = %q, want %q", got, "summer-launch-3")
	}

	got, err = Unique("Winter Launch", exists)
	if err != nil {
		t.Fatalf("Unique() error: %v", err)
	}
	if got != "winter-launch" {
		t.Errorf("Unique() = %q, want %q", got, "winter-launch")
	}
}

// TestUniqueEmptySource verifies that an unusable source is an error rather
// than an empty slug.
func TestUniqueEmptySource(t *testing.T) {
	_, err := Unique("???", func(string) (bool, error) { return false, nil })
	if err == nil {
		t.Fatal("Unique() with empty source should fail")
	}
}
