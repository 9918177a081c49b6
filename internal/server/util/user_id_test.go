package util

import (
	"strings"
	"testing"
)

func TestValidUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{
			name: "simple_lowercase",
			id:   "alice",
			want: true,
		},
		{
			name: "mixed_charset",
			id:   "User_42.test-account",
			want: true,
		},
		{
			name: "empty_rejected",
			id:   "",
			want: false,
		},
		{
			name: "space_rejected",
			id:   "alice smith",
			want: false,
		},
		{
			name: "slash_rejected",
			id:   "../etc/passwd",
			want: false,
		},
		{
			name: "unicode_rejected",
			id:   "ålice",
			want: false,
		},
		{
			name: "control_char_rejected",
			id:   "alice\n",
			want: false,
		},
		{
			name: "max_length_accepted",
			id:   strings.Repeat("a", 128),
			want: true,
		},
		{
			name: "over_max_length_rejected",
			id:   strings.Repeat("a", 129),
			want: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ValidUserID(tc.id)
			if got != tc.want {
				t.Fatalf("ValidUserID(%q) = %v, want %v", tc.id, got, tc.want)
			}
		})
	}
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	got := ExportFilename("alice")
	if got != "graph-alice.json" {
		t.Fatalf("got %q, want %q", got, "graph-alice.json")
	}
}
