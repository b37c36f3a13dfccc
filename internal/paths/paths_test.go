package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "a.ts")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"absolute path", file, "src/a.ts"},
		{"relative path", "src/a.ts", "src/a.ts"},
		{"nonexistent file", filepath.Join(root, "src", "b.ts"), "src/b.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.in, root)
			if err != nil {
				t.Fatalf("Canonicalize: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsWithinRepo(t *testing.T) {
	root := t.TempDir()
	if !IsWithinRepo(filepath.Join(root, "x.go"), root) {
		t.Error("path inside repo reported outside")
	}
	if IsWithinRepo(filepath.Join(root, "..", "escape.go"), root) {
		t.Error("path outside repo reported inside")
	}
}

func TestJoinRepo(t *testing.T) {
	got := JoinRepo("/repo", "src/a.ts")
	want := filepath.Join("/repo", "src", "a.ts")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
