package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vvka-141/fstage/internal/pathtree"
)

func TestRenderTree(t *testing.T) {
	root := pathtree.Build("/photos", func(b *pathtree.Builder) {
		b.File("readme.txt")
		b.Dir("raw", func(b *pathtree.Builder) {
			b.File("img1.cr2")
		})
		b.Symlink("latest", "raw")
	})

	var buf bytes.Buffer
	renderTree(&buf, root)
	out := buf.String()

	for _, want := range []string{"/photos/", "readme.txt", "raw/", "img1.cr2", "latest"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "raw") {
		t.Errorf("Expected symlink target in output, got:\n%s", out)
	}

	// Children are indented below their parent.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 4 {
		t.Fatalf("Expected at least 4 lines, got %d:\n%s", len(lines), out)
	}
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("Expected child line to be indented, got: %q", line)
		}
	}
}

func TestRenderPathSet(t *testing.T) {
	var buf bytes.Buffer
	renderPathSet(&buf, "Different", []string{"b.txt", "a.txt"})
	out := buf.String()

	if !strings.Contains(out, "Different (2):") {
		t.Errorf("Expected labeled count header, got:\n%s", out)
	}
	if strings.Index(out, "a.txt") > strings.Index(out, "b.txt") {
		t.Errorf("Expected sorted output, got:\n%s", out)
	}
}

func TestRenderPathSet_EmptyPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	renderPathSet(&buf, "Same", nil)
	if buf.Len() != 0 {
		t.Errorf("Expected no output for an empty set, got: %q", buf.String())
	}
}
