// ABOUTME: Tests for the content-digest build cache.
// ABOUTME: Covers digest stability, content sensitivity, extension filtering, and cache bookkeeping.
package bundle

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDigest_Stable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tsx", "export const a = 1\n")
	writeFile(t, dir, "sub/b.tsx", "export const b = 2\n")

	first, err := Digest([]string{dir}, []string{".tsx"})
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	second, err := Digest([]string{dir}, []string{".tsx"})
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if first != second {
		t.Errorf("digest not stable: %s != %s", first, second)
	}
}

func TestDigest_ChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.tsx", "export const a = 1\n")

	before, err := Digest([]string{dir}, []string{".tsx"})
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("export const a = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	after, err := Digest([]string{dir}, []string{".tsx"})
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Error("digest should change when file content changes")
	}
}

func TestDigest_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tsx", "export const a = 1\n")

	before, err := Digest([]string{dir}, []string{".tsx"})
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "notes.md", "scratch\n")

	after, err := Digest([]string{dir}, []string{".tsx"})
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Error("digest should ignore files outside the extension filter")
	}
}

func TestDigest_EmptyExtsCountsEverything(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.anything", "x\n")

	before, err := Digest([]string{dir}, nil)
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "b.other", "y\n")

	after, err := Digest([]string{dir}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Error("digest with no extension filter should see every file")
	}
}

func TestDigest_MissingRootSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tsx", "x\n")

	withMissing, err := Digest([]string{dir, filepath.Join(dir, "nope")}, []string{".tsx"})
	if err != nil {
		t.Fatalf("Digest should skip missing roots: %v", err)
	}
	alone, err := Digest([]string{dir}, []string{".tsx"})
	if err != nil {
		t.Fatal(err)
	}
	if withMissing != alone {
		t.Error("missing root should not affect the digest")
	}
}

func TestCache(t *testing.T) {
	c := NewCache()

	if c.Unchanged("dist/bundle.js", "abc") {
		t.Error("empty cache should never report unchanged")
	}

	c.Remember("dist/bundle.js", "abc")
	if !c.Unchanged("dist/bundle.js", "abc") {
		t.Error("expected unchanged after Remember")
	}
	if c.Unchanged("dist/bundle.js", "def") {
		t.Error("different digest should not be unchanged")
	}
	if c.Unchanged("dist/other.js", "abc") {
		t.Error("different outfile should not be unchanged")
	}

	c.Clear()
	if c.Unchanged("dist/bundle.js", "abc") {
		t.Error("cleared cache should forget digests")
	}
}

func TestCache_EmptyDigestNeverMatches(t *testing.T) {
	c := NewCache()
	c.Remember("dist/bundle.js", "")
	if c.Unchanged("dist/bundle.js", "") {
		t.Error("empty digest must never match")
	}
}
