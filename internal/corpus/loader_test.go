package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"go-fracture-classifier/pkg/models"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func setupCorpus(t *testing.T, fractured, notFractured []string) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"fractured", "not fractured"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}
	for _, name := range fractured {
		writeFile(t, filepath.Join(root, "fractured", name))
	}
	for _, name := range notFractured {
		writeFile(t, filepath.Join(root, "not fractured", name))
	}
	return root
}

func TestScanLabelsAndCounts(t *testing.T) {
	root := setupCorpus(t, []string{"a.png", "b.png", "c.png"}, []string{"d.png", "e.png"})
	loader := NewLoader(root, "fractured", "not fractured")

	entries, err := loader.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(entries))
	}

	counts := map[models.Label]int{}
	for _, e := range entries {
		counts[e.Label]++
	}
	if counts[models.LabelFractured] != 3 || counts[models.LabelNotFractured] != 2 {
		t.Errorf("Expected 3 fractured and 2 not fractured, got %v", counts)
	}
}

func TestScanDeterministicOrder(t *testing.T) {
	root := setupCorpus(t, []string{"c.png", "a.png", "b.png"}, nil)
	loader := NewLoader(root, "fractured", "not fractured")

	entries, err := loader.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{"a.png", "b.png", "c.png"}
	for i, e := range entries[:3] {
		if filepath.Base(e.Path) != want[i] {
			t.Errorf("Entry %d: expected %s, got %s", i, want[i], filepath.Base(e.Path))
		}
	}
}

func TestScanMissingLabelDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "fractured"), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	writeFile(t, filepath.Join(root, "fractured", "a.png"))

	loader := NewLoader(root, "fractured", "not fractured")
	entries, err := loader.Scan()
	if err != nil {
		t.Fatalf("Expected missing label directory to be non-fatal, got %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry from the present class, got %d", len(entries))
	}
}

func TestScanMissingRoot(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "nope"), "fractured", "not fractured")
	if _, err := loader.Scan(); err == nil {
		t.Error("Expected error for inaccessible corpus root")
	}
}

func TestScanIgnoresSubdirectories(t *testing.T) {
	root := setupCorpus(t, []string{"a.png"}, []string{"b.png"})
	if err := os.MkdirAll(filepath.Join(root, "fractured", "nested"), 0o755); err != nil {
		t.Fatalf("Failed to create nested dir: %v", err)
	}

	loader := NewLoader(root, "fractured", "not fractured")
	entries, err := loader.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected nested directories to be skipped, got %d entries", len(entries))
	}
}
