package hierarchy

import (
	"os"
	"path/filepath"
	"testing"
)

const validHierarchyYAML = `
attributes:
  - id: identifier
    name: Identifier
    left: 1
    right: 10
  - id: gps
    name: GPS Location
    left: 2
    right: 3
purposes:
  - id: service
    name: Service Provision
    left: 1
    right: 10
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hierarchy.yaml")
	if err := os.WriteFile(path, []byte(validHierarchyYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if h.Attributes().Len() != 2 {
		t.Errorf("expected 2 attributes, got %d", h.Attributes().Len())
	}
	if h.Purposes().Len() != 1 {
		t.Errorf("expected 1 purpose, got %d", h.Purposes().Len())
	}

	ok, err := h.Attributes().IsAncestorOrSelf("identifier", "gps")
	if err != nil || !ok {
		t.Errorf("expected identifier to be ancestor of gps (ok=%v, err=%v)", ok, err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "not yaml",
			yaml: "{: bad",
		},
		{
			name: "invalid interval",
			yaml: "attributes:\n  - id: a\n    left: 5\n    right: 2\n",
		},
		{
			name: "partial overlap",
			yaml: "attributes:\n  - id: a\n    left: 1\n    right: 10\n  - id: b\n    left: 5\n    right: 15\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestFileSource_LoadKeepsPreviousOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hierarchy.yaml")
	if err := os.WriteFile(path, []byte(validHierarchyYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	src := NewFileSource(path, reg, nil)

	version, err := src.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Corrupt the file; reload must fail and leave the registry untouched.
	if err := os.WriteFile(path, []byte("attributes:\n  - id: a\n    left: 9\n    right: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Load(); err == nil {
		t.Fatal("expected reload to fail")
	}

	_, gotVersion, err := reg.Current()
	if err != nil {
		t.Fatalf("Current() failed: %v", err)
	}
	if gotVersion != version {
		t.Errorf("active version changed after failed reload: %q != %q", gotVersion, version)
	}
}
