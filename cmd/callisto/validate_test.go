package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

const validHierarchy = `
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
  - id: billing
    name: Billing
    left: 2
    right: 3
`

func TestValidateHierarchy(t *testing.T) {
	dir := t.TempDir()

	validateFlags.file = writeFile(t, dir, "hierarchy.yaml", validHierarchy)
	if err := validateHierarchy(validateCmd, nil); err != nil {
		t.Errorf("validateHierarchy() error = %v", err)
	}

	validateFlags.file = writeFile(t, dir, "bad.yaml", `
attributes:
  - id: broken
    name: Broken
    left: 9
    right: 2
purposes:
  - id: service
    name: Service
    left: 1
    right: 2
`)
	if err := validateHierarchy(validateCmd, nil); err == nil {
		t.Error("validateHierarchy() should fail for an inverted interval")
	}

	validateFlags.file = filepath.Join(dir, "missing.yaml")
	if err := validateHierarchy(validateCmd, nil); err == nil {
		t.Error("validateHierarchy() should fail for a missing file")
	}
}

func TestEvaluateOnce(t *testing.T) {
	dir := t.TempDir()

	evaluateFlags.hierarchyFile = writeFile(t, dir, "hierarchy.yaml", validHierarchy)
	evaluateFlags.requestFile = writeFile(t, dir, "request.yaml", `
attribute_ids: [gps]
purpose_ids: [billing]
retention_seconds: 600
`)
	evaluateFlags.preferenceFile = writeFile(t, dir, "preference.yaml", `
allowed_attribute_ids: [identifier]
allowed_purpose_ids: [service]
retention_seconds: 3600
`)
	evaluateFlags.output = "json"

	if err := evaluateOnce(evaluateCmd, nil); err != nil {
		t.Errorf("evaluateOnce() error = %v", err)
	}

	// Unknown requested node is an evaluation error.
	evaluateFlags.requestFile = writeFile(t, dir, "bad_request.yaml", `
attribute_ids: [no-such-node]
purpose_ids: [billing]
retention_seconds: 600
`)
	if err := evaluateOnce(evaluateCmd, nil); err == nil {
		t.Error("evaluateOnce() should fail for an unknown requested node")
	}
}
