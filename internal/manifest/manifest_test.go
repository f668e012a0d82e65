package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writePackage(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, PackageFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestCollectDropsEmptyFields(t *testing.T) {
	root := writePackage(t, `{
		"name": "@team/site",
		"version": "1.2.0",
		"license": "MIT",
		"description": "",
		"keywords": ["docs", "static"]
	}`)

	pkg, err := Read(root)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	data, err := json.Marshal(Collect(pkg))
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got["description"]; ok {
		t.Errorf("empty description should be omitted: %s", data)
	}
	if _, ok := got["homepage"]; ok {
		t.Errorf("absent homepage should be omitted: %s", data)
	}
	if got["license"] != "MIT" {
		t.Errorf("license = %v", got["license"])
	}
	if got["bundleStr"] != "@team/site" {
		t.Errorf("bundleStr = %v", got["bundleStr"])
	}
	if !reflect.DeepEqual(got["bundle"], []any{"@team", "site"}) {
		t.Errorf("bundle = %v", got["bundle"])
	}
	if !reflect.DeepEqual(got["topics"], []any{"docs", "static"}) {
		t.Errorf("topics = %v", got["topics"])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		pkg     Package
		wantErr error
	}{
		{"ok", Package{Name: "site", Version: "1.0.0"}, nil},
		{"missing name", Package{Version: "1.0.0"}, ErrMissingName},
		{"missing both reports name", Package{}, ErrMissingName},
		{"missing version", Package{Name: "site"}, ErrMissingVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.pkg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadToleratesLegacyLicenseObject(t *testing.T) {
	root := writePackage(t, `{"name":"site","version":"1.0.0","license":{"type":"MIT"},"keywords":"oops"}`)

	pkg, err := Read(root)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if pkg.License != "" || pkg.Keywords != nil {
		t.Errorf("unexpected fields %+v", pkg)
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(t.TempDir()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
