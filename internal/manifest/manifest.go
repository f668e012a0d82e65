package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"osrc/internal/logger"
)

// PackageFile is the project descriptor read from the project root.
const PackageFile = "package.json"

var (
	ErrMissingName    = errors.New("name is required, please fill it in package.json")
	ErrMissingVersion = errors.New("version is required, please fill it in package.json")
)

var mlog = logger.PackageLogger("manifest", "📦 MANIFEST")

// Package holds the package.json fields a deploy cares about.
type Package struct {
	Name        string
	Version     string
	Homepage    string
	License     string
	Keywords    []string
	Description string
}

// Read parses root/package.json. Fields with unexpected types (for example
// the legacy object form of "license") are ignored rather than rejected.
func Read(root string) (*Package, error) {
	path := filepath.Join(root, PackageFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	pkg := &Package{
		Name:        stringField(raw, "name"),
		Version:     stringField(raw, "version"),
		Homepage:    stringField(raw, "homepage"),
		License:     stringField(raw, "license"),
		Description: stringField(raw, "description"),
	}
	if kw, ok := raw["keywords"]; ok {
		if err := json.Unmarshal(kw, &pkg.Keywords); err != nil {
			mlog.Debug("Ignoring non-array keywords in %s", path)
			pkg.Keywords = nil
		}
	}
	return pkg, nil
}

// Validate checks the fields required for a deploy, name first.
func (p *Package) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(p.Version) == "" {
		return ErrMissingVersion
	}
	return nil
}

func stringField(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}
