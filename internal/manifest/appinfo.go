package manifest

import "strings"

// AppInfo identifies the project for one deploy. Every field is omitted from
// the JSON form when empty, so the server never sees null or "" values.
type AppInfo struct {
	Bundle      []string `json:"bundle,omitempty"`
	BundleStr   string   `json:"bundleStr,omitempty"`
	Name        string   `json:"name,omitempty"`
	Version     string   `json:"version,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
	License     string   `json:"license,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Collect builds the AppInfo for pkg. The bundle identifier is the package
// name; scoped names ("@team/site") are split into their segments.
func Collect(pkg *Package) *AppInfo {
	info := &AppInfo{
		BundleStr:   pkg.Name,
		Name:        pkg.Name,
		Version:     pkg.Version,
		Homepage:    pkg.Homepage,
		License:     pkg.License,
		Description: pkg.Description,
	}
	if pkg.Name != "" {
		info.Bundle = strings.Split(pkg.Name, "/")
	}
	for _, kw := range pkg.Keywords {
		if kw != "" {
			info.Topics = append(info.Topics, kw)
		}
	}
	return info
}
