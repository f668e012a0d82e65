package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadProject reads osrc.yml from root. A missing file yields an empty config.
func LoadProject(root string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, ProjectFile))
	if errors.Is(err, os.ErrNotExist) {
		return &ProjectConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s read %s: %w", EmojiWarning, ProjectFile, err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s Invalid %s format: %w", EmojiWarning, ProjectFile, err)
	}
	return &cfg, nil
}

// SaveProject writes cfg to root/osrc.yml.
func SaveProject(root string, cfg *ProjectConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, ProjectFile), data, 0644)
}
