package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every setting key when read from the environment,
// e.g. pages_host is read from OSRC_PAGES_HOST.
const EnvPrefix = "OSRC"

// Load resolves settings for a project rooted at root. Precedence, highest
// first: values bound on v (flags), environment (including root/.env),
// osrc.yml, built-in defaults.
func Load(v *viper.Viper, root string) (*Settings, error) {
	if err := loadEnvFile(filepath.Join(root, EnvFile)); err != nil {
		return nil, err
	}

	project, err := LoadProject(root)
	if err != nil {
		return nil, err
	}

	sessionFile := SessionFileName
	if home, err := os.UserHomeDir(); err == nil {
		sessionFile = filepath.Join(home, SessionFileName)
	}

	v.SetDefault("remote", DefaultRemote)
	v.SetDefault("pages_host", DefaultPagesHost)
	v.SetDefault("signin_path", DefaultSignInPath)
	v.SetDefault("token_env", DefaultTokenEnv)
	v.SetDefault("session_file", sessionFile)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("no_keyring", false)

	if project.Remote != "" {
		v.SetDefault("remote", project.Remote)
	}
	// dirname stays empty unless given, so deploy can report the fallback
	if project.Dirname != "" {
		v.SetDefault("dirname", project.Dirname)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	s := &Settings{
		Remote:      v.GetString("remote"),
		PagesHost:   v.GetString("pages_host"),
		SignInPath:  v.GetString("signin_path"),
		TokenEnv:    v.GetString("token_env"),
		SessionFile: v.GetString("session_file"),
		Dirname:     v.GetString("dirname"),
		LogLevel:    v.GetString("log_level"),
		NoKeyring:   v.GetBool("no_keyring"),
	}
	return s, nil
}

// loadEnvFile loads KEY=VALUE pairs without overriding variables that are
// already set.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
