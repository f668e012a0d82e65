package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"osrc/internal/logger"
)

var slog = logger.PackageLogger("session", "🔑 SESSION")

// Saver persists a mutated session.
type Saver interface {
	Save(*Session) error
}

// Store reads and writes the session record at a single path.
type Store struct {
	path          string
	defaultRemote string
	tokenEnv      string
	vault         Vault
}

// Option is a functional option for configuring Store
type Option func(*Store)

// WithDefaultRemote sets the remote used when the record has none.
func WithDefaultRemote(remote string) Option {
	return func(s *Store) {
		s.defaultRemote = remote
	}
}

// WithTokenEnv names the environment variable consulted when the record has
// no access token.
func WithTokenEnv(name string) Option {
	return func(s *Store) {
		s.tokenEnv = name
	}
}

// WithVault mirrors access tokens into v.
func WithVault(v Vault) Option {
	return func(s *Store) {
		s.vault = v
	}
}

// NewStore creates a store backed by the file at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load ensures the backing file exists and returns the session it holds with
// defaults applied. If the file content is malformed, Load returns a session
// holding defaults only together with a *ParseError; callers decide whether
// to continue with it.
func (s *Store) Load() (*Session, error) {
	if err := s.ensureFile(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", s.path, err)
	}

	sess := &Session{}
	var parseErr error
	if content := strings.TrimSpace(string(data)); content != "" {
		if err := json.Unmarshal([]byte(content), sess); err != nil {
			parseErr = &ParseError{Path: s.path, Err: err}
			sess = &Session{}
		}
	}
	if sess.AccessToken != "" {
		sess.source = tokenStored
	}

	s.applyDefaults(sess)
	slog.Debug("Loaded session from %s (remote=%s, user=%s)", s.path, sess.Remote, sess.Username)
	return sess, parseErr
}

func (s *Store) applyDefaults(sess *Session) {
	if sess.Remote == "" {
		sess.Remote = s.defaultRemote
	}
	if sess.AccessToken == "" && s.tokenEnv != "" {
		if token := os.Getenv(s.tokenEnv); token != "" {
			sess.AccessToken = token
			sess.source = tokenEnv
		}
	}
	if sess.AccessToken == "" && s.vault != nil && sess.Remote != "" {
		token, err := s.vault.Get(sess.Remote)
		switch {
		case err == nil && token != "":
			sess.AccessToken = token
			sess.source = tokenKeyring
		case err != nil && !errors.Is(err, ErrNoToken):
			slog.Debug("Keyring lookup skipped: %v", err)
		}
	}
}

// Save replaces the backing file with sess. The write goes through a
// temporary file and a rename so readers never see a partial record.
func (s *Store) Save(sess *Session) error {
	record := *sess
	if sess.source != tokenStored {
		record.AccessToken = ""
		record.TokenType = ""
	}

	data, err := json.MarshalIndent(&record, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("session: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".osrc-*.tmp")
	if err != nil {
		return fmt.Errorf("session: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("session: write: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("session: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("session: replace %s: %w", s.path, err)
	}

	if s.vault != nil && sess.source == tokenStored && sess.AccessToken != "" {
		if err := s.vault.Set(sess.Remote, sess.AccessToken); err != nil {
			slog.Warn("Could not mirror access token to the keyring: %v", err)
		}
	}
	return nil
}

func (s *Store) ensureFile() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("session: create directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_RDONLY|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("session: open %s: %w", s.path, err)
	}
	return f.Close()
}
