package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name access tokens are stored under.
const KeyringService = "osrc"

var ErrNoToken = errors.New("session: no token in vault")

// Vault stores access tokens outside the session file, keyed by remote.
type Vault interface {
	Get(remote string) (string, error)
	Set(remote, token string) error
}

// Keyring is a Vault backed by the operating system keychain.
type Keyring struct {
	Service string
}

func (k Keyring) service() string {
	if k.Service == "" {
		return KeyringService
	}
	return k.Service
}

func (k Keyring) Get(remote string) (string, error) {
	token, err := keyring.Get(k.service(), remote)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("keyring get: %w", err)
	}
	return token, nil
}

func (k Keyring) Set(remote, token string) error {
	if err := keyring.Set(k.service(), remote, token); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}
