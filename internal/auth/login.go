// Package auth drives the interactive login: collect credentials, sign in,
// persist the token and hand off to scope resolution.
package auth

import (
	"context"
	"fmt"

	"osrc/internal/api"
	"osrc/internal/logger"
	"osrc/internal/prompt"
	"osrc/internal/scope"
	"osrc/internal/session"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 4
)

var authLog = logger.PackageLogger("auth", "🔐 AUTH")

type Remote interface {
	SignIn(ctx context.Context, username, password string) (*api.SignInResult, error)
}

type ScopeResolver interface {
	Resolve(ctx context.Context, sess *session.Session) (scope.State, error)
}

type Authenticator struct {
	remote   Remote
	store    session.Saver
	prompt   prompt.Prompter
	resolver ScopeResolver
}

func New(remote Remote, store session.Saver, p prompt.Prompter, resolver ScopeResolver) *Authenticator {
	return &Authenticator{remote: remote, store: store, prompt: p, resolver: resolver}
}

// Login signs in and resolves the deploy scope. The session is saved after
// sign-in so a failed scope step still leaves a usable token behind.
func (a *Authenticator) Login(ctx context.Context, sess *session.Session) error {
	username, err := a.prompt.Ask("Please input your name:", prompt.MinLength(MinUsernameLength))
	if err != nil {
		return err
	}
	password, err := a.prompt.AskSecret("Please input your password:", prompt.MinLength(MinPasswordLength))
	if err != nil {
		return err
	}

	res, err := a.remote.SignIn(ctx, username, password)
	if err != nil {
		return err
	}
	sess.SetCredentials(username, res.AccessToken, res.TokenType)
	if err := a.store.Save(sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	authLog.Success("Logged in to %s as %s", sess.Remote, username)

	state, err := a.resolver.Resolve(ctx, sess)
	if err != nil {
		return err
	}
	authLog.Debug("scope resolved: %s", state)
	authLog.Success("Init osrc config successfully!")
	return nil
}
