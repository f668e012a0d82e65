// Package scope decides whether deploys are attributed to the signed-in user
// or to one of their organizations, and records the choice in the session.
package scope

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"osrc/internal/api"
	"osrc/internal/logger"
	"osrc/internal/prompt"
	"osrc/internal/session"
)

// State is where the resolver ended up.
type State int

const (
	Unresolved State = iota
	ScopedToUser
	ScopedToOrganization
)

func (s State) String() string {
	switch s {
	case ScopedToUser:
		return "user"
	case ScopedToOrganization:
		return "organization"
	}
	return "unresolved"
}

// OwnerRole is the only organization role allowed to deploy.
const OwnerRole = "OWNER"

var ErrNoOrganizations = errors.New("you have not joined any organization")

// PermissionError is returned when the caller's organization role is not
// allowed to deploy.
type PermissionError struct {
	Organization string
	Role         string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %q in organization %q does not allow deploys", e.Role, e.Organization)
}

var scopeLog = logger.PackageLogger("scope", "🎯 SCOPE")

// Remote is the part of the API the resolver needs.
type Remote interface {
	CurrentUser(ctx context.Context) (*api.User, error)
	OrganizationCount(ctx context.Context) (int, error)
	OrganizationRole(ctx context.Context, name string) (*api.OrgRole, error)
}

type Resolver struct {
	remote Remote
	store  session.Saver
	prompt prompt.Prompter
}

func New(remote Remote, store session.Saver, p prompt.Prompter) *Resolver {
	return &Resolver{remote: remote, store: store, prompt: p}
}

// Resolve asks which scope to deploy to and records it in sess.
func (r *Resolver) Resolve(ctx context.Context, sess *session.Session) (State, error) {
	answer, err := r.prompt.Ask("Which scope do you want to deploy to?\n  1 personal account\n  2 organization\n>", ValidSelector)
	if err != nil {
		return Unresolved, err
	}

	if n, _ := strconv.Atoi(answer); n == 1 {
		if err := r.ResolveUser(ctx, sess); err != nil {
			return Unresolved, err
		}
		return ScopedToUser, nil
	}
	if err := r.ResolveOrganization(ctx, sess); err != nil {
		return Unresolved, err
	}
	return ScopedToOrganization, nil
}

// ResolveUser scopes deploys to the signed-in user.
func (r *Resolver) ResolveUser(ctx context.Context, sess *session.Session) error {
	user, err := r.remote.CurrentUser(ctx)
	if err != nil {
		return err
	}
	sess.SetScope(session.ScopeUser, user.ID.String())
	if err := r.store.Save(sess); err != nil {
		return err
	}
	scopeLog.Info("Deploys will be attributed to your personal account (id %s)", user.ID)
	return nil
}

// ResolveOrganization scopes deploys to an organization the user owns. The
// membership count is checked before the name is asked for.
func (r *Resolver) ResolveOrganization(ctx context.Context, sess *session.Session) error {
	count, err := r.remote.OrganizationCount(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNoOrganizations
	}

	name, err := r.prompt.Ask("Please input the organization name:", ValidOrganizationName)
	if err != nil {
		return err
	}

	role, err := r.remote.OrganizationRole(ctx, name)
	if err != nil {
		return err
	}
	if !strings.EqualFold(role.AccessRole, OwnerRole) {
		return &PermissionError{Organization: name, Role: role.AccessRole}
	}

	sess.SetScope(session.ScopeOrganization, role.OrgID.String())
	if err := r.store.Save(sess); err != nil {
		return err
	}
	scopeLog.Info("Deploys will be attributed to organization %s (id %s)", name, role.OrgID)
	return nil
}

// ValidSelector accepts "1" (user) or "2" (organization).
func ValidSelector(answer string) bool {
	n, err := strconv.Atoi(answer)
	return err == nil && (n == 1 || n == 2)
}

// ValidOrganizationName accepts trimmed names of at least three characters.
func ValidOrganizationName(answer string) bool {
	return len([]rune(strings.TrimSpace(answer))) >= 3
}
