// Package linker resolves which remote project a bundle is deployed to,
// linking an existing project or creating a new one.
package linker

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/color"

	"osrc/internal/api"
	"osrc/internal/logger"
	"osrc/internal/manifest"
	"osrc/internal/prompt"
)

const MaxProjectNameLength = 100

var (
	ErrCancelled = errors.New("deploy canceled")
	ErrNoProject = errors.New("no project id resolved for this bundle")
)

var (
	llog = logger.PackageLogger("linker", "🔗 LINKER")

	projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9-]{1,100}$`)
)

// Remote is the part of the API the linker needs.
type Remote interface {
	PagesDeployInfo(ctx context.Context, bundleStr string) (*api.LinkInfo, error)
	CheckProject(ctx context.Context, name string) (*api.Project, error)
	CreatePageProject(ctx context.Context, name, bundleStr string) (*api.Project, error)
	LinkPageBundle(ctx context.Context, projectID, bundleStr string) (*api.Project, error)
}

type Linker struct {
	remote Remote
	prompt prompt.Prompter
}

func New(remote Remote, p prompt.Prompter) *Linker {
	return &Linker{remote: remote, prompt: p}
}

// Negotiate returns link info whose ProjectID identifies the upload target.
// Choosing to skip returns ErrCancelled.
func (l *Linker) Negotiate(ctx context.Context, app *manifest.AppInfo) (*api.LinkInfo, error) {
	info, err := l.remote.PagesDeployInfo(ctx, app.BundleStr)
	if err != nil {
		return nil, err
	}

	if info.Exist {
		question := fmt.Sprintf("Found project %s. Link to it? [Y/n/s(skip)]",
			color.GreenString("%s/%s", info.OwnerName, info.Name))
		choice, err := l.prompt.Ask(question, prompt.OneOf("y", "n", "s"))
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(choice) {
		case "y":
			llog.Debug("keeping linked project %s", info.ProjectID)
		case "n":
			if err := l.createOrLink(ctx, app, info); err != nil {
				return nil, err
			}
		default:
			return nil, ErrCancelled
		}
	} else if err := l.createOrLink(ctx, app, info); err != nil {
		return nil, err
	}

	if info.ProjectID == "" {
		return nil, ErrNoProject
	}
	return info, nil
}

func (l *Linker) createOrLink(ctx context.Context, app *manifest.AppInfo, info *api.LinkInfo) error {
	choice, err := l.prompt.Ask("Link to existing project? [Y/n]", prompt.OneOf("y", "n"))
	if err != nil {
		return err
	}

	if strings.EqualFold(choice, "y") {
		name, err := l.prompt.Ask("What's the name of your existing project?", prompt.NonEmpty)
		if err != nil {
			return err
		}
		project, err := l.remote.CheckProject(ctx, name)
		if err != nil {
			return err
		}
		llog.Info("Found project %s (id %s)", name, project.ID)
		if _, err := l.remote.LinkPageBundle(ctx, project.ID.String(), app.BundleStr); err != nil {
			return err
		}
		info.ProjectID = project.ID
		return nil
	}

	question := "What's your project's name?\n" +
		"  (up to 100 alphanumeric characters; hyphens allowed between, never at the start or end)\n"
	name, err := l.prompt.Ask(question, ValidProjectName)
	if err != nil {
		return err
	}
	project, err := l.remote.CreatePageProject(ctx, name, app.BundleStr)
	if err != nil {
		return err
	}
	llog.Success("Created project %s (id %s)", name, project.ID)
	info.ProjectID = project.ID
	return nil
}

// ValidProjectName accepts 1 to 100 letters, digits and inner hyphens.
func ValidProjectName(name string) bool {
	return projectNamePattern.MatchString(name) &&
		!strings.HasPrefix(name, "-") &&
		!strings.HasSuffix(name, "-")
}
