// Package deploy runs the full publish sequence for one project: validate
// the manifest, resolve the remote project, pack the build output, upload it
// and report the hosted page URL.
package deploy

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"osrc/internal/api"
	"osrc/internal/bundle"
	"osrc/internal/config"
	"osrc/internal/linker"
	"osrc/internal/logger"
	"osrc/internal/manifest"
	"osrc/internal/prompt"
	"osrc/internal/session"
)

var dlog = logger.PackageLogger("deploy", "🚀 DEPLOY")

// Remote is the part of the API a deploy talks to.
type Remote interface {
	linker.Remote
	CheckPages(ctx context.Context, appInfo any) (map[string]any, error)
	UploadBundle(ctx context.Context, projectID string, body io.Reader, contentType string) (*api.UploadResult, error)
}

type Options struct {
	// Root is the project root holding package.json and the readme.
	Root string
	// Dirname is the build directory relative to Root. Empty means dist.
	Dirname string
}

type Result struct {
	ProjectID string
	PageID    string
	URL       string
	Archive   string
	Size      int64
}

type Deployer struct {
	sess      *session.Session
	remote    Remote
	linker    *linker.Linker
	pagesHost string
	out       io.Writer
	now       func() time.Time
}

// Option is a functional option for configuring Deployer
type Option func(*Deployer)

// WithPagesHost sets the host used to build the hosted page URL.
func WithPagesHost(host string) Option {
	return func(d *Deployer) {
		if host != "" {
			d.pagesHost = strings.TrimRight(host, "/")
		}
	}
}

// WithOutput redirects the final URL report.
func WithOutput(w io.Writer) Option {
	return func(d *Deployer) {
		d.out = w
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Deployer) {
		d.now = now
	}
}

func New(sess *session.Session, remote Remote, p prompt.Prompter, opts ...Option) *Deployer {
	d := &Deployer{
		sess:      sess,
		remote:    remote,
		linker:    linker.New(remote, p),
		pagesHost: config.DefaultPagesHost,
		out:       os.Stdout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run deploys the project at opts.Root. Every failure is terminal for the
// run; the temporary archive is removed on every path once created.
func (d *Deployer) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := d.sess.Ready(); err != nil {
		return nil, err
	}

	pkg, err := manifest.Read(opts.Root)
	if err != nil {
		return nil, err
	}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	dlog.Info("name: %s", pkg.Name)
	dlog.Info("version: %s", pkg.Version)
	app := manifest.Collect(pkg)

	link, err := d.linker.Negotiate(ctx, app)
	if err != nil {
		return nil, err
	}

	check, err := d.remote.CheckPages(ctx, app)
	if err != nil {
		return nil, err
	}
	dlog.Debug("remote check: %v", check)

	dirname := opts.Dirname
	if dirname == "" {
		dlog.Warn("No build directory given, using the default %s", color.GreenString(config.DefaultDirname))
		dirname = config.DefaultDirname
	}
	dlog.Info("%s will be deployed to osrc", color.GreenString(dirname))

	archive, err := bundle.Pack(ctx, bundle.Options{
		Root:    opts.Root,
		Dir:     dirname,
		Name:    app.Name,
		Version: app.Version,
		Now:     d.now,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := archive.Close(); err != nil {
			dlog.Warn("Could not remove %s: %v", archive.Path, err)
		}
	}()

	readme, err := bundle.ReadReadme(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("read readme: %w", err)
	}

	payload, err := bundle.NewPayload(readme, app, archive)
	if err != nil {
		return nil, err
	}
	defer payload.Close()

	dlog.Info("Start deploy...")
	var uploaded *api.UploadResult
	err = dlog.Timed("upload", func() (err error) {
		uploaded, err = d.remote.UploadBundle(ctx, link.ProjectID.String(), payload, payload.ContentType())
		return err
	})
	if err != nil {
		return nil, err
	}
	dlog.Success("Deploy success!")

	res := &Result{
		ProjectID: link.ProjectID.String(),
		PageID:    uploaded.PageID.String(),
		Archive:   archive.Path,
		Size:      archive.Size,
	}
	res.URL = PageURL(d.pagesHost, d.sess.Username, res.ProjectID, app.Version, res.PageID)
	fmt.Fprintln(d.out, color.New(color.FgBlue, color.Underline).Sprint(res.URL))
	return res, nil
}

// PageURL is where a deployed page version can be viewed.
func PageURL(host, username, projectID, version, pageID string) string {
	return fmt.Sprintf("%s/%s/projects/%s?version=%s&tab=pages&page=%s",
		strings.TrimRight(host, "/"),
		url.PathEscape(username),
		url.PathEscape(projectID),
		url.QueryEscape(version),
		url.QueryEscape(pageID))
}
