// Package bundle packs a build directory into a gzipped tarball and wraps it,
// together with the readme and app info, in the multipart upload payload.
package bundle

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"osrc/internal/logger"
)

var blog = logger.PackageLogger("bundle", "📦 BUNDLE")

type Options struct {
	// Root is the project root; the archive is written here.
	Root string
	// Dir is the build directory, relative to Root unless absolute.
	Dir     string
	Name    string
	Version string
	Now     func() time.Time
}

// Archive is a packed bundle on disk. Close removes the file and may be
// called more than once.
type Archive struct {
	Path    string
	Size    int64
	Entries []string

	once sync.Once
	err  error
}

func (a *Archive) Close() error {
	a.once.Do(func() {
		if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.err = fmt.Errorf("remove %s: %w", a.Path, err)
			return
		}
		blog.Debug("removed %s", a.Path)
	})
	return a.err
}

// ArchiveName is {name}_{version}_{unixMillis}.tar.gz with path separators
// in scoped names replaced.
func ArchiveName(name, version string, at time.Time) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return fmt.Sprintf("%s_%s_%s.tar.gz", safe, version, strconv.FormatInt(at.UnixMilli(), 10))
}

// Pack archives every entry of the build directory. The archive is removed
// again if packing fails.
func Pack(ctx context.Context, opts Options) (*Archive, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	dir := opts.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(opts.Root, dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("build directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("build directory %s is not a directory", dir)
	}

	path := filepath.Join(opts.Root, ArchiveName(opts.Name, opts.Version, now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	archive := &Archive{Path: path}

	entries, werr := writeTarGz(ctx, f, dir, path)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		archive.Close()
		return nil, fmt.Errorf("pack %s: %w", dir, werr)
	}

	st, err := os.Stat(path)
	if err != nil {
		archive.Close()
		return nil, err
	}
	archive.Size = st.Size()
	archive.Entries = entries
	blog.Info("Packed %d entries from %s (%s)", len(entries), opts.Dir, FormatSize(archive.Size))
	return archive, nil
}

func writeTarGz(ctx context.Context, w io.Writer, dir, skip string) ([]string, error) {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	var entries []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == dir || path == skip {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = rel
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("write header for %s: %w", rel, err)
		}
		entries = append(entries, rel)
		blog.Debug("-- %s", rel)

		if !info.Mode().IsRegular() {
			return nil
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		if _, err := io.Copy(tw, src); err != nil {
			return fmt.Errorf("write content for %s: %w", rel, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return entries, gz.Close()
}

// ReadReadme returns the content of the first file in root named readme.md
// in any letter case, or "" when there is none.
func ReadReadme(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(e.Name(), "readme.md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, e.Name()))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", nil
}
