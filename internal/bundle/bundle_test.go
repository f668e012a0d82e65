package bundle

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"osrc/internal/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{1023, "1023B"},
		{2048, "2.00K"},
		{1536, "1.50K"},
		{5 * 1024 * 1024, "5.00M"},
		{3 * 1024 * 1024 * 1024, "3.00G"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatSizeUnit(2, "K"); got != "2.00K" {
		t.Errorf("FormatSizeUnit(2, K) = %q", got)
	}
	if got := FormatSizeUnit(5, "m"); got != "5.00M" {
		t.Errorf("FormatSizeUnit(5, m) = %q", got)
	}
}

func makeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"dist/index.html":     "<h1>hi</h1>",
		"dist/app.js":         "console.log(1)",
		"dist/css/site.css":   "body{}",
		"README.md":           "# site",
		"package.json":        `{"name":"site","version":"1.0.0"}`,
		"src/not-shipped.txt": "x",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// readTarGz returns file contents by name; symlinks map to "-> target".
func readTarGz(t *testing.T, r io.Reader) map[string]string {
	t.Helper()
	gz, err := gzip.NewReader(r)
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(gz)
	out := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatal(err)
		}
		if hdr.Typeflag == tar.TypeSymlink {
			out[hdr.Name] = "-> " + hdr.Linkname
			continue
		}
		data, _ := io.ReadAll(tr)
		out[hdr.Name] = string(data)
	}
}

func TestPack(t *testing.T) {
	root := makeProject(t)
	if err := os.Symlink("index.html", filepath.Join(root, "dist", "latest.html")); err != nil {
		t.Fatal(err)
	}
	at := time.UnixMilli(1700000000123)

	archive, err := Pack(context.Background(), Options{
		Root: root, Dir: "dist", Name: "@team/site", Version: "1.0.0",
		Now: func() time.Time { return at },
	})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	defer archive.Close()

	if want := filepath.Join(root, "@team_site_1.0.0_1700000000123.tar.gz"); archive.Path != want {
		t.Errorf("Path = %s, want %s", archive.Path, want)
	}
	if archive.Size <= 0 {
		t.Errorf("Size = %d", archive.Size)
	}

	f, err := os.Open(archive.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got := readTarGz(t, f)

	want := map[string]string{
		"index.html":   "<h1>hi</h1>",
		"app.js":       "console.log(1)",
		"css/":         "",
		"css/site.css": "body{}",
		"latest.html":  "-> index.html",
	}
	if len(got) != len(want) {
		t.Errorf("archive entries = %v", got)
	}
	for name, content := range want {
		if got[name] != content {
			t.Errorf("entry %s = %q, want %q", name, got[name], content)
		}
	}
}

func TestArchiveCloseRemovesFile(t *testing.T) {
	root := makeProject(t)
	archive, err := Pack(context.Background(), Options{Root: root, Dir: "dist", Name: "site", Version: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(archive.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("archive still exists: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestPackMissingDir(t *testing.T) {
	root := t.TempDir()
	if _, err := Pack(context.Background(), Options{Root: root, Dir: "dist", Name: "site", Version: "1"}); err == nil {
		t.Fatal("expected error for missing build directory")
	}
	left, _ := filepath.Glob(filepath.Join(root, "*.tar.gz"))
	if len(left) != 0 {
		t.Errorf("archives left behind: %v", left)
	}
}

func TestPackCancelledRemovesArchive(t *testing.T) {
	root := makeProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Pack(ctx, Options{Root: root, Dir: "dist", Name: "site", Version: "1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	left, _ := filepath.Glob(filepath.Join(root, "*.tar.gz"))
	if len(left) != 0 {
		t.Errorf("archives left behind: %v", left)
	}
}

func TestReadReadme(t *testing.T) {
	root := t.TempDir()
	if got, err := ReadReadme(root); err != nil || got != "" {
		t.Errorf("empty root: %q, %v", got, err)
	}
	os.WriteFile(filepath.Join(root, "ReadMe.MD"), []byte("hello"), 0o644)
	if got, err := ReadReadme(root); err != nil || got != "hello" {
		t.Errorf("ReadReadme = %q, %v", got, err)
	}
}

func TestPayload(t *testing.T) {
	root := makeProject(t)
	archive, err := Pack(context.Background(), Options{Root: root, Dir: "dist", Name: "site", Version: "1"})
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Close()

	payload, err := NewPayload("# site", map[string]string{"name": "site"}, archive)
	if err != nil {
		t.Fatal(err)
	}
	defer payload.Close()

	mediaType, params, err := mime.ParseMediaType(payload.ContentType())
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("content type %q: %v", payload.ContentType(), err)
	}

	var body bytes.Buffer
	if _, err := io.Copy(&body, payload); err != nil {
		t.Fatal(err)
	}
	if int64(body.Len()) != payload.Size() {
		t.Errorf("Size = %d, body has %d bytes", payload.Size(), body.Len())
	}

	mr := multipart.NewReader(&body, params["boundary"])
	var names []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, part.FormName())
		switch part.FormName() {
		case FieldReadme:
			data, _ := io.ReadAll(part)
			if string(data) != "# site" {
				t.Errorf("readme = %q", data)
			}
		case FieldPageInfo:
			if part.FileName() != "blob" || part.Header.Get("Content-Type") != "application/json" {
				t.Errorf("pageInfo part header %v", part.Header)
			}
			var info map[string]string
			if err := json.NewDecoder(part).Decode(&info); err != nil || info["name"] != "site" {
				t.Errorf("pageInfo = %v, %v", info, err)
			}
		case FieldFiles:
			if part.FileName() != filepath.Base(archive.Path) {
				t.Errorf("files filename = %q", part.FileName())
			}
			if entries := readTarGz(t, part); entries["index.html"] != "<h1>hi</h1>" {
				t.Errorf("archive entries %v", entries)
			}
		}
	}
	sort.Strings(names)
	if strings.Join(names, ",") != "files,pageInfo,readme" {
		t.Errorf("parts = %v", names)
	}
	if payload.Sent() != archive.Size {
		t.Errorf("Sent = %d, want %d", payload.Sent(), archive.Size)
	}
}
