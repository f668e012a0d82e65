package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	FieldReadme   = "readme"
	FieldPageInfo = "pageInfo"
	FieldFiles    = "files"
)

// Payload is the multipart upload body. Everything but the archive content
// is rendered up front, so the total length is known before sending and the
// archive itself is read from disk as the body is consumed.
type Payload struct {
	body        io.Reader
	file        *os.File
	size        int64
	contentType string
	sent        atomic.Int64
}

// NewPayload assembles readme, the JSON form of info and the archive file.
// Close releases the archive file.
func NewPayload(readme string, info any, archive *Archive) (*Payload, error) {
	pageInfo, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode page info: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	name := filepath.Base(archive.Path)
	if err := writeHead(mw, readme, pageInfo, name); err != nil {
		return nil, err
	}
	head := bytes.Clone(buf.Bytes())
	buf.Reset()
	if err := mw.Close(); err != nil {
		return nil, err
	}
	tail := bytes.Clone(buf.Bytes())

	f, err := os.Open(archive.Path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	p := &Payload{
		file:        f,
		size:        int64(len(head)) + st.Size() + int64(len(tail)),
		contentType: mw.FormDataContentType(),
	}
	p.body = io.MultiReader(
		bytes.NewReader(head),
		&progressReader{
			r:     f,
			name:  name,
			total: st.Size(),
			sent:  &p.sent,
			every: rate.Sometimes{Interval: 500 * time.Millisecond},
		},
		bytes.NewReader(tail),
	)
	return p, nil
}

// writeHead writes the readme and pageInfo parts and the header of the
// files part.
func writeHead(mw *multipart.Writer, readme string, pageInfo []byte, archiveName string) error {
	if err := mw.WriteField(FieldReadme, readme); err != nil {
		return err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="blob"`, FieldPageInfo))
	h.Set("Content-Type", "application/json")
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(pageInfo); err != nil {
		return err
	}

	h = make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldFiles, archiveName))
	h.Set("Content-Type", "application/gzip")
	_, err = mw.CreatePart(h)
	return err
}

// ContentType is the multipart/form-data type including the boundary.
func (p *Payload) ContentType() string {
	return p.contentType
}

// Size is the exact length of the body in bytes.
func (p *Payload) Size() int64 {
	return p.size
}

// Sent is the number of archive bytes streamed so far.
func (p *Payload) Sent() int64 {
	return p.sent.Load()
}

func (p *Payload) Read(b []byte) (int, error) {
	return p.body.Read(b)
}

func (p *Payload) Close() error {
	return p.file.Close()
}

type progressReader struct {
	r     io.Reader
	name  string
	total int64
	sent  *atomic.Int64
	every rate.Sometimes
}

func (r *progressReader) Read(b []byte) (int, error) {
	n, err := r.r.Read(b)
	r.sent.Add(int64(n))
	r.every.Do(r.report)
	if err == io.EOF {
		r.report()
	}
	return n, err
}

func (r *progressReader) report() {
	blog.Debug("uploading %s: %s / %s", r.name, FormatSize(r.sent.Load()), FormatSize(r.total))
}
