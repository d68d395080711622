package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/abotl/abotl-web/internal/model"
)

type formField struct {
	name  string
	value string
}

type fileField struct {
	name string
	file *model.FilePart
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// progressTracker turns bytes sent into a non-decreasing percentage.
type progressTracker struct {
	total  int64
	sent   int64
	last   int
	report func(int)
}

func (p *progressTracker) add(n int) {
	if p == nil || p.report == nil || n <= 0 {
		return
	}
	p.sent += int64(n)
	pct := 100
	if p.total > 0 {
		pct = int(p.sent * 100 / p.total)
	}
	if pct > 100 {
		pct = 100
	}
	if pct > p.last {
		p.last = pct
		p.report(pct)
	}
}

func (p *progressTracker) done() {
	if p == nil || p.report == nil || p.last >= 100 {
		return
	}
	p.last = 100
	p.report(100)
}

type countingReader struct {
	r       io.Reader
	tracker *progressTracker
}

func (cr *countingReader) Read(b []byte) (int, error) {
	n, err := cr.r.Read(b)
	cr.tracker.add(n)
	return n, err
}

// multipartBody streams the form through a pipe so large files are never
// buffered in memory. progress may be nil.
func multipartBody(fields []formField, files []fileField, progress func(int)) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	var tracker *progressTracker
	if progress != nil {
		tracker = &progressTracker{report: progress}
		for _, f := range files {
			if f.file != nil {
				tracker.total += f.file.Size
			}
		}
	}

	go func() {
		err := writeParts(mw, fields, files, tracker)
		if err == nil {
			err = mw.Close()
		}
		if err == nil {
			tracker.done()
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}

func writeParts(mw *multipart.Writer, fields []formField, files []fileField, tracker *progressTracker) error {
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	for _, f := range files {
		if f.file == nil {
			continue
		}
		if err := writeFile(mw, f, tracker); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(mw *multipart.Writer, f fileField, tracker *progressTracker) error {
	contentType := f.file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(f.name), quoteEscaper.Replace(f.file.Filename)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", f.name, err)
	}

	src, err := f.file.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.name, err)
	}
	defer src.Close()

	var r io.Reader = src
	if tracker != nil {
		r = &countingReader{r: src, tracker: tracker}
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy %s: %w", f.name, err)
	}
	return nil
}
