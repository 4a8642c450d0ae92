package mutate

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"weekboard/internal/model"
	"weekboard/internal/preview"
	"weekboard/internal/store"

	"golang.org/x/sync/errgroup"
)

const uploadConcurrency = 4

// Upload is one selected file waiting to be read.
type Upload struct {
	Name string
	// Type is the MIME type reported by the source; empty means guess.
	Type string
	Open func() (io.ReadCloser, error)
}

// UploadResult is reported once per upload. Exactly one of File or Err is set.
type UploadResult struct {
	Index int
	Name  string
	File  model.File
	Err   error
}

// ReadUploads reads every upload concurrently, encodes each as a data URL
// record with a fresh id and calls onDone as each one finishes. Completion
// order is not selection order. onDone calls never overlap, so it may
// mutate shared state. A failed read is reported through UploadResult.Err
// and does not stop the others.
func ReadUploads(ctx context.Context, uploads []Upload, maxBytes int64, onDone func(UploadResult)) error {
	if maxBytes <= 0 {
		maxBytes = store.DefaultAttachmentMaxBytes
	}
	var mu sync.Mutex
	report := func(r UploadResult) {
		mu.Lock()
		defer mu.Unlock()
		if onDone != nil {
			onDone(r)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, up := range uploads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				report(UploadResult{Index: i, Name: up.Name, Err: err})
				return nil
			}
			f, err := readUpload(up, maxBytes)
			report(UploadResult{Index: i, Name: up.Name, File: f, Err: err})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func readUpload(up Upload, maxBytes int64) (model.File, error) {
	name := strings.TrimSpace(filepath.Base(up.Name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return model.File{}, fmt.Errorf("upload: missing file name")
	}
	if up.Open == nil {
		return model.File{}, fmt.Errorf("upload %s: no source", name)
	}
	rc, err := up.Open()
	if err != nil {
		return model.File{}, fmt.Errorf("upload %s: %w", name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, maxBytes+1))
	if err != nil {
		return model.File{}, fmt.Errorf("upload %s: %w", name, err)
	}
	if int64(len(b)) > maxBytes {
		return model.File{}, fmt.Errorf("upload %s: %w (limit %d bytes)", name, ErrFileTooLarge, maxBytes)
	}

	typ := strings.TrimSpace(up.Type)
	if typ == "" {
		typ = GuessType(name, b)
	}
	return model.File{
		ID:   store.NewFileID(),
		Name: name,
		Type: typ,
		Data: preview.EncodeDataURL(typ, b),
	}, nil
}

// GuessType picks a MIME type from the extension, then from content sniffing.
func GuessType(name string, b []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	if len(b) == 0 {
		return ""
	}
	return http.DetectContentType(b)
}

// AttachUploads reads uploads and attaches each successful one to ref as it
// completes. It returns every per-file result in completion order.
// Callers are responsible for saving db.
func AttachUploads(ctx context.Context, db *store.DB, ref EntityRef, uploads []Upload, maxBytes int64) ([]UploadResult, error) {
	if _, err := filesOf(db, ref); err != nil {
		return nil, err
	}
	var out []UploadResult
	err := ReadUploads(ctx, uploads, maxBytes, func(r UploadResult) {
		if r.Err == nil {
			res, err := AttachFile(db, ref, r.File)
			if err != nil {
				r.Err = err
			} else {
				r.File = res.File
			}
		}
		out = append(out, r)
	})
	return out, err
}
