package mutate

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"weekboard/internal/model"
	"weekboard/internal/preview"
	"weekboard/internal/store"
)

func stringUpload(name, typ, body string) Upload {
	return Upload{
		Name: name,
		Type: typ,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

// Attach two files to an initiative, delete the first: only the second remains.
func TestScenario_AttachTwoDeleteFirst(t *testing.T) {
	db := store.NewDB()
	res, _ := AddInitiative(db, "Launch", t0)
	ref := EntityRef{Kind: KindInitiative, ID: res.Initiative.ID}

	a, err := AttachFile(db, ref, model.File{Name: "a.txt", Type: "text/plain", Data: preview.EncodeDataURL("text/plain", []byte("a"))})
	if err != nil {
		t.Fatalf("attach a: %v", err)
	}
	b, err := AttachFile(db, ref, model.File{Name: "b.txt", Type: "text/plain", Data: preview.EncodeDataURL("text/plain", []byte("b"))})
	if err != nil {
		t.Fatalf("attach b: %v", err)
	}
	if a.File.ID == "" || a.File.ID == b.File.ID {
		t.Fatalf("expected distinct fresh ids, got %q %q", a.File.ID, b.File.ID)
	}

	if _, err := DeleteFile(db, ref, a.File.ID); err != nil {
		t.Fatalf("delete a: %v", err)
	}
	files, err := ListFiles(db, ref)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 || files[0].ID != b.File.ID {
		t.Fatalf("expected only b to remain, got %+v", files)
	}
	if _, err := FindFile(db, ref, a.File.ID); !IsNotFound(err) {
		t.Fatalf("expected deleted file not found, got %v", err)
	}
}

func TestFileOps_MissingEntityOrFile(t *testing.T) {
	db := store.NewDB()
	ref := EntityRef{Kind: KindTask, ID: 99}
	if _, err := AttachFile(db, ref, model.File{Name: "x"}); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError for missing task, got %v", err)
	}
	res, _ := AddTask(db, "t", t0)
	ref.ID = res.Task.ID
	if _, err := DeleteFile(db, ref, "nope"); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError for missing file, got %v", err)
	}
}

func TestReadUploads_ReportsEveryFileIncludingFailures(t *testing.T) {
	uploads := []Upload{
		stringUpload("a.txt", "", "alpha"),
		{Name: "broken.bin", Open: func() (io.ReadCloser, error) { return nil, errors.New("disk gone") }},
		stringUpload("big.bin", "application/octet-stream", strings.Repeat("x", 64)),
		stringUpload("c.md", "text/markdown", "# c"),
	}

	var calls atomic.Int32
	got := map[string]UploadResult{}
	err := ReadUploads(context.Background(), uploads, 32, func(r UploadResult) {
		calls.Add(1)
		got[r.Name] = r
	})
	if err != nil {
		t.Fatalf("ReadUploads: %v", err)
	}
	if calls.Load() != int32(len(uploads)) {
		t.Fatalf("expected %d callbacks, got %d", len(uploads), calls.Load())
	}

	a := got["a.txt"]
	if a.Err != nil || a.File.ID == "" || a.File.Type != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected a.txt result: %+v", a)
	}
	_, body, err := preview.DecodeDataURL(a.File.Data)
	if err != nil || string(body) != "alpha" {
		t.Fatalf("unexpected a.txt data: %q %v", body, err)
	}
	if got["broken.bin"].Err == nil {
		t.Fatalf("expected explicit error for broken.bin")
	}
	if !errors.Is(got["big.bin"].Err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", got["big.bin"].Err)
	}
	if got["c.md"].Err != nil || got["c.md"].File.Type != "text/markdown" {
		t.Fatalf("unexpected c.md result: %+v", got["c.md"])
	}
}

func TestReadUploads_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var failed int
	err := ReadUploads(ctx, []Upload{stringUpload("a.txt", "", "a")}, 0, func(r UploadResult) {
		if r.Err != nil {
			failed++
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if failed != 1 {
		t.Fatalf("expected the upload to report cancellation, got %d failures", failed)
	}
}

func TestAttachUploads(t *testing.T) {
	db := store.NewDB()
	res, _ := AddTask(db, "t", t0)
	ref := EntityRef{Kind: KindTask, ID: res.Task.ID}

	results, err := AttachUploads(context.Background(), db, ref, []Upload{
		stringUpload("one.txt", "text/plain", "1"),
		stringUpload("two.txt", "text/plain", "2"),
		{Name: "bad.txt", Open: func() (io.ReadCloser, error) { return nil, errors.New("boom") }},
	}, 0)
	if err != nil {
		t.Fatalf("AttachUploads: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	files, _ := ListFiles(db, ref)
	if len(files) != 2 {
		t.Fatalf("expected 2 attached files in any order, got %+v", files)
	}
	names := map[string]bool{}
	for _, f := range files {
		names[f.Name] = true
	}
	if !names["one.txt"] || !names["two.txt"] {
		t.Fatalf("unexpected attached files: %+v", files)
	}

	if _, err := AttachUploads(context.Background(), db, EntityRef{Kind: KindTask, ID: 1}, nil, 0); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError for missing entity, got %v", err)
	}
}

func TestGuessType(t *testing.T) {
	if got := GuessType("x.pdf", nil); got != "application/pdf" {
		t.Fatalf("GuessType pdf: %q", got)
	}
	if got := GuessType("noext", []byte("%PDF-1.4")); got != "application/pdf" {
		t.Fatalf("GuessType sniff: %q", got)
	}
	if got := GuessType("noext", nil); got != "" {
		t.Fatalf("GuessType empty: %q", got)
	}
}
