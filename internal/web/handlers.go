package web

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"weekboard/internal/model"
	"weekboard/internal/mutate"
	"weekboard/internal/preview"
	"weekboard/internal/render"
	"weekboard/internal/store"
	"weekboard/internal/week"

	"github.com/gorilla/mux"
)

// maxUploadMemory is how much of a multipart body is kept in memory; the rest spills to disk.
const maxUploadMemory = 8 << 20

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, render.PageData{
		Tab:   strings.TrimSpace(r.URL.Query().Get("tab")),
		Flash: strings.TrimSpace(r.URL.Query().Get("flash")),
	})
}

func (s *Server) handleArchives(w http.ResponseWriter, r *http.Request) {
	wk, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("week")))
	s.writePage(w, render.PageData{
		Tab:          render.TabArchives,
		SelectedWeek: wk,
		Flash:        strings.TrimSpace(r.URL.Query().Get("flash")),
	})
}

// handleArchiveWeek snapshots the task list into the current week (or the
// posted "week" field).
func (s *Server) handleArchiveWeek(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	now := s.now()
	wk := week.Number(now)
	if v := strings.TrimSpace(r.Form.Get("week")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid week", http.StatusBadRequest)
			return
		}
		wk = n
	}
	err := s.apply("week.archive", strconv.Itoa(wk), func(db *store.DB) (bool, map[string]any, error) {
		res, err := mutate.ArchiveWeek(db, wk, now)
		return res.Changed, res.EventPayload, err
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/archives?week="+strconv.Itoa(wk), http.StatusSeeOther)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindFromRequest(w, r)
	if !ok {
		return
	}
	_ = r.ParseForm()
	name := r.Form.Get("name")
	now := s.now()

	added := false
	err := s.apply(string(kind)+".add", "", func(db *store.DB) (bool, map[string]any, error) {
		switch kind {
		case mutate.KindTask:
			res, err := mutate.AddTask(db, name, now)
			added = res.Changed
			return res.Changed, res.EventPayload, err
		default:
			res, err := mutate.AddInitiative(db, name, now)
			added = res.Changed
			return res.Changed, res.EventPayload, err
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !added {
		s.log.Debug("ignoring add with empty name", "kind", kind)
	}
	http.Redirect(w, r, "/?tab="+kind.Plural(), http.StatusSeeOther)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refFromRequest(w, r)
	if !ok {
		return
	}
	modal, err := s.renderDetail(ref)
	if err != nil {
		s.lookupFailed(w, r, ref.Kind, err)
		return
	}
	s.writePage(w, render.PageData{
		Tab:   ref.Kind.Plural(),
		Modal: modal,
		Flash: strings.TrimSpace(r.URL.Query().Get("flash")),
	})
}

func (s *Server) handleDetailSave(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refFromRequest(w, r)
	if !ok {
		return
	}
	_ = r.ParseForm()
	status := r.Form.Get("status")
	body := r.Form.Get("notes")
	if ref.Kind == mutate.KindInitiative {
		body = r.Form.Get("content")
	}

	err := s.apply(string(ref.Kind)+".set", idString(ref.ID), func(db *store.DB) (bool, map[string]any, error) {
		switch ref.Kind {
		case mutate.KindTask:
			res, err := mutate.SetTaskDetail(db, ref.ID, model.TaskStatus(status), body)
			return res.Changed, res.EventPayload, err
		default:
			res, err := mutate.SetInitiativeDetail(db, ref.ID, model.InitiativeStatus(status), body)
			return res.Changed, res.EventPayload, err
		}
	})
	switch {
	case mutate.IsNotFound(err):
		s.lookupFailed(w, r, ref.Kind, err)
		return
	case errors.Is(err, model.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/?tab="+ref.Kind.Plural(), http.StatusSeeOther)
}

func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refFromRequest(w, r)
	if !ok {
		return
	}
	s.writeConfirm(w, r, ref)
}

// handleDelete removes an entity. Without confirm=yes it only shows the prompt.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refFromRequest(w, r)
	if !ok {
		return
	}
	_ = r.ParseForm()
	if strings.ToLower(strings.TrimSpace(r.Form.Get("confirm"))) != "yes" {
		s.writeConfirm(w, r, ref)
		return
	}
	err := s.apply(string(ref.Kind)+".delete", idString(ref.ID), func(db *store.DB) (bool, map[string]any, error) {
		var res mutate.DeleteResult
		var err error
		if ref.Kind == mutate.KindTask {
			res, err = mutate.DeleteTask(db, ref.ID)
		} else {
			res, err = mutate.DeleteInitiative(db, ref.ID)
		}
		return res.Changed, res.EventPayload, err
	})
	if mutate.IsNotFound(err) {
		s.lookupFailed(w, r, ref.Kind, err)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/?tab="+ref.Kind.Plural(), http.StatusSeeOther)
}

// handleUpload reads every selected file concurrently and attaches each one
// as soon as it is read. Files that fail are listed in the flash message.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refFromRequest(w, r)
	if !ok {
		return
	}
	if err := s.view(func(db *store.DB) error {
		_, err := mutate.ListFiles(db, ref)
		return err
	}); err != nil {
		s.lookupFailed(w, r, ref.Kind, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var uploads []mutate.Upload
	for _, fh := range r.MultipartForm.File["files"] {
		uploads = append(uploads, mutate.Upload{
			Name: fh.Filename,
			Type: fh.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	var failed []string
	err := mutate.ReadUploads(r.Context(), uploads, s.cfg.MaxAttachmentBytes, func(res mutate.UploadResult) {
		if res.Err != nil {
			s.log.Warn("upload failed", "entity", ref.String(), "file", res.Name, "err", res.Err)
			failed = append(failed, res.Name)
			return
		}
		aerr := s.apply("file.attach", idString(ref.ID), func(db *store.DB) (bool, map[string]any, error) {
			fr, err := mutate.AttachFile(db, ref, res.File)
			return fr.Changed, fr.EventPayload, err
		})
		if aerr != nil {
			s.log.Warn("attach failed", "entity", ref.String(), "file", res.Name, "err", aerr)
			failed = append(failed, res.Name)
		}
	})
	if err != nil {
		s.log.Warn("upload interrupted", "entity", ref.String(), "err", err)
	}

	target := detailURL(ref)
	if len(failed) > 0 {
		target += "?flash=" + url.QueryEscape("Failed to attach: "+strings.Join(failed, ", "))
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleFileDelete(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refFromRequest(w, r)
	if !ok {
		return
	}
	fileID := model.FileID(mux.Vars(r)["fileId"])
	err := s.apply("file.delete", idString(ref.ID), func(db *store.DB) (bool, map[string]any, error) {
		res, err := mutate.DeleteFile(db, ref, fileID)
		return res.Changed, res.EventPayload, err
	})
	if mutate.IsNotFound(err) {
		s.lookupFailed(w, r, ref.Kind, err)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, detailURL(ref), http.StatusSeeOther)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refFromRequest(w, r)
	if !ok {
		return
	}
	f, err := s.findFile(ref, model.FileID(mux.Vars(r)["fileId"]))
	if err != nil {
		s.lookupFailed(w, r, ref.Kind, err)
		return
	}
	s.log.Debug("previewing file", "name", f.Name, "type", f.Type)
	modal, err := render.String(func(w io.Writer) error {
		return s.rend.Preview(w, ref.Kind.Plural(), ref.ID, preview.Build(f))
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePage(w, render.PageData{Tab: ref.Kind.Plural(), Modal: template.HTML(modal)})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refFromRequest(w, r)
	if !ok {
		return
	}
	f, err := s.findFile(ref, model.FileID(mux.Vars(r)["fileId"]))
	if err != nil {
		s.log.Info("download lookup failed", "entity", ref.String(), "err", err)
		http.NotFound(w, r)
		return
	}
	mt, body, err := preview.DecodeDataURL(f.Data)
	if err != nil {
		http.Error(w, "stored file is not a valid data URL", http.StatusUnprocessableEntity)
		return
	}
	if strings.TrimSpace(f.Type) != "" {
		mt = f.Type
	}
	disposition := "attachment"
	if r.URL.Query().Get("inline") == "1" && inlineSafe(mt, f.Name) {
		disposition = "inline"
	}
	// Attachments share the app's origin; the sandbox keeps any script in
	// them away from the mutating routes. PDF viewers refuse sandboxed pages.
	if !(disposition == "inline" && preview.Classify(mt, f.Name) == preview.KindPDF) {
		w.Header().Set("Content-Security-Policy", "sandbox")
	}
	w.Header().Set("Content-Type", mt)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": f.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// inlineSafe reports whether a file may render inside the preview panel.
// Only images and PDFs qualify, and the served MIME type must agree with
// the kind so a renamed HTML file stays a download.
func inlineSafe(mimeType, name string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch preview.Classify(mimeType, name) {
	case preview.KindImage:
		return strings.HasPrefix(mt, "image/")
	case preview.KindPDF:
		return mt == "application/pdf"
	}
	return false
}

func (s *Server) kindFromRequest(w http.ResponseWriter, r *http.Request) (mutate.EntityKind, bool) {
	kind, err := mutate.ParseEntityKind(mux.Vars(r)["kind"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return "", false
	}
	return kind, true
}

func (s *Server) refFromRequest(w http.ResponseWriter, r *http.Request) (mutate.EntityRef, bool) {
	vars := mux.Vars(r)
	ref, err := mutate.ParseEntityRef(vars["kind"], vars["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return mutate.EntityRef{}, false
	}
	return ref, true
}

// lookupFailed logs a missing entity or file and falls back to the list view.
func (s *Server) lookupFailed(w http.ResponseWriter, r *http.Request, kind mutate.EntityKind, err error) {
	if !mutate.IsNotFound(err) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("lookup failed", "path", r.URL.Path, "err", err)
	http.Redirect(w, r, "/?tab="+kind.Plural(), http.StatusSeeOther)
}

func (s *Server) findFile(ref mutate.EntityRef, fileID model.FileID) (model.File, error) {
	var f model.File
	err := s.view(func(db *store.DB) error {
		var err error
		f, err = mutate.FindFile(db, ref, fileID)
		return err
	})
	return f, err
}

func (s *Server) renderDetail(ref mutate.EntityRef) (template.HTML, error) {
	var out string
	err := s.view(func(db *store.DB) error {
		var err error
		switch ref.Kind {
		case mutate.KindTask:
			t, ok := db.FindTask(ref.ID)
			if !ok {
				return mutate.NotFoundError{Kind: string(ref.Kind), ID: idString(ref.ID)}
			}
			out, err = render.String(func(w io.Writer) error { return s.rend.TaskDetail(w, *t) })
		default:
			in, ok := db.FindInitiative(ref.ID)
			if !ok {
				return mutate.NotFoundError{Kind: string(ref.Kind), ID: idString(ref.ID)}
			}
			out, err = render.String(func(w io.Writer) error { return s.rend.InitiativeDetail(w, *in) })
		}
		return err
	})
	return template.HTML(out), err
}

func (s *Server) writeConfirm(w http.ResponseWriter, r *http.Request, ref mutate.EntityRef) {
	var modal string
	err := s.view(func(db *store.DB) error {
		name := ""
		switch ref.Kind {
		case mutate.KindTask:
			t, ok := db.FindTask(ref.ID)
			if !ok {
				return mutate.NotFoundError{Kind: string(ref.Kind), ID: idString(ref.ID)}
			}
			name = t.Name
		default:
			in, ok := db.FindInitiative(ref.ID)
			if !ok {
				return mutate.NotFoundError{Kind: string(ref.Kind), ID: idString(ref.ID)}
			}
			name = in.Name
		}
		var err error
		modal, err = render.String(func(w io.Writer) error {
			return s.rend.ConfirmDelete(w, ref.Kind.Plural(), ref.ID, name)
		})
		return err
	})
	if err != nil {
		s.lookupFailed(w, r, ref.Kind, err)
		return
	}
	s.writePage(w, render.PageData{Tab: ref.Kind.Plural(), Modal: template.HTML(modal)})
}

func (s *Server) writePage(w http.ResponseWriter, pd render.PageData) {
	if pd.Now.IsZero() {
		pd.Now = s.now()
	}
	var html string
	err := s.view(func(db *store.DB) error {
		var err error
		html, err = render.String(func(w io.Writer) error { return s.rend.Page(w, db, pd) })
		return err
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

func detailURL(ref mutate.EntityRef) string {
	return fmt.Sprintf("/%s/%d", ref.Kind.Plural(), ref.ID)
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
