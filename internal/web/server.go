package web

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"weekboard/internal/render"
	"weekboard/internal/store"

	"github.com/gorilla/mux"
	"github.com/starfederation/datastar-go/datastar"
)

//go:embed static/*.js static/*.css
var assetsFS embed.FS

type ServerConfig struct {
	Addr string
	Dir  string

	// MaxAttachmentBytes caps a single uploaded file. Zero uses the store default.
	MaxAttachmentBytes int64

	Log *slog.Logger
	// Now is the clock used for ids, week numbers and archive stamps.
	Now func() time.Time
}

// Server holds the one in-memory copy of the state. Every mutation runs
// under mu and is flushed to the store before the lock is released.
type Server struct {
	mu  sync.Mutex
	db  *store.DB
	cfg ServerConfig
	st  store.Store
	log *slog.Logger

	rend *render.Renderer
	hub  *resourceHub
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	if cfg.Dir == "" {
		return nil, errors.New("web: dir is empty")
	}
	if cfg.MaxAttachmentBytes <= 0 {
		cfg.MaxAttachmentBytes = store.DefaultAttachmentMaxBytes
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	st := store.Store{Dir: cfg.Dir, Log: cfg.Log}
	db, err := st.Load()
	if err != nil {
		return nil, err
	}
	rend, err := render.New()
	if err != nil {
		return nil, err
	}
	return &Server{
		db:   db,
		cfg:  cfg,
		st:   st,
		log:  cfg.Log,
		rend: rend,
		hub:  newResourceHub(),
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/static/app.css", s.handleStatic("static/app.css", "text/css; charset=utf-8")).Methods(http.MethodGet)
	r.HandleFunc("/static/app.js", s.handleStatic("static/app.js", "application/javascript; charset=utf-8")).Methods(http.MethodGet)
	r.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/archives", s.handleArchives).Methods(http.MethodGet)
	r.HandleFunc("/archives", s.handleArchiveWeek).Methods(http.MethodPost)

	const entity = "/{kind:tasks|initiatives}"
	const byID = entity + "/{id:[0-9]+}"
	const byFile = byID + "/files/{fileId}"
	r.HandleFunc(entity, s.handleAdd).Methods(http.MethodPost)
	r.HandleFunc(byID, s.handleDetail).Methods(http.MethodGet)
	r.HandleFunc(byID, s.handleDetailSave).Methods(http.MethodPost)
	r.HandleFunc(byID+"/delete", s.handleDeleteConfirm).Methods(http.MethodGet)
	r.HandleFunc(byID+"/delete", s.handleDelete).Methods(http.MethodPost)
	r.HandleFunc(byID+"/files", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc(byFile+"/delete", s.handleFileDelete).Methods(http.MethodPost)
	r.HandleFunc(byFile+"/preview", s.handlePreview).Methods(http.MethodGet)
	r.HandleFunc(byFile+"/download", s.handleDownload).Methods(http.MethodGet)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("http", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start))
	})
}

// apply runs fn against the state under the lock. When fn reports a change
// the state is saved, the event appended and stream subscribers notified.
// An empty entityID is taken from the payload's "id" (new entities).
func (s *Server) apply(typ, entityID string, fn func(db *store.DB) (bool, map[string]any, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, payload, err := fn(s.db)
	if err != nil || !changed {
		return err
	}
	if entityID == "" {
		if v, ok := payload["id"]; ok {
			entityID = fmt.Sprint(v)
		}
	}
	if err := s.st.Save(s.db); err != nil {
		// Drop the unsaved edit so memory matches the store again.
		if db, lerr := s.st.Load(); lerr == nil {
			s.db = db
		}
		return fmt.Errorf("save: %w", err)
	}
	if err := s.st.AppendEvent(typ, entityID, payload); err != nil {
		s.log.Warn("append event failed", "type", typ, "entity", entityID, "err", err)
	}
	s.hub.broadcast()
	return nil
}

// view runs fn against the state under the lock without saving.
func (s *Server) view(fn func(db *store.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.db)
}

func (s *Server) now() time.Time { return s.cfg.Now() }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatic(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(name)
		if err != nil || len(b) == 0 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

type resourceHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newResourceHub() *resourceHub {
	return &resourceHub{subs: map[chan struct{}]struct{}{}}
}

func (h *resourceHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

func (h *resourceHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

// handleEvents streams list patches to the page after every mutation.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	ch, cancel := s.hub.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			var tasksHTML, initiativesHTML string
			err := s.view(func(db *store.DB) error {
				var err error
				tasksHTML, err = render.String(func(w io.Writer) error { return s.rend.Tasks(w, db.Tasks) })
				if err != nil {
					return err
				}
				initiativesHTML, err = render.String(func(w io.Writer) error { return s.rend.Initiatives(w, db.Initiatives) })
				return err
			})
			if err != nil {
				_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
				continue
			}
			_ = sse.PatchElements(tasksHTML, datastar.WithSelector("#tasks-list"), datastar.WithMode(datastar.ElementPatchModeOuter))
			_ = sse.PatchElements(initiativesHTML, datastar.WithSelector("#initiatives-list"), datastar.WithMode(datastar.ElementPatchModeOuter))
		}
	}
}
