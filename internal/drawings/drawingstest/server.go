// Package drawingstest provides an in-memory fake of the Drawing Service and
// Upload Service served over httptest, for tests of the clients, the store
// and the CLI.
package drawingstest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/sjson"

	"github.com/planroom/drawings/internal/common/logtrace"
	"github.com/planroom/drawings/internal/common/middleware"
	"github.com/planroom/drawings/internal/common/uuid"
	"github.com/planroom/drawings/internal/drawings/model"
)

// Route names used by Fail and Calls.
const (
	RouteList          = "list"
	RouteCreate        = "create"
	RouteAppendVersion = "append-version"
	RouteAppendComment = "append-comment"
	RouteUpload        = "upload"
	RouteVersion       = "version"
)

// Failure is a canned response returned instead of the normal handler.
type Failure struct {
	Status int
	Body   string
}

// Server is a fake Drawing Service and Upload Service on one listener.
type Server struct {
	*httptest.Server

	APIVersion string

	mu       sync.Mutex
	drawings []model.Drawing
	users    map[string]model.User
	calls    map[string]int
	failures map[string]Failure
	requests map[string][]string
	ids      map[string][]string
	now      func() time.Time
}

// NewServer starts a fake service seeded with drawings.
func NewServer(seed ...model.Drawing) *Server {
	s := &Server{
		APIVersion: "1.2.0",
		users:      make(map[string]model.User),
		calls:      make(map[string]int),
		failures:   make(map[string]Failure),
		requests:   make(map[string][]string),
		ids:        make(map[string][]string),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
	for _, d := range seed {
		s.drawings = append(s.drawings, d.Clone())
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.PanicHandler, middleware.RequestLogger)
	r.Get("/version", s.track(RouteVersion, s.getVersion))
	r.Post("/upload", s.track(RouteUpload, s.upload))
	r.Route("/drawings", func(r chi.Router) {
		r.Get("/", s.track(RouteList, s.list))
		r.Post("/", s.track(RouteCreate, s.create))
		r.Post("/{drawingID}/versions", s.track(RouteAppendVersion, s.appendVersion))
		r.Post("/{drawingID}/comments", s.track(RouteAppendComment, s.appendComment))
	})
	return r
}

// AddUser registers a user so uploader and author references resolve to
// full records.
func (s *Server) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// Fail makes every call to route return f until Recover is called.
func (s *Server) Fail(route string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = f
}

// Recover removes a failure installed by Fail.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Calls returns how many requests hit route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Requests returns the raw bodies received on route. Upload bodies are not kept.
func (s *Server) Requests(route string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests[route]...)
}

// RequestIDs returns the request IDs seen on route, in arrival order.
func (s *Server) RequestIDs(route string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids[route]...)
}

// Drawings returns the server-side state.
func (s *Server) Drawings() []model.Drawing {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Drawing, len(s.drawings))
	for i, d := range s.drawings {
		out[i] = d.Clone()
	}
	return out
}

func (s *Server) track(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		s.ids[route] = append(s.ids[route], logtrace.RequestIdFromContext(r.Context()))
		f, failing := s.failures[route]
		s.mu.Unlock()

		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.Status)
			io.WriteString(w, f.Body)
			return
		}
		h(w, r)
	}
}

func (s *Server) record(route string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[route] = append(s.requests[route], string(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	body, _ := sjson.Set(`{}`, "error", msg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (s *Server) getVersion(w http.ResponseWriter, r *http.Request) {
	body, _ := sjson.Set(`{"serverVersion":"fake drawings service"}`, "apiVersion", s.APIVersion)
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Drawings())
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		// the upload service reports errors in the body with a success status
		writeError(w, http.StatusOK, "no file in request")
		return
	}
	defer f.Close()
	n, err := io.Copy(io.Discard, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	id := uuid.NewString()
	body := `{}`
	body, _ = sjson.Set(body, "fileName", hdr.Filename)
	body, _ = sjson.Set(body, "url", fmt.Sprintf("%s/files/%s/%s", s.URL, id, hdr.Filename))
	body, _ = sjson.Set(body, "size", n)
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

type versionInput struct {
	FileName   string `json:"fileName"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
	UploaderID string `json:"uploaderId"`
}

func (s *Server) versionFrom(in versionInput, number int) model.Version {
	uploader, ok := s.users[in.UploaderID]
	if !ok {
		uploader = model.User{ID: in.UploaderID}
	}
	return model.Version{
		ID:            uuid.NewString(),
		VersionNumber: number,
		FileName:      in.FileName,
		URL:           in.URL,
		Size:          in.Size,
		Uploader:      uploader,
		UploadDate:    s.now(),
	}
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code       string           `json:"code"`
		Title      string           `json:"title"`
		Discipline model.Discipline `json:"discipline"`
		Status     string           `json:"status"`
		Version    versionInput     `json:"version"`
	}
	raw, _ := io.ReadAll(r.Body)
	s.record(RouteCreate, raw)
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	if req.Code == "" || req.Version.URL == "" {
		writeError(w, http.StatusBadRequest, "code and version are required")
		return
	}
	status := req.Status
	if status == "" {
		status = "draft"
	}

	s.mu.Lock()
	for _, d := range s.drawings {
		if d.Code == req.Code {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, fmt.Sprintf("drawing %s already exists", req.Code))
			return
		}
	}
	d := model.Drawing{
		ID:         uuid.NewString(),
		Code:       req.Code,
		Title:      req.Title,
		Discipline: req.Discipline,
		Status:     status,
		Versions:   []model.Version{s.versionFrom(req.Version, 1)},
	}
	s.drawings = append([]model.Drawing{d}, s.drawings...)
	s.mu.Unlock()

	w.Header().Set("Location", "/drawings/"+d.ID)
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) indexOf(id string) int {
	for i, d := range s.drawings {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) appendVersion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "drawingID")
	var req struct {
		Version versionInput `json:"version"`
	}
	raw, _ := io.ReadAll(r.Body)
	s.record(RouteAppendVersion, raw)
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "drawing not found")
		return
	}
	d := s.drawings[i].Clone()
	next := 1
	if cur, ok := d.Current(); ok {
		next = cur.VersionNumber + 1
	}
	d.Versions = append([]model.Version{s.versionFrom(req.Version, next)}, d.Versions...)
	s.drawings[i] = d
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) appendComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "drawingID")
	var req struct {
		Content  string `json:"content"`
		AuthorID string `json:"authorId"`
	}
	raw, _ := io.ReadAll(r.Body)
	s.record(RouteAppendComment, raw)
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "drawing not found")
		return
	}
	author, ok := s.users[req.AuthorID]
	if !ok {
		author = model.User{ID: req.AuthorID}
	}
	c := model.Comment{
		ID:        uuid.NewString(),
		Content:   req.Content,
		Author:    author,
		Timestamp: s.now(),
	}
	d := s.drawings[i].Clone()
	d.Comments = append(d.Comments, c)
	s.drawings[i] = d
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, c)
}
