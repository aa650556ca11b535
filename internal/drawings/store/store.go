// Package store owns the canonical in-memory drawing collection and keeps it
// consistent with the Drawing Service.
//
// Every mutation happens after a fully successful remote round trip and is a
// single assignment under the lock: the collection slice is replaced as a
// whole, or one entry is replaced by a new value. Nothing is mutated in place,
// so a snapshot taken at any time is internally consistent. Network calls run
// without the lock and operations on the same drawing are not serialised: the
// result applied last wins.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/planroom/drawings/internal/common/eventbus"
	"github.com/planroom/drawings/internal/common/logtrace"
	"github.com/planroom/drawings/internal/drawings/filter"
	"github.com/planroom/drawings/internal/drawings/identity"
	"github.com/planroom/drawings/internal/drawings/model"
	"github.com/planroom/drawings/internal/drawings/service"
)

// DrawingService is the remote source of truth.
type DrawingService interface {
	List(ctx context.Context) ([]model.Drawing, error)
	Create(ctx context.Context, req service.CreateRequest) (model.Drawing, error)
	AppendVersion(ctx context.Context, drawingID string, v service.VersionInput) (model.Drawing, error)
	AppendComment(ctx context.Context, drawingID string, in service.CommentInput) (model.Comment, error)
}

// UploadService stores file content and returns where it lives.
type UploadService interface {
	Upload(ctx context.Context, f service.File) (model.StoredFile, error)
}

var (
	_ DrawingService = (*service.DrawingClient)(nil)
	_ UploadService  = (*service.UploadClient)(nil)
)

// Store is the synchronization core. The zero value is not usable; call New.
type Store struct {
	drawings DrawingService
	uploads  UploadService
	users    identity.Provider
	bus      *eventbus.EventBus

	mu         sync.RWMutex
	collection []model.Drawing
	selectedID string
	status     Status
	inflight   int
	generation uint64
}

// Option configures a Store.
type Option func(*Store)

// WithEventBus publishes change notifications on bus instead of a private one.
func WithEventBus(bus *eventbus.EventBus) Option {
	return func(s *Store) {
		s.bus = bus
	}
}

// New creates an empty, idle store.
func New(drawings DrawingService, uploads UploadService, users identity.Provider, opts ...Option) *Store {
	s := &Store{
		drawings:   drawings,
		uploads:    uploads,
		users:      users,
		collection: []model.Drawing{},
		status:     Status{State: StateIdle},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = eventbus.New()
	}
	return s
}

// Subscribe returns change notifications for every store topic.
func (s *Store) Subscribe(bufferSize int) (<-chan eventbus.Event, func()) {
	return s.bus.Subscribe("drawings.*", bufferSize)
}

// Status returns the current loading/error status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Len returns the number of drawings in the collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collection)
}

// Drawings returns a snapshot of the collection in display order.
func (s *Store) Drawings() []model.Drawing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.collection)
}

// Drawing returns a snapshot of one drawing.
func (s *Store) Drawing(id string) (model.Drawing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.collection, id)
	if i < 0 {
		return model.Drawing{}, false
	}
	return s.collection[i].Clone(), true
}

// Filtered returns the drawings matching state.
func (s *Store) Filtered(state filter.State) []model.Drawing {
	return filter.Apply(s.Drawings(), state)
}

// Select marks a drawing as open in the detail view.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	if indexOf(s.collection, id) < 0 {
		s.mu.Unlock()
		return ErrUnknownDrawing.Msg("drawing " + id + " not found")
	}
	s.selectedID = id
	s.mu.Unlock()

	s.bus.Publish(TopicSelection, id)
	return nil
}

// ClearSelection closes the detail view.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selectedID = ""
	s.mu.Unlock()

	s.bus.Publish(TopicSelection, "")
}

// Selected returns the open drawing as it currently is in the collection.
func (s *Store) Selected() (model.Drawing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedID == "" {
		return model.Drawing{}, false
	}
	i := indexOf(s.collection, s.selectedID)
	if i < 0 {
		return model.Drawing{}, false
	}
	return s.collection[i].Clone(), true
}

// Reset empties the store, as on sign-out. Results of operations started
// before Reset are discarded when they complete.
func (s *Store) Reset() {
	s.mu.Lock()
	s.collection = []model.Drawing{}
	s.selectedID = ""
	s.status = Status{State: StateIdle}
	s.inflight = 0
	s.generation++
	s.mu.Unlock()

	s.bus.Publish(TopicCollection, 0)
	s.bus.Publish(TopicSelection, "")
	s.bus.Publish(TopicStatus, Status{State: StateIdle})
}

// begin marks an operation in flight and returns the generation it belongs to.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	s.inflight++
	s.status = Status{State: StateLoading}
	gen := s.generation
	s.mu.Unlock()

	s.bus.Publish(TopicStatus, Status{State: StateLoading})
	return gen
}

// finish settles the status for an operation started in generation gen.
func (s *Store) finish(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	if s.inflight > 0 {
		s.inflight--
	}
	switch {
	case err != nil:
		s.status = Status{State: StateError, Message: errorMessage(err)}
	case s.inflight == 0 && s.status.State == StateLoading:
		s.status = Status{State: StateIdle}
	}
	status := s.status
	s.mu.Unlock()

	s.bus.Publish(TopicStatus, status)
}

// commit applies fn to the collection under the lock unless the store was
// reset since gen. fn returns the new collection.
func (s *Store) commit(gen uint64, fn func([]model.Drawing) []model.Drawing) bool {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return false
	}
	s.collection = fn(s.collection)
	n := len(s.collection)
	s.mu.Unlock()

	s.bus.Publish(TopicCollection, n)
	return true
}

func (s *Store) contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.collection, id) >= 0
}

// Load replaces the collection with the service's list.
func (s *Store) Load(ctx context.Context) (err error) {
	gen := s.begin()
	defer func() { s.finish(gen, err) }()

	logger := logtrace.Logger(ctx).With().Str("op", "load").Logger()
	logger.Debug().Msg("fetching drawings")

	remote, err := s.drawings.List(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("fetch failed")
		return ErrRemoteFetch.Err(err)
	}

	seen := make(map[string]struct{}, len(remote))
	next := make([]model.Drawing, 0, len(remote))
	for _, d := range remote {
		if _, dup := seen[d.ID]; dup {
			logger.Warn().Str("drawing_id", d.ID).Msg("duplicate drawing id in response, keeping first")
			continue
		}
		if len(d.Versions) == 0 {
			logger.Warn().Str("drawing_id", d.ID).Msg("drawing without versions in response, skipping")
			continue
		}
		seen[d.ID] = struct{}{}
		next = append(next, model.NormalizeVersions(d))
	}

	if !s.commit(gen, func([]model.Drawing) []model.Drawing { return next }) {
		logger.Debug().Msg("store was reset, discarding result")
		return nil
	}
	logger.Debug().Int("count", len(next)).Msg("drawings loaded")
	return nil
}

// CreateDrawing uploads file, creates the drawing with it as the first
// version and prepends the created drawing to the collection.
func (s *Store) CreateDrawing(ctx context.Context, desc model.Descriptor, file service.File) (created model.Drawing, err error) {
	gen := s.begin()
	defer func() { s.finish(gen, err) }()

	logger := logtrace.Logger(ctx).With().Str("op", "create").Str("code", desc.Code).Logger()

	desc = desc.Normalize()
	if verr := desc.Validate(); verr != nil {
		return model.Drawing{}, ErrInvalidDescriptor.Msg(verr.Error())
	}
	user, ok := s.users.CurrentUser()
	if !ok {
		return model.Drawing{}, ErrNoCurrentUser
	}

	stored, err := s.uploads.Upload(ctx, file)
	if err != nil {
		logger.Error().Err(err).Msg("upload failed")
		return model.Drawing{}, ErrUpload.Err(err)
	}

	created, err = s.drawings.Create(ctx, service.CreateRequest{
		Code:       desc.Code,
		Title:      desc.Title,
		Discipline: desc.Discipline,
		Status:     desc.Status,
		Version:    service.NewVersionInput(stored, user.ID),
	})
	if err != nil {
		logger.Error().Err(err).Msg("create failed")
		return model.Drawing{}, ErrCreate.Err(err)
	}
	if created.ID == "" || len(created.Versions) == 0 {
		return model.Drawing{}, ErrCreate.Msg("service returned an incomplete drawing")
	}
	created = model.NormalizeVersions(created)

	s.commit(gen, func(cur []model.Drawing) []model.Drawing {
		next := make([]model.Drawing, 0, len(cur)+1)
		next = append(next, created)
		for _, d := range cur {
			if d.ID != created.ID {
				next = append(next, d)
			}
		}
		return next
	})
	logger.Debug().Str("drawing_id", created.ID).Msg("drawing created")
	return created.Clone(), nil
}

// AppendVersion uploads file as a new version of drawingID and replaces the
// local entry with the drawing the service returns.
func (s *Store) AppendVersion(ctx context.Context, drawingID string, file service.File) (updated model.Drawing, err error) {
	gen := s.begin()
	defer func() { s.finish(gen, err) }()

	logger := logtrace.Logger(ctx).With().Str("op", "append_version").Str("drawing_id", drawingID).Logger()

	if !s.contains(drawingID) {
		return model.Drawing{}, ErrUnknownDrawing.Msg("drawing " + drawingID + " not found")
	}
	user, ok := s.users.CurrentUser()
	if !ok {
		return model.Drawing{}, ErrNoCurrentUser
	}

	stored, err := s.uploads.Upload(ctx, file)
	if err != nil {
		logger.Error().Err(err).Msg("upload failed")
		return model.Drawing{}, ErrUpload.Err(err)
	}

	updated, err = s.drawings.AppendVersion(ctx, drawingID, service.NewVersionInput(stored, user.ID))
	if err != nil {
		logger.Error().Err(err).Msg("append version failed")
		return model.Drawing{}, ErrAppendVersion.Err(err)
	}
	if updated.ID == "" {
		updated.ID = drawingID
	}
	if updated.ID != drawingID || len(updated.Versions) == 0 {
		return model.Drawing{}, ErrAppendVersion.Msg("service returned an inconsistent drawing")
	}
	updated = model.NormalizeVersions(updated)

	s.commit(gen, func(cur []model.Drawing) []model.Drawing {
		i := indexOf(cur, drawingID)
		if i < 0 {
			logger.Warn().Msg("drawing left the collection before the version was applied")
			return cur
		}
		next := make([]model.Drawing, len(cur))
		copy(next, cur)
		next[i] = updated
		return next
	})
	logger.Debug().Int("version", updated.Versions[0].VersionNumber).Msg("version appended")
	return updated.Clone(), nil
}

// AppendComment posts a comment on drawingID and appends the created comment
// to the local entry. Content is sent as written; only whitespace-only content
// is rejected. An empty authorID means the current user.
func (s *Store) AppendComment(ctx context.Context, drawingID, content, authorID string) (comment model.Comment, err error) {
	gen := s.begin()
	defer func() { s.finish(gen, err) }()

	logger := logtrace.Logger(ctx).With().Str("op", "append_comment").Str("drawing_id", drawingID).Logger()

	if strings.TrimSpace(content) == "" {
		return model.Comment{}, ErrEmptyContent
	}
	if !s.contains(drawingID) {
		return model.Comment{}, ErrUnknownDrawing.Msg("drawing " + drawingID + " not found")
	}
	if authorID == "" {
		user, ok := s.users.CurrentUser()
		if !ok {
			return model.Comment{}, ErrNoCurrentUser
		}
		authorID = user.ID
	}

	comment, err = s.drawings.AppendComment(ctx, drawingID, service.CommentInput{
		Content:  content,
		AuthorID: authorID,
	})
	if err != nil {
		logger.Error().Err(err).Msg("append comment failed")
		return model.Comment{}, ErrAppendComment.Err(err)
	}

	s.commit(gen, func(cur []model.Drawing) []model.Drawing {
		i := indexOf(cur, drawingID)
		if i < 0 {
			logger.Warn().Msg("drawing left the collection before the comment was applied")
			return cur
		}
		d := cur[i]
		if comment.ID != "" && slices.ContainsFunc(d.Comments, func(c model.Comment) bool { return c.ID == comment.ID }) {
			// a reload that finished first already carries it
			return cur
		}
		comments := make([]model.Comment, len(d.Comments), len(d.Comments)+1)
		copy(comments, d.Comments)
		d.Comments = append(comments, comment)

		next := make([]model.Drawing, len(cur))
		copy(next, cur)
		next[i] = d
		return next
	})
	logger.Debug().Str("comment_id", comment.ID).Msg("comment appended")
	return comment, nil
}

func indexOf(ds []model.Drawing, id string) int {
	for i := range ds {
		if ds[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(ds []model.Drawing) []model.Drawing {
	out := make([]model.Drawing, len(ds))
	for i, d := range ds {
		out[i] = d.Clone()
	}
	return out
}

func errorMessage(err error) string {
	type allMessager interface{ ErrorAll() string }
	if am, ok := err.(allMessager); ok {
		return am.ErrorAll()
	}
	return err.Error()
}
