package store

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/planroom/drawings/internal/drawings/model"
	"github.com/planroom/drawings/internal/drawings/service"
)

var errNetwork = errors.New("connection refused")

type fakeDrawings struct {
	mu sync.Mutex

	list          func() ([]model.Drawing, error)
	create        func(service.CreateRequest) (model.Drawing, error)
	appendVersion func(string, service.VersionInput) (model.Drawing, error)
	appendComment func(string, service.CommentInput) (model.Comment, error)

	calls    map[string]int
	creates  []service.CreateRequest
	versions []service.VersionInput
	comments []service.CommentInput
}

func newFakeDrawings() *fakeDrawings {
	return &fakeDrawings{calls: make(map[string]int)}
}

func (f *fakeDrawings) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeDrawings) hit(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeDrawings) List(ctx context.Context) ([]model.Drawing, error) {
	f.hit("list")
	if f.list == nil {
		return nil, nil
	}
	return f.list()
}

func (f *fakeDrawings) Create(ctx context.Context, req service.CreateRequest) (model.Drawing, error) {
	f.hit("create")
	f.mu.Lock()
	f.creates = append(f.creates, req)
	f.mu.Unlock()
	return f.create(req)
}

func (f *fakeDrawings) AppendVersion(ctx context.Context, id string, v service.VersionInput) (model.Drawing, error) {
	f.hit("append_version")
	f.mu.Lock()
	f.versions = append(f.versions, v)
	f.mu.Unlock()
	return f.appendVersion(id, v)
}

func (f *fakeDrawings) AppendComment(ctx context.Context, id string, in service.CommentInput) (model.Comment, error) {
	f.hit("append_comment")
	f.mu.Lock()
	f.comments = append(f.comments, in)
	f.mu.Unlock()
	return f.appendComment(id, in)
}

type fakeUploads struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeUploads) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeUploads) Upload(ctx context.Context, file service.File) (model.StoredFile, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return model.StoredFile{}, err
	}
	var size int64
	if file.Content != nil {
		size, _ = io.Copy(io.Discard, file.Content)
	}
	return model.StoredFile{
		FileName: file.Name,
		URL:      "https://files.example/" + file.Name,
		Size:     size,
	}, nil
}
