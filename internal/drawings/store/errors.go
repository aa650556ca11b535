package store

import "github.com/planroom/drawings/internal/common/apperrors"

// Error kinds surfaced by Store operations. Each returned error wraps the
// cause, so errors.Is matches both the kind and the transport error.
var (
	ErrDrawings = apperrors.New("drawings error")

	ErrRemoteFetch       = ErrDrawings.New("unable to load drawings")
	ErrUpload            = ErrDrawings.New("unable to upload file")
	ErrCreate            = ErrDrawings.New("unable to create drawing")
	ErrAppendVersion     = ErrDrawings.New("unable to add version")
	ErrAppendComment     = ErrDrawings.New("unable to add comment")
	ErrUnknownDrawing    = ErrDrawings.New("drawing not found")
	ErrEmptyContent      = ErrDrawings.New("comment is empty")
	ErrInvalidDescriptor = ErrDrawings.New("invalid drawing")
	ErrNoCurrentUser     = ErrDrawings.New("no user signed in")
)
