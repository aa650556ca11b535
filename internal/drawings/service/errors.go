package service

import "github.com/planroom/drawings/internal/common/apperrors"

// Errors returned by the service clients. Each wraps the transport error that
// caused it.
var (
	ErrService         = apperrors.New("drawing service error")
	ErrDecodeResponse  = ErrService.New("unable to decode service response")
	ErrEncodeRequest   = ErrService.New("unable to encode request")
	ErrUploadRejected  = ErrService.New("upload rejected")
	ErrIncompatibleAPI = ErrService.New("incompatible service version")
)
