// Package httpclient provides a configurable HTTP client for the REST APIs the
// drawings client talks to. It handles authentication headers, request IDs,
// JSON and multipart bodies, and turns non-success responses into *HTTPError.
package httpclient

import (
	"context"
	"io"
)

// Interface is the set of operations service clients depend on.
type Interface interface {
	// DoRequest makes an HTTP request with the given options.
	// Returns the response body, Location header (if present), and any error that occurred.
	DoRequest(ctx context.Context, opts RequestOptions) ([]byte, string, error)

	// CreateResource POSTs JSON data to resourcePath.
	CreateResource(ctx context.Context, resourcePath string, data []byte) ([]byte, string, error)

	// ListResources GETs resourcePath with optional query parameters.
	ListResources(ctx context.Context, resourcePath string, queryParams map[string]string) ([]byte, error)

	// UploadFile POSTs content as a multipart form file under field.
	UploadFile(ctx context.Context, resourcePath, field, fileName string, content io.Reader) ([]byte, error)
}

var _ Interface = &HTTPClient{}
