package service

import (
	"context"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/planroom/drawings/internal/common/httpclient"
	"github.com/planroom/drawings/internal/drawings/model"
)

const (
	uploadPath  = "upload"
	uploadField = "file"
)

// File is a local file handed to the upload service. Content is read once.
type File struct {
	Name    string
	Content io.Reader
}

// UploadClient talks to the Upload Service.
type UploadClient struct {
	client httpclient.Interface
}

// NewUploadClient wraps an HTTP client pointed at the Upload Service.
func NewUploadClient(c httpclient.Interface) *UploadClient {
	return &UploadClient{client: c}
}

// Upload stores f and returns its descriptor. A success status whose body
// carries an "error" field is treated as a rejection.
func (c *UploadClient) Upload(ctx context.Context, f File) (model.StoredFile, error) {
	body, err := c.client.UploadFile(ctx, uploadPath, uploadField, f.Name, f.Content)
	if err != nil {
		return model.StoredFile{}, err
	}
	if msg := gjson.GetBytes(body, "error").String(); strings.TrimSpace(msg) != "" {
		return model.StoredFile{}, ErrUploadRejected.Msg(msg)
	}
	var stored model.StoredFile
	if err := decode(body, &stored); err != nil {
		return model.StoredFile{}, err
	}
	if stored.URL == "" {
		return model.StoredFile{}, ErrUploadRejected.Msg("upload response has no url")
	}
	if stored.FileName == "" {
		stored.FileName = f.Name
	}
	return stored, nil
}
