// Package service implements clients for the remote Drawing Service and
// Upload Service on top of internal/common/httpclient.
package service

import (
	"context"
	"net/url"
	"path"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"

	"github.com/planroom/drawings/internal/common/httpclient"
	"github.com/planroom/drawings/internal/drawings/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const drawingsPath = "drawings"

// VersionInput is the version payload of create and append-version requests.
type VersionInput struct {
	FileName   string `json:"fileName"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
	UploaderID string `json:"uploaderId"`
}

// NewVersionInput builds the payload from a stored file and its uploader.
func NewVersionInput(f model.StoredFile, uploaderID string) VersionInput {
	return VersionInput{
		FileName:   f.FileName,
		URL:        f.URL,
		Size:       f.Size,
		UploaderID: uploaderID,
	}
}

// CreateRequest is the body of POST /drawings.
type CreateRequest struct {
	Code       string           `json:"code"`
	Title      string           `json:"title"`
	Discipline model.Discipline `json:"discipline"`
	Status     string           `json:"status,omitempty"`
	Version    VersionInput     `json:"version"`
}

type appendVersionRequest struct {
	Version VersionInput `json:"version"`
}

// CommentInput is the body of POST /drawings/{id}/comments.
type CommentInput struct {
	Content  string `json:"content"`
	AuthorID string `json:"authorId"`
}

// DrawingClient talks to the Drawing Service.
type DrawingClient struct {
	client httpclient.Interface
}

// NewDrawingClient wraps an HTTP client pointed at the Drawing Service.
func NewDrawingClient(c httpclient.Interface) *DrawingClient {
	return &DrawingClient{client: c}
}

// List fetches every drawing, in server order.
func (c *DrawingClient) List(ctx context.Context) ([]model.Drawing, error) {
	body, err := c.client.ListResources(ctx, drawingsPath, nil)
	if err != nil {
		return nil, err
	}
	var drawings []model.Drawing
	if err := decodeList(body, &drawings); err != nil {
		return nil, err
	}
	return drawings, nil
}

// Create submits a new drawing with its initial version.
func (c *DrawingClient) Create(ctx context.Context, req CreateRequest) (model.Drawing, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return model.Drawing{}, ErrEncodeRequest.Err(err)
	}
	body, _, err := c.client.CreateResource(ctx, drawingsPath, data)
	if err != nil {
		return model.Drawing{}, err
	}
	var d model.Drawing
	if err := decode(body, &d); err != nil {
		return model.Drawing{}, err
	}
	return d, nil
}

// AppendVersion adds a version to drawingID and returns the updated drawing.
func (c *DrawingClient) AppendVersion(ctx context.Context, drawingID string, v VersionInput) (model.Drawing, error) {
	data, err := json.Marshal(appendVersionRequest{Version: v})
	if err != nil {
		return model.Drawing{}, ErrEncodeRequest.Err(err)
	}
	body, _, err := c.client.CreateResource(ctx, drawingPath(drawingID, "versions"), data)
	if err != nil {
		return model.Drawing{}, err
	}
	var d model.Drawing
	if err := decode(body, &d); err != nil {
		return model.Drawing{}, err
	}
	return d, nil
}

// AppendComment adds a comment to drawingID and returns the created comment.
func (c *DrawingClient) AppendComment(ctx context.Context, drawingID string, in CommentInput) (model.Comment, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return model.Comment{}, ErrEncodeRequest.Err(err)
	}
	body, _, err := c.client.CreateResource(ctx, drawingPath(drawingID, "comments"), data)
	if err != nil {
		return model.Comment{}, err
	}
	var cm model.Comment
	if err := decode(body, &cm); err != nil {
		return model.Comment{}, err
	}
	return cm, nil
}

func drawingPath(id, sub string) string {
	return path.Join(drawingsPath, url.PathEscape(id), sub)
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return ErrDecodeResponse.Err(err)
	}
	return nil
}

// decodeList accepts either a bare array or an object wrapping it under
// "drawings" or "data".
func decodeList(body []byte, v any) error {
	root := gjson.ParseBytes(body)
	if root.IsObject() {
		for _, key := range []string{"drawings", "data"} {
			if inner := root.Get(key); inner.IsArray() {
				return decode([]byte(inner.Raw), v)
			}
		}
	}
	return decode(body, v)
}
