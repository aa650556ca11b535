package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planroom/drawings/internal/common/httpclient"
	"github.com/planroom/drawings/internal/common/logtrace"
	"github.com/planroom/drawings/internal/drawings/drawingstest"
	"github.com/planroom/drawings/internal/drawings/model"
)

type testConfig struct{ url string }

func (c testConfig) GetServerURL() string      { return c.url }
func (c testConfig) GetAPIKey() string         { return "" }
func (c testConfig) GetToken() string          { return "" }
func (c testConfig) GetTokenExpiry() time.Time { return time.Time{} }
func (c testConfig) GetTimeout() time.Duration { return 5 * time.Second }

func newClients(t *testing.T, seed ...model.Drawing) (*drawingstest.Server, *DrawingClient, *UploadClient) {
	t.Helper()
	srv := drawingstest.NewServer(seed...)
	t.Cleanup(srv.Close)
	hc := httpclient.NewClient(testConfig{url: srv.URL})
	return srv, NewDrawingClient(hc), NewUploadClient(hc)
}

func TestList(t *testing.T) {
	_, dc, _ := newClients(t, drawingstest.Sample()...)
	got, err := dc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A-1", got[0].Code)
	assert.Equal(t, 2, got[0].Versions[0].VersionNumber)
	assert.Equal(t, "B-2", got[1].Code)
}

func TestRequestIDPropagates(t *testing.T) {
	srv, dc, uc := newClients(t, drawingstest.Sample()...)
	ctx := logtrace.WithRequestID(context.Background(), "req-7")

	_, err := dc.List(ctx)
	require.NoError(t, err)
	_, err = uc.Upload(ctx, File{Name: "a.pdf", Content: strings.NewReader("%PDF-1.7")})
	require.NoError(t, err)
	_, err = dc.List(context.Background())
	require.NoError(t, err)

	ids := srv.RequestIDs(drawingstest.RouteList)
	require.Len(t, ids, 2)
	assert.Equal(t, "req-7", ids[0])
	assert.NotEmpty(t, ids[1])
	assert.NotEqual(t, "req-7", ids[1])
	assert.Equal(t, []string{"req-7"}, srv.RequestIDs(drawingstest.RouteUpload))
}

func TestListFailure(t *testing.T) {
	srv, dc, _ := newClients(t)
	srv.Fail(drawingstest.RouteList, drawingstest.Failure{Status: http.StatusServiceUnavailable, Body: `{"error":"maintenance"}`})

	_, err := dc.List(context.Background())
	var httpErr *httpclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode())
	assert.Equal(t, "maintenance", httpErr.Message)
}

func TestDecodeListWrapped(t *testing.T) {
	var out []model.Drawing
	require.NoError(t, decodeList([]byte(`{"drawings":[{"id":"x","code":"C"}]}`), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "x", out[0].ID)

	out = nil
	require.NoError(t, decodeList([]byte(`{"data":[]}`), &out))
	assert.Empty(t, out)

	err := decodeList([]byte(`{"drawings":"nope"}`), &out)
	assert.ErrorIs(t, err, ErrDecodeResponse)
}

func TestUploadCreateAppend(t *testing.T) {
	srv, dc, uc := newClients(t)
	ctx := context.Background()

	stored, err := uc.Upload(ctx, File{Name: "plan.pdf", Content: strings.NewReader("%PDF-1.7 body")})
	require.NoError(t, err)
	assert.Equal(t, "plan.pdf", stored.FileName)
	assert.Equal(t, int64(len("%PDF-1.7 body")), stored.Size)
	assert.NotEmpty(t, stored.URL)

	created, err := dc.Create(ctx, CreateRequest{
		Code:       "A-9",
		Title:      "Corte",
		Discipline: model.DisciplineArchitecture,
		Version:    NewVersionInput(stored, "u-1"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "draft", created.Status)
	require.Len(t, created.Versions, 1)
	assert.Equal(t, 1, created.Versions[0].VersionNumber)
	assert.Equal(t, "u-1", created.Versions[0].Uploader.ID)

	reqs := srv.Requests(drawingstest.RouteCreate)
	require.Len(t, reqs, 1)
	assert.NotContains(t, reqs[0], `"status"`)
	assert.Contains(t, reqs[0], `"uploaderId":"u-1"`)

	updated, err := dc.AppendVersion(ctx, created.ID, NewVersionInput(stored, "u-2"))
	require.NoError(t, err)
	require.Len(t, updated.Versions, 2)
	assert.Equal(t, 2, updated.Versions[0].VersionNumber)

	c, err := dc.AppendComment(ctx, created.ID, CommentInput{Content: "revisar cotas", AuthorID: "u-2"})
	require.NoError(t, err)
	assert.Equal(t, "revisar cotas", c.Content)
	assert.Equal(t, "u-2", c.Author.ID)
}

func TestAppendToMissingDrawing(t *testing.T) {
	_, dc, _ := newClients(t)
	_, err := dc.AppendComment(context.Background(), "nope", CommentInput{Content: "x", AuthorID: "u"})
	var httpErr *httpclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode())
}

func TestUploadRejectedInBody(t *testing.T) {
	srv, _, uc := newClients(t)
	srv.Fail(drawingstest.RouteUpload, drawingstest.Failure{Status: http.StatusOK, Body: `{"error":"file too large"}`})

	_, err := uc.Upload(context.Background(), File{Name: "big.dwg", Content: bytes.NewReader([]byte("x"))})
	assert.ErrorIs(t, err, ErrUploadRejected)
	assert.EqualError(t, err, "file too large")
}

func TestUploadMissingURL(t *testing.T) {
	srv, _, uc := newClients(t)
	srv.Fail(drawingstest.RouteUpload, drawingstest.Failure{Status: http.StatusOK, Body: `{"fileName":"a"}`})

	_, err := uc.Upload(context.Background(), File{Name: "a", Content: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrUploadRejected)
}

func TestServerVersion(t *testing.T) {
	srv, dc, _ := newClients(t)
	info, err := dc.ServerVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, srv.APIVersion, info.APIVersion)
	assert.NoError(t, CheckCompatible(info.APIVersion))
}

func TestCheckCompatible(t *testing.T) {
	assert.NoError(t, CheckCompatible("1.0.0"))
	assert.NoError(t, CheckCompatible("v1.9.3"))
	assert.ErrorIs(t, CheckCompatible("2.0.0"), ErrIncompatibleAPI)
	assert.ErrorIs(t, CheckCompatible("0.9.0"), ErrIncompatibleAPI)
	assert.ErrorIs(t, CheckCompatible("banana"), ErrIncompatibleAPI)
}
