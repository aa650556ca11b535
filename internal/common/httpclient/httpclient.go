package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/tidwall/gjson"

	"github.com/planroom/drawings/internal/common/logtrace"
	"github.com/planroom/drawings/internal/common/uuid"
)

// Configurator provides server location, credentials and transport limits.
type Configurator interface {
	GetServerURL() string
	GetAPIKey() string
	GetToken() string
	GetTokenExpiry() time.Time
	GetTimeout() time.Duration
}

// RequestIDHeader carries the per-request trace identifier.
const RequestIDHeader = "X-Request-ID"

// sniffLen is enough of a file header for filetype to identify it.
const sniffLen = 261

// HTTPError represents a non-success response, or a transport failure when
// Code is zero.
type HTTPError struct {
	Code    int    // HTTP status code, 0 for transport failures
	Message string // server-provided error message or response body
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	if e.Code == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Code)
}

// StatusCode returns the HTTP status of the failed response.
func (e *HTTPError) StatusCode() int {
	return e.Code
}

// HTTPClient makes requests against a single base URL.
type HTTPClient struct {
	config     Configurator
	httpClient *http.Client
}

// ClientOptions contains options for configuring the HTTP client.
type ClientOptions struct {
	DisableCertValidation bool              // skips TLS certificate validation
	Transport             http.RoundTripper // overrides the default transport
}

// NewClient creates a new HTTP client using the provided configuration.
func NewClient(config Configurator, opts ...ClientOptions) *HTTPClient {
	clientOpts := ClientOptions{}
	if len(opts) > 0 {
		clientOpts = opts[0]
	}

	httpClient := &http.Client{
		Timeout: config.GetTimeout(),
	}
	switch {
	case clientOpts.Transport != nil:
		httpClient.Transport = clientOpts.Transport
	case clientOpts.DisableCertValidation:
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}

	return &HTTPClient{
		config:     config,
		httpClient: httpClient,
	}
}

// RequestOptions describes a single request. Body and BodyReader are
// mutually exclusive; ContentType defaults to application/json.
type RequestOptions struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Body        []byte
	BodyReader  io.Reader
	ContentType string
}

func (c *HTTPClient) buildURL(opts RequestOptions) (string, error) {
	u, err := url.Parse(c.config.GetServerURL())
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %v", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid server URL: %q", c.config.GetServerURL())
	}
	u.Path = path.Join("/", u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	token := c.config.GetToken()
	expiry := c.config.GetTokenExpiry()
	if token != "" && (expiry.IsZero() || time.Now().Before(expiry)) {
		req.Header.Set("Authorization", "Bearer "+token)
		return
	}
	if key := c.config.GetAPIKey(); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
}

// DoRequest makes an HTTP request with the given options.
// Returns the response body, Location header (if present), and any error that occurred.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target, err := c.buildURL(opts)
	if err != nil {
		return nil, "", err
	}

	var body io.Reader = bytes.NewReader(opts.Body)
	if opts.BodyReader != nil {
		body = opts.BodyReader
	}
	req, err := http.NewRequestWithContext(ctx, opts.Method, target, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %v", err)
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	requestID := logtrace.RequestIdFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, requestID)
	c.authorize(req)

	logger := logtrace.Logger(ctx)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Str("method", opts.Method).Str("path", opts.Path).Msg("request failed")
		return nil, "", &HTTPError{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &HTTPError{Message: fmt.Sprintf("failed to read response body: %v", err)}
	}
	logger.Debug().
		Str("method", opts.Method).
		Str("path", opts.Path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request complete")

	if resp.StatusCode >= 400 {
		return nil, "", responseError(resp.StatusCode, respBody)
	}
	return respBody, resp.Header.Get("Location"), nil
}

func responseError(status int, body []byte) *HTTPError {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "error").String(); msg != "" {
			return &HTTPError{Code: status, Message: msg}
		}
		if msg := gjson.GetBytes(body, "message").String(); msg != "" {
			return &HTTPError{Code: status, Message: msg}
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	if status == http.StatusNotFound && msg == http.StatusText(status) {
		msg = "server doesn't implement this endpoint"
	}
	return &HTTPError{Code: status, Message: msg}
}

// CreateResource POSTs JSON data to resourcePath.
// Returns the response body, Location header, and any error that occurred.
func (c *HTTPClient) CreateResource(ctx context.Context, resourcePath string, data []byte) ([]byte, string, error) {
	return c.DoRequest(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   resourcePath,
		Body:   data,
	})
}

// ListResources GETs resourcePath with optional query parameters.
func (c *HTTPClient) ListResources(ctx context.Context, resourcePath string, queryParams map[string]string) ([]byte, error) {
	body, _, err := c.DoRequest(ctx, RequestOptions{
		Method:      http.MethodGet,
		Path:        resourcePath,
		QueryParams: queryParams,
	})
	return body, err
}

// UploadFile streams content as a multipart/form-data file part named field.
// The part's Content-Type is sniffed from the first bytes of content.
func (c *HTTPClient) UploadFile(ctx context.Context, resourcePath, field, fileName string, content io.Reader) ([]byte, error) {
	if content == nil {
		return nil, fmt.Errorf("no content to upload")
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload content: %v", err)
	}
	head = head[:n]
	content = io.MultiReader(bytes.NewReader(head), content)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(field), escapeQuotes(fileName)))
		h.Set("Content-Type", DetectContentType(head))
		part, err := mw.CreatePart(h)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	body, _, err := c.DoRequest(ctx, RequestOptions{
		Method:      http.MethodPost,
		Path:        resourcePath,
		BodyReader:  pr,
		ContentType: mw.FormDataContentType(),
	})
	// unblocks the writer goroutine if the request ended before the body was consumed
	pr.Close()
	return body, err
}

// DetectContentType returns the MIME type of a file header, or
// application/octet-stream when it is not recognized.
func DetectContentType(head []byte) string {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "application/octet-stream"
	}
	return kind.MIME.Value
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
