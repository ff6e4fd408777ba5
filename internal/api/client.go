// Package api is the REST client for the stockpilot backend. It owns
// bearer-token injection, the default and upload timeouts, and the mapping
// of transport and HTTP failures onto the errs sentinels.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rkohli/stockpilot/internal/errs"
)

// Default timeouts; image upload gets a longer window for payload size.
const (
	DefaultTimeout = 10 * time.Second
	UploadTimeout  = 30 * time.Second
)

// TokenSource yields the persisted bearer token, or "" when logged out.
type TokenSource interface {
	Token() (string, error)
}

// Client issues authenticated JSON calls against one backend base URL.
type Client struct {
	baseURL     string
	httpc       *http.Client
	uploadc     *http.Client
	tokens      TokenSource
	onAuthError func()
	logger      *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default-timeout HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithUploadClient replaces the upload-timeout HTTP client (tests).
func WithUploadClient(h *http.Client) Option {
	return func(c *Client) { c.uploadc = h }
}

// WithAuthErrorHook registers a callback invoked on any 401 response,
// before the error is returned to the caller.
func WithAuthErrorHook(fn func()) Option {
	return func(c *Client) { c.onAuthError = fn }
}

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New constructs a Client for baseURL. tokens may be nil for a client that
// only performs unauthenticated calls.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: DefaultTimeout},
		uploadc: &http.Client{Timeout: UploadTimeout},
		tokens:  tokens,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// errorBody is the shape the backend uses for failure responses.
type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) bearer() string {
	if c.tokens == nil {
		return ""
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return ""
	}
	return tok
}

// do executes one JSON request/response cycle and decodes into out when
// out is non-nil. All error mapping for the client lives here.
func (c *Client) do(ctx context.Context, httpc *http.Client, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w - please check your connection", errs.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onAuthError != nil {
			c.onAuthError()
		}
		return fmt.Errorf("%w: session expired, please log in again", errs.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if resp.StatusCode == http.StatusNotFound && eb.Error == "" {
			return errs.ErrNotFound
		}
		if eb.Error != "" {
			return fmt.Errorf("%w: %s", errs.ErrServer, eb.Error)
		}
		return fmt.Errorf("%w: request failed", errs.ErrServer)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, c.httpc, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, c.httpc, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, c.httpc, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, c.httpc, http.MethodDelete, path, nil, nil)
}

// UploadImage posts one image as multipart form data and returns the
// server-assigned URL. Failures are wrapped in ErrUpload so the submission
// pipeline can hard-stop on them.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(filename)))
	hdr.Set("Content-Type", ContentType(filename))
	fw, err := mw.CreatePart(hdr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpload, err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("%w: read image: %v", errs.ErrUpload, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-image", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.uploadc.Do(req)
	if err != nil {
		c.logger.Warn("image upload failed", zap.String("file", filename), zap.Error(err))
		return "", fmt.Errorf("%w: %v", errs.ErrUpload, errs.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onAuthError != nil {
			c.onAuthError()
		}
		return "", fmt.Errorf("%w: %v", errs.ErrUpload, errs.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if eb.Error != "" {
			return "", fmt.Errorf("%w: %s", errs.ErrUpload, eb.Error)
		}
		return "", fmt.Errorf("%w: request failed", errs.ErrUpload)
	}

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", errs.ErrUpload, err)
	}
	if out.ImageURL == "" {
		return "", fmt.Errorf("%w: server returned no image url", errs.ErrUpload)
	}
	return out.ImageURL, nil
}

// ContentType guesses the MIME type from the file extension, defaulting to JPEG.
func ContentType(filename string) string {
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); mt != "" {
		return mt
	}
	return "image/jpeg"
}
