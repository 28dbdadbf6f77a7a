// Package apiclient talks to the remote analysis service over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"ppm/internal/config"
	"ppm/internal/domain"
	"ppm/internal/port"
)

const (
	pathPreflight     = "/api/files/check"
	pathCacheGet      = "/api/cache/get"
	pathAnalyzeByPath = "/api/analyze/by-path"
	pathAnalyzePrefix = "/api/analyze/"
	pathAnalyzeStart  = "/api/analyze/start"
	pathUploadTemp    = "/api/upload/temp"
	pathListPrefix    = "/api/list/"

	uploadField = "files"
)

// Client implements port.AnalysisAPI against the analysis service.
type Client struct {
	baseURL           string
	client            *http.Client
	folderConcurrency int
}

var _ port.AnalysisAPI = (*Client)(nil)

// NewClient creates a Client from the API settings. A zero timeout leaves
// the transport's own behavior in place.
func NewClient(cfg *config.APIConfig) *Client {
	return NewClientWithHTTP(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout}, cfg.FolderConcurrency)
}

// NewClientWithHTTP creates a Client with a caller-supplied http.Client (for testing).
func NewClientWithHTTP(baseURL string, hc *http.Client, folderConcurrency int) *Client {
	if folderConcurrency <= 0 {
		folderConcurrency = 1
	}
	return &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		client:            hc,
		folderConcurrency: folderConcurrency,
	}
}

func (c *Client) Preflight(ctx context.Context, req port.PreflightRequest) (*port.PreflightResponse, error) {
	body, err := c.doJSON(ctx, "preflight", http.MethodPost, c.endpoint(pathPreflight, nil), req)
	if err != nil {
		return nil, err
	}

	var wire preflightWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding preflight response: %w", err)
	}
	return wire.toPort(), nil
}

func (c *Client) Upload(ctx context.Context, files []port.UploadFile, fp domain.Fingerprint) (*port.UploadResponse, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}

	payload := &bytes.Buffer{}
	writer := multipart.NewWriter(payload)
	for _, f := range files {
		if err := writePart(writer, f); err != nil {
			return nil, fmt.Errorf("building upload body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building upload body: %w", err)
	}

	query := url.Values{"client_fp": []string{fp.Value}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(pathUploadTemp, query), payload)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	logrus.Debugf("apiclient.Upload: uploading %d files (fp %s)", len(files), fp.Bucket)
	body, err := c.do("upload", req)
	if err != nil {
		return nil, err
	}

	var wire uploadWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	return wire.toPort()
}

func (c *Client) GetCacheByRoute(ctx context.Context, route domain.Route) *port.CacheEntry {
	query := url.Values{"route": []string{route.String()}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(pathCacheGet, query), nil)
	if err != nil {
		return &port.CacheEntry{}
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do("cache lookup", req)
	if err != nil {
		logrus.Debugf("apiclient.GetCacheByRoute: treating %s as miss: %v", route, err)
		return &port.CacheEntry{}
	}

	var wire cacheField
	if err := json.Unmarshal(body, &wire); err != nil {
		logrus.Debugf("apiclient.GetCacheByRoute: undecodable response for %s: %v", route, err)
		return &port.CacheEntry{}
	}
	return &port.CacheEntry{Exists: wire.Present, Analysis: wire.Analysis}
}

// FetchAnalysis loads a public analysis stored on the analysis service.
// location is resolved under the base URL; absolute URLs are refused.
func (c *Client) FetchAnalysis(ctx context.Context, location string) (*domain.AnalysisResult, error) {
	if err := domain.CheckPublicLocation(location); err != nil {
		return nil, fmt.Errorf("public analysis %q: %w", location, err)
	}
	target := c.baseURL + "/" + strings.TrimLeft(strings.TrimSpace(location), "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do("public analysis", req)
	if err != nil {
		return nil, err
	}
	return decodeAnalysis(body)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) doJSON(ctx context.Context, op, method, target string, payload interface{}) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.do(op, req)
}

// do executes req. Transport failures wrap domain.ErrNetworkUnavailable;
// non-2xx answers become *domain.ServerRejectedError.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNetworkUnavailable, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading response: %v", domain.ErrNetworkUnavailable, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ServerRejectedError{
			Operation: op,
			Status:    resp.StatusCode,
			Detail:    extractDetail(body),
		}
	}
	return body, nil
}

func writePart(w *multipart.Writer, f port.UploadFile) error {
	if f.Content == nil {
		return fmt.Errorf("file %s has no content", f.Name)
	}
	if _, err := f.Content.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding %s: %w", f.Name, err)
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		uploadField, escapeQuotes(f.Name)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return fmt.Errorf("copying %s: %w", f.Name, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
