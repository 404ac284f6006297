// Package layoutsvc is the HTTP client for the document layout engine, a
// separate service that runs OCR and layout recognition over pdf pages
// and can render pages to images.
package layoutsvc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgallion1/docstruct/internal/docmodel"
)

// Client communicates with the layout engine HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// RetryableError marks a transient layout engine failure (rate limits,
// upstream 5xx) that the pipeline may retry.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// analyzeRequest is the body for POST /v1/layout.
type analyzeRequest struct {
	Filename string `json:"filename"`
	Data     string `json:"data"` // base64 pdf bytes
	FromPage int    `json:"from_page"`
	ToPage   int    `json:"to_page,omitempty"`
}

// blockPayload is one recognized text region in the engine's response.
type blockPayload struct {
	Text      string            `json:"text"`
	Label     string            `json:"layout_type,omitempty"`
	Positions []positionPayload `json:"positions"`
}

type positionPayload struct {
	Page   int     `json:"page"`
	Left   float64 `json:"x0"`
	Right  float64 `json:"x1"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

type tablePayload struct {
	Rows      [][]string        `json:"rows"`
	HTML      string            `json:"html,omitempty"`
	Positions []positionPayload `json:"positions,omitempty"`
}

type outlinePayload struct {
	Title string `json:"title"`
	Depth int    `json:"depth"`
}

type analyzeResponse struct {
	Blocks  []blockPayload   `json:"blocks"`
	Tables  []tablePayload   `json:"tables"`
	Outline []outlinePayload `json:"outline"`
}

// Analysis is the validated, converted result of a layout run.
type Analysis struct {
	Blocks  []docmodel.Block
	Tables  []docmodel.Table
	Outline []docmodel.OutlineEntry
}

// Analyze runs OCR and layout recognition over the page range
// [fromPage, toPage) of the document. toPage <= 0 means no upper bound.
func (c *Client) Analyze(ctx context.Context, filename string, data []byte, fromPage, toPage int) (*Analysis, error) {
	req := analyzeRequest{
		Filename: filename,
		Data:     base64.StdEncoding.EncodeToString(data),
		FromPage: fromPage,
		ToPage:   toPage,
	}

	var resp analyzeResponse
	if err := c.post(ctx, "/v1/layout", req, &resp); err != nil {
		return nil, err
	}
	return convertAnalysis(&resp), nil
}

// renderRequest is the body for POST /v1/render.
type renderRequest struct {
	Filename string `json:"filename"`
	Data     string `json:"data"`
	FromPage int    `json:"from_page"`
	ToPage   int    `json:"to_page,omitempty"`
	ZoomX3   bool   `json:"zoom_x3"`
}

type renderResponse struct {
	Pages []string `json:"pages"` // base64 png per page
}

// Render rasterizes the page range [fromPage, toPage) to PNG images, one
// per page, in page order.
func (c *Client) Render(ctx context.Context, filename string, data []byte, fromPage, toPage int) ([][]byte, error) {
	req := renderRequest{
		Filename: filename,
		Data:     base64.StdEncoding.EncodeToString(data),
		FromPage: fromPage,
		ToPage:   toPage,
		ZoomX3:   true,
	}

	var resp renderResponse
	if err := c.post(ctx, "/v1/render", req, &resp); err != nil {
		return nil, err
	}

	pages := make([][]byte, 0, len(resp.Pages))
	for i, enc := range resp.Pages {
		png, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("decode rendered page %d: %w", fromPage+i, err)
		}
		pages = append(pages, png)
	}
	return pages, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Err: fmt.Errorf("post %s: %w", path, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("post %s: status %d: %s", path, resp.StatusCode, string(msg))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return &RetryableError{Err: err}
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Close releases any resources (currently a no-op).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
