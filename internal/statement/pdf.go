package statement

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/atrium-hq/atrium/internal/view"
)

// PDFClient wraps the Gotenberg HTML-to-PDF conversion API.
type PDFClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPDFClient constructs a client for the given Gotenberg base URL.
func NewPDFClient(baseURL string) *PDFClient {
	return &PDFClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping checks whether the remote Gotenberg service is reachable.
func (c *PDFClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts raw HTML into a PDF document using Gotenberg.
func (c *PDFClient) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, bytes.NewBufferString(html)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/forms/chromium/convert/html", c.baseURL), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("render failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Renderer produces the statement HTML that feeds the PDF conversion.
type Renderer struct {
	templates *view.Engine
}

// NewRenderer constructs a Renderer.
func NewRenderer(templates *view.Engine) *Renderer {
	return &Renderer{templates: templates}
}

// HTML renders the standalone statement document.
func (r *Renderer) HTML(st Statement) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.Execute(&buf, "pages/finance/statement.html", view.TemplateData{
		Title: fmt.Sprintf("Statement %s", st.Period.Label()),
		Data: map[string]any{
			"Statement": st,
		},
	}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
