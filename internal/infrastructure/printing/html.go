package printing

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTMLRenderer is a fallback PDFRenderer for environments without a Chrome
// binary. It performs no printing at all: the rendered document is the
// complete HTML itself, returned with a text/html content type so callers
// can serve it directly.
type HTMLRenderer struct {
	logger *zap.Logger
}

// NewHTMLRenderer creates the fallback renderer.
func NewHTMLRenderer(logger *zap.Logger) *HTMLRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLRenderer{logger: logger}
}

// Render wraps the request HTML into a complete document and returns it verbatim.
func (r *HTMLRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "render request is nil", nil)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "rendering was cancelled", err)
	}

	startTime := time.Now()
	html := r.buildCompleteHTML(req)

	return &RenderResult{
		PDFData:        []byte(html),
		ContentType:    "text/html; charset=utf-8",
		PageCount:      1,
		RenderDuration: time.Since(startTime),
	}, nil
}

func (r *HTMLRenderer) buildCompleteHTML(req *RenderRequest) string {
	if strings.Contains(strings.ToLower(req.HTML), "<!doctype") ||
		strings.Contains(strings.ToLower(req.HTML), "<html") {
		return req.HTML
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head>")
	b.WriteString("<meta charset=\"UTF-8\">")
	if req.Title != "" {
		b.WriteString("<title>")
		b.WriteString(req.Title)
		b.WriteString("</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(req.HTML)
	b.WriteString("</body></html>")
	return b.String()
}

// Close is a no-op for the HTML renderer.
func (r *HTMLRenderer) Close() error {
	return nil
}

var _ PDFRenderer = (*HTMLRenderer)(nil)
