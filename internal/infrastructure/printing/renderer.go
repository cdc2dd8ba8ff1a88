package printing

import (
	"context"
	"time"
)

// PaperSize identifies the output paper dimensions.
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeLetter PaperSize = "LETTER"
)

// Dimensions returns width and height in millimeters (portrait).
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperSizeLetter:
		return 215.9, 279.4
	default:
		return 210, 297
	}
}

// IsValid reports whether the paper size is supported.
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeLetter:
		return true
	}
	return false
}

// Orientation defines the page orientation.
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins are page margins in millimeters.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// DefaultMargins returns the standard datasheet margins.
func DefaultMargins() Margins {
	return Margins{Top: 15, Right: 12, Bottom: 15, Left: 12}
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	// HTML content to render
	HTML string
	// PaperSize defines the output paper dimensions
	PaperSize PaperSize
	// Orientation defines portrait or landscape
	Orientation Orientation
	// Margins in millimeters
	Margins Margins
	// Title for the PDF document metadata
	Title string
	// Header HTML content (optional)
	HeaderHTML string
	// Footer HTML content (optional)
	FooterHTML string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the rendered document content
	PDFData []byte
	// ContentType of the rendered document (application/pdf, or text/html
	// when the fallback renderer produced the output)
	ContentType string
	// PageCount is the number of pages in the PDF
	PageCount int
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for rendering HTML to PDF
type PDFRenderer interface {
	// Render converts HTML content to a PDF document
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeRendererClosed   = "RENDERER_CLOSED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
