package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/printing"
)

const (
	datasheetDownloadURLExpiry = 30 * time.Minute
	datasheetRenderTimeout     = 20 * time.Second
)

// DatasheetDocument is a rendered product datasheet ready to be served.
type DatasheetDocument struct {
	FileName    string
	ContentType string
	Data        []byte
	PageCount   int
}

// DatasheetService renders product datasheets as HTML and prints them to PDF.
type DatasheetService struct {
	productRepo      catalog.ProductRepository
	manufacturerRepo catalog.ManufacturerRepository
	imageRepo        catalog.ProductImageRepository
	storage          appcatalog.ObjectStorageService
	renderer         printing.PDFRenderer
	tmpl             *template.Template
	titleCaser       cases.Caser
	logger           *zap.Logger
}

// NewDatasheetService creates a datasheet service. The renderer decides the
// output format: a chromedp renderer produces PDF, the HTML fallback renderer
// returns the datasheet HTML itself.
func NewDatasheetService(
	productRepo catalog.ProductRepository,
	manufacturerRepo catalog.ManufacturerRepository,
	imageRepo catalog.ProductImageRepository,
	storage appcatalog.ObjectStorageService,
	renderer printing.PDFRenderer,
	logger *zap.Logger,
) (*DatasheetService, error) {
	tmpl, err := template.New("datasheet").Parse(datasheetTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse datasheet template: %w", err)
	}
	return &DatasheetService{
		productRepo:      productRepo,
		manufacturerRepo: manufacturerRepo,
		imageRepo:        imageRepo,
		storage:          storage,
		renderer:         renderer,
		tmpl:             tmpl,
		titleCaser:       cases.Title(language.English),
		logger:           logger,
	}, nil
}

type datasheetProduct struct {
	SKU           string
	Name          string
	Description   string
	Status        string
	StatusClass   string
	Price         string
	Currency      string
	StockQuantity int
	Tags          []string
}

type datasheetManufacturer struct {
	Name         string
	Country      string
	Website      string
	ContactEmail string
}

type datasheetImage struct {
	FileName string
	URL      string
}

type datasheetData struct {
	Product      datasheetProduct
	Manufacturer *datasheetManufacturer
	Images       []datasheetImage
	GeneratedAt  string
}

// Export renders the datasheet for a product through the configured renderer.
func (s *DatasheetService) Export(ctx context.Context, productID uuid.UUID) (*DatasheetDocument, error) {
	html, product, err := s.RenderHTML(ctx, productID)
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:        html,
		PaperSize:   printing.PaperSizeA4,
		Orientation: printing.OrientationPortrait,
		Margins:     printing.DefaultMargins(),
		Title:       product.Name + " - Datasheet",
		Timeout:     datasheetRenderTimeout,
	})
	if err != nil {
		var renderErr *printing.RenderError
		if errors.As(err, &renderErr) {
			s.logger.Error("datasheet rendering failed",
				zap.String("product_id", productID.String()),
				zap.String("code", renderErr.Code),
				zap.Error(err))
			return nil, shared.NewDomainError("EXPORT_FAILED", "Datasheet rendering failed")
		}
		return nil, err
	}

	ext := ".pdf"
	if strings.HasPrefix(result.ContentType, "text/html") {
		ext = ".html"
	}

	s.logger.Info("datasheet exported",
		zap.String("product_id", productID.String()),
		zap.String("sku", product.SKU),
		zap.Int("bytes", len(result.PDFData)))

	return &DatasheetDocument{
		FileName:    datasheetFileName(product.SKU) + ext,
		ContentType: result.ContentType,
		Data:        result.PDFData,
		PageCount:   result.PageCount,
	}, nil
}

// RenderHTML builds the datasheet HTML for a product without printing it.
func (s *DatasheetService) RenderHTML(ctx context.Context, productID uuid.UUID) (string, *catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return "", nil, err
	}

	data := datasheetData{
		Product: datasheetProduct{
			SKU:           product.SKU,
			Name:          product.Name,
			Description:   product.Description,
			Status:        s.titleCaser.String(string(product.Status)),
			StatusClass:   string(product.Status),
			Price:         product.PriceMoney().StringFixed(2),
			Currency:      string(product.Currency),
			StockQuantity: product.StockQuantity,
			Tags:          product.TagList(),
		},
		GeneratedAt: time.Now().UTC().Format("2006-01-02 15:04 MST"),
	}

	if product.ManufacturerID != nil {
		manufacturer, err := s.manufacturerRepo.FindByID(ctx, *product.ManufacturerID)
		if err != nil {
			// A missing manufacturer degrades the sheet, it does not block it.
			s.logger.Warn("datasheet manufacturer lookup failed",
				zap.String("product_id", productID.String()),
				zap.Error(err))
		} else {
			data.Manufacturer = &datasheetManufacturer{
				Name:         manufacturer.Name,
				Country:      s.titleCaser.String(manufacturer.Country),
				Website:      manufacturer.Website,
				ContactEmail: manufacturer.ContactEmail,
			}
		}
	}

	data.Images = s.loadImages(ctx, productID)

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", nil, fmt.Errorf("execute datasheet template: %w", err)
	}

	return buf.String(), product, nil
}

func (s *DatasheetService) loadImages(ctx context.Context, productID uuid.UUID) []datasheetImage {
	images, err := s.imageRepo.FindByProduct(ctx, productID)
	if err != nil {
		s.logger.Warn("datasheet image lookup failed",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		return nil
	}

	result := make([]datasheetImage, 0, len(images))
	for _, img := range images {
		if !img.IsActive() {
			continue
		}
		entry := datasheetImage{FileName: img.FileName}
		if s.storage != nil {
			url, _, err := s.storage.GenerateDownloadURL(ctx, img.StorageKey, datasheetDownloadURLExpiry)
			if err != nil {
				s.logger.Warn("datasheet image URL failed",
					zap.String("storage_key", img.StorageKey),
					zap.Error(err))
			} else {
				entry.URL = url
			}
		}
		result = append(result, entry)
	}
	return result
}

// datasheetFileName derives a filesystem-safe name from the product SKU.
func datasheetFileName(sku string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, sku)
	if cleaned == "" {
		cleaned = "product"
	}
	return "datasheet-" + strings.ToLower(cleaned)
}
