// Package ocr pulls text out of PDF menus and rasterises their pages for
// vision extraction.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/grazbites/scraper/internal/config"
)

// Extractor extracts the concatenated page text of a PDF.
type Extractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// Rasterizer renders PDF pages to JPEG images.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte, maxPages int) ([][]byte, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig, dpi int) (Extractor, error) {
	switch cfg.Provider {
	case "fitz", "":
		return NewFitz(dpi), nil
	case "pdftotext":
		return NewPdfToText(cfg.PdfToTextPath), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}
