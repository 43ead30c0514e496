package ocr

import (
	"bytes"
	"context"
	"image/jpeg"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const jpegQuality = 85

// Fitz reads PDFs in-process through MuPDF.
type Fitz struct {
	dpi float64
}

// NewFitz creates a Fitz extractor rendering pages at dpi (default 200).
func NewFitz(dpi int) *Fitz {
	if dpi <= 0 {
		dpi = 200
	}
	return &Fitz{dpi: float64(dpi)}
}

// ExtractText returns the text of every page joined by blank lines.
func (f *Fitz) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return "", eris.Wrap(err, "ocr: open pdf")
	}
	defer func() { _ = doc.Close() }()

	var pages []string
	for n := 0; n < doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.Text(n)
		if err != nil {
			zap.L().Debug("ocr: page text failed", zap.Int("page", n), zap.Error(err))
			continue
		}
		if t := strings.TrimSpace(text); t != "" {
			pages = append(pages, t)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// Rasterize renders up to maxPages pages as JPEG images. Pages that fail to
// render are skipped.
func (f *Fitz) Rasterize(ctx context.Context, pdf []byte, maxPages int) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, eris.Wrap(err, "ocr: open pdf")
	}
	defer func() { _ = doc.Close() }()

	n := doc.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}

	images := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, f.dpi)
		if err != nil {
			zap.L().Debug("ocr: render page failed", zap.Int("page", i), zap.Error(err))
			continue
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, eris.Wrapf(err, "ocr: encode page %d", i)
		}
		images = append(images, buf.Bytes())
	}
	return images, nil
}
