// Package menu extracts menu items from web pages and menu files. HTML is
// read from schema.org structured data or, failing that, a heuristic walk;
// PDFs and images go through a language model.
package menu

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/grazbites/scraper/internal/model"
	"github.com/grazbites/scraper/internal/ocr"
	"github.com/grazbites/scraper/pkg/anthropic"
)

// Strategy names the extraction step that produced a result.
type Strategy string

const (
	StrategyNone       Strategy = ""
	StrategyStructured Strategy = "structured_data"
	StrategyHeuristic  Strategy = "html_heuristic"
	StrategyPDFText    Strategy = "pdf_text"
	StrategyVision     Strategy = "vision"
)

// Result is the outcome of one extraction.
type Result struct {
	Items    []model.MenuItem
	Strategy Strategy
}

// Len returns the number of items.
func (r Result) Len() int { return len(r.Items) }

// FromHTML extracts items from an HTML document. Structured data with at
// least one item is authoritative; otherwise the heuristic walk runs.
func FromHTML(body string) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		zap.L().Debug("menu: parse html", zap.Error(err))
		return Result{}
	}
	return FromDocument(doc)
}

// FromDocument is FromHTML for an already parsed document.
func FromDocument(doc *goquery.Document) Result {
	if res := result(FromStructuredData(doc), StrategyStructured); res.Len() > 0 {
		return res
	}
	return result(FromHeuristic(doc), StrategyHeuristic)
}

// File is a downloaded menu file.
type File struct {
	URL         string
	ContentType string
	Body        []byte
}

// FileOptions configures FileExtractor.
type FileOptions struct {
	MaxPages     int
	MinTextChars int
	MinItems     int
}

// FileExtractor reads PDF and image menus.
type FileExtractor struct {
	llm    *LLM
	text   ocr.Extractor
	raster ocr.Rasterizer
	opts   FileOptions
}

// NewFileExtractor creates a FileExtractor. raster may be nil, in which
// case scanned PDFs yield nothing.
func NewFileExtractor(llm *LLM, text ocr.Extractor, raster ocr.Rasterizer, opts FileOptions) *FileExtractor {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 5
	}
	if opts.MinTextChars <= 0 {
		opts.MinTextChars = 20
	}
	if opts.MinItems <= 0 {
		opts.MinItems = 3
	}
	return &FileExtractor{llm: llm, text: text, raster: raster, opts: opts}
}

// Extract reads menu items from f. It never fails; an unreadable file
// yields an empty Result.
func (x *FileExtractor) Extract(ctx context.Context, f File) Result {
	switch DetectKind(f.ContentType, f.Body, f.URL) {
	case KindPDF:
		return x.fromPDF(ctx, f)
	case KindImage:
		mt := strings.ToLower(f.ContentType)
		if !strings.HasPrefix(mt, "image/") {
			mt = ImageMIME(f.URL)
		} else if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		items := x.llm.FromImage(ctx, anthropic.Image{MediaType: mt, Data: f.Body})
		return result(items, StrategyVision)
	default:
		zap.L().Debug("menu: unsupported file type",
			zap.String("url", f.URL),
			zap.String("content_type", f.ContentType),
		)
		return Result{}
	}
}

func (x *FileExtractor) fromPDF(ctx context.Context, f File) Result {
	var textItems []model.MenuItem
	if x.text != nil {
		text, err := x.text.ExtractText(ctx, f.Body)
		if err != nil {
			zap.L().Debug("menu: pdf text extraction failed", zap.String("url", f.URL), zap.Error(err))
		}
		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) >= x.opts.MinTextChars {
			textItems = x.llm.FromText(ctx, text)
			if len(textItems) >= x.opts.MinItems {
				return result(textItems, StrategyPDFText)
			}
		}
	}

	var pages [][]byte
	if x.raster != nil {
		var err error
		pages, err = x.raster.Rasterize(ctx, f.Body, x.opts.MaxPages)
		if err != nil {
			zap.L().Debug("menu: pdf rasterize failed", zap.String("url", f.URL), zap.Error(err))
		}
	}
	if len(pages) == 0 {
		return result(textItems, StrategyPDFText)
	}

	images := make([]anthropic.Image, len(pages))
	for i, p := range pages {
		images[i] = anthropic.Image{MediaType: "image/jpeg", Data: p}
	}
	visionItems := x.llm.FromImages(ctx, images)
	if len(textItems) > len(visionItems) {
		return result(textItems, StrategyPDFText)
	}
	return result(visionItems, StrategyVision)
}

func result(items []model.MenuItem, s Strategy) Result {
	items = Clean(items)
	if len(items) == 0 {
		return Result{}
	}
	return Result{Items: items, Strategy: s}
}
