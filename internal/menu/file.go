package menu

import (
	"bytes"
	"net/url"
	"path"
	"strings"
)

// FileKind is the detected type of a downloaded menu file.
type FileKind string

const (
	KindUnknown FileKind = ""
	KindPDF     FileKind = "pdf"
	KindImage   FileKind = "image"
)

var pdfMagic = []byte("%PDF-")

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// DetectKind decides whether a file is a PDF or an image. The content-type
// header wins, then the %PDF- signature, then the URL extension.
func DetectKind(contentType string, body []byte, rawURL string) FileKind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		return KindPDF
	case strings.HasPrefix(ct, "image/"):
		return KindImage
	case bytes.HasPrefix(body, pdfMagic):
		return KindPDF
	}

	switch ext := urlExt(rawURL); {
	case ext == ".pdf":
		return KindPDF
	case imageExts[ext] != "":
		return KindImage
	}
	return KindUnknown
}

// ImageMIME infers an image MIME type from the URL extension, defaulting
// to image/jpeg.
func ImageMIME(rawURL string) string {
	if mt := imageExts[urlExt(rawURL)]; mt != "" {
		return mt
	}
	return "image/jpeg"
}

// urlExt returns the lowercase extension of the URL path, ignoring any
// query string or fragment.
func urlExt(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(path.Ext(p))
}
