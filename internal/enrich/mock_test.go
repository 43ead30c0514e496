package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grazbites/scraper/internal/menu"
)

type fakeRenderer struct {
	html  string
	err   error
	calls []string
}

func (f *fakeRenderer) Render(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	return f.html, f.err
}

func (f *fakeRenderer) Name() string { return "fake" }

func (f *fakeRenderer) Close() error { return nil }

type fakeFiles struct {
	result menu.Result
	files  []menu.File
}

func (f *fakeFiles) Extract(_ context.Context, file menu.File) menu.Result {
	f.files = append(f.files, file)
	return f.result
}

// newSite serves fixed pages by path. Paths ending in .pdf are served as PDFs.
func newSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if len(r.URL.Path) > 4 && r.URL.Path[len(r.URL.Path)-4:] == ".pdf" {
			w.Header().Set("Content-Type", "application/pdf")
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}
