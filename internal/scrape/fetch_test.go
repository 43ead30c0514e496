package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grazbites/scraper/internal/resilience"
)

func TestFetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GrazBot/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Aiola</title></head><body><p>Willkommen</p></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{UserAgent: "GrazBot/1.0"})
	p, err := f.FetchHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 200, p.StatusCode)
	assert.Equal(t, "text/html", p.MediaType())
	assert.Contains(t, p.HTML(), "Willkommen")
}

func TestFetchHTML_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/de/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/de/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>Startseite</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := NewFetcher(FetcherOptions{}).FetchHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/de/", p.URL)
}

func TestFetchHTML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "not html",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/pdf")
				_, _ = w.Write([]byte("%PDF-1.4"))
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrNotHTML))
			},
		},
		{
			name: "http error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusNotFound)
			},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "404")
			},
		},
		{
			name: "cloudflare",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Cf-Ray", "abc123")
				w.WriteHeader(http.StatusForbidden)
			},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "blocked")
			},
		},
		{
			name: "too large",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte(strings.Repeat("a", 2048)))
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrTooLarge))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewFetcher(FetcherOptions{MaxBodyBytes: 1024}).FetchHTML(context.Background(), srv.URL)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestFetch_TransientStatus(t *testing.T) {
	statuses := map[string]int{
		"/busy": http.StatusTooManyRequests,
		"/down": http.StatusBadGateway,
		"/gone": http.StatusNotFound,
		"/nope": http.StatusUnauthorized,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(statuses[r.URL.Path])
		_, _ = w.Write([]byte(strings.Repeat("<p>Speisekarte</p>", 400)))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{})
	for path, status := range statuses {
		_, err := f.FetchHTML(context.Background(), srv.URL+path)
		require.Error(t, err, path)

		var te *resilience.TransientError
		transient := errors.As(err, &te)
		assert.Equal(t, resilience.IsTransientHTTPStatus(status), transient, path)
		if transient {
			assert.Equal(t, status, te.StatusCode)
		}

		_, err = f.FetchFile(context.Background(), srv.URL+path)
		assert.Equal(t, resilience.IsTransientHTTPStatus(status), resilience.IsTransient(err), path)
	}
}

func TestFetchFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/big.pdf" {
			_, _ = w.Write([]byte(strings.Repeat("x", 300)))
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 menu"))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{MaxFileBytes: 256})

	p, err := f.FetchFile(context.Background(), srv.URL+"/karte.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", p.MediaType())
	assert.Equal(t, "%PDF-1.7 menu", string(p.Body))

	_, err = f.FetchFile(context.Background(), srv.URL+"/big.pdf")
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "text/html", mediaType("Text/HTML; charset=ISO-8859-1"))
	assert.Equal(t, "image/png", mediaType("image/png"))
	assert.Equal(t, "text/html", mediaType("text/html; charset"))
	assert.Equal(t, "", mediaType(""))
}
