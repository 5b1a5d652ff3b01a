package titles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdityaBoddepalli/HoverPeek/models"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/cache"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/extract"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/prober"
)

func testResolver() *Resolver {
	cfg := models.DefaultConfig()
	c := cache.New[string](cache.NamespaceTitles, cfg.CacheTTL, nil, nil)
	return NewResolver(prober.New(cfg), extract.New(), c, nil)
}

func TestResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Example Page</title></head><body></body></html>`))
	}))
	defer server.Close()

	title := testResolver().Resolve(context.Background(), server.URL)
	if title != "Example Page" {
		t.Errorf("Resolve() = %q, want %q", title, "Example Page")
	}
}

func TestResolve_Cached(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`<title>Once</title>`))
	}))
	defer server.Close()

	r := testResolver()
	first := r.Resolve(context.Background(), server.URL)
	second := r.Resolve(context.Background(), server.URL)

	if hits != 1 {
		t.Errorf("server hits = %d, want 1 with a warm cache", hits)
	}
	if first != "Once" || second != "Once" {
		t.Errorf("titles = %q, %q, want both %q", first, second, "Once")
	}
}

func TestResolve_FetchFailureYieldsEmpty(t *testing.T) {
	title := testResolver().Resolve(context.Background(), "http://127.0.0.1:1/page")
	if title != "" {
		t.Errorf("Resolve() = %q, want empty on fetch failure", title)
	}
}

func TestResolve_EmptyTitleIsCached(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`<html><body>no title here</body></html>`))
	}))
	defer server.Close()

	r := testResolver()
	r.Resolve(context.Background(), server.URL)
	r.Resolve(context.Background(), server.URL)

	if hits != 1 {
		t.Errorf("server hits = %d, want empty title cached after first fetch", hits)
	}
}

func TestResolve_TruncatedPageStillResolves(t *testing.T) {
	// The title sits inside the first 48KB even when the page is bigger.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Big Page</title></head><body>`))
		filler := make([]byte, 100*1024)
		for i := range filler {
			filler[i] = 'x'
		}
		w.Write(filler)
		w.Write([]byte(`</body></html>`))
	}))
	defer server.Close()

	title := testResolver().Resolve(context.Background(), server.URL)
	if title != "Big Page" {
		t.Errorf("Resolve() = %q, want %q", title, "Big Page")
	}
}
