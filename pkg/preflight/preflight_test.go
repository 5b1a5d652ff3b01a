package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AdityaBoddepalli/HoverPeek/models"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/cache"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/prober"
)

func testOrchestrator() *Orchestrator {
	cfg := models.DefaultConfig()
	c := cache.New[models.PreflightResult](cache.NamespacePreflight, cfg.CacheTTL, nil, nil)
	return New(prober.New(cfg), c, cfg, nil)
}

func TestClassify_UnsafeSchemes(t *testing.T) {
	hrefs := []string{
		"javascript:alert(1)",
		"data:text/html,<script>alert(1)</script>",
		"file:///etc/passwd",
		"vbscript:msgbox(1)",
	}

	o := testOrchestrator()
	for _, href := range hrefs {
		result := o.Classify(context.Background(), Request{Href: href})

		if result.Type != models.TypeBlocked {
			t.Errorf("Classify(%q).Type = %v, want blocked", href, result.Type)
		}
		if result.Risk != models.RiskRed {
			t.Errorf("Classify(%q).Risk = %v, want red", href, result.Risk)
		}
		if result.Plan != models.PlanBlocked {
			t.Errorf("Classify(%q).Plan = %v, want blocked", href, result.Plan)
		}
		if len(result.Reasons) != 1 || result.Reasons[0] != "Unsafe scheme" {
			t.Errorf("Classify(%q).Reasons = %v, want [Unsafe scheme]", href, result.Reasons)
		}
	}
}

func TestClassify_MailtoAndTel(t *testing.T) {
	o := testOrchestrator()

	result := o.Classify(context.Background(), Request{Href: "mailto:team@example.com"})
	if result.Type != models.TypeMailto || result.Risk != models.RiskGreen || result.Plan != models.PlanNoFetch {
		t.Errorf("mailto result = %+v, want mailto/green/no_fetch", result)
	}

	result = o.Classify(context.Background(), Request{Href: "tel:+15551234567"})
	if result.Type != models.TypeTel || result.Risk != models.RiskGreen || result.Plan != models.PlanNoFetch {
		t.Errorf("tel result = %+v, want tel/green/no_fetch", result)
	}
}

func TestClassify_SamePageAnchor(t *testing.T) {
	o := testOrchestrator()

	result := o.Classify(context.Background(), Request{
		Href:    "#install",
		PageURL: "https://example.com/docs",
	})

	if result.Type != models.TypeAnchor {
		t.Errorf("Type = %v, want anchor", result.Type)
	}
	if result.Plan != models.PlanNoFetch {
		t.Errorf("Plan = %v, want no_fetch", result.Plan)
	}
}

func TestClassify_UnknownProtocol(t *testing.T) {
	o := testOrchestrator()

	result := o.Classify(context.Background(), Request{Href: "gopher://example.com/doc"})

	if result.Type != models.TypeBlocked {
		t.Errorf("Type = %v, want blocked", result.Type)
	}
	if result.Risk != models.RiskRed {
		t.Errorf("Risk = %v, want red", result.Risk)
	}
	if len(result.Reasons) != 1 || result.Reasons[0] != "Unknown protocol" {
		t.Errorf("Reasons = %v, want [Unknown protocol]", result.Reasons)
	}
}

func TestClassify_VideoSkipsProbe(t *testing.T) {
	// No server backs this URL; a probe attempt would degrade to a
	// guess, but video detection short-circuits before any I/O.
	o := testOrchestrator()

	result := o.Classify(context.Background(), Request{Href: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})

	if result.Type != models.TypeVideo {
		t.Fatalf("Type = %v, want video", result.Type)
	}
	if result.Plan != models.PlanNoFetch {
		t.Errorf("Plan = %v, want no_fetch", result.Plan)
	}
	if result.Video == nil || result.Video.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("Video = %+v, want platform with ID", result.Video)
	}
}

func TestClassify_PDFByContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", "204800")
	}))
	defer server.Close()

	o := testOrchestrator()
	result := o.Classify(context.Background(), Request{Href: server.URL + "/report.pdf"})

	if result.Type != models.TypePDF {
		t.Errorf("Type = %v, want pdf", result.Type)
	}
	if result.Plan != models.PlanPartialGet {
		t.Errorf("Plan = %v, want partial_get", result.Plan)
	}
	if result.SizeBytes != 204800 {
		t.Errorf("SizeBytes = %d, want 204800", result.SizeBytes)
	}
}

func TestClassify_ExecutableSniffEscalates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		if r.Method == http.MethodGet {
			w.Write([]byte("MZ\x90\x00rest of a PE file"))
		}
	}))
	defer server.Close()

	o := testOrchestrator()
	result := o.Classify(context.Background(), Request{Href: server.URL + "/setup.exe"})

	if result.Type != models.TypeDownload {
		t.Errorf("Type = %v, want download", result.Type)
	}
	if result.Risk != models.RiskRed {
		t.Errorf("Risk = %v, want red after executable sniff", result.Risk)
	}
	if result.Plan != models.PlanBlocked {
		t.Errorf("Plan = %v, want blocked for a red download", result.Plan)
	}
	if len(result.Reasons) == 0 || result.Reasons[0] != "Executable download" {
		t.Errorf("Reasons = %v, want executable reason first", result.Reasons)
	}
}

func TestClassify_UnreachableHostFlagsGuess(t *testing.T) {
	// Port 1 refuses connections; the type is guessed from the path but
	// the result must carry a visible caution rather than a clean green.
	o := testOrchestrator()

	result := o.Classify(context.Background(), Request{Href: "http://127.0.0.1:1/page"})

	if result.Type != models.TypeWebpage {
		t.Errorf("Type = %v, want webpage guess", result.Type)
	}
	if result.Risk != models.RiskAmber {
		t.Errorf("Risk = %v, want amber when the host never answered", result.Risk)
	}
	found := false
	for _, r := range result.Reasons {
		if r == "Unable to check" {
			found = true
		}
	}
	if !found {
		t.Errorf("Reasons = %v, want unable-to-check reason", result.Reasons)
	}
}

func TestClassify_MismatchAttached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	defer server.Close()

	o := testOrchestrator()
	result := o.Classify(context.Background(), Request{
		Href:       server.URL + "/login",
		AnchorText: "Log in to paypal.com",
	})

	if result.Mismatch == nil {
		t.Fatal("Mismatch = nil, want text/link domain pair")
	}
	if result.Mismatch.TextDomain != "paypal.com" {
		t.Errorf("TextDomain = %q, want paypal.com", result.Mismatch.TextDomain)
	}
	// The mismatch is display data, not a risk signal.
	if result.Risk != models.RiskGreen {
		t.Errorf("Risk = %v, want green despite mismatch", result.Risk)
	}
}

func TestClassify_DowngradeFromSecureOrigin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	defer server.Close()

	o := testOrchestrator()
	result := o.Classify(context.Background(), Request{
		Href:    server.URL + "/page", // httptest serves plain http
		PageURL: "https://secure.example/start",
	})

	if result.Risk != models.RiskAmber {
		t.Errorf("Risk = %v, want amber for https->http", result.Risk)
	}
	found := false
	for _, r := range result.Reasons {
		if r == "HTTP (not secure)" {
			found = true
		}
	}
	if !found {
		t.Errorf("Reasons = %v, want insecure-HTTP reason", result.Reasons)
	}
}

func TestClassify_RelativeHrefResolvesAgainstPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/docs/guide" {
			t.Errorf("probed path = %q, want /docs/guide", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/html")
	}))
	defer server.Close()

	o := testOrchestrator()
	result := o.Classify(context.Background(), Request{
		Href:    "/docs/guide",
		PageURL: server.URL + "/docs/start",
	})

	if result.Type != models.TypeWebpage {
		t.Errorf("Type = %v, want webpage", result.Type)
	}
	if result.Plan != models.PlanPartialGet {
		t.Errorf("Plan = %v, want partial_get", result.Plan)
	}
}

func TestClassify_MalformedHrefDegrades(t *testing.T) {
	o := testOrchestrator()

	result := o.Classify(context.Background(), Request{Href: "http://exa mple.com/%zz"})

	if result.Type != models.TypeWebpage {
		t.Errorf("Type = %v, want webpage fallback", result.Type)
	}
	if result.Risk != models.RiskAmber {
		t.Errorf("Risk = %v, want amber fallback", result.Risk)
	}
	if len(result.Reasons) != 1 || result.Reasons[0] != "Unable to check" {
		t.Errorf("Reasons = %v, want [Unable to check]", result.Reasons)
	}
}

func TestClassify_CachesByOriginalHref(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/html")
	}))
	defer server.Close()

	o := testOrchestrator()
	req := Request{Href: server.URL + "/page"}

	first := o.Classify(context.Background(), req)
	second := o.Classify(context.Background(), req)

	if hits != 1 {
		t.Errorf("server hits = %d, want 1 with a warm cache", hits)
	}
	if first.FinalURL != second.FinalURL || first.Type != second.Type {
		t.Error("cached result differs from the original")
	}
}

func TestClassify_ReasonsNeverExceedTwo(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/final" {
			http.Redirect(w, r, server.URL+"/final"+r.URL.Path, http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
	}))
	defer server.Close()

	o := testOrchestrator()
	result := o.Classify(context.Background(), Request{
		Href:    server.URL + "/a/b/c",
		PageURL: "https://secure.example/start",
	})

	if len(result.Reasons) > 2 {
		t.Errorf("Reasons = %v, want at most two", result.Reasons)
	}
	if result.Risk != models.RiskAmber {
		t.Errorf("Risk = %v, want amber", result.Risk)
	}
}

func TestClassify_NeverPanicsToCaller(t *testing.T) {
	o := testOrchestrator()

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Classify(context.Background(), Request{Href: string([]byte{0x7f, 0xff, 0xfe})})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("classification hung")
	}
}
