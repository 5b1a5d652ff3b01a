package prober

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AdityaBoddepalli/HoverPeek/models"
)

func testProber() *Prober {
	cfg := models.DefaultConfig()
	return New(cfg)
}

func TestProbeHead_Direct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", "12345")
	}))
	defer server.Close()

	probe := testProber().ProbeHead(context.Background(), server.URL+"/report")

	if probe.Guessed {
		t.Error("Guessed = true for a live response")
	}
	if probe.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q, want application/pdf", probe.ContentType)
	}
	if probe.ContentLength != 12345 {
		t.Errorf("ContentLength = %d, want 12345", probe.ContentLength)
	}
	if probe.RedirectCount != 0 {
		t.Errorf("RedirectCount = %d, want 0", probe.RedirectCount)
	}
	if probe.FinalURL != server.URL+"/report" {
		t.Errorf("FinalURL = %q, want original URL", probe.FinalURL)
	}
}

func redirectChain(t *testing.T, hops int, final http.HandlerFunc) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var step int
		fmt.Sscanf(r.URL.Path, "/step/%d", &step)
		if step < hops {
			http.Redirect(w, r, fmt.Sprintf("%s/step/%d", server.URL, step+1), http.StatusFound)
			return
		}
		final(w, r)
	}))
	return server
}

func TestProbeHead_FollowsRedirects(t *testing.T) {
	server := redirectChain(t, 2, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	})
	defer server.Close()

	probe := testProber().ProbeHead(context.Background(), server.URL+"/step/0")

	if probe.RedirectCount != 2 {
		t.Errorf("RedirectCount = %d, want 2", probe.RedirectCount)
	}
	if probe.CapExceeded {
		t.Error("CapExceeded = true below the cap")
	}
	if probe.ContentType != "text/html" {
		t.Errorf("ContentType = %q, want text/html", probe.ContentType)
	}
	if !strings.HasSuffix(probe.FinalURL, "/step/2") {
		t.Errorf("FinalURL = %q, want the chain's end", probe.FinalURL)
	}
}

func TestProbeHead_ExactlyAtCap(t *testing.T) {
	server := redirectChain(t, 3, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	})
	defer server.Close()

	probe := testProber().ProbeHead(context.Background(), server.URL+"/step/0")

	if probe.RedirectCount != 3 {
		t.Errorf("RedirectCount = %d, want 3", probe.RedirectCount)
	}
	if probe.CapExceeded {
		t.Error("CapExceeded = true for a chain of exactly the cap length")
	}
	if probe.Guessed {
		t.Error("Guessed = true, the final hop responded")
	}
}

func TestProbeHead_CapExceeded(t *testing.T) {
	server := redirectChain(t, 10, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	})
	defer server.Close()

	probe := testProber().ProbeHead(context.Background(), server.URL+"/step/0")

	if probe.RedirectCount != 3 {
		t.Errorf("RedirectCount = %d, want to stop counting at the cap", probe.RedirectCount)
	}
	if !probe.CapExceeded {
		t.Error("CapExceeded = false for an over-long chain")
	}
	if !strings.HasSuffix(probe.FinalURL, "/step/3") {
		t.Errorf("FinalURL = %q, want the last followed hop", probe.FinalURL)
	}
}

func TestProbeHead_MethodNotAllowedFallsBackToGuess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	probe := testProber().ProbeHead(context.Background(), server.URL+"/files/report.pdf")

	if !probe.Guessed {
		t.Error("Guessed = false after method rejection")
	}
	if probe.Failed {
		t.Error("Failed = true for a reachable host that merely rejects HEAD")
	}
	if probe.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q, want extension guess application/pdf", probe.ContentType)
	}
}

func TestProbeHead_UnreachableHostFallsBackToGuess(t *testing.T) {
	probe := testProber().ProbeHead(context.Background(), "http://127.0.0.1:1/image.png")

	if !probe.Guessed {
		t.Error("Guessed = false for an unreachable host")
	}
	if !probe.Failed {
		t.Error("Failed = false, want the network failure recorded")
	}
	if probe.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", probe.ContentType)
	}
}

func TestSniffBytes(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		want models.ResourceType
	}{
		{"pdf magic", []byte("%PDF-1.7 rest of file"), models.TypePDF},
		{"zip magic", []byte("PK\x03\x04 payload"), models.TypeDownload},
		{"pe executable", []byte("MZ\x90\x00 payload"), models.TypeDownload},
		{"elf executable", []byte("\x7fELF\x02 payload"), models.TypeDownload},
		{"html body", []byte("<!doctype html><html>"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Range") == "" {
					t.Error("sniff request missing Range header")
				}
				w.Write(tt.body)
			}))
			defer server.Close()

			if got := testProber().SniffBytes(context.Background(), server.URL); got != tt.want {
				t.Errorf("SniffBytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSniffBytes_ErrorYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if got := testProber().SniffBytes(context.Background(), server.URL); got != "" {
		t.Errorf("SniffBytes() = %q, want empty on server error", got)
	}
}

func TestPartialFetch_WithinBudget(t *testing.T) {
	body := strings.Repeat("a", 1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	defer server.Close()

	result, err := testProber().PartialFetch(context.Background(), server.URL, 4096)
	if err != nil {
		t.Fatalf("PartialFetch() error = %v", err)
	}
	if result.Truncated {
		t.Error("Truncated = true for a body within budget")
	}
	if len(result.Bytes) != 1000 {
		t.Errorf("len(Bytes) = %d, want 1000", len(result.Bytes))
	}
	if result.ContentType != "text/html" {
		t.Errorf("ContentType = %q, want bare media type", result.ContentType)
	}
}

func TestPartialFetch_Truncates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("b", 10_000)))
	}))
	defer server.Close()

	result, err := testProber().PartialFetch(context.Background(), server.URL, 4096)
	if err != nil {
		t.Fatalf("PartialFetch() error = %v", err)
	}
	if !result.Truncated {
		t.Error("Truncated = false for an over-budget body")
	}
	if len(result.Bytes) != 4096 {
		t.Errorf("len(Bytes) = %d, want exactly the budget", len(result.Bytes))
	}
}

func TestPartialFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testProber().PartialFetch(context.Background(), server.URL, 4096)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", httpErr.StatusCode)
	}
}

func TestPartialFetch_BotChallenge(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header map[string]string
		want   bool
	}{
		{"rate limited", http.StatusTooManyRequests, nil, true},
		{"cloudflare 403", http.StatusForbidden, map[string]string{"Server": "cloudflare"}, true},
		{"challenge header", http.StatusServiceUnavailable, map[string]string{"cf-mitigated": "challenge"}, true},
		{"plain 403", http.StatusForbidden, nil, false},
		{"ddos guard", http.StatusServiceUnavailable, map[string]string{"Server": "ddos-guard"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := testProber().PartialFetch(context.Background(), server.URL, 4096)
			if got := errors.Is(err, ErrBotChallenge); got != tt.want {
				t.Errorf("errors.Is(err, ErrBotChallenge) = %v, want %v (err = %v)", got, tt.want, err)
			}
		})
	}
}

func TestPartialFetch_RespectsDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := testProber().PartialFetch(ctx, server.URL, 4096); err == nil {
		t.Error("PartialFetch() error = nil, want deadline error")
	}
}

func TestGuessContentType(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/report.pdf", "application/pdf"},
		{"https://example.com/photo.JPG", "image/jpeg"},
		{"https://example.com/setup.exe", "application/octet-stream"},
		{"https://example.com/archive.tar.gz", "application/octet-stream"},
		{"https://example.com/page", "text/html"},
		{"https://example.com/clip.mp4", "video/mp4"},
	}

	for _, tt := range tests {
		if got := GuessContentType(tt.url); got != tt.want {
			t.Errorf("GuessContentType(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestMatchMagic_NoMatch(t *testing.T) {
	if got := MatchMagic([]byte("just some text")); got != "" {
		t.Errorf("MatchMagic() = %q, want empty for unrecognized bytes", got)
	}
}

func TestIsExecutableMagic(t *testing.T) {
	if !IsExecutableMagic([]byte("MZ\x90\x00")) {
		t.Error("PE header not recognized")
	}
	if !IsExecutableMagic([]byte("\x7fELF")) {
		t.Error("ELF header not recognized")
	}
	if IsExecutableMagic([]byte("%PDF-1.7")) {
		t.Error("PDF header misidentified as executable")
	}
}
