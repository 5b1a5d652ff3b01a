// Package prober performs the bounded network operations behind link
// classification: redirect-following HEAD probes, magic-byte sniffs,
// and budgeted partial GETs. Every operation carries its own timeout
// and the probe path never returns an error; it degrades to a guess so
// the preflight pipeline can always produce a result.
package prober

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/AdityaBoddepalli/HoverPeek/models"
)

const (
	sniffWindow = 4096
	userAgent   = "Mozilla/5.0 (compatible; HoverPeek/1.0)"

	// Partial-fetch timeouts scale with the byte budget: large PDF
	// budgets get the long deadline, everything else the short one.
	largeBudgetBytes  = 500 * 1024
	largeFetchTimeout = 8 * time.Second
	smallFetchTimeout = 3 * time.Second
)

// ErrBotChallenge marks a partial fetch rejected by a bot-protection
// challenge page rather than the origin itself.
var ErrBotChallenge = errors.New("bot protection challenge")

// HTTPError is a non-2xx response to a partial fetch.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Probe is the outcome of a HEAD probe. Guessed is set when the values
// came from the URL extension instead of a live response; Failed marks
// the guess as caused by a timeout or network failure rather than a
// benign method rejection.
type Probe struct {
	FinalURL           string
	ContentType        string
	ContentLength      int64
	ContentDisposition string
	RedirectCount      int
	CapExceeded        bool
	Guessed            bool
	Failed             bool
}

// FetchResult carries the accumulated bytes of a partial GET.
type FetchResult struct {
	Bytes       []byte
	ContentType string
	Truncated   bool
}

// Prober issues bounded HTTP requests with credentials omitted and
// redirects intercepted rather than auto-followed.
type Prober struct {
	client       *http.Client
	headTimeout  time.Duration
	sniffTimeout time.Duration
	maxRedirects int
}

// New builds a Prober from the configured budgets.
func New(cfg models.Config) *Prober {
	return &Prober{
		client: &http.Client{
			// Redirects are followed manually so each hop is counted
			// and capped.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		headTimeout:  cfg.HeadTimeout,
		sniffTimeout: cfg.SniffTimeout,
		maxRedirects: cfg.MaxRedirects,
	}
}

// ProbeHead issues HEAD against target, manually following Location
// headers up to the redirect cap with a fresh timeout per hop. Method
// rejection, timeouts, and network failures all degrade to a content
// type guessed from the URL extension.
func (p *Prober) ProbeHead(ctx context.Context, target string) Probe {
	probe := Probe{FinalURL: target}
	current := target

	for hop := 0; ; hop++ {
		resp, err := p.headOnce(ctx, current)
		if err != nil {
			probe.ContentType = GuessContentType(current)
			probe.Guessed = true
			probe.Failed = true
			return probe
		}
		resp.Body.Close()

		if isRedirect(resp.StatusCode) {
			loc := resp.Header.Get("Location")
			if loc == "" {
				break
			}
			next, err := resolveLocation(current, loc)
			if err != nil {
				break
			}
			if probe.RedirectCount >= p.maxRedirects {
				// Cap reached: stop following, do not count the
				// refused hop.
				probe.CapExceeded = true
				break
			}
			probe.RedirectCount++
			current = next
			probe.FinalURL = next
			continue
		}

		if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
			probe.ContentType = GuessContentType(current)
			probe.Guessed = true
			return probe
		}

		probe.ContentType = mediaType(resp.Header.Get("Content-Type"))
		probe.ContentLength = resp.ContentLength
		probe.ContentDisposition = resp.Header.Get("Content-Disposition")
		return probe
	}

	probe.ContentType = GuessContentType(current)
	probe.Guessed = true
	return probe
}

func (p *Prober) headOnce(ctx context.Context, target string) (*http.Response, error) {
	hopCtx, cancel := context.WithTimeout(ctx, p.headTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(hopCtx, http.MethodHead, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	return p.client.Do(req)
}

// SniffBytes fetches the first 4 KiB of target and matches magic-byte
// signatures. Any failure yields the empty type; sniffing never
// surfaces an error.
func (p *Prober) SniffBytes(ctx context.Context, target string) models.ResourceType {
	sniffCtx, cancel := context.WithTimeout(ctx, p.sniffTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(sniffCtx, http.MethodGet, target, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", sniffWindow-1))

	resp, err := p.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return ""
	}

	head, err := io.ReadAll(io.LimitReader(resp.Body, sniffWindow))
	if err != nil || len(head) == 0 {
		return ""
	}
	return MatchMagic(head)
}

// MatchMagic maps leading bytes to a resource type on a positive
// signature match only.
func MatchMagic(head []byte) models.ResourceType {
	switch {
	case bytes.HasPrefix(head, []byte("%PDF")):
		return models.TypePDF
	case bytes.HasPrefix(head, []byte("PK\x03")), bytes.HasPrefix(head, []byte("PK\x05")):
		return models.TypeDownload
	case bytes.HasPrefix(head, []byte("MZ")), bytes.HasPrefix(head, []byte("\x7fELF")):
		return models.TypeDownload
	}
	return ""
}

// IsExecutableMagic reports whether the leading bytes identify a
// native executable or archive format.
func IsExecutableMagic(head []byte) bool {
	return bytes.HasPrefix(head, []byte("MZ")) ||
		bytes.HasPrefix(head, []byte("\x7fELF")) ||
		bytes.HasPrefix(head, []byte("PK\x03")) ||
		bytes.HasPrefix(head, []byte("PK\x05"))
}

// PartialFetch streams a GET response, accumulating up to maxBytes and
// cancelling the remainder. Non-2xx statuses are returned as
// *HTTPError; recognizable bot-challenge responses as ErrBotChallenge.
func (p *Prober) PartialFetch(ctx context.Context, target string, maxBytes int64) (*FetchResult, error) {
	timeout := smallFetchTimeout
	if maxBytes > largeBudgetBytes {
		timeout = largeFetchTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if isBotChallenge(resp) {
			return nil, fmt.Errorf("%w: HTTP %d for %s", ErrBotChallenge, resp.StatusCode, target)
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: target}
	}

	// Read one byte past the budget to learn whether the body was cut
	// short; closing the response body cancels the rest server-side.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	result := &FetchResult{
		Bytes:       data,
		ContentType: mediaType(resp.Header.Get("Content-Type")),
	}
	if int64(len(data)) > maxBytes {
		result.Bytes = data[:maxBytes]
		result.Truncated = true
	}
	return result, nil
}

// isBotChallenge recognizes the status codes challenge providers use
// for block pages: outright rate limiting, or 403/503 carrying a
// challenge marker header or server banner.
func isBotChallenge(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusServiceUnavailable {
		return false
	}
	if resp.Header.Get("cf-mitigated") != "" || resp.Header.Get("cf-chl-bypass") != "" {
		return true
	}
	server := strings.ToLower(resp.Header.Get("Server"))
	return strings.Contains(server, "cloudflare") || strings.Contains(server, "ddos-guard")
}

// GuessContentType derives a content type from the URL's file
// extension, for servers that reject HEAD or fail to respond in time.
func GuessContentType(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "text/html"
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".zip":
		return "application/zip"
	case ".exe", ".msi", ".dmg", ".pkg", ".deb", ".rpm", ".apk":
		return "application/octet-stream"
	case ".gz", ".tgz", ".bz2", ".xz", ".7z", ".rar":
		return "application/octet-stream"
	case ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx":
		return "application/octet-stream"
	default:
		return "text/html"
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func resolveLocation(base, location string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	locURL, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(locURL).String(), nil
}

func mediaType(header string) string {
	if i := strings.Index(header, ";"); i >= 0 {
		header = header[:i]
	}
	return strings.TrimSpace(strings.ToLower(header))
}
