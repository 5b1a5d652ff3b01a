package common

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

// ContentHash computes the SHA256 hash of content and returns it as a
// hex string. Used as the cache key for preview artifacts.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// SanitizeURL performs basic cleanup on hrefs to handle common
// copy-paste issues: edge whitespace, markdown link wrappers, and
// trailing punctuation.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// [text](url) -> url
	markdownLinkPattern := regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	trailingChars := []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"}
	for _, char := range trailingChars {
		cleaned = strings.TrimSuffix(cleaned, char)
	}

	leadingChars := []string{"(", "[", "<", "\"", "'"}
	for _, char := range leadingChars {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}

// RegistrableDomain reduces a hostname to its last two labels, with a
// leading "www." stripped first. Two labels is the documented
// comparison unit for text-mismatch checks; public-suffix lists are
// deliberately not consulted.
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	host = strings.TrimPrefix(host, "www.")
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

var (
	domainTokenPattern = regexp.MustCompile(`(?i)\b([a-z0-9][a-z0-9-]*(?:\.[a-z0-9][a-z0-9-]*)+)\b`)
	numericLabel       = regexp.MustCompile(`^[0-9]+$`)
)

// DomainToken extracts the first domain-looking token from visible
// anchor text, or "" when none is present. Tokens ending in a purely
// numeric label (version strings like "1.2.3") are ignored.
func DomainToken(text string) string {
	match := domainTokenPattern.FindString(text)
	if match == "" {
		return ""
	}
	labels := strings.Split(match, ".")
	if numericLabel.MatchString(labels[len(labels)-1]) {
		return ""
	}
	return strings.ToLower(match)
}
