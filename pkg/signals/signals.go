// Package signals implements the risk signal catalog: pure,
// synchronous checks over a URL, its anchor text, and the page origin.
// Nothing in this package performs I/O.
package signals

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/AdityaBoddepalli/HoverPeek/internal/common"
	"github.com/AdityaBoddepalli/HoverPeek/models"
)

// Schemes that are rejected outright. A link carrying one of these
// fails classification as Blocked/Red before any other check runs.
var unsafeSchemes = map[string]bool{
	"javascript": true,
	"data":       true,
	"file":       true,
	"vbscript":   true,
}

const (
	ReasonUnsafeScheme     = "Unsafe scheme"
	ReasonSuspiciousDomain = "Suspicious domain characters"
	ReasonInsecureHTTP     = "HTTP (not secure)"
	ReasonExecutable       = "Executable download"
	ReasonRedirectCap      = "Too many redirects"
	ReasonUnknownProtocol  = "Unknown protocol"
	ReasonUnableToCheck    = "Unable to check"
)

// UnsafeScheme reports whether the scheme is in the rejected set.
func UnsafeScheme(scheme string) bool {
	return unsafeSchemes[strings.ToLower(scheme)]
}

// CheckHomograph flags hosts mixing Latin with Cyrillic or Greek
// script, and punycode labels, both common homograph-attack markers.
func CheckHomograph(host string) []models.RiskSignal {
	var hasLatin, hasCyrillic, hasGreek bool
	for _, r := range host {
		switch {
		case unicode.Is(unicode.Latin, r):
			hasLatin = true
		case unicode.Is(unicode.Cyrillic, r):
			hasCyrillic = true
		case unicode.Is(unicode.Greek, r):
			hasGreek = true
		}
	}

	mixed := hasLatin && (hasCyrillic || hasGreek)
	punycode := false
	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(strings.ToLower(label), "xn--") {
			punycode = true
			break
		}
	}

	if mixed || punycode {
		return []models.RiskSignal{{Tier: models.RiskAmber, Reason: ReasonSuspiciousDomain}}
	}
	return nil
}

// CheckDowngrade flags a secure page origin linking to an insecure
// target. The extension-style synthetic origin counts as secure so
// that local test pages exercise the same rule.
func CheckDowngrade(pageOrigin string, target *url.URL) []models.RiskSignal {
	if target.Scheme != "http" {
		return nil
	}
	origin, err := url.Parse(pageOrigin)
	if err != nil || origin.Scheme == "" {
		return nil
	}
	switch origin.Scheme {
	case "https", "chrome-extension", "moz-extension":
		return []models.RiskSignal{{Tier: models.RiskAmber, Reason: ReasonInsecureHTTP}}
	}
	return nil
}

// CheckMismatch extracts a domain-looking token from the anchor text
// and compares registrable domains. The mismatch is attached to the
// result for display but does not itself contribute a risk signal.
func CheckMismatch(anchorText string, target *url.URL) *models.TextMismatch {
	token := common.DomainToken(anchorText)
	if token == "" {
		return nil
	}

	textDomain := common.RegistrableDomain(token)
	linkDomain := common.RegistrableDomain(target.Hostname())
	if textDomain == "" || linkDomain == "" || textDomain == linkDomain {
		return nil
	}

	// Report the normalized domain that was compared, not the raw
	// token as it appeared in the text.
	return &models.TextMismatch{TextDomain: textDomain, LinkDomain: target.Hostname()}
}

// RedirectSignals converts an observed redirect chain into signals:
// two or more hops is Amber, and a chain that was cut off at the cap
// adds a second Amber.
func RedirectSignals(count int, capExceeded bool) []models.RiskSignal {
	var out []models.RiskSignal
	if count >= 2 {
		out = append(out, models.RiskSignal{
			Tier:   models.RiskAmber,
			Reason: fmt.Sprintf("Redirects x%d", count),
		})
	}
	if capExceeded {
		out = append(out, models.RiskSignal{Tier: models.RiskAmber, Reason: ReasonRedirectCap})
	}
	return out
}

// ExecutableSignal escalates a download whose leading bytes identify a
// native executable or archive format.
func ExecutableSignal() models.RiskSignal {
	return models.RiskSignal{Tier: models.RiskRed, Reason: ReasonExecutable}
}

// ProbeFailureSignal marks a classification whose probe timed out or
// could not reach the host at all. Method rejection is not a failure
// and does not get this signal.
func ProbeFailureSignal() models.RiskSignal {
	return models.RiskSignal{Tier: models.RiskAmber, Reason: ReasonUnableToCheck}
}
