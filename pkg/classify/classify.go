// Package classify resolves a probed link into a resource type,
// reduces collected risk signals to a single tier, and maps the pair
// onto a fetch plan.
package classify

import (
	"net/url"
	"path"
	"strings"

	"github.com/AdityaBoddepalli/HoverPeek/models"
)

// Extension overrides. A positive match here always wins over the
// declared Content-Type, which lies more often than file names do.
var extensionTypes = map[string]models.ResourceType{
	".pdf":  models.TypePDF,
	".png":  models.TypeImage,
	".jpg":  models.TypeImage,
	".jpeg": models.TypeImage,
	".gif":  models.TypeImage,
	".webp": models.TypeImage,
	".svg":  models.TypeImage,
	".mp4":  models.TypeVideo,
	".webm": models.TypeVideo,
	".mov":  models.TypeVideo,
	".zip":  models.TypeDownload,
	".exe":  models.TypeDownload,
	".msi":  models.TypeDownload,
	".dmg":  models.TypeDownload,
	".pkg":  models.TypeDownload,
	".deb":  models.TypeDownload,
	".rpm":  models.TypeDownload,
	".apk":  models.TypeDownload,
	".gz":   models.TypeDownload,
	".tgz":  models.TypeDownload,
	".bz2":  models.TypeDownload,
	".xz":   models.TypeDownload,
	".7z":   models.TypeDownload,
	".rar":  models.TypeDownload,
	".doc":  models.TypeDownload,
	".docx": models.TypeDownload,
	".xls":  models.TypeDownload,
	".xlsx": models.TypeDownload,
	".ppt":  models.TypeDownload,
	".pptx": models.TypeDownload,
}

// Input bundles everything the type decision consumes.
type Input struct {
	Target             *url.URL
	PageURL            *url.URL // page hosting the link, for anchor detection
	ContentType        string
	ContentDisposition string
	// Sniffed type from leading bytes, when a sniff ran.
	Sniffed models.ResourceType
}

// ResolveType applies the type decision order, first match wins:
// explicit scheme types, same-page anchor, attachment disposition,
// Content-Type family, extension override, sniff override for
// ambiguous octet-stream downloads.
func ResolveType(in Input) models.ResourceType {
	switch in.Target.Scheme {
	case "mailto":
		return models.TypeMailto
	case "tel":
		return models.TypeTel
	}

	if isSamePageAnchor(in.Target, in.PageURL) {
		return models.TypeAnchor
	}

	if strings.HasPrefix(strings.ToLower(in.ContentDisposition), "attachment") {
		return models.TypeDownload
	}

	resolved := typeFromContentType(in.ContentType)

	if ext := strings.ToLower(path.Ext(in.Target.Path)); ext != "" {
		if t, ok := extensionTypes[ext]; ok {
			resolved = t
		}
	}

	// An octet-stream download is ambiguous; trust the bytes when a
	// sniff produced a positive match.
	if resolved == models.TypeDownload && in.ContentType == "application/octet-stream" && in.Sniffed != "" {
		resolved = in.Sniffed
	}

	return resolved
}

func typeFromContentType(contentType string) models.ResourceType {
	switch {
	case contentType == "application/pdf":
		return models.TypePDF
	case strings.HasPrefix(contentType, "image/"):
		return models.TypeImage
	case strings.HasPrefix(contentType, "video/"):
		return models.TypeVideo
	case contentType == "application/zip",
		contentType == "application/octet-stream",
		contentType == "application/x-msdownload",
		contentType == "application/x-executable",
		contentType == "application/gzip",
		contentType == "application/x-7z-compressed",
		contentType == "application/x-rar-compressed":
		return models.TypeDownload
	default:
		return models.TypeWebpage
	}
}

// isSamePageAnchor reports whether target is a fragment link back into
// the hosting page: same host, path, and query with a non-empty
// fragment.
func isSamePageAnchor(target, page *url.URL) bool {
	if page == nil || target.Fragment == "" {
		return false
	}
	return target.Host == page.Host &&
		target.Path == page.Path &&
		target.RawQuery == page.RawQuery
}

// ReduceRisk collapses a signal set into a tier with at most two
// reasons. Any Red signal masks all Amber context; this lossy
// compression is intentional.
func ReduceRisk(sigs []models.RiskSignal) (models.RiskTier, []string) {
	reasons := reasonsAtTier(sigs, models.RiskRed)
	if len(reasons) > 0 {
		return models.RiskRed, reasons
	}
	reasons = reasonsAtTier(sigs, models.RiskAmber)
	if len(reasons) > 0 {
		return models.RiskAmber, reasons
	}
	return models.RiskGreen, nil
}

func reasonsAtTier(sigs []models.RiskSignal, tier models.RiskTier) []string {
	var reasons []string
	for _, s := range sigs {
		if s.Tier != tier {
			continue
		}
		reasons = append(reasons, s.Reason)
		if len(reasons) == 2 {
			break
		}
	}
	return reasons
}

// PlanFetch is the deterministic (type, tier) -> plan table, evaluated
// in priority order.
func PlanFetch(t models.ResourceType, tier models.RiskTier) models.FetchPlan {
	switch {
	case t == models.TypeBlocked:
		return models.PlanBlocked
	case t == models.TypeDownload && tier == models.RiskRed:
		// Never fetch a high-risk executable.
		return models.PlanBlocked
	case t == models.TypeMailto, t == models.TypeTel, t == models.TypeAnchor, t == models.TypeVideo:
		return models.PlanNoFetch
	case t == models.TypeImage, t == models.TypeWebpage, t == models.TypePDF:
		return models.PlanPartialGet
	case t == models.TypeDownload:
		return models.PlanHeadOnly
	default:
		return models.PlanPartialGet
	}
}
