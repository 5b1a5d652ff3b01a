package classify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/AdityaBoddepalli/HoverPeek/models"
)

// DetectVideoPlatform recognizes hosted-video URLs and derives the
// platform descriptor with a video ID and embeddable URL when the URL
// shape allows it.
func DetectVideoPlatform(u *url.URL) *models.VideoPlatform {
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))

	switch host {
	case "youtube.com", "m.youtube.com":
		if strings.HasPrefix(u.Path, "/watch") {
			if id := u.Query().Get("v"); id != "" {
				return youtubePlatform(id)
			}
			return &models.VideoPlatform{Name: "youtube"}
		}
		if strings.HasPrefix(u.Path, "/shorts/") {
			if id := strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/"); id != "" {
				return youtubePlatform(id)
			}
		}
		if strings.HasPrefix(u.Path, "/embed/") {
			if id := strings.Trim(strings.TrimPrefix(u.Path, "/embed/"), "/"); id != "" {
				return youtubePlatform(id)
			}
		}
		return nil
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return youtubePlatform(id)
		}
		return nil
	case "vimeo.com":
		id := strings.Trim(u.Path, "/")
		if id != "" && !strings.Contains(id, "/") && isDigits(id) {
			return &models.VideoPlatform{
				Name:     "vimeo",
				VideoID:  id,
				EmbedURL: fmt.Sprintf("https://player.vimeo.com/video/%s", id),
			}
		}
		return nil
	}
	return nil
}

func youtubePlatform(id string) *models.VideoPlatform {
	return &models.VideoPlatform{
		Name:     "youtube",
		VideoID:  id,
		EmbedURL: fmt.Sprintf("https://www.youtube.com/embed/%s", id),
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
