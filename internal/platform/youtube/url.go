// Package youtube resolves companion videos and normalizes video URLs.
package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	watchPrefix = "https://www.youtube.com/watch?v="
	embedPrefix = "https://www.youtube.com/embed/"
)

var videoIDRE = regexp.MustCompile(`^[\w-]{11}$`)

// Video is one search hit, URL already canonical.
type Video struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// IsVideoURL reports whether raw points at a supported video host.
func IsVideoURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Host)
	switch host {
	case "youtu.be", "www.youtube.com", "youtube.com", "m.youtube.com":
		return strings.Trim(u.Path, "/") != "" || u.Query().Get("v") != ""
	}
	return false
}

// VideoID extracts the 11-character id from watch, short-link, shorts and
// embed URLs.
func VideoID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !IsVideoURL(raw) {
		return ""
	}
	if v := u.Query().Get("v"); videoIDRE.MatchString(v) {
		return v
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if strings.EqualFold(u.Host, "youtu.be") {
		if len(parts) > 0 && videoIDRE.MatchString(parts[0]) {
			return parts[0]
		}
		return ""
	}
	if len(parts) >= 2 {
		switch parts[0] {
		case "shorts", "embed", "live", "v":
			if videoIDRE.MatchString(parts[1]) {
				return parts[1]
			}
		}
	}
	return ""
}

// CanonicalURL reduces any accepted form to https://www.youtube.com/watch?v=<id>.
// Supported links without a recognizable id are returned trimmed; anything
// else yields "".
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !IsVideoURL(raw) {
		return ""
	}
	if id := VideoID(raw); id != "" {
		return watchPrefix + id
	}
	return raw
}

// EmbedURL converts an accepted video URL to its player form. Unknown URLs
// pass through unchanged.
func EmbedURL(raw string) string {
	if id := VideoID(raw); id != "" {
		return embedPrefix + id
	}
	return strings.TrimSpace(raw)
}
