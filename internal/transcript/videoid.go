package transcript

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ExtractVideoID returns the video identifier of a YouTube watch URL
// (youtube.com/watch?v=ID, youtube.com/shorts/ID, youtube.com/embed/ID)
// or a youtu.be short link. Anything else yields ErrInvalidURL.
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", ErrInvalidURL
	}

	var id string
	switch strings.ToLower(u.Hostname()) {
	case "www.youtube.com", "youtube.com", "m.youtube.com":
		id = u.Query().Get("v")
		if id == "" {
			for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
				if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
					id = strings.Trim(rest, "/")
					break
				}
			}
		}
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	default:
		return "", ErrInvalidURL
	}

	if !videoIDPattern.MatchString(id) {
		return "", ErrInvalidURL
	}
	return id, nil
}
