package metadata

import (
	"fmt"
	"regexp"
	"strings"
)

var releaseIDPattern = regexp.MustCompile(`/release/(\d+)`)

// ParseReleaseID extracts the numeric release ID from a release page URL such
// as https://www.discogs.com/release/12345-Artist-Title.
func ParseReleaseID(rawURL string) (string, error) {
	m := releaseIDPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURLFormat, rawURL)
	}
	return m[1], nil
}
