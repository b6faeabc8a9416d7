package metadata

import (
	"regexp"
	"strings"
)

// Discogs appends " (N)" to artist names that collide with another entry.
var disambiguationPattern = regexp.MustCompile(`\s+\(\d+\)$`)

// Name variations are marked with a trailing asterisk.
var variationPattern = regexp.MustCompile(`\*+$`)

// CleanArtistName strips Discogs bookkeeping from an artist name so it reads
// the way it is printed on the release.
func CleanArtistName(name string) string {
	name = strings.TrimSpace(name)
	name = variationPattern.ReplaceAllString(name, "")
	name = disambiguationPattern.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
