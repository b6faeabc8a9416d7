package metadata

import (
	"context"
	"strings"
)

// Release is the typed record produced by a Provider for a single release.
// Optional fields use their zero value when the provider omits them; the
// renderer maps those to the documented fallbacks.
type Release struct {
	ID                int
	Artists           []Artist
	Title             string
	Released          string // precise date, may be the "0000-00-00" sentinel
	ReleasedFormatted string // provider's display date, e.g. "1995" or "Jan 1977"
	Year              int
	Labels            []Label
	Genres            []string
	Styles            []string
	Country           string
	Formats           []Format
	URI               string // canonical web URL of the release
	Tracklist         []Track
	Images            []Image
	Notes             string
}

type Artist struct {
	Name string
}

type Label struct {
	Name          string
	CatalogNumber string
}

type Format struct {
	Name         string
	Descriptions []string
}

// Track is a single tracklist entry. Duration is empty when the provider
// does not list one.
type Track struct {
	Position string
	Title    string
	Duration string
}

type Image struct {
	URI    string
	Type   string
	Width  int
	Height int
}

// PrimaryImage returns the URI of the first image, or "" when the release
// has no artwork.
func (r Release) PrimaryImage() string {
	if len(r.Images) == 0 {
		return ""
	}
	return r.Images[0].URI
}

// SearchResult is one release-type entry from a text search.
type SearchResult struct {
	ID         int
	Title      string
	Artist     string
	Year       string
	Formats    []string
	CoverImage string
	URI        string // absolute web URL, usable as pipeline input
}

// NotAvailable is shown for search result fields the provider left empty.
const NotAvailable = "N/A"

// YearLabel returns the release year or "N/A".
func (s SearchResult) YearLabel() string {
	if s.Year == "" {
		return NotAvailable
	}
	return s.Year
}

// DisplayTitle returns "Artist - Title", or just the title when the artist
// is unknown.
func (s SearchResult) DisplayTitle() string {
	if s.Artist == "" {
		return s.Title
	}
	return s.Artist + " - " + s.Title
}

// FormatLabel joins the result's formats or returns "N/A".
func (s SearchResult) FormatLabel() string {
	if len(s.Formats) == 0 {
		return NotAvailable
	}
	return strings.Join(s.Formats, ", ")
}

// Provider is implemented by remote metadata services. Each call is a single
// attempt; implementations must not cache or retry.
type Provider interface {
	Name() string
	FetchRelease(ctx context.Context, id string) (Release, error)
	Search(ctx context.Context, query string) ([]SearchResult, error)
}
