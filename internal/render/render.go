// Package render turns a release into note text by substituting named
// {{placeholders}} in a user template.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"recordnote/internal/metadata"
)

// Fallback values for fields the provider left empty.
const (
	UnknownReleaseDate = "Unknown release date"
	UnknownCountry     = "Unknown country"
	UnknownFormat      = "Unknown format"
	NoTracklist        = "No tracklist available"

	zeroDate = "0000-00-00"

	// CoverWidth is the display width of the embedded artwork.
	CoverWidth = 250
)

// DefaultTemplate is used when the settings do not provide one.
const DefaultTemplate = `---
artist: {{artist}}
title: {{title}}
release_date: {{releaseDate}}
label: {{label}}
genres: {{genres}}
catalog_number: {{catalogNumber}}
country: {{country}}
format: {{format}}
discogs_url: {{discogsUrl}}
---

{{coverImage}}

## Tracklist

{{tracklist}}
`

// Fields holds the derived value of every placeholder.
type Fields struct {
	Artist        string
	Title         string
	ReleaseDate   string
	Year          string
	Label         string
	CatalogNumber string
	Genres        string
	Styles        string
	Country       string
	Format        string
	DiscogsURL    string
	CoverImage    string
	Tracklist     string
	Notes         string
}

// Derive computes placeholder values for rel. assetRef is the vault-relative
// artwork path; empty means the release has no stored artwork.
func Derive(rel metadata.Release, assetRef string) Fields {
	f := Fields{
		Title:       rel.Title,
		ReleaseDate: releaseDate(rel),
		Genres:      strings.Join(rel.Genres, ", "),
		Styles:      strings.Join(rel.Styles, ", "),
		Country:     rel.Country,
		DiscogsURL:  rel.URI,
		Tracklist:   tracklist(rel.Tracklist),
		Notes:       strings.TrimSpace(rel.Notes),
	}

	names := make([]string, 0, len(rel.Artists))
	for _, a := range rel.Artists {
		names = append(names, a.Name)
	}
	f.Artist = strings.Join(names, " & ")

	if rel.Year > 0 {
		f.Year = strconv.Itoa(rel.Year)
	}

	if len(rel.Labels) > 0 {
		f.Label = rel.Labels[0].Name
		f.CatalogNumber = rel.Labels[0].CatalogNumber
	}

	if f.Country == "" {
		f.Country = UnknownCountry
	}

	formats := make([]string, 0, len(rel.Formats))
	for _, fm := range rel.Formats {
		formats = append(formats, fm.Name)
	}
	f.Format = strings.Join(formats, ", ")
	if f.Format == "" {
		f.Format = UnknownFormat
	}

	if assetRef != "" {
		f.CoverImage = fmt.Sprintf("![[%s|%d]]", assetRef, CoverWidth)
	}

	return f
}

func releaseDate(rel metadata.Release) string {
	if rel.Released != "" && rel.Released != zeroDate {
		return rel.Released
	}
	if rel.ReleasedFormatted != "" {
		return rel.ReleasedFormatted
	}
	return UnknownReleaseDate
}

func tracklist(tracks []metadata.Track) string {
	if len(tracks) == 0 {
		return NoTracklist
	}

	lines := make([]string, 0, len(tracks))
	for _, t := range tracks {
		line := fmt.Sprintf("- %s: %s", t.Position, t.Title)
		if t.Duration != "" {
			line += fmt.Sprintf(" (%s)", t.Duration)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// pairs lists placeholder tokens with their values, in documentation order.
func (f Fields) pairs() []string {
	return []string{
		"{{artist}}", f.Artist,
		"{{title}}", f.Title,
		"{{releaseDate}}", f.ReleaseDate,
		"{{year}}", f.Year,
		"{{label}}", f.Label,
		"{{catalogNumber}}", f.CatalogNumber,
		"{{genres}}", f.Genres,
		"{{styles}}", f.Styles,
		"{{country}}", f.Country,
		"{{format}}", f.Format,
		"{{discogsUrl}}", f.DiscogsURL,
		"{{coverImage}}", f.CoverImage,
		"{{tracklist}}", f.Tracklist,
		"{{notes}}", f.Notes,
	}
}

// Placeholders returns the recognized placeholder tokens.
func Placeholders() []string {
	pairs := Fields{}.pairs()
	tokens := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		tokens = append(tokens, pairs[i])
	}
	return tokens
}

// Render substitutes every occurrence of each recognized placeholder in tpl.
// Unknown placeholders are left as written, and substituted values are not
// scanned again.
func Render(tpl string, rel metadata.Release, assetRef string) string {
	return strings.NewReplacer(Derive(rel, assetRef).pairs()...).Replace(tpl)
}
