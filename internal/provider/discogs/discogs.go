package discogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recordnote/internal/metadata"
)

const (
	defaultAPIURL    = "https://api.discogs.com"
	defaultWebURL    = "https://www.discogs.com"
	defaultUserAgent = "recordnote/1.0"
)

// Client is a Discogs database API client that implements metadata.Provider.
type Client struct {
	httpClient *http.Client
	key        string
	secret     string
	userAgent  string

	// Overridable for testing
	apiURL string
	webURL string
}

// New creates a new Discogs client. Empty credentials make release lookups
// anonymous; search requires them.
func New(key, secret, userAgent string) *Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		key:        key,
		secret:     secret,
		userAgent:  userAgent,
		apiURL:     defaultAPIURL,
		webURL:     defaultWebURL,
	}
}

// WithBaseURLs points the client at another API and web host, such as a
// local mirror or a test server.
func (c *Client) WithBaseURLs(apiURL, webURL string) *Client {
	c.apiURL = strings.TrimRight(apiURL, "/")
	c.webURL = strings.TrimRight(webURL, "/")
	return c
}

func (c *Client) Name() string { return "discogs" }

// FetchRelease looks up a single release by its numeric ID.
func (c *Client) FetchRelease(ctx context.Context, id string) (metadata.Release, error) {
	reqURL := fmt.Sprintf("%s/releases/%s", c.apiURL, url.PathEscape(id))
	req, err := c.newRequest(ctx, reqURL)
	if err != nil {
		return metadata.Release{}, err
	}
	if c.hasCredentials() {
		req.Header.Set("Authorization", fmt.Sprintf("Discogs key=%s, secret=%s", c.key, c.secret))
	}

	var raw releaseResponse
	if err := c.do(req, &raw); err != nil {
		return metadata.Release{}, fmt.Errorf("discogs release %s: %w", id, err)
	}

	rel, err := raw.toRelease()
	if err != nil {
		return metadata.Release{}, fmt.Errorf("discogs release %s: %w", id, err)
	}
	return rel, nil
}

// Search runs a release-type database search. Results come from the first
// page only. Discogs only searches for authenticated clients, so without
// credentials it fails with metadata.ErrMissingCredentials and sends nothing.
func (c *Client) Search(ctx context.Context, query string) ([]metadata.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if !c.hasCredentials() {
		return nil, metadata.ErrMissingCredentials
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "release")
	params.Set("key", c.key)
	params.Set("secret", c.secret)

	req, err := c.newRequest(ctx, fmt.Sprintf("%s/database/search?%s", c.apiURL, params.Encode()))
	if err != nil {
		return nil, err
	}

	var raw searchResponse
	if err := c.do(req, &raw); err != nil {
		return nil, fmt.Errorf("discogs search %q: %w", query, err)
	}

	results := make([]metadata.SearchResult, 0, len(raw.Results))
	for _, r := range raw.Results {
		if r.Type != "" && r.Type != "release" {
			continue
		}
		results = append(results, c.toSearchResult(r))
	}
	return results, nil
}

func (c *Client) hasCredentials() bool {
	return c.key != "" && c.secret != ""
}

func (c *Client) newRequest(ctx context.Context, reqURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create discogs request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends a single request and decodes a 200 JSON body into v. Transport
// failures map to ErrNetwork, other statuses to *metadata.LookupError.
func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", metadata.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &metadata.LookupError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", metadata.ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) toSearchResult(r searchResult) metadata.SearchResult {
	artist, title := splitTitle(r.Title)
	uri := r.URI
	if strings.HasPrefix(uri, "/") {
		uri = c.webURL + uri
	}
	year := string(r.Year)
	if year == "0" {
		year = ""
	}
	return metadata.SearchResult{
		ID:         r.ID,
		Title:      title,
		Artist:     artist,
		Year:       year,
		Formats:    []string(r.Format),
		CoverImage: r.CoverImage,
		URI:        uri,
	}
}

// splitTitle separates Discogs' combined "Artist - Title" search title.
func splitTitle(s string) (artist, title string) {
	if i := strings.Index(s, " - "); i > 0 {
		return metadata.CleanArtistName(s[:i]), strings.TrimSpace(s[i+3:])
	}
	return "", strings.TrimSpace(s)
}

// Discogs API response types

type releaseResponse struct {
	ID                int           `json:"id"`
	Artists           []artistEntry `json:"artists"`
	Title             *string       `json:"title"`
	Released          string        `json:"released"`
	ReleasedFormatted string        `json:"released_formatted"`
	Year              int           `json:"year"`
	Labels            []labelEntry  `json:"labels"`
	Genres            []string      `json:"genres"`
	Styles            []string      `json:"styles"`
	Country           string        `json:"country"`
	Formats           []formatEntry `json:"formats"`
	URI               string        `json:"uri"`
	Tracklist         []trackEntry  `json:"tracklist"`
	Images            []imageEntry  `json:"images"`
	Notes             string        `json:"notes"`
}

type artistEntry struct {
	Name string `json:"name"`
}

type labelEntry struct {
	Name  string `json:"name"`
	Catno string `json:"catno"`
}

type formatEntry struct {
	Name         string   `json:"name"`
	Descriptions []string `json:"descriptions"`
}

type trackEntry struct {
	Position string `json:"position"`
	Type     string `json:"type_"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

type imageEntry struct {
	Type   string `json:"type"`
	URI    string `json:"uri"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID         int         `json:"id"`
	Type       string      `json:"type"`
	Title      string      `json:"title"`
	Year       flexString  `json:"year"`
	Format     flexStrings `json:"format"`
	CoverImage string      `json:"cover_image"`
	URI        string      `json:"uri"`
}

// flexString decodes a JSON string or number as text. Search results carry
// the year in either form.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexStrings decodes a JSON list of strings or a single string.
type flexStrings []string

func (s *flexStrings) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one = strings.TrimSpace(one); one == "" {
			*s = nil
		} else {
			*s = flexStrings{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// toRelease validates the decoded body and converts it to the domain type.
// The artists array and the title are required.
func (r releaseResponse) toRelease() (metadata.Release, error) {
	if r.Artists == nil {
		return metadata.Release{}, fmt.Errorf("%w: missing artists", metadata.ErrMalformedResponse)
	}
	if r.Title == nil {
		return metadata.Release{}, fmt.Errorf("%w: missing title", metadata.ErrMalformedResponse)
	}

	rel := metadata.Release{
		ID:                r.ID,
		Title:             *r.Title,
		Released:          r.Released,
		ReleasedFormatted: r.ReleasedFormatted,
		Year:              r.Year,
		Genres:            r.Genres,
		Styles:            r.Styles,
		Country:           r.Country,
		URI:               r.URI,
		Notes:             r.Notes,
	}

	for _, a := range r.Artists {
		rel.Artists = append(rel.Artists, metadata.Artist{Name: metadata.CleanArtistName(a.Name)})
	}
	for _, l := range r.Labels {
		rel.Labels = append(rel.Labels, metadata.Label{Name: l.Name, CatalogNumber: l.Catno})
	}
	for _, f := range r.Formats {
		rel.Formats = append(rel.Formats, metadata.Format{Name: f.Name, Descriptions: f.Descriptions})
	}
	for _, t := range r.Tracklist {
		// Headings and index tracks group real tracks; they are not tracks themselves.
		if t.Type == "heading" || t.Type == "index" {
			continue
		}
		rel.Tracklist = append(rel.Tracklist, metadata.Track{
			Position: t.Position,
			Title:    t.Title,
			Duration: t.Duration,
		})
	}
	for _, img := range r.Images {
		if img.URI == "" {
			continue
		}
		rel.Images = append(rel.Images, metadata.Image{
			URI:    img.URI,
			Type:   img.Type,
			Width:  img.Width,
			Height: img.Height,
		})
	}

	return rel, nil
}
