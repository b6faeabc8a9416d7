package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"recordnote/internal/artwork"
	"recordnote/internal/config"
	"recordnote/internal/document"
	"recordnote/internal/logger"
	"recordnote/internal/metadata"
	"recordnote/internal/provider/discogs"
)

const animalsJSON = `{
	"id": 12345,
	"artists": [{"name": "Pink Floyd"}],
	"title": "Animals",
	"released": "1977-01-21",
	"labels": [{"name": "Harvest", "catno": "SHVL 815"}],
	"genres": ["Rock"],
	"country": "UK",
	"formats": [{"name": "Vinyl"}],
	"images": [{"uri": "%s/img.jpg", "type": "primary"}],
	"tracklist": [{"position": "A1", "title": "Pigs on the Wing 1", "type_": "track"}],
	"uri": "https://provider/release/12345"
}`

type recorder struct {
	states   []State
	messages []string
}

func (r *recorder) Notify(msg string) { r.messages = append(r.messages, msg) }

func newProviderServer(t *testing.T, imageStatus int) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/releases/12345":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, animalsJSON, server.URL)
		case "/img.jpg":
			w.WriteHeader(imageStatus)
			if imageStatus == http.StatusOK {
				w.Write([]byte("cover"))
			}
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestPipeline(t *testing.T, server *httptest.Server, surface document.Surface) (*Pipeline, *recorder, string) {
	t.Helper()
	vault := t.TempDir()
	cfg := config.DefaultSettings()
	cfg.VaultDir = vault

	client := discogs.New("", "", "recordnote-test/1.0").WithBaseURLs(server.URL, "https://www.discogs.example")
	rec := &recorder{}
	p := New(cfg, client, artwork.New(cfg, logger.Discard()), surface, rec, logger.Discard())
	p.Hooks.OnState = func(s State) { rec.states = append(rec.states, s) }
	return p, rec, vault
}

func TestRunEndToEnd(t *testing.T) {
	server := newProviderServer(t, http.StatusOK)
	doc := document.NewMemory("animals.md", "existing text")
	p, rec, vault := newTestPipeline(t, server, doc)

	res, err := p.Run(context.Background(), "https://www.provider.example/release/12345")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	wantPrefix := strings.Join([]string{
		"---",
		"artist: Pink Floyd",
		"title: Animals",
		"release_date: 1977-01-21",
		"label: Harvest",
		"genres: Rock",
		"catalog_number: SHVL 815",
		"country: UK",
		"format: Vinyl",
	}, "\n")
	got := doc.Content()
	if !strings.HasPrefix(got, wantPrefix) {
		t.Fatalf("document does not start with expected front matter:\n%s", got)
	}
	if strings.Contains(got, "existing text") {
		t.Error("document content should be fully replaced")
	}

	embed := strings.Index(got, "![[music/artwork/animals_cover.jpg|250]]")
	track := strings.Index(got, "- A1: Pigs on the Wing 1")
	if embed < 0 || track < 0 || embed > track {
		t.Errorf("expected artwork embed followed by tracklist:\n%s", got)
	}

	if res.ArtworkRef != "music/artwork/animals_cover.jpg" || res.Content != got {
		t.Errorf("Result = %+v", res)
	}
	if _, err := os.Stat(filepath.Join(vault, "music", "artwork", "animals_cover.jpg")); err != nil {
		t.Errorf("artwork not stored: %v", err)
	}

	wantStates := []State{StateIdle, StateResolvingID, StateFetchingMetadata, StateFetchingArtwork, StateRendering, StateDelivered}
	if !reflect.DeepEqual(rec.states, wantStates) {
		t.Errorf("states = %v, want %v", rec.states, wantStates)
	}
	if len(rec.messages) != 1 || rec.messages[0] != "Imported Pink Floyd - Animals" {
		t.Errorf("messages = %v", rec.messages)
	}
}

func TestRunFileSurface(t *testing.T) {
	server := newProviderServer(t, http.StatusOK)
	root := t.TempDir()
	p, _, _ := newTestPipeline(t, server, document.NewFileSurface(root, "releases/animals.md"))

	if _, err := p.Run(context.Background(), "https://www.discogs.com/release/12345-Pink-Floyd-Animals"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "releases", "animals.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "title: Animals") {
		t.Errorf("document content = %q", data)
	}
}

func TestRunArtworkFailureLeavesDocument(t *testing.T) {
	server := newProviderServer(t, http.StatusInternalServerError)
	doc := document.NewMemory("animals.md", "keep me")
	p, rec, _ := newTestPipeline(t, server, doc)

	_, err := p.Run(context.Background(), "https://www.provider.example/release/12345")
	if !errors.Is(err, metadata.ErrAssetDownloadFailed) {
		t.Fatalf("expected ErrAssetDownloadFailed, got %v", err)
	}
	if doc.Content() != "keep me" || doc.Writes() != 0 {
		t.Errorf("document mutated after failure: %q (%d writes)", doc.Content(), doc.Writes())
	}
	if last := rec.states[len(rec.states)-1]; last != StateFailed {
		t.Errorf("final state = %s, want failed", last)
	}
	for _, s := range rec.states {
		if s == StateRendering || s == StateDelivered {
			t.Errorf("unexpected state %s after artwork failure", s)
		}
	}
	if len(rec.messages) != 1 || rec.messages[0] != "Failed to download the cover image" {
		t.Errorf("messages = %v", rec.messages)
	}
}

func TestRunLookupFailure(t *testing.T) {
	server := newProviderServer(t, http.StatusOK)
	doc := document.NewMemory("x.md", "")
	p, rec, _ := newTestPipeline(t, server, doc)

	_, err := p.Run(context.Background(), "https://www.provider.example/release/999")
	var lookupErr *metadata.LookupError
	if !errors.As(err, &lookupErr) || lookupErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected LookupError 404, got %v", err)
	}
	if doc.Writes() != 0 {
		t.Error("document should not be written")
	}
	if len(rec.messages) != 1 || rec.messages[0] != "Release lookup failed (HTTP 404)" {
		t.Errorf("messages = %v", rec.messages)
	}
}

type fakeProvider struct {
	release  metadata.Release
	err      error
	results  []metadata.SearchResult
	fetched  []string
	searched []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchRelease(ctx context.Context, id string) (metadata.Release, error) {
	f.fetched = append(f.fetched, id)
	return f.release, f.err
}

func (f *fakeProvider) Search(ctx context.Context, query string) ([]metadata.SearchResult, error) {
	f.searched = append(f.searched, query)
	return f.results, f.err
}

type fakeArtwork struct {
	calls int
}

func (f *fakeArtwork) Fetch(ctx context.Context, imageURL, title string) (string, error) {
	f.calls++
	return "art/" + artwork.FileName(title), nil
}

func newFakePipeline(prov *fakeProvider, art *fakeArtwork, surface document.Surface) (*Pipeline, *recorder) {
	rec := &recorder{}
	p := New(config.DefaultSettings(), prov, art, surface, rec, logger.Discard())
	p.Hooks.OnState = func(s State) { rec.states = append(rec.states, s) }
	return p, rec
}

func TestRunInvalidURL(t *testing.T) {
	prov := &fakeProvider{}
	doc := document.NewMemory("x.md", "untouched")
	p, rec := newFakePipeline(prov, &fakeArtwork{}, doc)

	_, err := p.Run(context.Background(), "https://www.discogs.com/master/123")
	if !errors.Is(err, metadata.ErrInvalidURLFormat) {
		t.Fatalf("expected ErrInvalidURLFormat, got %v", err)
	}
	if len(prov.fetched) != 0 {
		t.Error("provider should not be called for an invalid URL")
	}
	if doc.Writes() != 0 {
		t.Error("document should not be written")
	}
	want := []State{StateIdle, StateResolvingID, StateFailed}
	if !reflect.DeepEqual(rec.states, want) {
		t.Errorf("states = %v, want %v", rec.states, want)
	}
}

func TestRunNoActiveDocument(t *testing.T) {
	prov := &fakeProvider{}
	p, rec := newFakePipeline(prov, &fakeArtwork{}, document.NewFileSurface(t.TempDir(), ""))

	_, err := p.Run(context.Background(), "https://www.discogs.com/release/1")
	if !errors.Is(err, metadata.ErrNoActiveDocument) {
		t.Fatalf("expected ErrNoActiveDocument, got %v", err)
	}
	if len(prov.fetched) != 0 {
		t.Error("provider should not be called without a document")
	}
	if len(rec.messages) != 1 || rec.messages[0] != "No active document to write to" {
		t.Errorf("messages = %v", rec.messages)
	}
}

func TestRunWithoutImagesSkipsArtwork(t *testing.T) {
	prov := &fakeProvider{release: metadata.Release{
		Artists: []metadata.Artist{{Name: "Someone"}},
		Title:   "Imageless",
	}}
	art := &fakeArtwork{}
	doc := document.NewMemory("x.md", "")
	p, _ := newFakePipeline(prov, art, doc)

	res, err := p.Run(context.Background(), "https://www.discogs.com/release/7")
	if err != nil {
		t.Fatal(err)
	}
	if art.calls != 0 {
		t.Error("artwork fetcher should not be called without images")
	}
	if res.ArtworkRef != "" || strings.Contains(doc.Content(), "![[") {
		t.Errorf("unexpected artwork embed:\n%s", doc.Content())
	}
	if !strings.Contains(doc.Content(), "No tracklist available") {
		t.Errorf("missing tracklist sentinel:\n%s", doc.Content())
	}
}

func TestRunResult(t *testing.T) {
	prov := &fakeProvider{release: metadata.Release{
		Artists: []metadata.Artist{{Name: "Pink Floyd"}},
		Title:   "Animals",
		Images:  []metadata.Image{{URI: "http://x/img.jpg"}},
	}}
	art := &fakeArtwork{}

	tests := []struct {
		name   string
		result metadata.SearchResult
		wantID string
	}{
		{"uri", metadata.SearchResult{ID: 1, URI: "https://www.discogs.com/release/12345-Pink-Floyd-Animals"}, "12345"},
		{"id only", metadata.SearchResult{ID: 678}, "678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov.fetched = nil
			p, _ := newFakePipeline(prov, art, document.NewMemory("x.md", ""))
			if _, err := p.RunResult(context.Background(), tt.result); err != nil {
				t.Fatal(err)
			}
			if len(prov.fetched) != 1 || prov.fetched[0] != tt.wantID {
				t.Errorf("fetched = %v, want [%s]", prov.fetched, tt.wantID)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	prov := &fakeProvider{results: []metadata.SearchResult{{ID: 1, Title: "Animals"}}}
	p, rec := newFakePipeline(prov, &fakeArtwork{}, document.NewMemory("x.md", ""))

	results, err := p.Search(context.Background(), "pink floyd animals")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || prov.searched[0] != "pink floyd animals" {
		t.Errorf("results = %v, searched = %v", results, prov.searched)
	}
	if len(rec.states) != 0 {
		t.Errorf("search should not change pipeline state, got %v", rec.states)
	}

	prov.results = nil
	if _, err := p.Search(context.Background(), "nothing"); err != nil {
		t.Fatal(err)
	}
	if len(rec.messages) != 1 || !strings.Contains(rec.messages[0], "No releases found") {
		t.Errorf("messages = %v", rec.messages)
	}
}

func TestSearchUnauthorized(t *testing.T) {
	prov := &fakeProvider{err: &metadata.LookupError{StatusCode: http.StatusUnauthorized}}
	p, rec := newFakePipeline(prov, &fakeArtwork{}, document.NewMemory("x.md", ""))

	_, err := p.Search(context.Background(), "q")
	if !errors.Is(err, metadata.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(rec.messages) != 1 || !strings.Contains(rec.messages[0], "credentials") {
		t.Errorf("messages = %v", rec.messages)
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateDelivered, StateFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StateIdle, StateResolvingID, StateFetchingMetadata, StateFetchingArtwork, StateRendering} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
