package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"recordnote/internal/config"
	"recordnote/internal/document"
	"recordnote/internal/logger"
	"recordnote/internal/metadata"
	"recordnote/internal/render"
)

// State is a step of a single pipeline run.
type State string

const (
	StateIdle             State = "idle"
	StateResolvingID      State = "resolving_id"
	StateFetchingMetadata State = "fetching_metadata"
	StateFetchingArtwork  State = "fetching_artwork"
	StateRendering        State = "rendering"
	StateDelivered        State = "delivered"
	StateFailed           State = "failed"
)

// Steps lists the states a successful run passes through, in order.
var Steps = []State{StateResolvingID, StateFetchingMetadata, StateFetchingArtwork, StateRendering, StateDelivered}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == StateDelivered || s == StateFailed
}

// Label is a short human-readable description of s.
func (s State) Label() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateResolvingID:
		return "Resolving release ID"
	case StateFetchingMetadata:
		return "Fetching release metadata"
	case StateFetchingArtwork:
		return "Downloading artwork"
	case StateRendering:
		return "Rendering template"
	case StateDelivered:
		return "Done"
	case StateFailed:
		return "Failed"
	}
	return string(s)
}

// Notifier surfaces the single user-visible message a run ends with.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// ArtworkFetcher stores a cover image and returns its vault-relative path.
type ArtworkFetcher interface {
	Fetch(ctx context.Context, imageURL, title string) (string, error)
}

type Hooks struct {
	OnState func(state State)
}

// Result describes a delivered run.
type Result struct {
	Release    metadata.Release
	ArtworkRef string
	Document   string
	Content    string
}

// Pipeline turns a release link or search result into a rendered note.
// Runs are independent; two runs targeting the same document race and the
// last write wins.
type Pipeline struct {
	cfg      config.Settings
	provider metadata.Provider
	artwork  ArtworkFetcher
	surface  document.Surface
	notifier Notifier
	logger   *logger.Logger
	Hooks    Hooks
}

func New(cfg config.Settings, provider metadata.Provider, artwork ArtworkFetcher, surface document.Surface, notifier Notifier, log *logger.Logger) *Pipeline {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &Pipeline{
		cfg:      cfg,
		provider: provider,
		artwork:  artwork,
		surface:  surface,
		notifier: notifier,
		logger:   log,
	}
}

// Run resolves input to a release, fetches it and its artwork, renders the
// template and replaces the active document with the result. On failure the
// document is left untouched.
func (p *Pipeline) Run(ctx context.Context, input string) (Result, error) {
	p.setState(StateIdle)

	doc, err := p.surface.ActiveDocument()
	if err != nil {
		return Result{}, p.fail(err)
	}

	p.setState(StateResolvingID)
	id, err := metadata.ParseReleaseID(input)
	if err != nil {
		return Result{}, p.fail(err)
	}

	return p.run(ctx, doc, id)
}

// RunResult runs the pipeline for a release picked from search results.
func (p *Pipeline) RunResult(ctx context.Context, result metadata.SearchResult) (Result, error) {
	if result.URI != "" || result.ID == 0 {
		return p.Run(ctx, result.URI)
	}

	p.setState(StateIdle)
	doc, err := p.surface.ActiveDocument()
	if err != nil {
		return Result{}, p.fail(err)
	}
	p.setState(StateResolvingID)
	return p.run(ctx, doc, strconv.Itoa(result.ID))
}

// Search queries the provider. Search is a separate flow and does not move
// the pipeline through its states.
func (p *Pipeline) Search(ctx context.Context, query string) ([]metadata.SearchResult, error) {
	p.logger.Debug("Searching %s for %q", p.provider.Name(), query)

	results, err := p.provider.Search(ctx, query)
	if err != nil {
		p.logger.Error("Search failed: %v", err)
		p.notifier.Notify(metadata.UserMessage(err))
		return nil, err
	}

	p.logger.Debug("Search returned %d results", len(results))
	if len(results) == 0 {
		p.notifier.Notify(fmt.Sprintf("No releases found for %q", query))
	}
	return results, nil
}

func (p *Pipeline) run(ctx context.Context, doc document.Document, id string) (Result, error) {
	p.setState(StateFetchingMetadata)
	p.logger.Debug("Fetching release %s from %s", id, p.provider.Name())
	rel, err := p.provider.FetchRelease(ctx, id)
	if err != nil {
		return Result{}, p.fail(err)
	}

	p.setState(StateFetchingArtwork)
	var ref string
	if img := rel.PrimaryImage(); img != "" {
		ref, err = p.artwork.Fetch(ctx, img, rel.Title)
		if err != nil {
			return Result{}, p.fail(err)
		}
	} else {
		p.logger.Warn("Release %s has no images, skipping artwork", id)
	}

	p.setState(StateRendering)
	content := render.Render(p.cfg.Template, rel, ref)

	if err := doc.Replace(content); err != nil {
		return Result{}, p.fail(fmt.Errorf("failed to write %s: %w", doc.Name(), err))
	}

	p.setState(StateDelivered)
	artist := render.Derive(rel, ref).Artist
	p.logger.Info("Imported %s - %s into %s", artist, rel.Title, doc.Name())
	p.notifier.Notify(fmt.Sprintf("Imported %s - %s", artist, rel.Title))

	return Result{
		Release:    rel,
		ArtworkRef: ref,
		Document:   doc.Name(),
		Content:    content,
	}, nil
}

func (p *Pipeline) fail(err error) error {
	p.setState(StateFailed)
	p.logger.Error("Run failed: %v", err)
	p.notifier.Notify(metadata.UserMessage(err))
	return err
}

func (p *Pipeline) setState(s State) {
	p.logger.Debug("State: %s", s)
	if p.Hooks.OnState != nil {
		p.Hooks.OnState(s)
	}
}
