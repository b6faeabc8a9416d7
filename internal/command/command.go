// Package command implements the user-facing entry points: extract from the
// clipboard, enter a release URL, and search by text. Each one gathers input
// through a Prompter and hands it to the pipeline.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"recordnote/internal/logger"
	"recordnote/internal/metadata"
	"recordnote/internal/pipeline"
)

var (
	// ErrCancelled is returned when the user dismisses a prompt.
	ErrCancelled = errors.New("cancelled")
	ErrClipboard = errors.New("failed to read clipboard")
)

// Prompter collects input from whatever UI is in front of the user.
type Prompter interface {
	PromptURL() (string, error)
	PromptQuery() (string, error)
	// Choose returns the picked result, or ErrCancelled.
	Choose(results []metadata.SearchResult) (metadata.SearchResult, error)
}

// Runner is the part of the pipeline the commands drive.
type Runner interface {
	Run(ctx context.Context, input string) (pipeline.Result, error)
	RunResult(ctx context.Context, result metadata.SearchResult) (pipeline.Result, error)
	Search(ctx context.Context, query string) ([]metadata.SearchResult, error)
}

type Commands struct {
	runner   Runner
	prompter Prompter
	logger   *logger.Logger

	// ReadClipboard returns the clipboard text. Replaceable for headless use.
	ReadClipboard func() (string, error)
}

func New(runner Runner, prompter Prompter, log *logger.Logger) *Commands {
	return &Commands{
		runner:        runner,
		prompter:      prompter,
		logger:        log,
		ReadClipboard: clipboard.ReadAll,
	}
}

// FromClipboard runs the pipeline on the URL currently in the clipboard.
func (c *Commands) FromClipboard(ctx context.Context) (pipeline.Result, error) {
	text, err := c.ReadClipboard()
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("%w: %v", ErrClipboard, err)
	}
	text = strings.TrimSpace(text)
	c.logger.Debug("Clipboard: %q", text)
	return c.runner.Run(ctx, text)
}

// EnterURL asks for a release URL and runs the pipeline on it.
func (c *Commands) EnterURL(ctx context.Context) (pipeline.Result, error) {
	input, err := c.prompter.PromptURL()
	if err != nil {
		return pipeline.Result{}, err
	}
	return c.runner.Run(ctx, input)
}

// SearchByText asks for a query, lets the user pick a result and runs the
// pipeline on it.
func (c *Commands) SearchByText(ctx context.Context) (pipeline.Result, error) {
	query, err := c.prompter.PromptQuery()
	if err != nil {
		return pipeline.Result{}, err
	}
	return c.SearchFor(ctx, query)
}

// SearchFor searches for query, lets the user pick a result and runs the
// pipeline on it.
func (c *Commands) SearchFor(ctx context.Context, query string) (pipeline.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return pipeline.Result{}, ErrCancelled
	}

	results, err := c.runner.Search(ctx, query)
	if err != nil {
		return pipeline.Result{}, err
	}
	if len(results) == 0 {
		return pipeline.Result{}, ErrCancelled
	}

	picked, err := c.prompter.Choose(results)
	if err != nil {
		return pipeline.Result{}, err
	}
	c.logger.Debug("Picked %s (%s)", picked.DisplayTitle(), picked.URI)
	return c.runner.RunResult(ctx, picked)
}
