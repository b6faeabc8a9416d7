package command

import (
	"errors"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"recordnote/internal/metadata"
)

const selectPageSize = 10

// SurveyPrompter asks with arrow-key prompts on an interactive terminal.
type SurveyPrompter struct {
	opts []survey.AskOpt
}

// NewSurveyPrompter prompts on in and draws on out. Both must be a terminal.
func NewSurveyPrompter(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) *SurveyPrompter {
	return &SurveyPrompter{opts: []survey.AskOpt{survey.WithStdio(in, out, errOut)}}
}

func (p *SurveyPrompter) PromptURL() (string, error) {
	return p.input("Release URL:", "https://www.discogs.com/release/...")
}

func (p *SurveyPrompter) PromptQuery() (string, error) {
	return p.input("Search Discogs:", "artist and title")
}

func (p *SurveyPrompter) Choose(results []metadata.SearchResult) (metadata.SearchResult, error) {
	prompt := &survey.Select{
		Message:  "Select a release:",
		Options:  describeAll(results),
		PageSize: selectPageSize,
	}

	selected := 0
	if err := survey.AskOne(prompt, &selected, p.opts...); err != nil {
		return metadata.SearchResult{}, surveyErr(err)
	}
	return results[selected], nil
}

func (p *SurveyPrompter) input(message, help string) (string, error) {
	var answer string
	prompt := &survey.Input{Message: message, Help: help}
	if err := survey.AskOne(prompt, &answer, p.opts...); err != nil {
		return "", surveyErr(err)
	}
	return strings.TrimSpace(answer), nil
}

func describeAll(results []metadata.SearchResult) []string {
	options := make([]string, len(results))
	for i, r := range results {
		options[i] = Describe(r)
	}
	return options
}

// surveyErr maps Ctrl+C and a closed input to ErrCancelled.
func surveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
		return ErrCancelled
	}
	return err
}
