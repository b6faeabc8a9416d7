package command

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"recordnote/internal/metadata"
)

// LinePrompter reads answers line by line, for plain terminals and pipes.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) PromptURL() (string, error) {
	return p.ask("Release URL: ")
}

func (p *LinePrompter) PromptQuery() (string, error) {
	return p.ask("Search: ")
}

// Choose lists results numbered from 1 and reads a choice. An empty answer
// cancels.
func (p *LinePrompter) Choose(results []metadata.SearchResult) (metadata.SearchResult, error) {
	for i, r := range results {
		fmt.Fprintf(p.out, "%2d) %s\n", i+1, Describe(r))
	}

	for {
		answer, err := p.ask(fmt.Sprintf("Pick a release [1-%d]: ", len(results)))
		if err != nil {
			return metadata.SearchResult{}, err
		}
		if answer == "" {
			return metadata.SearchResult{}, ErrCancelled
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(results) {
			fmt.Fprintf(p.out, "Enter a number between 1 and %d\n", len(results))
			continue
		}
		return results[n-1], nil
	}
}

func (p *LinePrompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Describe renders a search result as one line: "Artist - Title (Year, Format)".
func Describe(r metadata.SearchResult) string {
	return fmt.Sprintf("%s (%s, %s)", r.DisplayTitle(), r.YearLabel(), r.FormatLabel())
}
