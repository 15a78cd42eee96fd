package importer

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/chordbook/internal/tuning"
)

// frontmatter is the optional YAML header of a sheet, between leading ---
// delimiters.
type frontmatter struct {
	Title     string `yaml:"title"`
	Artist    string `yaml:"artist"`
	Duration  string `yaml:"duration"`
	Tuning    string `yaml:"tuning"`
	Capo      *int   `yaml:"capo"`
	Transpose *int   `yaml:"transpose"`
}

// splitFrontmatter separates a YAML header from the sheet body. Without a
// closing delimiter, or when the header is not valid YAML, the whole text is
// body.
func splitFrontmatter(text string) (*frontmatter, string) {
	const delim = "---"
	trimmed := strings.TrimLeft(text, "\n")
	if !strings.HasPrefix(trimmed, delim+"\n") {
		return nil, text
	}

	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return nil, text
	}
	block := rest[:idx]
	body := rest[idx+1+len(delim):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && strings.TrimSpace(body[:nl]) == "" {
		body = body[nl+1:]
	} else if strings.TrimSpace(body) == "" {
		body = ""
	} else {
		// "---" followed by text on the same line is a tab or ruler, not a delimiter.
		return nil, text
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, text
	}
	return &fm, body
}

func (fm *frontmatter) apply(res *Result) {
	if fm.Title != "" {
		res.Title = fm.Title
	}
	if fm.Artist != "" {
		res.Artist = fm.Artist
	}
	if fm.Duration != "" {
		res.Duration = fm.Duration
	}
	if t, ok := tuning.FindByName(fm.Tuning); ok {
		res.Context.Tuning = t.Key
	}
	if fm.Capo != nil && *fm.Capo >= 0 {
		res.Context.Capo = *fm.Capo
	}
	if fm.Transpose != nil {
		res.Context.Transpose = *fm.Transpose
	}
}
