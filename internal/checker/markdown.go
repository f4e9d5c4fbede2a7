package checker

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown validates document structure without rewriting anything: it
// parses the content with goldmark and reports heading levels that jump by
// more than one and links with empty destinations. Structural problems are
// not automatically fixable, so they surface as a CheckFailure.
type Markdown struct {
	md goldmark.Markdown
}

func newMarkdown(opts Options) (Checker, error) {
	return &Markdown{md: goldmark.New()}, nil
}

// Name implements Checker.
func (m *Markdown) Name() string { return "markdown" }

// CheckFile implements PerFile. Content is returned unchanged; this checker
// only reports.
func (m *Markdown) CheckFile(path string, content []byte) ([]byte, []string, error) {
	doc := m.md.Parser().Parse(text.NewReader(content))

	var problems []string
	lastLevel := 0
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if lastLevel > 0 && node.Level > lastLevel+1 {
				problems = append(problems,
					fmt.Sprintf("heading level jumps from %d to %d", lastLevel, node.Level))
			}
			lastLevel = node.Level
		case *ast.Link:
			if len(node.Destination) == 0 {
				problems = append(problems, "link with empty destination")
			}
		case *ast.Image:
			if len(node.Destination) == 0 {
				problems = append(problems, "image with empty destination")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, nil, &CheckFailure{
			Checker: m.Name(),
			Message: fmt.Sprintf("failed to walk document: %v", err),
			Fixable: false,
		}
	}

	if len(problems) > 0 {
		return nil, nil, &CheckFailure{
			Checker: m.Name(),
			Message: strings.Join(problems, "\n"),
			Fixable: false,
		}
	}
	return content, nil, nil
}
