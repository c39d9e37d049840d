package extract

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// markdownText walks the goldmark AST and emits one line per block.
func markdownText(data []byte) (string, error) {
	if _, err := plainText(data); err != nil {
		return "", err
	}
	doc := markdown.Parser().Parse(text.NewReader(data))

	var sb strings.Builder
	var line strings.Builder
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			sb.WriteString(s)
			sb.WriteString("\n")
		}
		line.Reset()
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock, *ast.ListItem:
			flush()
			if !entering {
				sb.WriteString("\n")
			}
		case *extast.TableRow, *extast.TableHeader:
			flush()
		case *extast.TableCell:
			if !entering {
				line.WriteString(" ")
			}
		case *ast.Text:
			if entering {
				line.Write(node.Segment.Value(data))
				if node.SoftLineBreak() || node.HardLineBreak() {
					line.WriteString(" ")
				}
			}
		case *ast.String:
			if entering {
				line.Write(node.Value)
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				flush()
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					sb.Write(seg.Value(data))
				}
				sb.WriteString("\n")
				return ast.WalkSkipChildren, nil
			}
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("walk markdown: %w", err)
	}
	flush()
	return collapseBlankLines(sb.String()), nil
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := false
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
