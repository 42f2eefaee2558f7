// Package importer turns plain-text and Markdown files into reading texts.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/verte-zerg/flowread/internal/textproc"
)

// Document is imported text ready to be saved.
type Document struct {
	Title   string
	Content string
}

var markdownExts = map[string]bool{".md": true, ".markdown": true, ".mdown": true}

var parser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// IsMarkdown reports whether name has a Markdown extension.
func IsMarkdown(name string) bool {
	return markdownExts[strings.ToLower(filepath.Ext(name))]
}

// ReadFile imports the file at path.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Import(path, data), nil
}

// Import converts src. Markdown is flattened to paragraphs of prose, with
// its first heading as the title; otherwise the file name is the title.
func Import(name string, src []byte) Document {
	doc := Document{Title: baseTitle(name)}
	if !IsMarkdown(name) {
		doc.Content = strings.TrimSpace(strings.ReplaceAll(string(src), "\r\n", "\n"))
		return doc
	}
	title, content := Markdown(src)
	if title != "" {
		doc.Title = title
	}
	doc.Content = content
	return doc
}

func baseTitle(name string) string {
	if name == "" || name == "-" {
		return ""
	}
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Markdown returns the first heading and the remaining prose blocks joined
// by blank lines. Code, HTML and thematic breaks are dropped.
func Markdown(src []byte) (title, content string) {
	root := parser.Parse(text.NewReader(src))
	var blocks []string
	add := func(s string) {
		if s = textproc.CleanText(s); s != "" {
			blocks = append(blocks, s)
		}
	}
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			if title == "" {
				title = textproc.CleanText(inlineText(node, src))
				return ast.WalkSkipChildren, nil
			}
			add(inlineText(node, src))
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			add(inlineText(node, src))
			return ast.WalkSkipChildren, nil
		case *east.TableHeader, *east.TableRow:
			var cells []string
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, inlineText(c, src))
			}
			add(strings.Join(cells, " "))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return title, strings.Join(blocks, "\n\n")
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	collectInline(n, src, &b)
	return b.String()
}

func collectInline(n ast.Node, src []byte, b *strings.Builder) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(src))
		case *ast.RawHTML:
		default:
			collectInline(c, src, b)
		}
	}
}
