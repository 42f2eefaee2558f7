package importer

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleMarkdown = "# Reading Faster\n\n" +
	"Speed reading is a *skill* you can\ntrain with **practice**.\n\n" +
	"## Techniques\n\n" +
	"- Use a [pacer](https://example.com) band\n" +
	"- Group words into `chunks`\n\n" +
	"```go\nfmt.Println(\"skip me\")\n```\n\n" +
	"<div>raw html</div>\n\n" +
	"| Mode | WPM |\n|------|-----|\n| main | 250 |\n"

func TestMarkdown(t *testing.T) {
	title, content := Markdown([]byte(sampleMarkdown))
	if title != "Reading Faster" {
		t.Fatalf("unexpected title %q", title)
	}
	want := "Speed reading is a skill you can train with practice.\n\n" +
		"Techniques\n\n" +
		"Use a pacer band\n\n" +
		"Group words into chunks\n\n" +
		"Mode WPM\n\n" +
		"main 250"
	if content != want {
		t.Fatalf("unexpected content:\n%q\nwant:\n%q", content, want)
	}
}

func TestImportPlainText(t *testing.T) {
	doc := Import("/tmp/notes/essay.txt", []byte("\r\n  Line one.\r\nLine two.  \r\n"))
	if doc.Title != "essay" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if doc.Content != "Line one.\nLine two." {
		t.Fatalf("unexpected content %q", doc.Content)
	}
	if Import("-", []byte("x")).Title != "" {
		t.Fatalf("stdin should have no title")
	}
}

func TestReadFileMarkdownWithoutHeading(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Chapter One.md")
	if err := os.WriteFile(path, []byte("Just a paragraph."), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if doc.Title != "Chapter One" || doc.Content != "Just a paragraph." {
		t.Fatalf("unexpected doc %+v", doc)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
