// Package format converts story content between plain text and the rich
// paragraph markup used by the chapter editor and the book preview.
package format

import (
	stdhtml "html"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/storybookapp/storybook-server/internal/domain"
)

// Paragraph classes used by the editor and preview markup. Subsequent
// paragraphs carry a first-line indent, classic book style; the opening
// paragraph of a chapter does not.
const (
	editorParagraphClass  = "mb-4 leading-relaxed"
	previewParagraphClass = "text-justify leading-relaxed mb-4"
	indentClass           = "indent-8"
	chapterTitleClass     = "text-2xl font-serif font-bold text-center mb-8 mt-6"
)

// paragraphSplit matches one or more blank lines between paragraphs.
var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

var titleCaser = cases.Title(language.English, cases.NoLower)

// splitParagraphs breaks plain text into trimmed, non-empty paragraphs.
func splitParagraphs(text string) []string {
	parts := paragraphSplit.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// TextToHTML converts plain chapter text into the editor's paragraph markup.
// Paragraphs are separated by blank lines; the first paragraph is unindented.
// Empty input yields an empty string.
func TextToHTML(text string) string {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return ""
	}

	var b strings.Builder
	for i, p := range paragraphs {
		class := editorParagraphClass
		if i > 0 {
			class += " " + indentClass
		}
		b.WriteString(`<p class="` + class + `">`)
		b.WriteString(stdhtml.EscapeString(p))
		b.WriteString("</p>")
	}
	return b.String()
}

// HTMLToText converts paragraph markup back to plain text: one paragraph per
// <p> element, joined by blank lines. Markup without <p> elements degrades to
// its flattened text content.
func HTMLToText(markup string) string {
	if markup == "" {
		return ""
	}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return strings.TrimSpace(markup)
	}

	var paragraphs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			if text := strings.TrimSpace(nodeText(n)); text != "" {
				paragraphs = append(paragraphs, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if len(paragraphs) == 0 {
		return strings.TrimSpace(nodeText(root))
	}
	return strings.Join(paragraphs, "\n\n")
}

// nodeText flattens the text content of a node subtree.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// FormatChapterTitle renders a chapter heading in book-preview style.
func FormatChapterTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return `<h2 class="` + chapterTitleClass + `">` + stdhtml.EscapeString(titleCaser.String(title)) + `</h2>`
}

// FormatChapterContent renders chapter text as justified book paragraphs.
// Accepts either plain text or editor markup; markup is flattened first so
// the preview always restyles from clean text.
func FormatChapterContent(content string) string {
	if content == "" {
		return ""
	}
	if containsMarkup(content) {
		content = HTMLToText(content)
	}

	paragraphs := splitParagraphs(content)
	var b strings.Builder
	for i, p := range paragraphs {
		class := previewParagraphClass
		if i > 0 {
			class += " " + indentClass
		}
		b.WriteString(`<p class="` + class + `">`)
		b.WriteString(stdhtml.EscapeString(p))
		b.WriteString("</p>")
	}
	return b.String()
}

// FormatBookContent renders a full chapter (title plus content) for preview.
func FormatBookContent(title, content string) string {
	return FormatChapterTitle(title) + FormatChapterContent(content)
}

// markupPattern detects paragraph-style markup in chapter content.
var markupPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|h[1-6])[\s>/]`)

func containsMarkup(s string) bool {
	return markupPattern.MatchString(strings.ToLower(s))
}

// StoryToMarkdown exports a story as a markdown document: title as a level-1
// heading, chapters as level-2 headings with their content converted from
// editor markup.
func StoryToMarkdown(story *domain.Story) (string, error) {
	var b strings.Builder
	b.WriteString("# " + strings.TrimSpace(story.Title) + "\n\n")

	for _, ch := range story.Chapters {
		b.WriteString("## " + strings.TrimSpace(ch.Title) + "\n\n")

		content := ch.Content
		if containsMarkup(content) {
			converted, err := htmltomarkdown.ConvertString(content)
			if err != nil {
				// Fall back to flattened text rather than failing the export.
				converted = HTMLToText(content)
			}
			content = converted
		}
		b.WriteString(strings.TrimSpace(content))
		b.WriteString("\n\n")
	}
	return b.String(), nil
}
