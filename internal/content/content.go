// Package content turns the HTML bodies returned by fediverse APIs into plain
// text for the terminal.
package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/muesli/reflow/wordwrap"
)

// policy keeps only the structure PlainText understands.
var policy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "a", "span", "ul", "ol", "li", "blockquote", "pre", "code", "em", "strong", "b", "i", "del")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("class").OnElements("a", "span")
	p.AllowStandardURLs()
	return p
}()

// PlainText sanitizes an HTML fragment and flattens it to text. Paragraphs
// are separated by blank lines, <br> becomes a newline and list items are
// bulleted. Mastodon's invisible URL parts are dropped.
func PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	if !strings.Contains(html, "<") {
		return strings.TrimSpace(html)
	}
	clean := policy.Sanitize(html)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(html))
	}

	doc.Find("span.invisible").Remove()
	doc.Find("span.ellipsis").Each(func(_ int, s *goquery.Selection) {
		s.SetText(s.Text() + "…")
	})
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("• ")
		s.AppendHtml("\n")
	})
	doc.Find("blockquote").Each(func(_ int, s *goquery.Selection) {
		lines := strings.Split(strings.TrimSpace(s.Text()), "\n")
		for i, line := range lines {
			lines[i] = "> " + line
		}
		s.SetText(strings.Join(lines, "\n"))
	})

	var paragraphs []string
	blocks := doc.Find("body").Contents()
	if blocks.Length() == 0 {
		return collapse(doc.Text())
	}
	var inline strings.Builder
	blocks.Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "p", "ul", "ol", "blockquote", "pre":
			if text := collapse(inline.String()); text != "" {
				paragraphs = append(paragraphs, text)
			}
			inline.Reset()
			if text := collapse(s.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		default:
			inline.WriteString(s.Text())
		}
	})
	if text := collapse(inline.String()); text != "" {
		paragraphs = append(paragraphs, text)
	}
	if len(paragraphs) == 0 {
		return collapse(doc.Text())
	}
	return strings.Join(paragraphs, "\n\n")
}

// Links returns the href of every anchor in the fragment, in document order,
// skipping mentions and hashtags.
func Links(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(policy.Sanitize(html)))
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("mention") || s.HasClass("hashtag") || s.HasClass("u-url") {
			return
		}
		href, _ := s.Attr("href")
		if href = strings.TrimSpace(href); href != "" {
			out = append(out, href)
		}
	})
	return out
}

// Wrap word-wraps text to width columns; width <= 0 leaves it unchanged.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

// Excerpt returns the first line of text, cut to limit runes.
func Excerpt(text string, limit int) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

// collapse trims each line and squeezes runs of spaces, keeping newlines.
func collapse(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
