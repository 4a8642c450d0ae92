package render

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		// No raw HTML passthrough: html.WithUnsafe() is not set.
		gmhtml.WithHardWraps(),
	),
)

// MarkdownToHTML converts Markdown to an HTML fragment suitable for task
// notes or initiative content. Conversion failures fall back to escaped text.
func MarkdownToHTML(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &b); err != nil {
		return "<pre>" + template.HTMLEscapeString(src) + "</pre>"
	}
	return strings.TrimSpace(b.String())
}

// htmlToMarkdown mirrors the GFM extensions markdownRenderer reads back.
var htmlToMarkdown = htmltomd.NewConverter(
	htmltomd.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		strikethrough.NewStrikethroughPlugin(),
		table.NewTablePlugin(),
	),
)

// HTMLToMarkdown turns stored rich text back into editable Markdown.
// Conversion failures fall back to PlainText.
func HTMLToMarkdown(rich string) string {
	if strings.TrimSpace(rich) == "" {
		return ""
	}
	md, err := htmlToMarkdown.ConvertString(rich)
	if err != nil {
		return PlainText(rich)
	}
	return strings.TrimSpace(md)
}

var stripPolicy = bluemonday.StrictPolicy()

var blockBreaks = strings.NewReplacer(
	"</p>", "\n\n",
	"<br>", "\n",
	"<br/>", "\n",
	"<br />", "\n",
	"</li>", "\n",
	"</div>", "\n",
	"</h1>", "\n\n",
	"</h2>", "\n\n",
	"</h3>", "\n\n",
)

// PlainText flattens stored rich text for terminals and Markdown reports.
func PlainText(rich string) string {
	if strings.TrimSpace(rich) == "" {
		return ""
	}
	s := stripPolicy.Sanitize(blockBreaks.Replace(rich))
	s = html.UnescapeString(s)
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
