// Package markdown renders user-authored markdown (course descriptions, email bodies) to HTML.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// renderer escapes raw HTML in the source.
var renderer = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Linkify),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Render converts markdown source to an HTML fragment.
// PRE: none
// POST: Raw HTML in src is omitted from the output
func Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// escaper backslash-escapes the ASCII punctuation that can start markdown
// syntax, including the ':', '.' and '@' that Linkify keys on.
var escaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "{", `\{`, "}", `\}`,
	"[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`, "#", `\#`, "+", `\+`,
	"-", `\-`, ".", `\.`, "!", `\!`, "|", `\|`, "<", `\<`, ">", `\>`,
	"~", `\~`, "&", `\&`, ":", `\:`, "@", `\@`,
)

// Escape makes s render as literal text when spliced into markdown source.
func Escape(s string) string {
	return escaper.Replace(s)
}
