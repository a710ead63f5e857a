// Package markup turns note content into HTML at render time. Notes keep
// their content as free text with lightweight markers (headings, lists,
// checkboxes, blockquotes); nothing structured is ever stored.
package markup

import (
	"bytes"

	"github.com/yuin/goldmark"
)

var mdRenderer = goldmark.New()

// RenderHTML converts note content to an HTML fragment.
func RenderHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
