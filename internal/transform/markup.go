package transform

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

const htmlMediaType = "text/html"

// HTMLMinifier collapses formatting whitespace in HTML documents. Comments,
// attribute quotes, end tags and document tags are kept, so running it on its
// own output changes nothing.
type HTMLMinifier struct {
	m *minify.M
}

// NewHTMLMinifier returns a ready minifier. It is safe for concurrent use.
func NewHTMLMinifier() *HTMLMinifier {
	m := minify.New()
	m.Add(htmlMediaType, &html.Minifier{
		KeepComments:        true,
		KeepDefaultAttrVals: true,
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
	})
	return &HTMLMinifier{m: m}
}

// Minify returns the minified document.
func (h *HTMLMinifier) Minify(data []byte) ([]byte, error) {
	return h.m.Bytes(htmlMediaType, data)
}
