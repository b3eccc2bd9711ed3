package editor

import (
	"strings"

	"github.com/inkpress/inkpress/internal/model"
)

// Serialize renders a block sequence to a single HTML string. It is pure
// and deterministic: output depends only on the input blocks, order is
// preserved exactly and no separators are inserted. Unknown block types
// serialize to nothing.
//
// Only code block content has '<' and '>' entity-escaped; text blocks pass
// their inline HTML through untouched. Changing that differential escaping
// changes the rendered bytes of every stored post, so it needs a product
// decision and a content migration.
func Serialize(blocks []model.Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		switch blk.Type {
		case model.BlockH1:
			b.WriteString("<h1>")
			b.WriteString(blk.Content)
			b.WriteString("</h1>")
		case model.BlockH2:
			b.WriteString("<h2>")
			b.WriteString(blk.Content)
			b.WriteString("</h2>")
		case model.BlockP:
			b.WriteString("<p>")
			b.WriteString(blk.Content)
			b.WriteString("</p>")
		case model.BlockQuote:
			b.WriteString("<blockquote>")
			b.WriteString(blk.Content)
			b.WriteString("</blockquote>")
		case model.BlockCode:
			b.WriteString("<pre><code>")
			b.WriteString(escapeAngles(blk.Content))
			b.WriteString("</code></pre>")
		case model.BlockImage:
			b.WriteString(`<img src="`)
			b.WriteString(blk.Content)
			b.WriteString(`" alt="Blog Image" />`)
		}
	}
	return b.String()
}

func escapeAngles(s string) string {
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
