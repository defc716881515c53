package bridge

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// Speakable flattens markdown into plain prose for speech synthesis.
// Assistant replies may carry light markdown even after sanitisation of
// leaked payload fragments; a speech host needs the bare words.
func Speakable(input string) string {
	source := []byte(input)
	doc := md.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Block boundaries become word breaks so adjacent list
			// items, headings, and paragraphs do not fuse.
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.AutoLink:
			b.Write(t.URL(source))
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}
