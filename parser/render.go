package parser

import (
	"fmt"
	"strings"

	"github.com/posh-lang/posh/lexer"
)

// RenderText renders the tree as an indented outline for humans. Left
// children print before Right children, so the output reads in grammar
// order top to bottom.
func RenderText(t *Tree[lexer.Token]) string {
	if t == nil || t.Head() == nil {
		return "(empty)\n"
	}
	var b strings.Builder
	renderNode(&b, t.Head(), "", "")
	return b.String()
}

func renderNode(b *strings.Builder, n *Node[lexer.Token], prefix, childPrefix string) {
	b.WriteString(prefix)
	b.WriteString(n.Kind().String())
	if tok, ok := n.Value(); ok {
		fmt.Fprintf(b, " %q", tok.Symbol())
	}
	b.WriteByte('\n')

	left := n.Child(Left)
	right := n.Child(Right)

	if left != nil {
		if right != nil {
			renderNode(b, left, childPrefix+"├── ", childPrefix+"│   ")
		} else {
			renderNode(b, left, childPrefix+"└── ", childPrefix+"    ")
		}
	}
	if right != nil {
		renderNode(b, right, childPrefix+"└── ", childPrefix+"    ")
	}
}
