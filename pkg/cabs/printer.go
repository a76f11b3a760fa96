package cabs

import (
	"fmt"
	"io"
	"strings"
)

// Printer outputs the tree one node per line, indented by depth, with the
// byte span of every node.
type Printer struct {
	w      io.Writer
	indent int
}

// NewPrinter creates a new tree printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, indent: 0}
}

// Print prints the tree rooted at n
func (p *Printer) Print(n Node) {
	p.printNode("", n)
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

func (p *Printer) line(label string, n Node, format string, args ...any) {
	p.writeIndent()
	if label != "" {
		fmt.Fprintf(p.w, "%s: ", label)
	}
	s := n.Extent()
	fmt.Fprintf(p.w, format, args...)
	fmt.Fprintf(p.w, " [%d,%d)\n", s.Start, s.End)
}

func (p *Printer) child(label string, n Node) {
	if n == nil {
		return
	}
	p.indent++
	p.printNode(label, n)
	p.indent--
}

func (p *Printer) items(nodes []Node) {
	for _, item := range nodes {
		p.child("", item)
	}
}

func (p *Printer) printNode(label string, n Node) {
	switch n := n.(type) {
	case Ident:
		p.line(label, n, "Ident %s", n.Name)
	case Literal:
		p.line(label, n, "Literal %s", n.Text)
	case Keyword:
		p.line(label, n, "Keyword %s", n.Name)
	case Bad:
		p.line(label, n, "Bad")
	case Unary:
		p.line(label, n, "Unary %s", n.Op)
		p.child("", n.Operand)
	case Postfix:
		p.line(label, n, "Postfix %s", n.Op)
		p.child("", n.Operand)
	case Binary:
		p.line(label, n, "Binary %s @%d", n.Op, n.OpLoc.Start)
		p.child("", n.Left)
		p.child("", n.Right)
	case Conditional:
		p.line(label, n, "Conditional")
		p.child("cond", n.Cond)
		p.child("then", n.Then)
		p.child("else", n.Else)
	case Cast:
		p.line(label, n, "Cast")
		p.child("type", n.Type)
		p.child("", n.Operand)
	case Call:
		p.line(label, n, "Call")
		p.child("func", n.Func)
		p.child("args", n.Args)
	case Index:
		p.line(label, n, "Index")
		p.child("", n.Array)
		p.child("index", n.Index)
	case Member:
		p.line(label, n, "Member %s", n.Op)
		p.child("", n.Object)
		p.child("name", n.Name)
	case Template:
		p.line(label, n, "Template")
		p.child("name", n.Name)
		p.child("args", n.Args)
	case Lambda:
		p.line(label, n, "Lambda")
		p.child("captures", n.Captures)
		if n.Params != nil {
			p.child("params", *n.Params)
		}
		p.child("body", n.Body)
	case Group:
		p.line(label, n, "Group %s", n.Kind)
		p.items(n.Items)
	case Block:
		p.line(label, n, "Block")
		p.items(n.Items)
	case TranslationUnit:
		p.line(label, n, "TranslationUnit")
		p.items(n.Items)
	default:
		p.writeIndent()
		fmt.Fprintf(p.w, "/* unknown node %T */\n", n)
	}
}
