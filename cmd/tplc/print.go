package main

import (
	"fmt"
	"io"
	"strings"

	"tplc-go/packages/compiler/render3"
)

// treePrinter writes an indented summary of a render AST
type treePrinter struct {
	w     io.Writer
	depth int
}

func newTreePrinter(w io.Writer) *treePrinter {
	return &treePrinter{w: w}
}

func (p *treePrinter) print(nodes []render3.Node) {
	for _, node := range nodes {
		p.printNode(node)
	}
}

func (p *treePrinter) line(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.depth), fmt.Sprintf(format, args...))
}

func (p *treePrinter) nested(nodes []render3.Node) {
	p.depth++
	p.print(nodes)
	p.depth--
}

func (p *treePrinter) printNode(node render3.Node) {
	switch n := node.(type) {
	case *render3.Text:
		p.line("Text %q", n.Value)
	case *render3.BoundText:
		p.line("BoundText")
	case *render3.Element:
		p.line("Element <%s> attrs=%d inputs=%d outputs=%d refs=%d",
			n.Name, len(n.Attributes), len(n.Inputs), len(n.Outputs), len(n.References))
		p.nested(n.Children)
	case *render3.Template:
		tag := ""
		if n.TagName != nil {
			tag = *n.TagName
		}
		p.line("Template <%s> vars=%d", tag, len(n.Variables))
		p.nested(n.Children)
	case *render3.Content:
		p.line("Content select=%q", n.Selector)
		p.nested(n.Children)
	case *render3.IfBlock:
		p.line("IfBlock branches=%d", len(n.Branches))
		for _, branch := range n.Branches {
			kind := "else"
			if branch.Expression != nil {
				kind = "if"
			}
			p.depth++
			p.line("Branch (%s)", kind)
			p.nested(branch.Children)
			p.depth--
		}
	case *render3.ForLoopBlock:
		p.line("ForLoopBlock item=%q", n.Item.Name)
		p.nested(n.Children)
		if n.Empty != nil {
			p.depth++
			p.line("Empty")
			p.nested(n.Empty.Children)
			p.depth--
		}
	case *render3.SwitchBlock:
		p.line("SwitchBlock cases=%d", len(n.Cases))
		for _, c := range n.Cases {
			kind := "default"
			if c.Expression != nil {
				kind = "case"
			}
			p.depth++
			p.line("Case (%s)", kind)
			p.nested(c.Children)
			p.depth--
		}
	case *render3.DeferredBlock:
		p.line("DeferredBlock")
		p.nested(n.Children)
		if n.Placeholder != nil {
			p.depth++
			p.line("Placeholder")
			p.nested(n.Placeholder.Children)
			p.depth--
		}
		if n.Loading != nil {
			p.depth++
			p.line("Loading")
			p.nested(n.Loading.Children)
			p.depth--
		}
		if n.Error != nil {
			p.depth++
			p.line("Error")
			p.nested(n.Error.Children)
			p.depth--
		}
	case *render3.UnknownBlock:
		p.line("UnknownBlock %q", n.Name)
	default:
		p.line("%T", n)
	}
}
