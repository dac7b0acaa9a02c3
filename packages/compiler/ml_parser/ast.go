package ml_parser

import "tplc-go/packages/compiler/util"

// Node represents a node in the markup AST
type Node interface {
	SourceSpan() *util.ParseSourceSpan
	Visit(visitor Visitor, context interface{}) interface{}
}

// Text represents a literal text node
type Text struct {
	Value      string
	sourceSpan *util.ParseSourceSpan
}

// NewText creates a new Text node
func NewText(value string, sourceSpan *util.ParseSourceSpan) *Text {
	return &Text{Value: value, sourceSpan: sourceSpan}
}

// SourceSpan returns the source span
func (t *Text) SourceSpan() *util.ParseSourceSpan {
	return t.sourceSpan
}

// Visit visits the node with a visitor
func (t *Text) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitText(t, context)
}

// Interpolation represents one `{{ expression }}` segment of text
type Interpolation struct {
	Expression string
	sourceSpan *util.ParseSourceSpan
}

// NewInterpolation creates a new Interpolation node
func NewInterpolation(expression string, sourceSpan *util.ParseSourceSpan) *Interpolation {
	return &Interpolation{Expression: expression, sourceSpan: sourceSpan}
}

// SourceSpan returns the source span
func (i *Interpolation) SourceSpan() *util.ParseSourceSpan {
	return i.sourceSpan
}

// Visit visits the node with a visitor
func (i *Interpolation) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitInterpolation(i, context)
}

// Comment represents an HTML comment
type Comment struct {
	Value      string
	sourceSpan *util.ParseSourceSpan
}

// NewComment creates a new Comment node
func NewComment(value string, sourceSpan *util.ParseSourceSpan) *Comment {
	return &Comment{Value: value, sourceSpan: sourceSpan}
}

// SourceSpan returns the source span
func (c *Comment) SourceSpan() *util.ParseSourceSpan {
	return c.sourceSpan
}

// Visit visits the node with a visitor
func (c *Comment) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitComment(c, context)
}

// Attribute represents an attribute on an element
type Attribute struct {
	Name       string
	Value      string
	sourceSpan *util.ParseSourceSpan
	KeySpan    *util.ParseSourceSpan
	ValueSpan  *util.ParseSourceSpan
}

// NewAttribute creates a new Attribute
func NewAttribute(name, value string, sourceSpan, keySpan, valueSpan *util.ParseSourceSpan) *Attribute {
	return &Attribute{
		Name:       name,
		Value:      value,
		sourceSpan: sourceSpan,
		KeySpan:    keySpan,
		ValueSpan:  valueSpan,
	}
}

// SourceSpan returns the source span
func (a *Attribute) SourceSpan() *util.ParseSourceSpan {
	return a.sourceSpan
}

// Visit visits the node with a visitor
func (a *Attribute) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitAttribute(a, context)
}

// Element represents an element with attributes and children
type Element struct {
	Name            string
	Attrs           []*Attribute
	Children        []Node
	IsSelfClosing   bool
	sourceSpan      *util.ParseSourceSpan
	StartSourceSpan *util.ParseSourceSpan
	EndSourceSpan   *util.ParseSourceSpan
}

// NewElement creates a new Element
func NewElement(
	name string,
	attrs []*Attribute,
	children []Node,
	sourceSpan, startSourceSpan, endSourceSpan *util.ParseSourceSpan,
) *Element {
	return &Element{
		Name:            name,
		Attrs:           attrs,
		Children:        children,
		sourceSpan:      sourceSpan,
		StartSourceSpan: startSourceSpan,
		EndSourceSpan:   endSourceSpan,
	}
}

// SourceSpan returns the source span
func (e *Element) SourceSpan() *util.ParseSourceSpan {
	return e.sourceSpan
}

// Visit visits the node with a visitor
func (e *Element) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitElement(e, context)
}

// BlockParameter is one `;`-separated parameter of a block's opening
// delimiter, handed unparsed to the block grammar builders.
type BlockParameter struct {
	Expression string
	sourceSpan *util.ParseSourceSpan
}

// NewBlockParameter creates a new BlockParameter
func NewBlockParameter(expression string, sourceSpan *util.ParseSourceSpan) *BlockParameter {
	return &BlockParameter{Expression: expression, sourceSpan: sourceSpan}
}

// SourceSpan returns the source span
func (p *BlockParameter) SourceSpan() *util.ParseSourceSpan {
	return p.sourceSpan
}

// Visit visits the node with a visitor
func (p *BlockParameter) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitBlockParameter(p, context)
}

// Block represents a `{#name ...}...{/name}` block, or one `{:name ...}`
// secondary section of such a block. Sections is populated only on primary
// blocks; Children holds the primary content up to the first section.
type Block struct {
	Name            string
	Parameters      []*BlockParameter
	Children        []Node
	Sections        []*Block
	sourceSpan      *util.ParseSourceSpan
	StartSourceSpan *util.ParseSourceSpan
	EndSourceSpan   *util.ParseSourceSpan
	NameSpan        *util.ParseSourceSpan
}

// NewBlock creates a new Block
func NewBlock(
	name string,
	parameters []*BlockParameter,
	children []Node,
	sourceSpan, startSourceSpan, endSourceSpan, nameSpan *util.ParseSourceSpan,
) *Block {
	return &Block{
		Name:            name,
		Parameters:      parameters,
		Children:        children,
		sourceSpan:      sourceSpan,
		StartSourceSpan: startSourceSpan,
		EndSourceSpan:   endSourceSpan,
		NameSpan:        nameSpan,
	}
}

// SourceSpan returns the source span
func (b *Block) SourceSpan() *util.ParseSourceSpan {
	return b.sourceSpan
}

// Visit visits the node with a visitor
func (b *Block) Visit(visitor Visitor, context interface{}) interface{} {
	return visitor.VisitBlock(b, context)
}

// Visitor is the visitor interface over markup AST nodes
type Visitor interface {
	VisitElement(element *Element, context interface{}) interface{}
	VisitAttribute(attribute *Attribute, context interface{}) interface{}
	VisitText(text *Text, context interface{}) interface{}
	VisitInterpolation(interpolation *Interpolation, context interface{}) interface{}
	VisitComment(comment *Comment, context interface{}) interface{}
	VisitBlock(block *Block, context interface{}) interface{}
	VisitBlockParameter(parameter *BlockParameter, context interface{}) interface{}
}

// VisitAll visits all nodes in a slice, collecting non-nil results
func VisitAll(visitor Visitor, nodes []Node, context interface{}) []interface{} {
	result := []interface{}{}
	for _, node := range nodes {
		if returned := node.Visit(visitor, context); returned != nil {
			result = append(result, returned)
		}
	}
	return result
}
