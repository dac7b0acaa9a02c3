package ml_parser

import (
	"fmt"

	"tplc-go/packages/compiler/util"
)

// ParseTreeResult is the result of parsing template source into a markup tree
type ParseTreeResult struct {
	RootNodes []Node
	Errors    []*util.ParseError
}

// Parse tokenizes and parses template source text into a markup tree
func Parse(source, url string, options *TokenizeOptions) *ParseTreeResult {
	tokenizeResult := Tokenize(source, url, options)
	builder := &treeBuilder{tokens: tokenizeResult.Tokens}
	builder.build()
	return &ParseTreeResult{
		RootNodes: builder.rootNodes,
		Errors:    append(tokenizeResult.Errors, builder.errors...),
	}
}

// treeBuilder assembles tokens into a tree of elements and blocks. The
// container stack holds open elements and open primary blocks; children
// always attach to the top of the stack.
type treeBuilder struct {
	tokens    []*Token
	index     int
	rootNodes []Node
	errors    []*util.ParseError
	stack     []Node
}

func (b *treeBuilder) peek() *Token {
	return b.tokens[b.index]
}

func (b *treeBuilder) advance() *Token {
	token := b.tokens[b.index]
	if b.index < len(b.tokens)-1 {
		b.index++
	}
	return token
}

func (b *treeBuilder) error(span *util.ParseSourceSpan, msg string) {
	b.errors = append(b.errors, util.NewParseError(span, msg))
}

func (b *treeBuilder) build() {
	for {
		token := b.advance()
		switch token.Type {
		case TokenTypeEOF:
			b.closeRemaining()
			return
		case TokenTypeTEXT:
			b.addChild(NewText(token.Parts[0], token.SourceSpan))
		case TokenTypeINTERPOLATION:
			b.addChild(NewInterpolation(token.Parts[0], token.SourceSpan))
		case TokenTypeCOMMENT_START:
			b.consumeComment(token)
		case TokenTypeTAG_OPEN_START, TokenTypeINCOMPLETE_TAG_OPEN:
			b.consumeElementOpen(token)
		case TokenTypeTAG_CLOSE:
			b.consumeElementClose(token)
		case TokenTypeBLOCK_OPEN_START, TokenTypeINCOMPLETE_BLOCK_OPEN:
			b.consumeBlockOpen(token)
		case TokenTypeBLOCK_SECTION_START:
			b.consumeBlockSection(token)
		case TokenTypeBLOCK_CLOSE:
			b.consumeBlockClose(token)
		default:
			// Attribute and delimiter tokens are consumed by the handlers
			// above; anything reaching here is skipped.
		}
	}
}

func (b *treeBuilder) addChild(node Node) {
	if len(b.stack) == 0 {
		b.rootNodes = append(b.rootNodes, node)
		return
	}
	switch parent := b.stack[len(b.stack)-1].(type) {
	case *Element:
		parent.Children = append(parent.Children, node)
	case *Block:
		if len(parent.Sections) > 0 {
			section := parent.Sections[len(parent.Sections)-1]
			section.Children = append(section.Children, node)
		} else {
			parent.Children = append(parent.Children, node)
		}
	}
}

func (b *treeBuilder) consumeComment(start *Token) {
	value := ""
	span := start.SourceSpan
	if b.peek().Type == TokenTypeRAW_TEXT {
		value = b.advance().Parts[0]
	}
	if b.peek().Type == TokenTypeCOMMENT_END {
		end := b.advance()
		span = util.NewParseSourceSpan(start.SourceSpan.Start, end.SourceSpan.End, nil, nil)
	}
	b.addChild(NewComment(value, span))
}

func (b *treeBuilder) consumeElementOpen(start *Token) {
	name := start.Parts[0]
	var attrs []*Attribute
	for b.peek().Type == TokenTypeATTR_NAME {
		attrs = append(attrs, b.consumeAttribute())
	}

	selfClosing := false
	endSpan := start.SourceSpan
	switch b.peek().Type {
	case TokenTypeTAG_OPEN_END:
		endSpan = b.advance().SourceSpan
	case TokenTypeTAG_OPEN_END_VOID:
		endSpan = b.advance().SourceSpan
		selfClosing = true
	}

	startSpan := util.NewParseSourceSpan(start.SourceSpan.Start, endSpan.End, nil, nil)
	element := NewElement(name, attrs, []Node{}, startSpan, startSpan, nil)
	element.IsSelfClosing = selfClosing
	b.addChild(element)

	if !selfClosing && !VoidElements[name] && start.Type != TokenTypeINCOMPLETE_TAG_OPEN {
		b.stack = append(b.stack, element)
	}
}

func (b *treeBuilder) consumeAttribute() *Attribute {
	nameToken := b.advance()
	name := nameToken.Parts[0]
	value := ""
	valueSpan := (*util.ParseSourceSpan)(nil)
	end := nameToken.SourceSpan.End

	if b.peek().Type == TokenTypeATTR_QUOTE {
		b.advance()
	}
	if b.peek().Type == TokenTypeATTR_VALUE_TEXT {
		valueToken := b.advance()
		value = valueToken.Parts[0]
		valueSpan = valueToken.SourceSpan
		end = valueToken.SourceSpan.End
	}
	if b.peek().Type == TokenTypeATTR_QUOTE {
		end = b.advance().SourceSpan.End
	}

	span := util.NewParseSourceSpan(nameToken.SourceSpan.Start, end, nil, nil)
	return NewAttribute(name, value, span, nameToken.SourceSpan, valueSpan)
}

func (b *treeBuilder) consumeElementClose(token *Token) {
	name := token.Parts[0]
	for i := len(b.stack) - 1; i >= 0; i-- {
		element, ok := b.stack[i].(*Element)
		if !ok {
			// A closing tag never reaches across a block boundary.
			break
		}
		if element.Name != name {
			continue
		}
		for j := len(b.stack) - 1; j > i; j-- {
			if unclosed, ok := b.stack[j].(*Element); ok {
				b.error(unclosed.StartSourceSpan, fmt.Sprintf(`Unclosed tag "%s"`, unclosed.Name))
			}
		}
		element.EndSourceSpan = token.SourceSpan
		element.sourceSpan = util.NewParseSourceSpan(element.StartSourceSpan.Start, token.SourceSpan.End, nil, nil)
		b.stack = b.stack[:i]
		return
	}
	b.error(token.SourceSpan, fmt.Sprintf(`Unexpected closing tag "%s". It may happen when the tag has already been closed by another tag.`, name))
}

func (b *treeBuilder) consumeBlockOpen(start *Token) {
	name := start.Parts[0]
	parameters, endSpan := b.consumeBlockParameters(start)

	startSpan := util.NewParseSourceSpan(start.SourceSpan.Start, endSpan.End, nil, nil)
	block := NewBlock(name, parameters, []Node{}, startSpan, startSpan, nil, start.SourceSpan)
	b.addChild(block)

	// An incomplete delimiter was already reported by the tokenizer; keep
	// the block as a leaf so later stages can still see it.
	if start.Type != TokenTypeINCOMPLETE_BLOCK_OPEN {
		b.stack = append(b.stack, block)
	}
}

func (b *treeBuilder) consumeBlockSection(start *Token) {
	name := start.Parts[0]
	parameters, endSpan := b.consumeBlockParameters(start)

	if len(b.stack) == 0 {
		b.error(start.SourceSpan, fmt.Sprintf(`Unexpected block section "%s"`, name))
		return
	}
	parent, ok := b.stack[len(b.stack)-1].(*Block)
	if !ok {
		b.error(start.SourceSpan, fmt.Sprintf(`Block section "%s" must be placed directly inside its parent block`, name))
		return
	}

	span := util.NewParseSourceSpan(start.SourceSpan.Start, endSpan.End, nil, nil)
	section := NewBlock(name, parameters, []Node{}, span, span, nil, start.SourceSpan)
	parent.Sections = append(parent.Sections, section)
}

// consumeBlockParameters collects the parameter tokens following a block or
// section start token and returns them with the span of the delimiter's end
func (b *treeBuilder) consumeBlockParameters(start *Token) ([]*BlockParameter, *util.ParseSourceSpan) {
	parameters := []*BlockParameter{}
	for b.peek().Type == TokenTypeBLOCK_PARAMETER {
		token := b.advance()
		parameters = append(parameters, NewBlockParameter(token.Parts[0], token.SourceSpan))
	}
	endSpan := start.SourceSpan
	if b.peek().Type == TokenTypeBLOCK_OPEN_END || b.peek().Type == TokenTypeBLOCK_SECTION_END {
		endSpan = b.advance().SourceSpan
	}
	return parameters, endSpan
}

func (b *treeBuilder) consumeBlockClose(token *Token) {
	name := token.Parts[0]
	for i := len(b.stack) - 1; i >= 0; i-- {
		block, ok := b.stack[i].(*Block)
		if !ok {
			continue
		}
		if block.Name != name {
			// A closing delimiter never reaches across another open block.
			break
		}
		for j := len(b.stack) - 1; j > i; j-- {
			if unclosed, ok := b.stack[j].(*Element); ok {
				b.error(unclosed.StartSourceSpan, fmt.Sprintf(`Unclosed tag "%s"`, unclosed.Name))
			}
		}
		block.EndSourceSpan = token.SourceSpan
		block.sourceSpan = util.NewParseSourceSpan(block.StartSourceSpan.Start, token.SourceSpan.End, nil, nil)
		if len(block.Sections) > 0 {
			last := block.Sections[len(block.Sections)-1]
			last.sourceSpan = util.NewParseSourceSpan(last.StartSourceSpan.Start, token.SourceSpan.Start, nil, nil)
		}
		b.stack = b.stack[:i]
		return
	}
	b.error(token.SourceSpan, fmt.Sprintf(`Unexpected closing block "%s". The block may have been closed earlier.`, name))
}

func (b *treeBuilder) closeRemaining() {
	for i := len(b.stack) - 1; i >= 0; i-- {
		switch node := b.stack[i].(type) {
		case *Element:
			b.error(node.StartSourceSpan, fmt.Sprintf(`Unclosed tag "%s"`, node.Name))
		case *Block:
			b.error(node.StartSourceSpan, fmt.Sprintf(`Unclosed block "%s"`, node.Name))
		}
	}
	b.stack = nil
}
