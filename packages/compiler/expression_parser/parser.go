package expression_parser

import (
	"strings"

	"tplc-go/packages/compiler/core"
)

// Parser is the expression service: it turns an expression string into an
// expression AST and reports structured syntax errors.
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new Parser
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// ParseBinding parses a binding expression. Errors are collected on the
// returned ASTWithSource rather than aborting, so that template parsing can
// continue past a bad expression.
func (p *Parser) ParseBinding(input string, absoluteOffset int) *ASTWithSource {
	tokens := p.lexer.Tokenize(input)
	pa := newParseAtom(input, absoluteOffset, tokens)
	var ast AST
	if len(strings.TrimSpace(input)) == 0 {
		ast = NewEmptyExpr(NewParseSpan(0, 0), NewAbsoluteSourceSpan(absoluteOffset, absoluteOffset))
	} else {
		ast = pa.parseConditional()
		if pa.index < len(pa.tokens) && len(pa.errors) == 0 {
			pa.error("Unexpected token '" + pa.next().String() + "'")
		}
	}
	return NewASTWithSource(ast, input, absoluteOffset, pa.errors)
}

// parseAtom holds the state of one expression parse
type parseAtom struct {
	input          string
	absoluteOffset int
	tokens         []*Token
	index          int
	errors         []*ParserError
}

func newParseAtom(input string, absoluteOffset int, tokens []*Token) *parseAtom {
	return &parseAtom{
		input:          input,
		absoluteOffset: absoluteOffset,
		tokens:         tokens,
	}
}

func (p *parseAtom) next() *Token {
	if p.index >= len(p.tokens) {
		return EOFToken
	}
	return p.tokens[p.index]
}

func (p *parseAtom) advance() {
	p.index++
}

func (p *parseAtom) inputIndex() int {
	token := p.next()
	if token == EOFToken {
		return len(p.input)
	}
	return token.Index
}

// currentEndIndex is the end of the most recently consumed token
func (p *parseAtom) currentEndIndex() int {
	if p.index == 0 {
		return 0
	}
	return p.tokens[p.index-1].End
}

func (p *parseAtom) span(start int) *ParseSpan {
	return NewParseSpan(start, p.currentEndIndex())
}

func (p *parseAtom) sourceSpan(start int) *AbsoluteSourceSpan {
	return p.span(start).ToAbsolute(p.absoluteOffset)
}

func (p *parseAtom) error(message string) {
	p.errors = append(p.errors, NewParserError(message, p.input, p.inputIndex()))
	// Skip the rest of the tokens so that a single error is reported per
	// expression.
	p.index = len(p.tokens)
}

func (p *parseAtom) consumeOptionalCharacter(code int) bool {
	if p.next().IsCharacter(code) {
		p.advance()
		return true
	}
	return false
}

func (p *parseAtom) expectCharacter(code int) {
	if !p.consumeOptionalCharacter(code) {
		p.error("Missing expected " + string(rune(code)))
	}
}

func (p *parseAtom) consumeOptionalOperator(op string) bool {
	if p.next().IsOperator(op) {
		p.advance()
		return true
	}
	return false
}

func (p *parseAtom) parseConditional() AST {
	start := p.inputIndex()
	result := p.parseLogicalOr()

	if p.consumeOptionalOperator("?") {
		yes := p.parseConditional()
		p.expectCharacter(core.CharCOLON)
		no := p.parseConditional()
		return NewConditional(p.span(start), p.sourceSpan(start), result, yes, no)
	}
	return result
}

func (p *parseAtom) parseLogicalOr() AST {
	start := p.inputIndex()
	result := p.parseLogicalAnd()
	for p.consumeOptionalOperator("||") || p.consumeOptionalOperator("??") {
		op := p.tokens[p.index-1].StrValue
		right := p.parseLogicalAnd()
		result = NewBinary(p.span(start), p.sourceSpan(start), op, result, right)
	}
	return result
}

func (p *parseAtom) parseLogicalAnd() AST {
	start := p.inputIndex()
	result := p.parseEquality()
	for p.consumeOptionalOperator("&&") {
		right := p.parseEquality()
		result = NewBinary(p.span(start), p.sourceSpan(start), "&&", result, right)
	}
	return result
}

func (p *parseAtom) parseEquality() AST {
	start := p.inputIndex()
	result := p.parseRelational()
	for {
		operator := p.next().StrValue
		switch operator {
		case "==", "===", "!=", "!==":
			p.advance()
			right := p.parseRelational()
			result = NewBinary(p.span(start), p.sourceSpan(start), operator, result, right)
			continue
		}
		return result
	}
}

func (p *parseAtom) parseRelational() AST {
	start := p.inputIndex()
	result := p.parseAdditive()
	for {
		operator := p.next().StrValue
		switch operator {
		case "<", ">", "<=", ">=":
			p.advance()
			right := p.parseAdditive()
			result = NewBinary(p.span(start), p.sourceSpan(start), operator, result, right)
			continue
		}
		return result
	}
}

func (p *parseAtom) parseAdditive() AST {
	start := p.inputIndex()
	result := p.parseMultiplicative()
	for {
		operator := p.next().StrValue
		switch operator {
		case "+", "-":
			p.advance()
			right := p.parseMultiplicative()
			result = NewBinary(p.span(start), p.sourceSpan(start), operator, result, right)
			continue
		}
		return result
	}
}

func (p *parseAtom) parseMultiplicative() AST {
	start := p.inputIndex()
	result := p.parsePrefix()
	for {
		operator := p.next().StrValue
		switch operator {
		case "*", "/", "%":
			p.advance()
			right := p.parsePrefix()
			result = NewBinary(p.span(start), p.sourceSpan(start), operator, result, right)
			continue
		}
		return result
	}
}

func (p *parseAtom) parsePrefix() AST {
	if p.next().Type == TokenTypeOperator {
		start := p.inputIndex()
		operator := p.next().StrValue
		switch operator {
		case "+", "-", "!":
			p.advance()
			expr := p.parsePrefix()
			return NewUnary(p.span(start), p.sourceSpan(start), operator, expr)
		}
	}
	return p.parseCallChain()
}

func (p *parseAtom) parseCallChain() AST {
	start := p.inputIndex()
	result := p.parsePrimary()
	for {
		if p.consumeOptionalCharacter(core.CharPERIOD) {
			result = p.parseAccessMember(result, start)
		} else if p.consumeOptionalCharacter(core.CharLBRACKET) {
			key := p.parseConditional()
			p.expectCharacter(core.CharRBRACKET)
			result = NewKeyedRead(p.span(start), p.sourceSpan(start), result, key)
		} else if p.consumeOptionalCharacter(core.CharLPAREN) {
			argStart := p.inputIndex()
			args := p.parseCallArguments()
			argumentSpan := NewParseSpan(argStart, p.inputIndex()).ToAbsolute(p.absoluteOffset)
			p.expectCharacter(core.CharRPAREN)
			result = NewCall(p.span(start), p.sourceSpan(start), result, args, argumentSpan)
		} else {
			return result
		}
	}
}

func (p *parseAtom) parseCallArguments() []AST {
	if p.next().IsCharacter(core.CharRPAREN) {
		return []AST{}
	}
	args := []AST{p.parseConditional()}
	for p.consumeOptionalCharacter(core.CharCOMMA) {
		args = append(args, p.parseConditional())
	}
	return args
}

func (p *parseAtom) parseAccessMember(receiver AST, start int) AST {
	nameStart := p.inputIndex()
	token := p.next()
	if !token.IsIdentifier() && !token.IsKeyword() {
		p.error("Expected identifier for property access")
		return NewEmptyExpr(p.span(start), p.sourceSpan(start))
	}
	p.advance()
	nameSpan := NewParseSpan(nameStart, p.currentEndIndex()).ToAbsolute(p.absoluteOffset)
	return NewPropertyRead(p.span(start), p.sourceSpan(start), nameSpan, receiver, token.StrValue)
}

func (p *parseAtom) parsePrimary() AST {
	start := p.inputIndex()
	token := p.next()

	switch {
	case token.IsCharacter(core.CharLPAREN):
		p.advance()
		result := p.parseConditional()
		p.expectCharacter(core.CharRPAREN)
		return result

	case token.IsKeyword():
		p.advance()
		switch token.StrValue {
		case "null":
			return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), nil)
		case "undefined":
			return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), nil)
		case "true":
			return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), true)
		case "false":
			return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), false)
		case "this":
			return NewImplicitReceiver(p.span(start), p.sourceSpan(start))
		}
		p.error("Unexpected keyword '" + token.StrValue + "'")
		return NewEmptyExpr(p.span(start), p.sourceSpan(start))

	case token.IsIdentifier():
		p.advance()
		receiver := NewImplicitReceiver(p.span(start), p.sourceSpan(start))
		nameSpan := NewParseSpan(token.Index, token.End).ToAbsolute(p.absoluteOffset)
		return NewPropertyRead(p.span(start), p.sourceSpan(start), nameSpan, receiver, token.StrValue)

	case token.IsNumber():
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), token.NumValue)

	case token.IsString():
		p.advance()
		return NewLiteralPrimitive(p.span(start), p.sourceSpan(start), token.StrValue)

	case token.IsCharacter(core.CharLBRACKET):
		p.advance()
		elements := []AST{}
		if !p.next().IsCharacter(core.CharRBRACKET) {
			elements = append(elements, p.parseConditional())
			for p.consumeOptionalCharacter(core.CharCOMMA) {
				elements = append(elements, p.parseConditional())
			}
		}
		p.expectCharacter(core.CharRBRACKET)
		return NewLiteralArray(p.span(start), p.sourceSpan(start), elements)

	case token.IsCharacter(core.CharLBRACE):
		return p.parseLiteralMap()

	case token.IsError():
		p.errors = append(p.errors, &ParserError{Message: token.StrValue, Input: p.input, Column: token.Index})
		p.index = len(p.tokens)
		return NewEmptyExpr(p.span(start), p.sourceSpan(start))

	case p.index >= len(p.tokens):
		p.error("Unexpected end of expression")
		return NewEmptyExpr(p.span(start), p.sourceSpan(start))
	}

	p.error("Unexpected token '" + token.String() + "'")
	return NewEmptyExpr(p.span(start), p.sourceSpan(start))
}

func (p *parseAtom) parseLiteralMap() AST {
	start := p.inputIndex()
	keys := []LiteralMapKey{}
	values := []AST{}
	p.expectCharacter(core.CharLBRACE)
	if !p.consumeOptionalCharacter(core.CharRBRACE) {
		for {
			token := p.next()
			quoted := token.IsString()
			if !token.IsIdentifier() && !token.IsKeyword() && !token.IsString() {
				p.error("Expected key in object literal")
				break
			}
			p.advance()
			keys = append(keys, LiteralMapKey{Key: token.StrValue, Quoted: quoted})
			if p.consumeOptionalCharacter(core.CharCOLON) {
				values = append(values, p.parseConditional())
			} else {
				// Shorthand property: `{a}` reads `a` off the implicit receiver.
				receiver := NewImplicitReceiver(p.span(start), p.sourceSpan(start))
				nameSpan := NewParseSpan(token.Index, token.End).ToAbsolute(p.absoluteOffset)
				values = append(values, NewPropertyRead(p.span(start), p.sourceSpan(start), nameSpan, receiver, token.StrValue))
			}
			if !p.consumeOptionalCharacter(core.CharCOMMA) {
				break
			}
		}
		p.expectCharacter(core.CharRBRACE)
	}
	return NewLiteralMap(p.span(start), p.sourceSpan(start), keys, values)
}
