package view

import (
	"tplc-go/packages/compiler/expression_parser"
	"tplc-go/packages/compiler/util"
)

// BindingParser parses binding expressions found in a template and collects
// the resulting diagnostics against their template source spans.
type BindingParser struct {
	parser *expression_parser.Parser
	Errors []*util.ParseError
}

// NewBindingParser creates a new BindingParser
func NewBindingParser() *BindingParser {
	return &BindingParser{
		parser: expression_parser.NewParser(expression_parser.NewLexer()),
	}
}

// ParseBinding parses a single binding expression. Expression errors are
// recorded against sourceSpan and the (possibly partial) AST is returned.
func (bp *BindingParser) ParseBinding(
	expression string,
	sourceSpan *util.ParseSourceSpan,
	absoluteOffset int,
) *expression_parser.ASTWithSource {
	ast := bp.parser.ParseBinding(expression, absoluteOffset)
	for _, err := range ast.Errors {
		bp.Errors = append(bp.Errors, util.NewParseError(sourceSpan, err.Message))
	}
	return ast
}
