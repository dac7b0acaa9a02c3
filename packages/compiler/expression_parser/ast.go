package expression_parser

import "fmt"

// ParseSpan represents a span within an expression, relative to the
// expression's own text.
type ParseSpan struct {
	Start int
	End   int
}

// NewParseSpan creates a new ParseSpan
func NewParseSpan(start, end int) *ParseSpan {
	return &ParseSpan{Start: start, End: end}
}

// ToAbsolute converts a ParseSpan to an AbsoluteSourceSpan
func (ps *ParseSpan) ToAbsolute(absoluteOffset int) *AbsoluteSourceSpan {
	return NewAbsoluteSourceSpan(absoluteOffset+ps.Start, absoluteOffset+ps.End)
}

// AbsoluteSourceSpan records the absolute position of a text span in the
// template source file.
type AbsoluteSourceSpan struct {
	Start int
	End   int
}

// NewAbsoluteSourceSpan creates a new AbsoluteSourceSpan
func NewAbsoluteSourceSpan(start, end int) *AbsoluteSourceSpan {
	return &AbsoluteSourceSpan{Start: start, End: end}
}

// AST is the base interface for all expression AST nodes
type AST interface {
	Span() *ParseSpan
	SourceSpan() *AbsoluteSourceSpan
	Visit(visitor AstVisitor, context interface{}) interface{}
}

// astBase carries the spans shared by every node
type astBase struct {
	span       *ParseSpan
	sourceSpan *AbsoluteSourceSpan
}

// Span returns the parse span
func (a *astBase) Span() *ParseSpan {
	return a.span
}

// SourceSpan returns the absolute source span
func (a *astBase) SourceSpan() *AbsoluteSourceSpan {
	return a.sourceSpan
}

// EmptyExpr represents an empty expression
type EmptyExpr struct {
	astBase
}

// NewEmptyExpr creates a new EmptyExpr
func NewEmptyExpr(span *ParseSpan, sourceSpan *AbsoluteSourceSpan) *EmptyExpr {
	return &EmptyExpr{astBase{span, sourceSpan}}
}

// Visit implements the AST interface
func (e *EmptyExpr) Visit(visitor AstVisitor, context interface{}) interface{} {
	return nil
}

// ImplicitReceiver represents the implicit component-context receiver
type ImplicitReceiver struct {
	astBase
}

// NewImplicitReceiver creates a new ImplicitReceiver
func NewImplicitReceiver(span *ParseSpan, sourceSpan *AbsoluteSourceSpan) *ImplicitReceiver {
	return &ImplicitReceiver{astBase{span, sourceSpan}}
}

// Visit implements the AST interface
func (i *ImplicitReceiver) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitImplicitReceiver(i, context)
}

// PropertyRead represents a property read such as `a.b`
type PropertyRead struct {
	astBase
	NameSpan *AbsoluteSourceSpan
	Receiver AST
	Name     string
}

// NewPropertyRead creates a new PropertyRead
func NewPropertyRead(span *ParseSpan, sourceSpan *AbsoluteSourceSpan, nameSpan *AbsoluteSourceSpan, receiver AST, name string) *PropertyRead {
	return &PropertyRead{
		astBase:  astBase{span, sourceSpan},
		NameSpan: nameSpan,
		Receiver: receiver,
		Name:     name,
	}
}

// Visit implements the AST interface
func (p *PropertyRead) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitPropertyRead(p, context)
}

// KeyedRead represents a keyed read such as `a[b]`
type KeyedRead struct {
	astBase
	Receiver AST
	Key      AST
}

// NewKeyedRead creates a new KeyedRead
func NewKeyedRead(span *ParseSpan, sourceSpan *AbsoluteSourceSpan, receiver AST, key AST) *KeyedRead {
	return &KeyedRead{
		astBase:  astBase{span, sourceSpan},
		Receiver: receiver,
		Key:      key,
	}
}

// Visit implements the AST interface
func (k *KeyedRead) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitKeyedRead(k, context)
}

// Call represents a function or method call
type Call struct {
	astBase
	Receiver     AST
	Args         []AST
	ArgumentSpan *AbsoluteSourceSpan
}

// NewCall creates a new Call
func NewCall(span *ParseSpan, sourceSpan *AbsoluteSourceSpan, receiver AST, args []AST, argumentSpan *AbsoluteSourceSpan) *Call {
	return &Call{
		astBase:      astBase{span, sourceSpan},
		Receiver:     receiver,
		Args:         args,
		ArgumentSpan: argumentSpan,
	}
}

// Visit implements the AST interface
func (c *Call) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitCall(c, context)
}

// LiteralPrimitive represents a literal string, number, boolean, null or undefined
type LiteralPrimitive struct {
	astBase
	Value interface{}
}

// NewLiteralPrimitive creates a new LiteralPrimitive
func NewLiteralPrimitive(span *ParseSpan, sourceSpan *AbsoluteSourceSpan, value interface{}) *LiteralPrimitive {
	return &LiteralPrimitive{
		astBase: astBase{span, sourceSpan},
		Value:   value,
	}
}

// Visit implements the AST interface
func (l *LiteralPrimitive) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralPrimitive(l, context)
}

// LiteralArray represents an array literal
type LiteralArray struct {
	astBase
	Expressions []AST
}

// NewLiteralArray creates a new LiteralArray
func NewLiteralArray(span *ParseSpan, sourceSpan *AbsoluteSourceSpan, expressions []AST) *LiteralArray {
	return &LiteralArray{
		astBase:     astBase{span, sourceSpan},
		Expressions: expressions,
	}
}

// Visit implements the AST interface
func (l *LiteralArray) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralArray(l, context)
}

// LiteralMapKey is one key of an object literal
type LiteralMapKey struct {
	Key    string
	Quoted bool
}

// LiteralMap represents an object literal
type LiteralMap struct {
	astBase
	Keys   []LiteralMapKey
	Values []AST
}

// NewLiteralMap creates a new LiteralMap
func NewLiteralMap(span *ParseSpan, sourceSpan *AbsoluteSourceSpan, keys []LiteralMapKey, values []AST) *LiteralMap {
	return &LiteralMap{
		astBase: astBase{span, sourceSpan},
		Keys:    keys,
		Values:  values,
	}
}

// Visit implements the AST interface
func (l *LiteralMap) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralMap(l, context)
}

// Binary represents a binary operation
type Binary struct {
	astBase
	Operation string
	Left      AST
	Right     AST
}

// NewBinary creates a new Binary
func NewBinary(span *ParseSpan, sourceSpan *AbsoluteSourceSpan, operation string, left, right AST) *Binary {
	return &Binary{
		astBase:   astBase{span, sourceSpan},
		Operation: operation,
		Left:      left,
		Right:     right,
	}
}

// Visit implements the AST interface
func (b *Binary) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitBinary(b, context)
}

// Unary represents a unary operation
type Unary struct {
	astBase
	Operator string
	Expr     AST
}

// NewUnary creates a new Unary
func NewUnary(span *ParseSpan, sourceSpan *AbsoluteSourceSpan, operator string, expr AST) *Unary {
	return &Unary{
		astBase:  astBase{span, sourceSpan},
		Operator: operator,
		Expr:     expr,
	}
}

// Visit implements the AST interface
func (u *Unary) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitUnary(u, context)
}

// Conditional represents a ternary conditional `a ? b : c`
type Conditional struct {
	astBase
	Condition AST
	TrueExp   AST
	FalseExp  AST
}

// NewConditional creates a new Conditional
func NewConditional(span *ParseSpan, sourceSpan *AbsoluteSourceSpan, condition, trueExp, falseExp AST) *Conditional {
	return &Conditional{
		astBase:   astBase{span, sourceSpan},
		Condition: condition,
		TrueExp:   trueExp,
		FalseExp:  falseExp,
	}
}

// Visit implements the AST interface
func (c *Conditional) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitConditional(c, context)
}

// ASTWithSource wraps a parsed AST with the source text it was parsed from
type ASTWithSource struct {
	astBase
	AST    AST
	Source string
	Errors []*ParserError
}

// NewASTWithSource creates a new ASTWithSource
func NewASTWithSource(ast AST, source string, absoluteOffset int, errors []*ParserError) *ASTWithSource {
	return &ASTWithSource{
		astBase: astBase{
			span:       NewParseSpan(0, len(source)),
			sourceSpan: NewParseSpan(0, len(source)).ToAbsolute(absoluteOffset),
		},
		AST:    ast,
		Source: source,
		Errors: errors,
	}
}

// Visit delegates to the wrapped AST
func (a *ASTWithSource) Visit(visitor AstVisitor, context interface{}) interface{} {
	return a.AST.Visit(visitor, context)
}

// AstVisitor is the visitor interface over expression AST nodes
type AstVisitor interface {
	VisitImplicitReceiver(ast *ImplicitReceiver, context interface{}) interface{}
	VisitPropertyRead(ast *PropertyRead, context interface{}) interface{}
	VisitKeyedRead(ast *KeyedRead, context interface{}) interface{}
	VisitCall(ast *Call, context interface{}) interface{}
	VisitLiteralPrimitive(ast *LiteralPrimitive, context interface{}) interface{}
	VisitLiteralArray(ast *LiteralArray, context interface{}) interface{}
	VisitLiteralMap(ast *LiteralMap, context interface{}) interface{}
	VisitBinary(ast *Binary, context interface{}) interface{}
	VisitUnary(ast *Unary, context interface{}) interface{}
	VisitConditional(ast *Conditional, context interface{}) interface{}
}

// RecursiveAstVisitor visits every node of an expression AST
type RecursiveAstVisitor struct{}

// Visit dispatches to the node's own Visit method
func (v *RecursiveAstVisitor) Visit(ast AST, context interface{}) interface{} {
	// The node's Visit calls back into the concrete visitor, which may be an
	// embedding type rather than this one.
	return ast.Visit(v, context)
}

// VisitAllAsts visits a list of AST nodes
func (v *RecursiveAstVisitor) VisitAllAsts(asts []AST, context interface{}) {
	for _, ast := range asts {
		ast.Visit(v, context)
	}
}

// VisitImplicitReceiver visits an implicit receiver (no-op)
func (v *RecursiveAstVisitor) VisitImplicitReceiver(ast *ImplicitReceiver, context interface{}) interface{} {
	return nil
}

// VisitPropertyRead visits a property read
func (v *RecursiveAstVisitor) VisitPropertyRead(ast *PropertyRead, context interface{}) interface{} {
	ast.Receiver.Visit(v, context)
	return nil
}

// VisitKeyedRead visits a keyed read
func (v *RecursiveAstVisitor) VisitKeyedRead(ast *KeyedRead, context interface{}) interface{} {
	ast.Receiver.Visit(v, context)
	ast.Key.Visit(v, context)
	return nil
}

// VisitCall visits a call
func (v *RecursiveAstVisitor) VisitCall(ast *Call, context interface{}) interface{} {
	ast.Receiver.Visit(v, context)
	v.VisitAllAsts(ast.Args, context)
	return nil
}

// VisitLiteralPrimitive visits a literal primitive (no-op)
func (v *RecursiveAstVisitor) VisitLiteralPrimitive(ast *LiteralPrimitive, context interface{}) interface{} {
	return nil
}

// VisitLiteralArray visits a literal array
func (v *RecursiveAstVisitor) VisitLiteralArray(ast *LiteralArray, context interface{}) interface{} {
	v.VisitAllAsts(ast.Expressions, context)
	return nil
}

// VisitLiteralMap visits a literal map
func (v *RecursiveAstVisitor) VisitLiteralMap(ast *LiteralMap, context interface{}) interface{} {
	v.VisitAllAsts(ast.Values, context)
	return nil
}

// VisitBinary visits a binary operation
func (v *RecursiveAstVisitor) VisitBinary(ast *Binary, context interface{}) interface{} {
	ast.Left.Visit(v, context)
	ast.Right.Visit(v, context)
	return nil
}

// VisitUnary visits a unary operation
func (v *RecursiveAstVisitor) VisitUnary(ast *Unary, context interface{}) interface{} {
	ast.Expr.Visit(v, context)
	return nil
}

// VisitConditional visits a conditional
func (v *RecursiveAstVisitor) VisitConditional(ast *Conditional, context interface{}) interface{} {
	ast.Condition.Visit(v, context)
	ast.TrueExp.Visit(v, context)
	ast.FalseExp.Visit(v, context)
	return nil
}

// ParserError is a syntax error produced by the expression parser. It carries
// the column at which the error occurred so that callers can forward the
// location verbatim.
type ParserError struct {
	Message string
	Input   string
	Column  int
}

// NewParserError creates a new ParserError
func NewParserError(message, input string, column int) *ParserError {
	return &ParserError{
		Message: fmt.Sprintf("Parser Error: %s at column %d in [%s]", message, column, input),
		Input:   input,
		Column:  column,
	}
}

// Error implements the error interface
func (e *ParserError) Error() string {
	return e.Message
}
