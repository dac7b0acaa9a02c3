package ir

// Expression is the interface implemented by every logical IR expression
type Expression interface {
	GetKind() ExpressionKind
	IsEquivalent(other Expression) bool
	// TransformInternalExpressions runs the transformer against any nested
	// expressions
	TransformInternalExpressions(transform ExpressionTransform, flags VisitorContextFlag)
}

// ExpressionTransform converts one expression into another while walking the
// expressions embedded in an operation
type ExpressionTransform func(expr Expression, flags VisitorContextFlag) Expression

// VisitorContextFlag qualifies where in an operation an expression was found
type VisitorContextFlag int

const (
	// VisitorContextFlagNone carries no qualification
	VisitorContextFlagNone VisitorContextFlag = 0
	// VisitorContextFlagInChildOperation marks expressions found inside a
	// child operation, such as a listener handler
	VisitorContextFlagInChildOperation VisitorContextFlag = 1 << 0
)

// ExpressionBase carries the kind shared by every expression
type ExpressionBase struct {
	Kind ExpressionKind
}

// GetKind returns the expression kind
func (e *ExpressionBase) GetKind() ExpressionKind {
	return e.Kind
}

// TransformInternalExpressions is a no-op for leaf expressions
func (e *ExpressionBase) TransformInternalExpressions(transform ExpressionTransform, flags VisitorContextFlag) {
}

// LexicalReadExpr is a read of a name from the lexical scope of a view
type LexicalReadExpr struct {
	ExpressionBase
	Name string
}

// NewLexicalReadExpr creates a new LexicalReadExpr
func NewLexicalReadExpr(name string) *LexicalReadExpr {
	return &LexicalReadExpr{
		ExpressionBase: ExpressionBase{Kind: ExpressionKindLexicalRead},
		Name:           name,
	}
}

// IsEquivalent checks if two expressions are equivalent
func (l *LexicalReadExpr) IsEquivalent(other Expression) bool {
	otherLex, ok := other.(*LexicalReadExpr)
	return ok && l.Name == otherLex.Name
}

// ContextExpr is a reference to the context of a particular view
type ContextExpr struct {
	ExpressionBase
	View XrefId
}

// NewContextExpr creates a new ContextExpr
func NewContextExpr(view XrefId) *ContextExpr {
	return &ContextExpr{
		ExpressionBase: ExpressionBase{Kind: ExpressionKindContext},
		View:           view,
	}
}

// IsEquivalent checks if two expressions are equivalent
func (c *ContextExpr) IsEquivalent(other Expression) bool {
	otherCtx, ok := other.(*ContextExpr)
	return ok && c.View == otherCtx.View
}

// ReadVariableExpr is a read of a variable declared by a VariableOp. The
// read stays unnamed until the naming phase resolves it against the declared
// variable's assigned name.
type ReadVariableExpr struct {
	ExpressionBase
	Xref XrefId
	Name *string
}

// NewReadVariableExpr creates a new ReadVariableExpr
func NewReadVariableExpr(xref XrefId) *ReadVariableExpr {
	return &ReadVariableExpr{
		ExpressionBase: ExpressionBase{Kind: ExpressionKindReadVariable},
		Xref:           xref,
	}
}

// IsEquivalent checks if two expressions are equivalent
func (r *ReadVariableExpr) IsEquivalent(other Expression) bool {
	otherRead, ok := other.(*ReadVariableExpr)
	return ok && r.Xref == otherRead.Xref
}

// LiteralExpr is a literal value
type LiteralExpr struct {
	ExpressionBase
	Value interface{}
}

// NewLiteralExpr creates a new LiteralExpr
func NewLiteralExpr(value interface{}) *LiteralExpr {
	return &LiteralExpr{
		ExpressionBase: ExpressionBase{Kind: ExpressionKindLiteral},
		Value:          value,
	}
}

// IsEquivalent checks if two expressions are equivalent
func (l *LiteralExpr) IsEquivalent(other Expression) bool {
	otherLit, ok := other.(*LiteralExpr)
	return ok && l.Value == otherLit.Value
}

// InterpolationExpr is an alternating sequence of static strings and
// expressions. There is always one more string than expressions.
type InterpolationExpr struct {
	ExpressionBase
	Strings     []string
	Expressions []Expression
}

// NewInterpolationExpr creates a new InterpolationExpr
func NewInterpolationExpr(strings []string, expressions []Expression) *InterpolationExpr {
	return &InterpolationExpr{
		ExpressionBase: ExpressionBase{Kind: ExpressionKindInterpolation},
		Strings:        strings,
		Expressions:    expressions,
	}
}

// IsEquivalent checks if two expressions are equivalent
func (i *InterpolationExpr) IsEquivalent(other Expression) bool {
	otherInterp, ok := other.(*InterpolationExpr)
	if !ok || len(i.Strings) != len(otherInterp.Strings) || len(i.Expressions) != len(otherInterp.Expressions) {
		return false
	}
	for idx, s := range i.Strings {
		if s != otherInterp.Strings[idx] {
			return false
		}
	}
	for idx, e := range i.Expressions {
		if !e.IsEquivalent(otherInterp.Expressions[idx]) {
			return false
		}
	}
	return true
}

// TransformInternalExpressions transforms the nested expressions
func (i *InterpolationExpr) TransformInternalExpressions(transform ExpressionTransform, flags VisitorContextFlag) {
	for idx, expr := range i.Expressions {
		i.Expressions[idx] = TransformExpression(expr, transform, flags)
	}
}

// TransformExpression transforms a single expression and its nested
// expressions, innermost first
func TransformExpression(expr Expression, transform ExpressionTransform, flags VisitorContextFlag) Expression {
	if expr == nil {
		return nil
	}
	expr.TransformInternalExpressions(transform, flags)
	return transform(expr, flags)
}

// TransformExpressionsInOp transforms all expressions embedded in an
// operation
func TransformExpressionsInOp(op Op, transform ExpressionTransform, flags VisitorContextFlag) {
	switch o := op.(type) {
	case *VariableOp:
		o.Initializer = TransformExpression(o.Initializer, transform, flags)
		if alias, ok := o.Variable.(*AliasVariable); ok {
			alias.Expression = TransformExpression(alias.Expression, transform, flags)
		}
	case *ListenerOp:
		o.Handler = TransformExpression(o.Handler, transform, flags|VisitorContextFlagInChildOperation)
	case *PropertyOp:
		o.Expression = TransformExpression(o.Expression, transform, flags)
	case *HostPropertyOp:
		o.Expression = TransformExpression(o.Expression, transform, flags)
	case *AttributeOp:
		o.Expression = TransformExpression(o.Expression, transform, flags)
	case *StylePropOp:
		o.Expression = TransformExpression(o.Expression, transform, flags)
	case *ClassPropOp:
		o.Expression = TransformExpression(o.Expression, transform, flags)
	case *RepeaterCreateOp:
		o.Track = TransformExpression(o.Track, transform, flags)
	}
}

// VisitExpressionsInOp visits all expressions embedded in an operation
// without replacing them
func VisitExpressionsInOp(op Op, visitor func(expr Expression, flags VisitorContextFlag)) {
	TransformExpressionsInOp(op, func(expr Expression, flags VisitorContextFlag) Expression {
		visitor(expr, flags)
		return expr
	}, VisitorContextFlagNone)
}
