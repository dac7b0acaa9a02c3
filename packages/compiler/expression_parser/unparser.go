package expression_parser

import (
	"fmt"
	"strings"
)

// Unparser renders an expression AST back into source text. The output is
// normalized rather than byte-identical to the input: string literals always
// use double quotes and property reads on the implicit receiver render
// without a receiver prefix.
type Unparser struct {
	expression strings.Builder
}

// NewUnparser creates a new Unparser
func NewUnparser() *Unparser {
	return &Unparser{}
}

// Unparse renders an expression AST into a string
func Unparse(ast AST) string {
	u := NewUnparser()
	u.visit(ast)
	return u.expression.String()
}

func (u *Unparser) visit(ast AST) {
	if ast == nil {
		return
	}
	ast.Visit(u, nil)
}

// VisitImplicitReceiver renders nothing for the implicit receiver
func (u *Unparser) VisitImplicitReceiver(ast *ImplicitReceiver, context interface{}) interface{} {
	return nil
}

// VisitPropertyRead renders a property read
func (u *Unparser) VisitPropertyRead(ast *PropertyRead, context interface{}) interface{} {
	if _, implicit := ast.Receiver.(*ImplicitReceiver); !implicit {
		u.visit(ast.Receiver)
		u.expression.WriteString(".")
	}
	u.expression.WriteString(ast.Name)
	return nil
}

// VisitKeyedRead renders a keyed read
func (u *Unparser) VisitKeyedRead(ast *KeyedRead, context interface{}) interface{} {
	u.visit(ast.Receiver)
	u.expression.WriteString("[")
	u.visit(ast.Key)
	u.expression.WriteString("]")
	return nil
}

// VisitCall renders a call
func (u *Unparser) VisitCall(ast *Call, context interface{}) interface{} {
	u.visit(ast.Receiver)
	u.expression.WriteString("(")
	for i, arg := range ast.Args {
		if i > 0 {
			u.expression.WriteString(", ")
		}
		u.visit(arg)
	}
	u.expression.WriteString(")")
	return nil
}

// VisitLiteralPrimitive renders a literal primitive
func (u *Unparser) VisitLiteralPrimitive(ast *LiteralPrimitive, context interface{}) interface{} {
	switch value := ast.Value.(type) {
	case string:
		u.expression.WriteString(fmt.Sprintf("%q", value))
	case nil:
		u.expression.WriteString("null")
	case float64:
		u.expression.WriteString(strings.TrimSuffix(fmt.Sprintf("%g", value), ".0"))
	default:
		u.expression.WriteString(fmt.Sprintf("%v", value))
	}
	return nil
}

// VisitLiteralArray renders an array literal
func (u *Unparser) VisitLiteralArray(ast *LiteralArray, context interface{}) interface{} {
	u.expression.WriteString("[")
	for i, expr := range ast.Expressions {
		if i > 0 {
			u.expression.WriteString(", ")
		}
		u.visit(expr)
	}
	u.expression.WriteString("]")
	return nil
}

// VisitLiteralMap renders an object literal
func (u *Unparser) VisitLiteralMap(ast *LiteralMap, context interface{}) interface{} {
	u.expression.WriteString("{")
	for i, key := range ast.Keys {
		if i > 0 {
			u.expression.WriteString(", ")
		}
		if key.Quoted {
			u.expression.WriteString(fmt.Sprintf("%q: ", key.Key))
		} else {
			u.expression.WriteString(key.Key + ": ")
		}
		u.visit(ast.Values[i])
	}
	u.expression.WriteString("}")
	return nil
}

// VisitBinary renders a binary operation
func (u *Unparser) VisitBinary(ast *Binary, context interface{}) interface{} {
	u.visit(ast.Left)
	u.expression.WriteString(" " + ast.Operation + " ")
	u.visit(ast.Right)
	return nil
}

// VisitUnary renders a unary operation
func (u *Unparser) VisitUnary(ast *Unary, context interface{}) interface{} {
	u.expression.WriteString(ast.Operator)
	u.visit(ast.Expr)
	return nil
}

// VisitConditional renders a conditional
func (u *Unparser) VisitConditional(ast *Conditional, context interface{}) interface{} {
	u.visit(ast.Condition)
	u.expression.WriteString(" ? ")
	u.visit(ast.TrueExp)
	u.expression.WriteString(" : ")
	u.visit(ast.FalseExp)
	return nil
}
