package ir

import (
	"tplc-go/packages/compiler/util"
)

// VariableOp declares a semantic variable. Xref identifies the declared
// variable; reads of it are represented by ReadVariableExpr.
type VariableOp struct {
	OpBase
	Xref        XrefId
	Variable    SemanticVariable
	Initializer Expression
}

// NewVariableOp creates a new VariableOp
func NewVariableOp(xref XrefId, variable SemanticVariable, initializer Expression) *VariableOp {
	return &VariableOp{
		Xref:        xref,
		Variable:    variable,
		Initializer: initializer,
	}
}

// GetKind returns the operation kind
func (v *VariableOp) GetKind() OpKind {
	return OpKindVariable
}

// PropertyOp binds an expression to a property of an element
type PropertyOp struct {
	OpBase
	Target      XrefId
	Name        string
	BindingKind BindingKind
	Expression  Expression
	SourceSpan  *util.ParseSourceSpan
}

// NewPropertyOp creates a new PropertyOp
func NewPropertyOp(target XrefId, name string, bindingKind BindingKind, expression Expression, sourceSpan *util.ParseSourceSpan) *PropertyOp {
	return &PropertyOp{
		Target:      target,
		Name:        name,
		BindingKind: bindingKind,
		Expression:  expression,
		SourceSpan:  sourceSpan,
	}
}

// GetKind returns the operation kind
func (p *PropertyOp) GetKind() OpKind {
	return OpKindProperty
}

// HostPropertyOp binds an expression to a property of the host element
type HostPropertyOp struct {
	OpBase
	Name        string
	BindingKind BindingKind
	Expression  Expression
	SourceSpan  *util.ParseSourceSpan
}

// NewHostPropertyOp creates a new HostPropertyOp
func NewHostPropertyOp(name string, bindingKind BindingKind, expression Expression, sourceSpan *util.ParseSourceSpan) *HostPropertyOp {
	return &HostPropertyOp{
		Name:        name,
		BindingKind: bindingKind,
		Expression:  expression,
		SourceSpan:  sourceSpan,
	}
}

// GetKind returns the operation kind
func (h *HostPropertyOp) GetKind() OpKind {
	return OpKindHostProperty
}

// AttributeOp binds an expression to an attribute of an element
type AttributeOp struct {
	OpBase
	Target     XrefId
	Name       string
	Expression Expression
	SourceSpan *util.ParseSourceSpan
}

// NewAttributeOp creates a new AttributeOp
func NewAttributeOp(target XrefId, name string, expression Expression, sourceSpan *util.ParseSourceSpan) *AttributeOp {
	return &AttributeOp{
		Target:     target,
		Name:       name,
		Expression: expression,
		SourceSpan: sourceSpan,
	}
}

// GetKind returns the operation kind
func (a *AttributeOp) GetKind() OpKind {
	return OpKindAttribute
}

// StylePropOp binds an expression to a single style property
type StylePropOp struct {
	OpBase
	Target     XrefId
	Name       string
	Expression Expression
	Unit       *string
	SourceSpan *util.ParseSourceSpan
}

// NewStylePropOp creates a new StylePropOp
func NewStylePropOp(target XrefId, name string, expression Expression, unit *string, sourceSpan *util.ParseSourceSpan) *StylePropOp {
	return &StylePropOp{
		Target:     target,
		Name:       name,
		Expression: expression,
		Unit:       unit,
		SourceSpan: sourceSpan,
	}
}

// GetKind returns the operation kind
func (s *StylePropOp) GetKind() OpKind {
	return OpKindStyleProp
}

// ClassPropOp binds an expression to a single CSS class
type ClassPropOp struct {
	OpBase
	Target     XrefId
	Name       string
	Expression Expression
	SourceSpan *util.ParseSourceSpan
}

// NewClassPropOp creates a new ClassPropOp
func NewClassPropOp(target XrefId, name string, expression Expression, sourceSpan *util.ParseSourceSpan) *ClassPropOp {
	return &ClassPropOp{
		Target:     target,
		Name:       name,
		Expression: expression,
		SourceSpan: sourceSpan,
	}
}

// GetKind returns the operation kind
func (c *ClassPropOp) GetKind() OpKind {
	return OpKindClassProp
}
