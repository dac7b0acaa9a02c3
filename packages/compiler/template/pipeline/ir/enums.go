package ir

// OpKind distinguishes different kinds of IR operations
type OpKind int

const (
	// OpKindListEnd is a special operation used to mark the head and tail
	// nodes of an OpList
	OpKindListEnd OpKind = iota
	// OpKindElement creates an element with children
	OpKindElement
	// OpKindText creates a static text node
	OpKindText
	// OpKindTemplate creates an embedded view declaration
	OpKindTemplate
	// OpKindRepeaterCreate creates a repeater (a for loop view with an
	// optional empty view)
	OpKindRepeaterCreate
	// OpKindListener declares an event listener on an element
	OpKindListener
	// OpKindVariable declares a semantic variable
	OpKindVariable
	// OpKindProperty binds an expression to a property of an element
	OpKindProperty
	// OpKindHostProperty binds an expression to a property of a host element
	OpKindHostProperty
	// OpKindAttribute binds an expression to an attribute of an element
	OpKindAttribute
	// OpKindStyleProp binds an expression to a single style property
	OpKindStyleProp
	// OpKindClassProp binds an expression to a single CSS class
	OpKindClassProp
)

// ExpressionKind distinguishes different kinds of IR expressions
type ExpressionKind int

const (
	// ExpressionKindLexicalRead is a read of a variable in a lexical scope
	ExpressionKindLexicalRead ExpressionKind = iota
	// ExpressionKindContext is a reference to the current view context
	ExpressionKindContext
	// ExpressionKindReadVariable is a read of a variable declared in a
	// VariableOp
	ExpressionKindReadVariable
	// ExpressionKindLiteral is a literal value
	ExpressionKindLiteral
	// ExpressionKindInterpolation is an alternating sequence of static
	// strings and expressions
	ExpressionKindInterpolation
)

// SemanticVariableKind distinguishes the kinds of semantic variables
type SemanticVariableKind int

const (
	// SemanticVariableKindContext represents the context of a particular view
	SemanticVariableKindContext SemanticVariableKind = iota
	// SemanticVariableKindIdentifier represents a specific identifier within
	// a template
	SemanticVariableKindIdentifier
	// SemanticVariableKindSavedView represents a saved view context
	SemanticVariableKindSavedView
	// SemanticVariableKindAlias is a variable that will be inlined at every
	// location it is used
	SemanticVariableKindAlias
)

// CompatibilityMode selects whether the output of the pipeline must stay
// compatible with the naming scheme of the previous generation of the
// compiler
type CompatibilityMode int

const (
	// CompatibilityModeNormal uses the current naming scheme
	CompatibilityModeNormal CompatibilityMode = iota
	// CompatibilityModeTemplateDefinitionBuilder reproduces the legacy
	// naming scheme
	CompatibilityModeTemplateDefinitionBuilder
)

// BindingKind distinguishes the different kinds of bindings a property
// operation may represent
type BindingKind int

const (
	// BindingKindProperty is a binding to a native DOM property
	BindingKindProperty BindingKind = iota
	// BindingKindAttribute is a binding to an element attribute
	BindingKindAttribute
	// BindingKindClassName is a binding to a single CSS class
	BindingKindClassName
	// BindingKindStyleProperty is a binding to a single style property
	BindingKindStyleProperty
	// BindingKindAnimation is a binding to an animation trigger
	BindingKindAnimation
)
