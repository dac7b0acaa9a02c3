package ir

// SemanticVariable describes a variable that a VariableOp declares. The
// variable starts out unnamed; the naming phase assigns its final name.
type SemanticVariable interface {
	GetKind() SemanticVariableKind
	GetName() *string
	SetName(name string)
}

// SemanticVariableBase carries the kind and assigned name shared by every
// semantic variable
type SemanticVariableBase struct {
	Kind SemanticVariableKind
	Name *string
}

// GetKind returns the variable kind
func (s *SemanticVariableBase) GetKind() SemanticVariableKind {
	return s.Kind
}

// GetName returns the variable name, or nil when not yet named
func (s *SemanticVariableBase) GetName() *string {
	return s.Name
}

// SetName sets the variable name
func (s *SemanticVariableBase) SetName(name string) {
	s.Name = &name
}

// ContextVariable represents the component context of a particular view
type ContextVariable struct {
	SemanticVariableBase
	View XrefId
}

// NewContextVariable creates a new ContextVariable
func NewContextVariable(view XrefId) *ContextVariable {
	return &ContextVariable{
		SemanticVariableBase: SemanticVariableBase{Kind: SemanticVariableKindContext},
		View:                 view,
	}
}

// IdentifierVariable represents a specific identifier within a template,
// such as a loop item or an alias
type IdentifierVariable struct {
	SemanticVariableBase
	Identifier string
	Local      bool
}

// NewIdentifierVariable creates a new IdentifierVariable
func NewIdentifierVariable(identifier string, local bool) *IdentifierVariable {
	return &IdentifierVariable{
		SemanticVariableBase: SemanticVariableBase{Kind: SemanticVariableKindIdentifier},
		Identifier:           identifier,
		Local:                local,
	}
}

// SavedViewVariable represents a view context saved so that a listener can
// restore it before running its handler
type SavedViewVariable struct {
	SemanticVariableBase
	View XrefId
}

// NewSavedViewVariable creates a new SavedViewVariable
func NewSavedViewVariable(view XrefId) *SavedViewVariable {
	return &SavedViewVariable{
		SemanticVariableBase: SemanticVariableBase{Kind: SemanticVariableKindSavedView},
		View:                 view,
	}
}

// AliasVariable is a variable whose expression will be inlined at every
// location it is used
type AliasVariable struct {
	SemanticVariableBase
	Identifier string
	Expression Expression
}

// NewAliasVariable creates a new AliasVariable
func NewAliasVariable(identifier string, expression Expression) *AliasVariable {
	return &AliasVariable{
		SemanticVariableBase: SemanticVariableBase{Kind: SemanticVariableKindAlias},
		Identifier:           identifier,
		Expression:           expression,
	}
}
