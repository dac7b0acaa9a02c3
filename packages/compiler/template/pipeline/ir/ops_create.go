package ir

import (
	"tplc-go/packages/compiler/util"
)

// ElementOp creates an element that may receive children
type ElementOp struct {
	OpBase
	Xref       XrefId
	Tag        string
	Handle     *SlotHandle
	SourceSpan *util.ParseSourceSpan
}

// NewElementOp creates a new ElementOp
func NewElementOp(xref XrefId, tag string, sourceSpan *util.ParseSourceSpan) *ElementOp {
	return &ElementOp{
		Xref:       xref,
		Tag:        tag,
		Handle:     NewSlotHandle(),
		SourceSpan: sourceSpan,
	}
}

// GetKind returns the operation kind
func (e *ElementOp) GetKind() OpKind {
	return OpKindElement
}

// TextOp creates a static text node
type TextOp struct {
	OpBase
	Xref         XrefId
	InitialValue string
	Handle       *SlotHandle
	SourceSpan   *util.ParseSourceSpan
}

// NewTextOp creates a new TextOp
func NewTextOp(xref XrefId, initialValue string, sourceSpan *util.ParseSourceSpan) *TextOp {
	return &TextOp{
		Xref:         xref,
		InitialValue: initialValue,
		Handle:       NewSlotHandle(),
		SourceSpan:   sourceSpan,
	}
}

// GetKind returns the operation kind
func (t *TextOp) GetKind() OpKind {
	return OpKindText
}

// TemplateOp declares an embedded view. Xref identifies the child view's
// compilation unit within the job.
type TemplateOp struct {
	OpBase
	Xref               XrefId
	Tag                *string
	Handle             *SlotHandle
	FunctionNameSuffix string
	SourceSpan         *util.ParseSourceSpan
}

// NewTemplateOp creates a new TemplateOp
func NewTemplateOp(xref XrefId, tag *string, functionNameSuffix string, sourceSpan *util.ParseSourceSpan) *TemplateOp {
	return &TemplateOp{
		Xref:               xref,
		Tag:                tag,
		Handle:             NewSlotHandle(),
		FunctionNameSuffix: functionNameSuffix,
		SourceSpan:         sourceSpan,
	}
}

// GetKind returns the operation kind
func (t *TemplateOp) GetKind() OpKind {
	return OpKindTemplate
}

// RepeaterCreateOp declares the views of a for loop. Xref identifies the
// primary view; EmptyView, when set, identifies the view rendered while the
// iterated collection is empty.
type RepeaterCreateOp struct {
	OpBase
	Xref               XrefId
	EmptyView          *XrefId
	Tag                *string
	Handle             *SlotHandle
	Track              Expression
	FunctionNameSuffix string
	SourceSpan         *util.ParseSourceSpan
}

// NewRepeaterCreateOp creates a new RepeaterCreateOp
func NewRepeaterCreateOp(
	primaryView XrefId,
	emptyView *XrefId,
	tag *string,
	track Expression,
	sourceSpan *util.ParseSourceSpan,
) *RepeaterCreateOp {
	return &RepeaterCreateOp{
		Xref:               primaryView,
		EmptyView:          emptyView,
		Tag:                tag,
		Handle:             NewSlotHandle(),
		Track:              track,
		FunctionNameSuffix: "For",
		SourceSpan:         sourceSpan,
	}
}

// GetKind returns the operation kind
func (r *RepeaterCreateOp) GetKind() OpKind {
	return OpKindRepeaterCreate
}

// ListenerOp declares an event listener on an element or on the host
// element of a host binding unit. The handler function stays unnamed until
// the naming phase runs.
type ListenerOp struct {
	OpBase
	Target              XrefId
	TargetSlot          *SlotHandle
	Name                string
	Tag                 *string
	Handler             Expression
	HandlerFnName       *string
	HostListener        bool
	IsAnimationListener bool
	AnimationPhase      *string
	EventTarget         *string
	SourceSpan          *util.ParseSourceSpan
}

// NewListenerOp creates a new ListenerOp
func NewListenerOp(
	target XrefId,
	targetSlot *SlotHandle,
	name string,
	tag *string,
	handler Expression,
	animationPhase *string,
	eventTarget *string,
	hostListener bool,
	sourceSpan *util.ParseSourceSpan,
) *ListenerOp {
	return &ListenerOp{
		Target:              target,
		TargetSlot:          targetSlot,
		Name:                name,
		Tag:                 tag,
		Handler:             handler,
		HostListener:        hostListener,
		IsAnimationListener: animationPhase != nil,
		AnimationPhase:      animationPhase,
		EventTarget:         eventTarget,
		SourceSpan:          sourceSpan,
	}
}

// GetKind returns the operation kind
func (l *ListenerOp) GetKind() OpKind {
	return OpKindListener
}
