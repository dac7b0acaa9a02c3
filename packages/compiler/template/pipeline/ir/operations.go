package ir

// XrefId is an identifier cross-referencing IR structures within a
// compilation job. Elements, embedded views and declared variables each get
// their own id, and operations refer to each other exclusively through these
// ids.
type XrefId int

// SlotHandle tracks the assignment of a data slot to a creation operation.
// The slot stays unassigned until the slot allocation phase has run.
type SlotHandle struct {
	Slot *int
}

// NewSlotHandle creates a new unassigned SlotHandle
func NewSlotHandle() *SlotHandle {
	return &SlotHandle{}
}

// AssignSlot assigns a slot index to the handle
func (s *SlotHandle) AssignSlot(slot int) {
	s.Slot = &slot
}

// Op is the base interface for semantic operations performed within a
// template. Operations are owned by exactly one OpList at a time.
type Op interface {
	GetKind() OpKind
	GetPrev() Op
	SetPrev(op Op)
	GetNext() Op
	SetNext(op Op)
	GetListId() *int
	SetListId(id *int)
	// Next is a convenience method that calls GetNext()
	Next() Op
}

// OpBase carries the linked-list bookkeeping shared by every operation
type OpBase struct {
	prev   Op
	next   Op
	listId *int
}

// GetPrev returns the previous operation
func (o *OpBase) GetPrev() Op {
	return o.prev
}

// SetPrev sets the previous operation
func (o *OpBase) SetPrev(op Op) {
	o.prev = op
}

// GetNext returns the next operation
func (o *OpBase) GetNext() Op {
	return o.next
}

// Next is a convenience method that calls GetNext()
func (o *OpBase) Next() Op {
	return o.GetNext()
}

// SetNext sets the next operation
func (o *OpBase) SetNext(op Op) {
	o.next = op
}

// GetListId returns the id of the owning list, or nil when unowned
func (o *OpBase) GetListId() *int {
	return o.listId
}

// SetListId sets the id of the owning list
func (o *OpBase) SetListId(id *int) {
	o.listId = id
}

// ListEndOp marks the head and tail of an OpList. It never appears in the
// middle of a list.
type ListEndOp struct {
	OpBase
}

// GetKind returns the operation kind
func (l *ListEndOp) GetKind() OpKind {
	return OpKindListEnd
}

var nextListId = 0

// OpList is a doubly-linked list of operations, bracketed by sentinel
// ListEndOp nodes so that insertion and removal never have to special-case
// the ends
type OpList struct {
	listId int
	head   Op
	tail   Op
}

// NewOpList creates a new empty OpList
func NewOpList() *OpList {
	listId := nextListId
	nextListId++
	head := &ListEndOp{}
	tail := &ListEndOp{}
	head.SetListId(&listId)
	tail.SetListId(&listId)
	head.SetNext(tail)
	tail.SetPrev(head)
	return &OpList{
		listId: listId,
		head:   head,
		tail:   tail,
	}
}

// Head returns the head sentinel of the list
func (l *OpList) Head() Op {
	return l.head
}

// Tail returns the tail sentinel of the list
func (l *OpList) Tail() Op {
	return l.tail
}

func (l *OpList) assertNewOp(op Op) {
	if op.GetKind() == OpKindListEnd {
		panic("AssertionError: cannot insert a list end node")
	}
	if op.GetListId() != nil {
		panic("AssertionError: operation is already owned by a list")
	}
}

func (l *OpList) assertOwnedOp(op Op) {
	if op.GetListId() == nil || *op.GetListId() != l.listId {
		panic("AssertionError: operation is not owned by this list")
	}
}

// Push appends an operation to the end of the list
func (l *OpList) Push(op Op) {
	l.assertNewOp(op)
	listId := l.listId
	op.SetListId(&listId)

	prev := l.tail.GetPrev()
	prev.SetNext(op)
	op.SetPrev(prev)
	op.SetNext(l.tail)
	l.tail.SetPrev(op)
}

// Prepend inserts operations at the start of the list, preserving their order
func (l *OpList) Prepend(ops []Op) {
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		l.assertNewOp(op)
		listId := l.listId
		op.SetListId(&listId)

		next := l.head.GetNext()
		l.head.SetNext(op)
		op.SetPrev(l.head)
		op.SetNext(next)
		next.SetPrev(op)
	}
}

// InsertBefore inserts newOp immediately before op
func (l *OpList) InsertBefore(op Op, newOp Op) {
	l.assertNewOp(newOp)
	l.assertOwnedOp(op)
	listId := l.listId
	newOp.SetListId(&listId)

	prev := op.GetPrev()
	prev.SetNext(newOp)
	newOp.SetPrev(prev)
	newOp.SetNext(op)
	op.SetPrev(newOp)
}

// InsertAfter inserts newOp immediately after op
func (l *OpList) InsertAfter(op Op, newOp Op) {
	l.assertNewOp(newOp)
	l.assertOwnedOp(op)
	listId := l.listId
	newOp.SetListId(&listId)

	next := op.GetNext()
	op.SetNext(newOp)
	newOp.SetPrev(op)
	newOp.SetNext(next)
	next.SetPrev(newOp)
}

// Remove detaches an operation from the list
func (l *OpList) Remove(op Op) {
	if op.GetKind() == OpKindListEnd {
		panic("AssertionError: cannot remove a list end node")
	}
	l.assertOwnedOp(op)

	prev := op.GetPrev()
	next := op.GetNext()
	prev.SetNext(next)
	next.SetPrev(prev)
	op.SetPrev(nil)
	op.SetNext(nil)
	op.SetListId(nil)
}

// Replace swaps oldOp for newOp in place
func (l *OpList) Replace(oldOp Op, newOp Op) {
	l.assertNewOp(newOp)
	if oldOp.GetKind() == OpKindListEnd {
		panic("AssertionError: cannot replace a list end node")
	}
	l.assertOwnedOp(oldOp)
	listId := l.listId
	newOp.SetListId(&listId)

	prev := oldOp.GetPrev()
	next := oldOp.GetNext()
	prev.SetNext(newOp)
	newOp.SetPrev(prev)
	newOp.SetNext(next)
	next.SetPrev(newOp)
	oldOp.SetPrev(nil)
	oldOp.SetNext(nil)
	oldOp.SetListId(nil)
}
