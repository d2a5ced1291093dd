package ir_operation

import (
	"iter"

	"gtc-go/packages/compiler/src/template/pipeline/ir"
)

// Op is the base interface for statement operations collected for a block
type Op interface {
	GetKind() ir.OpKind
	GetPrev() Op
	SetPrev(op Op)
	GetNext() Op
	SetNext(op Op)
	GetOwner() *OpList
	SetOwner(list *OpList)
	// Next is a convenience method that calls GetNext()
	Next() Op
}

// OpList is a linked list of Op nodes
type OpList struct {
	head Op
	tail Op
	size int
}

// NewOpList creates a new OpList
func NewOpList() *OpList {
	l := &OpList{}
	head := &ListEndOp{owner: l}
	tail := &ListEndOp{owner: l}
	head.SetNext(tail)
	tail.SetPrev(head)
	l.head = head
	l.tail = tail
	return l
}

// ListEndOp is a special operation type used to represent the beginning and end nodes of a linked list
type ListEndOp struct {
	prev  Op
	next  Op
	owner *OpList
}

func (l *ListEndOp) GetKind() ir.OpKind    { return ir.OpKindListEnd }
func (l *ListEndOp) GetPrev() Op           { return l.prev }
func (l *ListEndOp) SetPrev(op Op)         { l.prev = op }
func (l *ListEndOp) GetNext() Op           { return l.next }
func (l *ListEndOp) Next() Op              { return l.next }
func (l *ListEndOp) SetNext(op Op)         { l.next = op }
func (l *ListEndOp) GetOwner() *OpList     { return l.owner }
func (l *ListEndOp) SetOwner(list *OpList) { l.owner = list }

// OpBase is embedded by every concrete operation
type OpBase struct {
	prev  Op
	next  Op
	owner *OpList
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
	return o.next
}

// SetNext sets the next operation
func (o *OpBase) SetNext(op Op) {
	o.next = op
}

// GetOwner returns the list holding the operation
func (o *OpBase) GetOwner() *OpList {
	return o.owner
}

// SetOwner records the list holding the operation
func (o *OpBase) SetOwner(list *OpList) {
	o.owner = list
}

// Head returns the start sentinel of the list
func (l *OpList) Head() Op {
	return l.head
}

// Tail returns the end sentinel of the list
func (l *OpList) Tail() Op {
	return l.tail
}

// Len returns the number of operations in the list
func (l *OpList) Len() int {
	return l.size
}

// All yields the operations from head to tail. The current operation may
// be removed or replaced while iterating.
func (l *OpList) All() iter.Seq[Op] {
	return func(yield func(Op) bool) {
		for op := l.head.GetNext(); op.GetKind() != ir.OpKindListEnd; {
			next := op.GetNext()
			if !yield(op) {
				return
			}
			op = next
		}
	}
}

// Push adds an operation to the tail of the list
func (l *OpList) Push(op Op) {
	l.adopt(op)
	prev := l.tail.GetPrev()
	prev.SetNext(op)
	op.SetPrev(prev)
	op.SetNext(l.tail)
	l.tail.SetPrev(op)
}

// InsertBefore inserts a new operation before a given Op
func (l *OpList) InsertBefore(op Op, newOp Op) {
	l.checkOwned(op)
	l.adopt(newOp)
	prev := op.GetPrev()
	prev.SetNext(newOp)
	newOp.SetPrev(prev)
	newOp.SetNext(op)
	op.SetPrev(newOp)
}

// Remove removes an operation from the list
func (l *OpList) Remove(op Op) {
	if op.GetKind() == ir.OpKindListEnd {
		panic("cannot remove list end node")
	}
	l.checkOwned(op)
	prev := op.GetPrev()
	next := op.GetNext()
	prev.SetNext(next)
	next.SetPrev(prev)
	op.SetPrev(nil)
	op.SetNext(nil)
	op.SetOwner(nil)
	l.size--
}

// Replace replaces an operation with a new one
func (l *OpList) Replace(oldOp Op, newOp Op) {
	l.InsertBefore(oldOp, newOp)
	l.Remove(oldOp)
}

func (l *OpList) adopt(op Op) {
	if op.GetKind() == ir.OpKindListEnd {
		panic("cannot insert list end node")
	}
	if op.GetOwner() != nil {
		panic("operation is already owned by a list")
	}
	op.SetOwner(l)
	l.size++
}

func (l *OpList) checkOwned(op Op) {
	if op.GetOwner() != l {
		panic("operation is not owned by this list")
	}
}
