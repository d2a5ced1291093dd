package scope

import (
	"slices"
	"strings"
)

// Scope is the symbol table active for one Program or Element. Child scopes
// delegate slot allocation to the Root so that one compiled program has a
// single flat counter.
type Scope interface {
	// Parent returns the enclosing scope, or nil for the Root.
	Parent() Scope
	// Root returns the Root ancestor.
	Root() *RootScope
	// Local looks up a block parameter visible from this scope.
	Local(name string) (int, bool)
	// Locals returns the slots of the block parameters declared by this
	// scope, in declaration order.
	Locals() []int
	// Child creates a nested scope declaring locals.
	Child(locals []string) Scope
}

// RootScope belongs to the template root. Slot 0 is reserved for `this`.
type RootScope struct {
	size    int
	symbols []string
	named   map[string]int
	blocks  map[string]int
	HasEval bool
}

// NewRootScope creates an empty root scope.
func NewRootScope() *RootScope {
	return &RootScope{
		size:   1,
		named:  map[string]int{},
		blocks: map[string]int{},
	}
}

func (r *RootScope) Parent() Scope                 { return nil }
func (r *RootScope) Root() *RootScope              { return r }
func (r *RootScope) Local(name string) (int, bool) { return 0, false }
func (r *RootScope) Locals() []int                 { return nil }

func (r *RootScope) Child(locals []string) Scope {
	return newChildScope(r, locals)
}

// Size is the number of slots in use, counting `this`.
func (r *RootScope) Size() int {
	return r.size
}

// Symbols returns the names of slots 1..Size-1 in allocation order.
func (r *RootScope) Symbols() []string {
	return slices.Clone(r.symbols)
}

// Named returns the slot for the named argument `@name`, allocating it on
// first use.
func (r *RootScope) Named(name string) int {
	if !strings.HasPrefix(name, "@") {
		name = "@" + name
	}
	if slot, ok := r.named[name]; ok {
		return slot
	}
	slot := r.allocate(name)
	r.named[name] = slot
	return slot
}

// Block returns the slot for the named block `&name`, allocating it on
// first use. The inverse block is canonically called `else`.
func (r *RootScope) Block(name string) int {
	name = "&" + CanonicalBlockName(name)
	if slot, ok := r.blocks[name]; ok {
		return slot
	}
	slot := r.allocate(name)
	r.blocks[name] = slot
	return slot
}

// NamedSlots returns the slots of every named argument and block allocated
// so far, ascending.
func (r *RootScope) NamedSlots() []int {
	slots := make([]int, 0, len(r.named)+len(r.blocks))
	for _, slot := range r.named {
		slots = append(slots, slot)
	}
	for _, slot := range r.blocks {
		slots = append(slots, slot)
	}
	slices.Sort(slots)
	return slots
}

func (r *RootScope) allocate(symbol string) int {
	slot := r.size
	r.size++
	r.symbols = append(r.symbols, symbol)
	return slot
}

// CanonicalBlockName maps the block name used in templates to the name the
// block is stored under.
func CanonicalBlockName(name string) string {
	if name == "inverse" {
		return "else"
	}
	return name
}

// ChildScope is introduced by a block body or an element that declares
// block parameters.
type ChildScope struct {
	parent Scope
	root   *RootScope
	locals []int
	slots  map[string]int
}

func newChildScope(parent Scope, locals []string) *ChildScope {
	c := &ChildScope{
		parent: parent,
		root:   parent.Root(),
		slots:  make(map[string]int, len(locals)),
	}
	// A repeated name gets its own slot; the last declaration wins lookups.
	for _, name := range locals {
		slot := c.root.allocate(name)
		c.locals = append(c.locals, slot)
		c.slots[name] = slot
	}
	return c
}

func (c *ChildScope) Parent() Scope    { return c.parent }
func (c *ChildScope) Root() *RootScope { return c.root }

func (c *ChildScope) Local(name string) (int, bool) {
	if slot, ok := c.slots[name]; ok {
		return slot, true
	}
	return c.parent.Local(name)
}

func (c *ChildScope) Locals() []int {
	return slices.Clone(c.locals)
}

func (c *ChildScope) Child(locals []string) Scope {
	return newChildScope(c, locals)
}

// Visible returns the slots of every block parameter visible from scope,
// ascending.
func Visible(scope Scope) []int {
	var slots []int
	for s := scope; s != nil; s = s.Parent() {
		slots = append(slots, s.Locals()...)
	}
	slices.Sort(slots)
	return slots
}
