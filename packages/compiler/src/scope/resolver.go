package scope

import (
	"fmt"
	"strings"

	"gtc-go/packages/compiler/src/syntax"
	"gtc-go/packages/compiler/src/util"
)

// Kind classifies how a path reference was resolved
type Kind int

const (
	// Unresolved is a free identifier left to the runtime's fallback lookup.
	Unresolved Kind = iota
	// Local is a block parameter.
	Local
	// Named is an `@name` argument.
	Named
	// This is a path headed by `this`.
	This
)

func (k Kind) String() string {
	switch k {
	case Unresolved:
		return "Unresolved"
	case Local:
		return "Local"
	case Named:
		return "Named"
	case This:
		return "This"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Resolution is the classified form of one path reference. Slot is 0 for
// This and unused for Unresolved. Name is the head as written, `@` included
// for named arguments.
type Resolution struct {
	Kind Kind
	Slot int
	Name string
	Tail []string
}

// Table holds everything the resolver learned about one template
type Table struct {
	Root         *RootScope
	scopes       map[syntax.Node]Scope
	paths        map[*syntax.Path]Resolution
	tags         map[*syntax.Element]Resolution
	blockSymbols map[syntax.Node]int
	evalInfo     map[syntax.Node][]int
}

func newTable(root *RootScope) *Table {
	return &Table{
		Root:         root,
		scopes:       map[syntax.Node]Scope{},
		paths:        map[*syntax.Path]Resolution{},
		tags:         map[*syntax.Element]Resolution{},
		blockSymbols: map[syntax.Node]int{},
		evalInfo:     map[syntax.Node][]int{},
	}
}

// ScopeOf returns the scope attached to a Program or Element
func (t *Table) ScopeOf(node syntax.Node) Scope {
	return t.scopes[node]
}

// Path returns the resolution of a value-position path
func (t *Table) Path(path *syntax.Path) (Resolution, bool) {
	res, ok := t.paths[path]
	return res, ok
}

// Tag returns the resolution of a dynamic component tag such as `<@foo>`,
// `<this.bar>` or `<x.y>`. Static tags report false.
func (t *Table) Tag(element *syntax.Element) (Resolution, bool) {
	res, ok := t.tags[element]
	return res, ok
}

// BlockSymbol returns the named-block slot used by a yield, a has-block
// query or an `...attributes` splat.
func (t *Table) BlockSymbol(node syntax.Node) (int, bool) {
	slot, ok := t.blockSymbols[node]
	return slot, ok
}

// EvalInfo returns the slots visible to a `{{partial}}` or `{{debugger}}`.
func (t *Table) EvalInfo(node syntax.Node) []int {
	return t.evalInfo[node]
}

var reservedData = map[string]bool{
	"arguments": true,
	"args":      true,
	"block":     true,
	"else":      true,
}

// Resolve walks root in document order, attaches a scope to every Program
// and Element, and resolves every value-position path. Callees of blocks,
// helpers and modifiers are names, not references, and are only checked
// against the reserved identifiers.
func Resolve(root *syntax.Program) (*Table, error) {
	r := &resolver{table: newTable(NewRootScope())}
	if err := r.program(root, r.table.Root); err != nil {
		return nil, err
	}
	return r.table, nil
}

type resolver struct {
	table *Table
}

func (r *resolver) program(program *syntax.Program, parent Scope) error {
	scope := parent
	if len(program.BlockParams) > 0 {
		scope = parent.Child(program.BlockParams)
	}
	r.table.scopes[program] = scope
	return r.statements(program.Body, scope)
}

func (r *resolver) statements(body []syntax.Statement, scope Scope) error {
	for _, stmt := range body {
		if err := r.statement(stmt, scope); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) statement(stmt syntax.Statement, scope Scope) error {
	switch s := stmt.(type) {
	case *syntax.Element:
		return r.element(s, scope)
	case *syntax.Mustache:
		return r.mustache(s, scope)
	case *syntax.Block:
		return r.block(s, scope)
	case *syntax.Text, *syntax.Comment, *syntax.MustacheComment:
		return nil
	}
	return util.Errorf(util.ErrorKindInternal, stmt.Span(), "no scope handler for %s", stmt.Kind())
}

func (r *resolver) element(element *syntax.Element, scope Scope) error {
	if err := r.tag(element, scope); err != nil {
		return err
	}
	for _, attr := range element.Attributes {
		if attr.Name == "...attributes" {
			r.table.blockSymbols[attr] = r.table.Root.Block("attrs")
			continue
		}
		if err := r.attrValue(attr.Value, scope); err != nil {
			return err
		}
	}
	for _, modifier := range element.Modifiers {
		if err := r.call(modifier.Path, modifier.Params, modifier.Hash, scope); err != nil {
			return err
		}
	}

	inner := scope
	if len(element.BlockParams) > 0 {
		inner = scope.Child(element.BlockParams)
	}
	r.table.scopes[element] = inner
	return r.statements(element.Children, inner)
}

// tag records the resolution of dynamic component tags. A dotted tag whose
// head is free still resolves, as an Unresolved path.
func (r *resolver) tag(element *syntax.Element, scope Scope) error {
	tag := element.Tag
	head, rest, dotted := strings.Cut(tag, ".")
	var tail []string
	if dotted {
		tail = strings.Split(rest, ".")
	}

	switch {
	case strings.HasPrefix(tag, "@"):
		if err := checkReserved(head, element.Span()); err != nil {
			return err
		}
		r.table.tags[element] = Resolution{Kind: Named, Slot: r.table.Root.Named(head), Name: head, Tail: tail}
	case head == "this" && dotted:
		r.table.tags[element] = Resolution{Kind: This, Tail: tail}
	default:
		if slot, ok := scope.Local(head); ok {
			r.table.tags[element] = Resolution{Kind: Local, Slot: slot, Name: head, Tail: tail}
		} else if dotted {
			if err := checkReserved(head, element.Span()); err != nil {
				return err
			}
			r.table.tags[element] = Resolution{Kind: Unresolved, Name: head, Tail: tail}
		}
	}
	return nil
}

func (r *resolver) attrValue(value syntax.AttrValue, scope Scope) error {
	switch v := value.(type) {
	case *syntax.Text:
		return nil
	case *syntax.Mustache:
		return r.mustache(v, scope)
	case *syntax.Concat:
		for _, part := range v.Parts {
			if m, ok := part.(*syntax.Mustache); ok {
				if err := r.mustache(m, scope); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return util.Errorf(util.ErrorKindInternal, value.Span(), "no scope handler for attribute value %s", value.Kind())
}

func (r *resolver) mustache(mustache *syntax.Mustache, scope Scope) error {
	switch BuiltinName(mustache.Path) {
	case BuiltinYield:
		return r.yield(mustache, scope)
	case BuiltinPartial:
		return r.partial(mustache, scope)
	case BuiltinDebugger:
		return r.debugger(mustache, scope)
	case BuiltinHasBlock, BuiltinHasBlockParams:
		return r.hasBlock(mustache, mustache.Path.(*syntax.Path).Original, mustache.Params, mustache.Hash)
	}
	if len(mustache.Params) == 0 && (mustache.Hash == nil || len(mustache.Hash.Pairs) == 0) {
		return r.expression(mustache.Path, scope)
	}
	return r.call(mustache.Path, mustache.Params, mustache.Hash, scope)
}

func (r *resolver) block(block *syntax.Block, scope Scope) error {
	if err := r.call(block.Path, block.Params, block.Hash, scope); err != nil {
		return err
	}
	if block.Program != nil {
		if err := r.program(block.Program, scope); err != nil {
			return err
		}
	}
	if block.Inverse != nil {
		return r.program(block.Inverse, scope)
	}
	return nil
}

// call resolves an invocation. A path callee is a helper name.
func (r *resolver) call(callee syntax.Expression, params []syntax.Expression, hash *syntax.Hash, scope Scope) error {
	if path, ok := callee.(*syntax.Path); ok {
		if err := checkPathReserved(path); err != nil {
			return err
		}
	} else if err := r.expression(callee, scope); err != nil {
		return err
	}
	return r.arguments(params, hash, scope)
}

func (r *resolver) arguments(params []syntax.Expression, hash *syntax.Hash, scope Scope) error {
	for _, param := range params {
		if err := r.expression(param, scope); err != nil {
			return err
		}
	}
	if hash == nil {
		return nil
	}
	for _, pair := range hash.Pairs {
		if err := r.expression(pair.Value, scope); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) expression(expr syntax.Expression, scope Scope) error {
	switch e := expr.(type) {
	case *syntax.Path:
		return r.path(e, scope)
	case *syntax.SubExpression:
		switch BuiltinName(e.Path) {
		case BuiltinHasBlock, BuiltinHasBlockParams:
			return r.hasBlock(e, e.Path.(*syntax.Path).Original, e.Params, e.Hash)
		}
		return r.call(e.Path, e.Params, e.Hash, scope)
	case *syntax.StringLiteral, *syntax.NumberLiteral, *syntax.BooleanLiteral,
		*syntax.NullLiteral, *syntax.UndefinedLiteral:
		return nil
	}
	return util.Errorf(util.ErrorKindInternal, expr.Span(), "no scope handler for expression %s", expr.Kind())
}

func (r *resolver) path(path *syntax.Path, scope Scope) error {
	if err := checkPathReserved(path); err != nil {
		return err
	}
	var res Resolution
	switch {
	case path.This:
		res = Resolution{Kind: This, Tail: path.Parts}
	case path.Data:
		name := "@" + path.Head()
		res = Resolution{Kind: Named, Slot: r.table.Root.Named(name), Name: name, Tail: path.Tail()}
	default:
		if slot, ok := scope.Local(path.Head()); ok {
			res = Resolution{Kind: Local, Slot: slot, Name: path.Head(), Tail: path.Tail()}
		} else {
			res = Resolution{Kind: Unresolved, Name: path.Head(), Tail: path.Tail()}
		}
	}
	r.table.paths[path] = res
	return nil
}

func checkPathReserved(path *syntax.Path) error {
	if path.This {
		return nil
	}
	name := path.Head()
	if path.Data {
		name = "@" + name
	}
	return checkReserved(name, path.Span())
}

// checkReserved rejects the bare `arguments` and the `@` names that would
// shadow the runtime's own argument objects.
func checkReserved(name string, span *util.ParseSourceSpan) error {
	reserved := name == "arguments"
	if data, ok := strings.CutPrefix(name, "@"); ok {
		reserved = reservedData[data]
	}
	if reserved {
		return util.Errorf(util.ErrorKindStructure, span, "Cannot reference `%s`: it is a reserved identifier", name)
	}
	return nil
}
