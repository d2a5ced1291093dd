package syntax

import (
	"fmt"
)

type resultOp int

const (
	opKeep resultOp = iota
	opRemove
	opReplace
)

// Result is returned from visitor hooks and tells the walker what to do
// with the visited node.
type Result struct {
	op    resultOp
	nodes []Node
}

var (
	// Keep leaves the node in place and continues into its children.
	Keep = Result{}
	// Remove drops the node from its parent.
	Remove = Result{op: opRemove}
)

// Replace swaps the node for nodes. An empty list removes it.
func Replace(nodes ...Node) Result {
	return Result{op: opReplace, nodes: nodes}
}

// WalkerPath links a visited node to its ancestors
type WalkerPath struct {
	Node      Node
	Parent    *WalkerPath
	ParentKey string
}

// ParentNode returns the parent node, or nil at the root
func (p *WalkerPath) ParentNode() Node {
	if p.Parent == nil {
		return nil
	}
	return p.Parent.Node
}

// Ancestors yields parent nodes from the nearest to the root
func (p *WalkerPath) Ancestors(yield func(Node) bool) {
	for cur := p.Parent; cur != nil; cur = cur.Parent {
		if !yield(cur.Node) {
			return
		}
	}
}

// NodeHandler holds the hooks for one node kind. Enter runs before the
// children are visited; a non-Keep result skips the children. Replacement
// nodes returned from Enter are visited themselves.
type NodeHandler struct {
	Enter func(node Node, path *WalkerPath) Result
	Exit  func(node Node, path *WalkerPath) Result
	Keys  map[string]KeyHandler
}

// KeyHandler runs around the traversal of one child key, such as "children"
// or "attributes".
type KeyHandler struct {
	Enter func(node Node, key string)
	Exit  func(node Node, key string)
}

// Visitor maps node kinds to handlers. KindAll applies to every node.
type Visitor map[NodeKind]NodeHandler

// TraverseError is returned when a hook produces a node that cannot be
// placed where the original node was.
type TraverseError struct {
	Parent NodeKind
	Key    string
	Msg    string
}

func (e *TraverseError) Error() string {
	return fmt.Sprintf("cannot traverse %s.%s: %s", e.Parent, e.Key, e.Msg)
}

// Traverse walks the tree rooted at root in document order and applies
// visitor. The root itself cannot be removed or replaced.
func Traverse(root Node, visitor Visitor) error {
	w := &walker{visitor: visitor}
	nodes, err := w.visit(root, nil, "")
	if err != nil {
		return err
	}
	if len(nodes) != 1 || nodes[0] != root {
		return &TraverseError{Parent: root.Kind(), Key: "", Msg: "the root node cannot be removed or replaced"}
	}
	return nil
}

type walker struct {
	visitor Visitor
}

func (w *walker) enter(handler NodeHandler, node Node, path *WalkerPath) Result {
	if handler.Enter == nil {
		return Keep
	}
	return handler.Enter(node, path)
}

func (w *walker) exit(handler NodeHandler, node Node, path *WalkerPath) Result {
	if handler.Exit == nil {
		return Keep
	}
	return handler.Exit(node, path)
}

// visit returns the nodes that take node's place in its parent.
func (w *walker) visit(node Node, parent *WalkerPath, key string) ([]Node, error) {
	path := &WalkerPath{Node: node, Parent: parent, ParentKey: key}
	all := w.visitor[KindAll]
	handler := w.visitor[node.Kind()]

	for _, h := range []NodeHandler{all, handler} {
		result := w.enter(h, node, path)
		switch result.op {
		case opRemove:
			return nil, nil
		case opReplace:
			return w.visitReplacements(result.nodes, parent, key)
		}
	}

	if err := w.visitChildren(node, path, handler); err != nil {
		return nil, err
	}

	for _, h := range []NodeHandler{handler, all} {
		result := w.exit(h, node, path)
		switch result.op {
		case opRemove:
			return nil, nil
		case opReplace:
			return result.nodes, nil
		}
	}
	return []Node{node}, nil
}

func (w *walker) visitReplacements(nodes []Node, parent *WalkerPath, key string) ([]Node, error) {
	var out []Node
	for _, n := range nodes {
		replaced, err := w.visit(n, parent, key)
		if err != nil {
			return nil, err
		}
		out = append(out, replaced...)
	}
	return out, nil
}

func (w *walker) withKey(handler NodeHandler, node Node, key string, fn func() error) error {
	kh, ok := handler.Keys[key]
	if ok && kh.Enter != nil {
		kh.Enter(node, key)
	}
	if err := fn(); err != nil {
		return err
	}
	if ok && kh.Exit != nil {
		kh.Exit(node, key)
	}
	return nil
}

func (w *walker) visitChildren(node Node, path *WalkerPath, handler NodeHandler) error {
	var err error
	key := func(name string, fn func() error) {
		if err == nil {
			err = w.withKey(handler, node, name, fn)
		}
	}
	switch n := node.(type) {
	case *Program:
		key("body", func() (e error) { n.Body, e = visitList(w, path, "body", n.Body); return })
	case *Element:
		key("attributes", func() (e error) { n.Attributes, e = visitList(w, path, "attributes", n.Attributes); return })
		key("modifiers", func() (e error) { n.Modifiers, e = visitList(w, path, "modifiers", n.Modifiers); return })
		key("children", func() (e error) { n.Children, e = visitList(w, path, "children", n.Children); return })
		key("comments", func() (e error) { n.Comments, e = visitList(w, path, "comments", n.Comments); return })
	case *Attr:
		key("value", func() (e error) { n.Value, e = visitRequired(w, path, "value", n.Value); return })
	case *Concat:
		key("parts", func() (e error) { n.Parts, e = visitList(w, path, "parts", n.Parts); return })
	case *Mustache:
		key("path", func() (e error) { n.Path, e = visitRequired(w, path, "path", n.Path); return })
		key("params", func() (e error) { n.Params, e = visitList(w, path, "params", n.Params); return })
		key("hash", func() (e error) { n.Hash, e = visitOptional(w, path, "hash", n.Hash); return })
	case *Block:
		key("path", func() (e error) { n.Path, e = visitRequired(w, path, "path", n.Path); return })
		key("params", func() (e error) { n.Params, e = visitList(w, path, "params", n.Params); return })
		key("hash", func() (e error) { n.Hash, e = visitOptional(w, path, "hash", n.Hash); return })
		key("program", func() (e error) { n.Program, e = visitOptional(w, path, "program", n.Program); return })
		key("inverse", func() (e error) { n.Inverse, e = visitOptional(w, path, "inverse", n.Inverse); return })
	case *ElementModifier:
		key("path", func() (e error) { n.Path, e = visitRequired(w, path, "path", n.Path); return })
		key("params", func() (e error) { n.Params, e = visitList(w, path, "params", n.Params); return })
		key("hash", func() (e error) { n.Hash, e = visitOptional(w, path, "hash", n.Hash); return })
	case *SubExpression:
		key("path", func() (e error) { n.Path, e = visitRequired(w, path, "path", n.Path); return })
		key("params", func() (e error) { n.Params, e = visitList(w, path, "params", n.Params); return })
		key("hash", func() (e error) { n.Hash, e = visitOptional(w, path, "hash", n.Hash); return })
	case *Hash:
		key("pairs", func() (e error) { n.Pairs, e = visitList(w, path, "pairs", n.Pairs); return })
	case *HashPair:
		key("value", func() (e error) { n.Value, e = visitRequired(w, path, "value", n.Value); return })
	}
	return err
}

func visitList[T Node](w *walker, parent *WalkerPath, key string, list []T) ([]T, error) {
	if len(list) == 0 {
		return list, nil
	}
	out := make([]T, 0, len(list))
	for _, item := range list {
		nodes, err := w.visit(item, parent, key)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			t, ok := n.(T)
			if !ok {
				return nil, &TraverseError{Parent: parent.Node.Kind(), Key: key, Msg: fmt.Sprintf("a %s cannot be placed here", n.Kind())}
			}
			out = append(out, t)
		}
	}
	return out, nil
}

func visitRequired[T Node](w *walker, parent *WalkerPath, key string, node T) (T, error) {
	nodes, err := w.visit(node, parent, key)
	if err != nil {
		return node, err
	}
	if len(nodes) != 1 {
		return node, &TraverseError{Parent: parent.Node.Kind(), Key: key, Msg: "exactly one node is required"}
	}
	t, ok := nodes[0].(T)
	if !ok {
		return node, &TraverseError{Parent: parent.Node.Kind(), Key: key, Msg: fmt.Sprintf("a %s cannot be placed here", nodes[0].Kind())}
	}
	return t, nil
}

func visitOptional[T interface {
	Node
	comparable
}](w *walker, parent *WalkerPath, key string, node T) (T, error) {
	var zero T
	if node == zero {
		return node, nil
	}
	nodes, err := w.visit(node, parent, key)
	if err != nil {
		return node, err
	}
	switch len(nodes) {
	case 0:
		return zero, nil
	case 1:
		t, ok := nodes[0].(T)
		if !ok {
			return node, &TraverseError{Parent: parent.Node.Kind(), Key: key, Msg: fmt.Sprintf("a %s cannot be placed here", nodes[0].Kind())}
		}
		return t, nil
	}
	return node, &TraverseError{Parent: parent.Node.Kind(), Key: key, Msg: "at most one node is allowed"}
}
