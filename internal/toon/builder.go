package toon

import "github.com/dgallion1/tooncsv/internal/entity"

// frame is one open header on the depth stack.
type frame struct {
	depth int
	node  *entity.Node
	// element collects this occurrence's fields when the header is an
	// element of the enclosing array.
	element entity.Row
}

// builder rebuilds the header hierarchy from classified lines. It owns all
// parse state, so independent parses never share anything.
type builder struct {
	stack []frame
	root  *entity.Node
	nodes []*entity.Node
	index map[string]int // path -> position in nodes
}

func newBuilder() *builder {
	root := entity.NewObject(nil, "", RootPath, -1, 0)
	return &builder{
		stack: []frame{{depth: -1, node: root}},
		root:  root,
		index: make(map[string]int),
	}
}

func (b *builder) top() frame {
	return b.stack[len(b.stack)-1]
}

// add places one line in the tree.
func (b *builder) add(l Line) error {
	if limit := b.top().depth + 1; l.Depth > limit {
		return &IndentationError{Line: l.Number, Expected: limit, Actual: l.Depth}
	}
	// Depths on the stack are consecutive, so this stops at depth-1.
	for b.top().depth >= l.Depth {
		b.pop()
	}

	parent := b.top()
	switch l.Kind {
	case Primitive:
		if parent.node.Kind == entity.Array {
			parent.node.AddField(l.Name, l.Value)
			return nil
		}
		parent.node.Set(l.Name, l.Value)
		if parent.element != nil {
			parent.element[l.Name] = l.Value
		}
	case ObjectHeader, ArrayHeader:
		f := frame{depth: l.Depth, node: b.open(parent.node, l)}
		if parent.node.Kind == entity.Array && l.Kind == ObjectHeader {
			f.element = entity.Row{}
		}
		b.stack = append(b.stack, f)
	}
	return nil
}

// open creates or reopens the node for a header line and registers it.
func (b *builder) open(parent *entity.Node, l Line) *entity.Node {
	path := JoinPath(parent.Path, l.Name)
	kind := entity.Object
	if l.Kind == ArrayHeader {
		kind = entity.Array
	}

	if i, ok := b.index[path]; ok {
		existing := b.nodes[i]
		if existing.Kind == kind {
			if kind == entity.Array {
				existing.DeclaredCount += l.DeclaredCount
			}
			return existing
		}
		// The later header wins but keeps the original position.
		n := newNode(parent, path, l)
		b.nodes[i] = n
		return n
	}

	n := newNode(parent, path, l)
	b.index[path] = len(b.nodes)
	b.nodes = append(b.nodes, n)
	return n
}

func newNode(parent *entity.Node, path string, l Line) *entity.Node {
	if l.Kind == ArrayHeader {
		return entity.NewArray(parent, l.Name, path, l.Depth, l.Number, l.Columns, l.DeclaredCount)
	}
	return entity.NewObject(parent, l.Name, path, l.Depth, l.Number)
}

// pop closes the top frame. Array elements hand their row to the array.
func (b *builder) pop() {
	f := b.top()
	b.stack = b.stack[:len(b.stack)-1]
	f.node.Close()
	if f.element != nil {
		b.top().node.AppendRow(f.element)
	}
}

// finish closes every open header and returns the nodes in output order.
// The implicit root comes first, and only when it received fields.
func (b *builder) finish() []*entity.Node {
	for len(b.stack) > 1 {
		b.pop()
	}
	b.root.Close()

	nodes := make([]*entity.Node, 0, len(b.nodes)+1)
	if len(b.root.Columns) > 0 {
		nodes = append(nodes, b.root)
	}
	return append(nodes, b.nodes...)
}
