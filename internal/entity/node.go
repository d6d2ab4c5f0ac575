package entity

// Kind distinguishes object nodes from array nodes.
type Kind int

const (
	Object Kind = iota
	Array
)

func (k Kind) String() string {
	switch k {
	case Object:
		return "object"
	case Array:
		return "array"
	}
	return "unknown"
}

// Row maps a column name to its scalar text.
type Row map[string]string

// Node is one object or array header and the rows collected for it.
type Node struct {
	Path          string // Dotted path, also the exported table name
	Name          string // Own name, last path segment
	Kind          Kind
	Depth         int      // Indentation depth of the header line (-1 for the implicit root)
	Line          int      // Source line of the header (0 for the implicit root)
	Columns       []string // Object: first-seen field order. Array: declared header columns
	Rows          []Row
	DeclaredCount int   // Array only: the [N] from the header
	Parent        *Node // Used for path resolution only

	// pending holds the row being filled by primitives placed directly
	// under an array header.
	pending Row
}

// NewObject returns an empty object node.
func NewObject(parent *Node, name, path string, depth, line int) *Node {
	return &Node{
		Path:   path,
		Name:   name,
		Kind:   Object,
		Depth:  depth,
		Line:   line,
		Parent: parent,
	}
}

// NewArray returns an empty array node with its declared columns.
func NewArray(parent *Node, name, path string, depth, line int, columns []string, declared int) *Node {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Node{
		Path:          path,
		Name:          name,
		Kind:          Array,
		Depth:         depth,
		Line:          line,
		Columns:       cols,
		DeclaredCount: declared,
		Parent:        parent,
	}
}

// Set records a primitive field on an object. The last write for a key wins
// and columns keep the order in which keys were first seen.
func (n *Node) Set(key, value string) {
	if len(n.Rows) == 0 {
		n.Rows = []Row{{}}
	}
	row := n.Rows[0]
	if _, ok := row[key]; !ok {
		n.Columns = append(n.Columns, key)
	}
	row[key] = value
}

// AddField records a primitive placed directly under an array header. A key
// that is already present in the current row starts the next row.
func (n *Node) AddField(key, value string) {
	if n.pending == nil {
		n.pending = Row{}
	} else if _, ok := n.pending[key]; ok {
		n.flush()
		n.pending = Row{}
	}
	n.pending[key] = value
}

// AppendRow adds one element to an array, projected onto the declared
// columns. Missing values become empty cells and undeclared keys are dropped.
func (n *Node) AppendRow(src Row) {
	n.flush()
	row := make(Row, len(n.Columns))
	for _, col := range n.Columns {
		row[col] = src[col]
	}
	n.Rows = append(n.Rows, row)
}

// Close finalizes the node once its header goes out of scope.
func (n *Node) Close() {
	n.flush()
}

func (n *Node) flush() {
	if n.pending == nil {
		return
	}
	src := n.pending
	n.pending = nil
	n.AppendRow(src)
}

// Value returns the cell for column col in row i, or "" when absent.
func (n *Node) Value(i int, col string) string {
	if i < 0 || i >= len(n.Rows) {
		return ""
	}
	return n.Rows[i][col]
}
