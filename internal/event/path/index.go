package path

import "sort"

// Index is a trie of concrete paths.
// It is not safe for concurrent use.
//
// Lookups return paths in the order they were first inserted. A path that
// is deleted and inserted again moves to the end of that order.
type Index struct {
	root *indexNode
	seq  uint64
	size int
}

// indexNode represents a node in the path trie.
type indexNode struct {
	children map[string]*indexNode
	member   bool   // a path terminates at this node
	seq      uint64 // insertion sequence of the terminating path
	path     Path
}

func newIndexNode() *indexNode {
	return &indexNode{children: make(map[string]*indexNode)}
}

func (n *indexNode) isEmpty() bool {
	return len(n.children) == 0 && !n.member
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{root: newIndexNode()}
}

// Insert adds p to the index.
// Returns true if the path was added, false if it was already present.
func (x *Index) Insert(p Path) bool {
	if x.root == nil {
		x.root = newIndexNode()
	}

	node := x.root
	for _, seg := range p.segments {
		child := node.children[seg]
		if child == nil {
			child = newIndexNode()
			node.children[seg] = child
		}
		node = child
	}

	if node.member {
		return false
	}
	x.seq++
	node.member = true
	node.seq = x.seq
	node.path = p
	x.size++
	return true
}

// indexStep tracks a node and the key used to reach it during traversal.
type indexStep struct {
	node *indexNode
	key  string
}

// Delete removes p from the index and prunes empty nodes.
// Returns true if the path was removed, false if it was not present.
func (x *Index) Delete(p Path) bool {
	if x.root == nil {
		return false
	}

	steps := make([]indexStep, 0, len(p.segments)+1)
	steps = append(steps, indexStep{node: x.root})

	node := x.root
	for _, seg := range p.segments {
		child := node.children[seg]
		if child == nil {
			return false
		}
		steps = append(steps, indexStep{node: child, key: seg})
		node = child
	}

	if !node.member {
		return false
	}
	node.member = false
	node.path = Path{}
	x.size--

	// Prune empty nodes from leaf back to root
	for i := len(steps) - 1; i > 0; i-- {
		if !steps[i].node.isEmpty() {
			break
		}
		delete(steps[i-1].node.children, steps[i].key)
	}
	return true
}

// Contains returns true if p is in the index.
func (x *Index) Contains(p Path) bool {
	node := x.find(p)
	return node != nil && node.member
}

// Len returns the number of paths in the index.
func (x *Index) Len() int {
	return x.size
}

// Under returns every indexed path equal to or below root.
func (x *Index) Under(root Path) []Path {
	return x.Match(Under(root))
}

// Match returns every indexed path satisfying q.
func (x *Index) Match(q Query) []Path {
	if !q.HasWildcard() {
		p := q.Prefix()
		if x.Contains(p) {
			return []Path{p}
		}
		return nil
	}

	start := x.find(q.Prefix())
	if start == nil {
		return nil
	}

	var found []*indexNode
	collect(start, func(n *indexNode) {
		if q.Match(n.path) {
			found = append(found, n)
		}
	})
	if len(found) == 0 {
		return nil
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].seq < found[j].seq
	})
	out := make([]Path, len(found))
	for i, n := range found {
		out[i] = n.path
	}
	return out
}

// All returns every indexed path in insertion order.
func (x *Index) All() []Path {
	return x.Under(Root())
}

func (x *Index) find(p Path) *indexNode {
	if x.root == nil {
		return nil
	}
	node := x.root
	for _, seg := range p.segments {
		node = node.children[seg]
		if node == nil {
			return nil
		}
	}
	return node
}

// collect visits every member node in the subtree rooted at n.
func collect(n *indexNode, visit func(*indexNode)) {
	if n.member {
		visit(n)
	}
	for _, child := range n.children {
		collect(child, visit)
	}
}
