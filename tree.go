package reseg

import (
	"fmt"
	"sort"
)

// Tree is the rooted dependency structure of one sentence, stored as an
// arena: Nodes[i] overlays the sentence's token i, and parent/child links
// are indices into the arena rather than pointers.
type Tree struct {
	Nodes []Node `json:"nodes"`
	Root  int    `json:"root"`
}

// Node is one arena entry. Parent is -1 for the root. Merged lists token
// indices that have been folded into this node by MergePrepositions; merged
// tokens keep their arena slot but drop out of every walk.
type Node struct {
	Parent   int   `json:"parent"`
	Children []int `json:"children,omitempty"`
	Merged   []int `json:"merged,omitempty"`
}

// buildTree links sentence tokens into a rooted tree by head index. The
// root is the unique token with no in-sentence head: its Head equals its
// own Index or falls outside the sentence's index range (parsers that emit
// no dependency structure use -1, which also counts as outside). The token
// slice must be non-empty with contiguous Index values.
func buildTree(tokens []Token) (*Tree, error) {
	if len(tokens) == 0 {
		return nil, ErrNoRoot
	}

	lo := tokens[0].Index
	hi := tokens[len(tokens)-1].Index + 1

	root := -1
	for i, t := range tokens {
		if t.Head == t.Index || t.Head < lo || t.Head >= hi {
			if root >= 0 {
				return nil, fmt.Errorf("%w: tokens %d and %d", ErrMultipleRoots, root, i)
			}
			root = i
		}
	}
	if root < 0 {
		return nil, ErrNoRoot
	}

	nodes := make([]Node, len(tokens))
	nodes[root].Parent = -1
	for i, t := range tokens {
		if i == root {
			continue
		}
		parent := t.Head - lo
		nodes[i].Parent = parent
		nodes[parent].Children = append(nodes[parent].Children, i)
	}

	// Every non-root token has an in-sentence head, so any unreachable
	// token sits on a head cycle.
	if reach := countReachable(nodes, root); reach < len(nodes) {
		return nil, fmt.Errorf("%w: %d of %d tokens unreachable", ErrHeadCycle, len(nodes)-reach, len(nodes))
	}

	return &Tree{Nodes: nodes, Root: root}, nil
}

func countReachable(nodes []Node, root int) int {
	n := 0
	stack := []int{root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, nodes[i].Children...)
	}
	return n
}

// Walk visits reachable nodes depth-first from the root, children in token
// order, calling fn with the node index and its depth.
func (t *Tree) Walk(fn func(i, depth int)) {
	if t == nil || len(t.Nodes) == 0 {
		return
	}
	t.walk(t.Root, 0, fn)
}

func (t *Tree) walk(i, depth int, fn func(i, depth int)) {
	fn(i, depth)
	for _, c := range t.Nodes[i].Children {
		t.walk(c, depth+1, fn)
	}
}

// mergePreps folds prepositional children into their verb heads. When
// "jump" describes A jumping over B, the sense unit is "jump over": the
// preposition's token joins the verb's Merged list and its children
// reattach to the verb. Runs to a fixpoint per verb so chained
// prepositions collapse too.
func (t *Tree) mergePreps(tokens []Token) {
	for v := range t.Nodes {
		if tokens[v].POS != "VERB" {
			continue
		}
		for {
			prep := -1
			for _, c := range t.Nodes[v].Children {
				if tokens[c].Dep == "prep" {
					prep = c
					break
				}
			}
			if prep < 0 {
				break
			}
			t.absorb(v, prep)
		}
	}
}

// absorb merges child node c into node v: c's token (and anything already
// merged into c) joins v.Merged, and c's children become children of v.
func (t *Tree) absorb(v, c int) {
	kept := make([]int, 0, len(t.Nodes[v].Children)-1+len(t.Nodes[c].Children))
	for _, ch := range t.Nodes[v].Children {
		if ch != c {
			kept = append(kept, ch)
		}
	}
	for _, g := range t.Nodes[c].Children {
		t.Nodes[g].Parent = v
		kept = append(kept, g)
	}
	sort.Ints(kept)
	t.Nodes[v].Children = kept

	t.Nodes[v].Merged = append(t.Nodes[v].Merged, c)
	t.Nodes[v].Merged = append(t.Nodes[v].Merged, t.Nodes[c].Merged...)
	sort.Ints(t.Nodes[v].Merged)
	t.Nodes[c].Children = nil
	t.Nodes[c].Merged = nil
}
