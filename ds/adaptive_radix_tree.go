package ds

import (
	art "github.com/plar/go-adaptive-radix-tree"
)

// AdaptiveRadixTree is an ordered set of byte keys. Keys are kept in lexical
// order, which makes it cheap to list them sorted or by prefix.
type AdaptiveRadixTree struct {
	tree art.Tree
}

func NewART() *AdaptiveRadixTree {
	return &AdaptiveRadixTree{
		tree: art.New(),
	}
}

// Insert adds key to the tree. It reports whether the key was not present before.
// The tree keeps a reference to key, so callers must not modify it afterwards.
func (t *AdaptiveRadixTree) Insert(key []byte) bool {
	_, updated := t.tree.Insert(key, nil)
	return !updated
}

func (t *AdaptiveRadixTree) Contains(key []byte) bool {
	_, found := t.tree.Search(key)
	return found
}

// Delete removes key and reports whether it was present.
func (t *AdaptiveRadixTree) Delete(key []byte) bool {
	_, deleted := t.tree.Delete(key)
	return deleted
}

func (t *AdaptiveRadixTree) Size() int {
	return t.tree.Size()
}

// PrefixScan returns keys start with specific prefix, in lexical order.
// Count refers to the maximum number of retrieved keys. No limitation if count is smaller than 0.
func (t *AdaptiveRadixTree) PrefixScan(prefix []byte, count int) (keys [][]byte) {
	if count == 0 {
		return nil
	}
	cb := func(node art.Node) bool {
		if node.Kind() != art.Leaf {
			return true
		}
		keys = append(keys, node.Key())
		if count > 0 {
			count--
			return count > 0
		}
		return true
	}

	if len(prefix) == 0 {
		t.tree.ForEach(cb)
	} else {
		t.tree.ForEachPrefix(prefix, cb)
	}
	return
}
