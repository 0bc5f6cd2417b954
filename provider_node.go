package providertree

import (
	"github.com/openinfra/providertree/internal/dcopy"
	"github.com/openinfra/providertree/internal/stringset"
)

// providerNode is one resource provider's mutable state. Every method here
// assumes the tree-wide lock is already held by the caller (ProviderTree);
// none of them take a lock of their own. Children are kept both as a map
// (for O(1) identifier lookup, spec §9 "dual-key identity") and as an
// insertion-ordered slice of identifiers, since the spec requires siblings to
// be searched in insertion order and Go map iteration order is random.
type providerNode struct {
	identifier       string
	name             string
	generation       *int64
	parentIdentifier *string

	children   map[string]*providerNode
	childOrder []string
	inventory  map[string]map[string]interface{}
	traits     stringset.Set
	aggregates stringset.Set
}

// newProviderNode constructs a fresh provider. A freshly constructed
// provider has empty inventory, traits and aggregates (spec §3 invariants).
// If identifier is nil, genID supplies a fresh UUID-shaped value.
func newProviderNode(name string, identifier *string, generation *int64, parentIdentifier *string, genID idGenerator) *providerNode {
	id := ""
	if identifier != nil {
		id = *identifier
	} else {
		id = genID()
	}
	return &providerNode{
		identifier:       id,
		name:             name,
		generation:       copyGeneration(generation),
		parentIdentifier: copyOptionalString(parentIdentifier),
		children:         make(map[string]*providerNode),
		inventory:        make(map[string]map[string]interface{}),
		traits:           stringset.New(),
		aggregates:       stringset.New(),
	}
}

// find performs the depth-first, tie-broken lookup spec §4.1 describes: self
// match first, then direct children by identifier, then direct children by
// name, then recurse into each child's subtree in insertion order. Returns
// nil on a miss. Preserves "first-match wins" for duplicate names (spec §9
// open question).
func (n *providerNode) find(key string) *providerNode {
	if n.identifier == key || n.name == key {
		return n
	}
	if child, ok := n.children[key]; ok {
		return child
	}
	for _, id := range n.childOrder {
		if n.children[id].name == key {
			return n.children[id]
		}
	}
	for _, id := range n.childOrder {
		if found := n.children[id].find(key); found != nil {
			return found
		}
	}
	return nil
}

// descendantIdentifiers returns the set containing this node's identifier
// and every descendant's, recursively.
func (n *providerNode) descendantIdentifiers() stringset.Set {
	out := stringset.New(n.identifier)
	for _, id := range n.childOrder {
		for d := range n.children[id].descendantIdentifiers() {
			out[d] = struct{}{}
		}
	}
	return out
}

// addChild attaches p as a child of n.
func (n *providerNode) addChild(p *providerNode) {
	n.children[p.identifier] = p
	n.childOrder = append(n.childOrder, p.identifier)
}

// removeChild detaches p from n's child collection. A no-op if p is not a
// child of n, matching spec §4.1.
func (n *providerNode) removeChild(p *providerNode) {
	if _, ok := n.children[p.identifier]; !ok {
		return
	}
	delete(n.children, p.identifier)
	for i, id := range n.childOrder {
		if id == p.identifier {
			n.childOrder = append(n.childOrder[:i], n.childOrder[i+1:]...)
			break
		}
	}
}

// hasInventory reports whether the provider carries any inventory records at
// all (supplemented from the original Python's has_inventory, spec §9).
func (n *providerNode) hasInventory() bool {
	return len(n.inventory) > 0
}

// inventoryChanged reports whether new differs from the stored inventory
// under spec §4.1's joint-field comparison: a differing key set is always a
// change; for shared resource classes, only fields present in BOTH records
// are compared, and a differing shared field is a change. Fields known only
// to one side are ignored.
func (n *providerNode) inventoryChanged(new map[string]map[string]interface{}) bool {
	if len(n.inventory) != len(new) {
		return true
	}
	for class := range n.inventory {
		if _, ok := new[class]; !ok {
			return true
		}
	}
	for class, curRecord := range n.inventory {
		newRecord := new[class]
		for field, curVal := range curRecord {
			newVal, ok := newRecord[field]
			if !ok {
				continue
			}
			if newVal != curVal {
				return true
			}
		}
	}
	return false
}

// updateInventory sets the generation unconditionally (see updateGeneration),
// then replaces the stored inventory with a deep copy of new iff
// inventoryChanged reports a change. Returns whether it changed.
func (n *providerNode) updateInventory(new map[string]map[string]interface{}, generation *int64, log logger) bool {
	n.updateGeneration(generation, log)
	if n.inventoryChanged(new) {
		n.inventory = dcopy.Inventory(new)
		return true
	}
	return false
}

// traitsChanged reports whether new differs from the stored trait set.
func (n *providerNode) traitsChanged(new stringset.Set) bool {
	return !stringset.Equal(n.traits, new)
}

// updateTraits sets the generation unconditionally, then replaces the stored
// trait set with a copy of new iff it changed. Returns whether it changed.
func (n *providerNode) updateTraits(new stringset.Set, generation *int64, log logger) bool {
	n.updateGeneration(generation, log)
	if n.traitsChanged(new) {
		n.traits = new.Clone()
		return true
	}
	return false
}

// hasTraits reports whether every trait in t is present on the provider.
// True when t is empty, per spec §4.1.
func (n *providerNode) hasTraits(t stringset.Set) bool {
	return stringset.Subset(t, n.traits)
}

// aggregatesChanged reports whether new differs from the stored aggregate
// set.
func (n *providerNode) aggregatesChanged(new stringset.Set) bool {
	return !stringset.Equal(n.aggregates, new)
}

// updateAggregates sets the generation unconditionally, then replaces the
// stored aggregate set with a copy of new iff it changed. Returns whether it
// changed.
func (n *providerNode) updateAggregates(new stringset.Set, generation *int64, log logger) bool {
	n.updateGeneration(generation, log)
	if n.aggregatesChanged(new) {
		n.aggregates = new.Clone()
		return true
	}
	return false
}

// inAggregates reports whether the provider belongs to every aggregate in a.
// True when a is empty, per spec §4.1.
func (n *providerNode) inAggregates(a stringset.Set) bool {
	return stringset.Subset(a, n.aggregates)
}

// updateGeneration overwrites the stored generation iff g is present and
// differs from the current value. No rejection on downgrade (spec §9 open
// question, preserved permissive behavior). log may be nil.
func (n *providerNode) updateGeneration(g *int64, log logger) {
	if g == nil {
		return
	}
	if n.generation != nil && *n.generation == *g {
		return
	}
	if log != nil {
		logGenerationTransition(log, n.identifier, n.generation, g)
	}
	n.generation = copyGeneration(g)
}

// snapshot builds the immutable, deep-copied ProviderSnapshot for this node.
func (n *providerNode) snapshot() ProviderSnapshot {
	return ProviderSnapshot{
		Identifier:       n.identifier,
		Name:             n.name,
		Generation:       copyGeneration(n.generation),
		ParentIdentifier: copyOptionalString(n.parentIdentifier),
		Inventory:        dcopy.Inventory(n.inventory),
		Traits:           n.traits.Slice(),
		Aggregates:       n.aggregates.Slice(),
	}
}

func copyGeneration(g *int64) *int64 {
	if g == nil {
		return nil
	}
	v := *g
	return &v
}

func copyOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
