// Package providertree implements an in-memory, thread-safe forest of
// resource providers: a scheduler-reporting client's view of compute
// resources (hypervisors, nested devices, their subdivisions) reconciled
// periodically against a remote inventory service. The tree is never
// persisted; see the package's SPEC_FULL.md for the full contract.
package providertree

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/openinfra/providertree/internal/stringset"
)

// ComputeNode is the minimal compute-node descriptor the tree's
// constructor-from-iterable accepts: every compute node becomes a root
// provider with empty attributes and an absent generation (spec §4.3
// Construction).
type ComputeNode struct {
	Name       string
	Identifier string
}

// ProviderTree is the forest container: an ordered list of roots guarded by
// a single tree-wide mutex, and the public API described in spec §4.3. The
// zero value is not usable; construct with New or NewProviderTree.
type ProviderTree struct {
	mu    sync.Mutex
	roots []*providerNode

	log     logger
	genID   idGenerator
	opCount *atomic.Uint64
}

// New returns an empty ProviderTree.
func New(opts ...Option) *ProviderTree {
	return NewProviderTree(nil, opts...)
}

// NewProviderTree returns a ProviderTree whose roots are seeded from nodes,
// one root per compute node, in the given order (spec §4.3 Construction).
func NewProviderTree(nodes []ComputeNode, opts ...Option) *ProviderTree {
	t := &ProviderTree{
		log:     defaultLogger(),
		genID:   func() string { return uuid.NewString() },
		opCount: atomic.NewUint64(0),
	}
	for _, o := range opts {
		o.apply(t)
	}
	for _, cn := range nodes {
		id := cn.Identifier
		t.roots = append(t.roots, newProviderNode(cn.Name, &id, nil, nil, t.genID))
	}
	return t
}

// OpCount returns the number of public operations performed on this tree so
// far. Ambient diagnostic only; the spec assigns it no behavior.
func (t *ProviderTree) OpCount() uint64 {
	return t.opCount.Load()
}

func (t *ProviderTree) countOp() {
	t.opCount.Inc()
}

// findLocked resolves key by depth-first search across the roots, in
// insertion order (spec §4.3 Lookup). Caller must hold t.mu.
func (t *ProviderTree) findLocked(key string) (*providerNode, error) {
	for _, root := range t.roots {
		if found := root.find(key); found != nil {
			return found, nil
		}
	}
	return nil, &NotFoundError{Key: key}
}

// existsAnywhereLocked reports whether identifier names any provider already
// in the forest. Caller must hold t.mu.
func (t *ProviderTree) existsAnywhereLocked(identifier string) bool {
	_, err := t.findLocked(identifier)
	return err == nil
}

// FindByKey resolves key to the identifier of the provider it names. Roots
// are searched in insertion order; when several providers share a name, the
// first one reached in providerNode.find's search order wins.
func (t *ProviderTree) FindByKey(key string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	n, err := t.findLocked(key)
	if err != nil {
		return "", err
	}
	return n.identifier, nil
}

// Exists reports whether key resolves to a provider. Never fails.
func (t *ProviderTree) Exists(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	return t.existsAnywhereLocked(key)
}

// AllIdentifiers returns the set of every identifier in the forest when
// called with no argument, or the set of identifiers in the subtree rooted
// at root when given one (spec §4.3 AllIdentifiers).
func (t *ProviderTree) AllIdentifiers(root ...string) (map[string]struct{}, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	if len(root) == 0 {
		out := stringset.New()
		for _, r := range t.roots {
			for id := range r.descendantIdentifiers() {
				out[id] = struct{}{}
			}
		}
		return out, nil
	}

	n, err := t.findLocked(root[0])
	if err != nil {
		return nil, err
	}
	return n.descendantIdentifiers(), nil
}

// NewRoot appends a new root provider and returns its identifier. Fails
// with AlreadyExistsError if a provider with that identifier already exists
// anywhere in the forest (spec §4.3 NewRoot).
func (t *ProviderTree) NewRoot(name, identifier string, generation *int64) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	if t.existsAnywhereLocked(identifier) {
		return "", &AlreadyExistsError{Identifier: identifier}
	}
	id := identifier
	n := newProviderNode(name, &id, generation, nil, t.genID)
	t.roots = append(t.roots, n)
	return n.identifier, nil
}

// NewChild creates a new child provider under parentKey and returns its
// identifier. Fails with NotFoundError if parentKey does not resolve (spec
// §4.3 NewChild). identifier and generation may be nil.
func (t *ProviderTree) NewChild(name, parentKey string, identifier *string, generation *int64) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	parent, err := t.findLocked(parentKey)
	if err != nil {
		return "", err
	}
	parentID := parent.identifier
	n := newProviderNode(name, identifier, generation, &parentID, t.genID)
	parent.addChild(n)
	return n.identifier, nil
}

// removeLocked detaches the provider found at key from its parent's children
// or from the roots list, discarding its entire subtree. Caller must hold
// t.mu.
func (t *ProviderTree) removeLocked(key string) error {
	n, err := t.findLocked(key)
	if err != nil {
		return err
	}
	if n.parentIdentifier != nil {
		parent, err := t.findLocked(*n.parentIdentifier)
		if err != nil {
			// The provider's own parent pointer failing to resolve would
			// violate spec §3's invariants; this should be unreachable.
			return err
		}
		parent.removeChild(n)
		return nil
	}
	for i, r := range t.roots {
		if r.identifier == n.identifier {
			t.roots = append(t.roots[:i], t.roots[i+1:]...)
			break
		}
	}
	return nil
}

// removeIfPresentLocked is removeLocked but absorbs NotFoundError, used by
// bulk population's "replace in place" semantics (spec §4.3 step 4; carried
// from the original Python's reuse between Remove and populate_from_iterable,
// see SPEC_FULL.md).
func (t *ProviderTree) removeIfPresentLocked(key string) {
	if err := t.removeLocked(key); err != nil {
		if _, ok := err.(*NotFoundError); ok {
			return
		}
	}
}

// Remove removes the provider identified by key and its entire subtree.
// Fails with NotFoundError if key does not resolve (spec §4.3 Remove).
func (t *ProviderTree) Remove(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	if err := t.removeLocked(key); err != nil {
		return err
	}
	t.log.WithFields(logrus.Fields{"provider": key}).Debug("removed provider subtree")
	return nil
}

// Data returns a ProviderSnapshot of the provider identified by key. Fails
// with NotFoundError if key does not resolve (spec §4.3 Data).
func (t *ProviderTree) Data(key string) (ProviderSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	n, err := t.findLocked(key)
	if err != nil {
		return ProviderSnapshot{}, err
	}
	return n.snapshot(), nil
}

// HasInventory reports whether the provider identified by key has any
// inventory records at all (supplemented feature, see SPEC_FULL.md).
func (t *ProviderTree) HasInventory(key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	n, err := t.findLocked(key)
	if err != nil {
		return false, err
	}
	return n.hasInventory(), nil
}

// InventoryChanged reports whether inv differs from the stored inventory for
// the provider identified by key, under the joint-field comparison of spec
// §4.1.
func (t *ProviderTree) InventoryChanged(key string, inv map[string]map[string]interface{}) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	n, err := t.findLocked(key)
	if err != nil {
		return false, err
	}
	return n.inventoryChanged(inv), nil
}

// UpdateInventory updates the stored inventory and generation for the
// provider identified by key, returning whether the inventory changed (spec
// §4.3 UpdateInventory delegate).
func (t *ProviderTree) UpdateInventory(key string, inv map[string]map[string]interface{}, generation *int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	n, err := t.findLocked(key)
	if err != nil {
		return false, err
	}
	return n.updateInventory(inv, generation, t.log), nil
}

// HasTraits reports whether the provider identified by key has every trait
// in traits.
func (t *ProviderTree) HasTraits(key string, traits []string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	n, err := t.findLocked(key)
	if err != nil {
		return false, err
	}
	return n.hasTraits(stringset.New(traits...)), nil
}

// TraitsChanged reports whether traits differs from the stored trait set for
// the provider identified by key.
func (t *ProviderTree) TraitsChanged(key string, traits []string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	n, err := t.findLocked(key)
	if err != nil {
		return false, err
	}
	return n.traitsChanged(stringset.New(traits...)), nil
}

// UpdateTraits updates the stored trait set and generation for the provider
// identified by key, returning whether the traits changed.
func (t *ProviderTree) UpdateTraits(key string, traits []string, generation *int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	n, err := t.findLocked(key)
	if err != nil {
		return false, err
	}
	return n.updateTraits(stringset.New(traits...), generation, t.log), nil
}

// InAggregates reports whether the provider identified by key belongs to
// every aggregate in aggregates.
func (t *ProviderTree) InAggregates(key string, aggregates []string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	n, err := t.findLocked(key)
	if err != nil {
		return false, err
	}
	return n.inAggregates(stringset.New(aggregates...)), nil
}

// AggregatesChanged reports whether aggregates differs from the stored
// aggregate set for the provider identified by key.
func (t *ProviderTree) AggregatesChanged(key string, aggregates []string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	n, err := t.findLocked(key)
	if err != nil {
		return false, err
	}
	return n.aggregatesChanged(stringset.New(aggregates...)), nil
}

// UpdateAggregates updates the stored aggregate set and generation for the
// provider identified by key, returning whether the aggregates changed.
func (t *ProviderTree) UpdateAggregates(key string, aggregates []string, generation *int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	n, err := t.findLocked(key)
	if err != nil {
		return false, err
	}
	return n.updateAggregates(stringset.New(aggregates...), generation, t.log), nil
}
