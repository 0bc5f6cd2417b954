package providertree

import "github.com/sirupsen/logrus"

// ProviderDescriptor is one entry of the iterable Populate consumes: at
// minimum an Identifier, optionally a Name, Generation and
// ParentIdentifier (spec §4.3 Bulk population).
type ProviderDescriptor struct {
	Identifier       string
	Name             string
	Generation       *int64
	ParentIdentifier *string
}

// Populate performs atomic bulk population (spec §4.3): it validates that
// every declared parent resolves (to the tree or to another descriptor in
// the same batch), then repeatedly places any descriptor whose parent is
// already resolvable, replacing any existing provider under that
// identifier. Attributes always start empty on the new provider, even when
// replacing — bulk population defines topology only.
//
// Populate either fully applies or leaves the tree exactly as it was: an
// OrphanInputError aborts before any mutation; InternalInvariantError also
// aborts before any mutation, and is returned when every declared parent
// passed validation but the batch's parent links form a cycle (including a
// descriptor that names itself as its parent), so no placement order exists.
func (t *ProviderTree) Populate(descriptors []ProviderDescriptor) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.countOp()

	if len(descriptors) == 0 {
		return nil
	}

	// Last one wins on duplicate identifiers (spec §4.3 step 2).
	toAdd := make(map[string]ProviderDescriptor, len(descriptors))
	for _, d := range descriptors {
		toAdd[d.Identifier] = d
	}

	if err := t.validateParents(toAdd); err != nil {
		return err
	}

	// Work out the whole placement order before touching the tree, so that
	// a cyclic batch fails without any mutation.
	order := make([]ProviderDescriptor, 0, len(toAdd))
	for len(toAdd) > 0 {
		id, d, ok := pickResolvable(toAdd)
		if !ok {
			remaining := make([]string, 0, len(toAdd))
			for k := range toAdd {
				remaining = append(remaining, k)
			}
			return &InternalInvariantError{Remaining: remaining}
		}
		order = append(order, d)
		delete(toAdd, id)
	}

	for _, d := range order {
		t.removeIfPresentLocked(d.Identifier)

		identifier := d.Identifier
		n := newProviderNode(d.Name, &identifier, d.Generation, d.ParentIdentifier, t.genID)
		if d.ParentIdentifier == nil {
			t.roots = append(t.roots, n)
		} else {
			parent, err := t.findLocked(*d.ParentIdentifier)
			if err != nil {
				// Unreachable: validateParents already guaranteed this
				// parent is in the tree or was placed earlier this pass.
				return err
			}
			parent.addChild(n)
		}
	}

	t.log.WithFields(logrus.Fields{"count": len(descriptors)}).Debug("populated provider tree")
	return nil
}

// validateParents implements spec §4.3 step 3: every descriptor's declared
// parent must be absent, already in the tree, or present as another key in
// toAdd. Caller must hold t.mu.
func (t *ProviderTree) validateParents(toAdd map[string]ProviderDescriptor) error {
	var missing []string
	seen := make(map[string]struct{})
	for _, d := range toAdd {
		if d.ParentIdentifier == nil {
			continue
		}
		parent := *d.ParentIdentifier
		if _, ok := toAdd[parent]; ok {
			continue
		}
		if t.existsAnywhereLocked(parent) {
			continue
		}
		if _, dup := seen[parent]; !dup {
			seen[parent] = struct{}{}
			missing = append(missing, parent)
		}
	}
	if len(missing) > 0 {
		return newOrphanInputError(missing)
	}
	return nil
}

// pickResolvable returns any entry of toAdd whose declared parent is not
// itself a key of toAdd — i.e. the parent is either absent or already
// guaranteed to be in the tree by the time this entry is placed. Iteration
// order over toAdd is deliberately unspecified (spec §9 bulk-population
// tie-break); map range order already provides that.
func pickResolvable(toAdd map[string]ProviderDescriptor) (string, ProviderDescriptor, bool) {
	for id, d := range toAdd {
		if d.ParentIdentifier == nil {
			return id, d, true
		}
		if _, stillPending := toAdd[*d.ParentIdentifier]; !stillPending {
			return id, d, true
		}
	}
	return "", ProviderDescriptor{}, false
}
