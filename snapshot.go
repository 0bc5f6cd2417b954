package providertree

// ProviderSnapshot is an immutable, point-in-time, deep-copied view of one
// provider's observable state (spec §4.2). Mutating the slices or maps
// returned here never affects the tree, nor does it affect any other
// snapshot taken before or after it (spec §8 property 4).
type ProviderSnapshot struct {
	Identifier       string
	Name             string
	Generation       *int64
	ParentIdentifier *string
	Inventory        map[string]map[string]interface{}
	Traits           []string
	Aggregates       []string
}

// IsRoot reports whether the snapshotted provider has no parent.
func (s ProviderSnapshot) IsRoot() bool {
	return s.ParentIdentifier == nil
}
