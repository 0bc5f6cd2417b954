// Package dcopy deep-copies the nested map structures the provider tree uses
// for inventory records. No library in the retrieval pack offers a generic
// deep-copy for map[string]map[string]any, so this is hand-rolled; it only
// ever needs to handle the shapes inventory records actually take (scalars,
// and one level of map-of-scalars nesting), not arbitrary interface{} graphs.
package dcopy

// Record deep-copies a resource-class inventory record (field name -> scalar
// value).
func Record(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}
	out := make(map[string]interface{}, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Inventory deep-copies a full inventory map (resource class -> record).
func Inventory(src map[string]map[string]interface{}) map[string]map[string]interface{} {
	if src == nil {
		return nil
	}
	out := make(map[string]map[string]interface{}, len(src))
	for class, record := range src {
		out[class] = Record(record)
	}
	return out
}
