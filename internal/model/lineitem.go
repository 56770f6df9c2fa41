package model

// LineItemSpec describes one semantic field to retrieve and extract from a
// policy document. Loaded once from the instruction file and shared read-only
// across all documents and tasks.
type LineItemSpec struct {
	Name        string         `json:"Line item name"`
	Instruction string         `json:"Line item instruction"`
	Schema      map[string]any `json:"Line item schema"`
}

// LineItemRegistry is an ordered collection of line-item specs with name
// lookup.
type LineItemRegistry struct {
	Items  []LineItemSpec
	byName map[string]*LineItemSpec
}

// NewLineItemRegistry indexes the given specs by line-item name.
func NewLineItemRegistry(items []LineItemSpec) *LineItemRegistry {
	r := &LineItemRegistry{
		Items:  items,
		byName: make(map[string]*LineItemSpec, len(items)),
	}
	for i := range r.Items {
		r.byName[r.Items[i].Name] = &r.Items[i]
	}
	return r
}

// ByName returns the spec for the given line-item name, or nil if not found.
func (r *LineItemRegistry) ByName(name string) *LineItemSpec {
	return r.byName[name]
}

// Names returns all line-item names in original order.
func (r *LineItemRegistry) Names() []string {
	names := make([]string, len(r.Items))
	for i, it := range r.Items {
		names[i] = it.Name
	}
	return names
}
