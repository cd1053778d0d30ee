package view

import "sort"

// Registry maps translation keys to the text targets
// that show them. The zero value is ready to use.
type Registry struct {
	targets map[string][]*Text
}

// Bind adds t as a target for the given key.
// Binding the same target twice has no effect.
func (r *Registry) Bind(key string, t *Text) {
	if r.targets == nil {
		r.targets = make(map[string][]*Text)
	}
	for _, t1 := range r.targets[key] {
		if t1 == t {
			return
		}
	}
	r.targets[key] = append(r.targets[key], t)
}

// Targets returns the targets bound to the given key.
func (r *Registry) Targets(key string) []*Text {
	return r.targets[key]
}

// Keys returns all the bound keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.targets))
	for key := range r.targets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
