// Package ident issues entity ids for a single scene.
//
// Ids are plain integers so they serialize as JSON numbers. A registry can
// either mint a fresh id or accept an exact one read back from a document;
// accepting an id moves the counter past it so later mints never collide.
package ident

import "strconv"

// ID identifies a scene, node, socket, edge or node content.
type ID int64

// String returns the decimal form of the id.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Registry hands out ids. The zero value is ready to use and starts at 1.
type Registry struct {
	last ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Next mints a new id.
func (r *Registry) Next() ID {
	r.last++
	return r.last
}

// Restore accepts an exact id, typically one read from a saved document,
// and returns it unchanged.
func (r *Registry) Restore(id ID) ID {
	if id > r.last {
		r.last = id
	}
	return id
}

// Peek returns the most recently issued or restored id.
func (r *Registry) Peek() ID {
	return r.last
}

// Reset forgets every issued id.
func (r *Registry) Reset() {
	r.last = 0
}
