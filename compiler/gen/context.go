package gen

import (
	"errors"

	"github.com/syssam/xrmgen"
)

// Context is the render-ready aggregate of a mapping run: the namespace, the
// ordered entities and the ordered, deduplicated global enums. A Context is
// not modified once assembled; renderers must treat it as read-only.
type Context struct {
	// Namespace is the namespace requested by the caller.
	Namespace string
	// Entities holds the entities of the run.
	Entities []*Entity
	// Enums holds the global option sets.
	Enums []*Enum

	entities map[string]*Entity
	enums    map[string]*Enum
}

// Assemble binds the sorted entities and enums into a Context. The slices
// are copied, so later changes by the caller do not leak into the Context.
func Assemble(namespace string, entities []*Entity, enums []*Enum) *Context {
	c := &Context{
		Namespace: namespace,
		Entities:  append([]*Entity(nil), entities...),
		Enums:     append([]*Enum(nil), enums...),
		entities:  make(map[string]*Entity, len(entities)),
		enums:     make(map[string]*Enum, len(enums)),
	}
	for _, e := range c.Entities {
		if _, ok := c.entities[e.LogicalName]; !ok {
			c.entities[e.LogicalName] = e
		}
	}
	for _, e := range c.Enums {
		if _, ok := c.enums[e.GlobalName]; !ok {
			c.enums[e.GlobalName] = e
		}
	}
	return c
}

// Entity returns the entity with the given logical name.
func (c *Context) Entity(logicalName string) (*Entity, error) {
	if e, ok := c.entities[logicalName]; ok {
		return e, nil
	}
	return nil, xrmgen.NewNotFoundError("entity", logicalName)
}

// Enum returns the global enum with the given global name.
func (c *Context) Enum(globalName string) (*Enum, error) {
	if e, ok := c.enums[globalName]; ok {
		return e, nil
	}
	return nil, xrmgen.NewNotFoundError("enum", globalName)
}

// Names returns the logical names of the entities, in order.
func (c *Context) Names() []string {
	names := make([]string, len(c.Entities))
	for i, e := range c.Entities {
		names[i] = e.LogicalName
	}
	return names
}

// Validate checks the invariants of the graph: unique logical names, every
// relationship resolved to an entity of the same Context, and unique global
// enum names. All violations are reported.
func (c *Context) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(c.Entities))
	for _, e := range c.Entities {
		if _, ok := seen[e.LogicalName]; ok {
			errs = append(errs, &ValidationError{Entity: e.LogicalName, Message: "duplicate logical name"})
		}
		seen[e.LogicalName] = struct{}{}
	}
	for _, e := range c.Entities {
		for _, kind := range []RelationshipKind{OneToMany, ManyToOne, ManyToMany} {
			for _, r := range e.Relationships(kind) {
				var msg string
				switch {
				case r.Entity == nil:
					msg = "relationship is not resolved"
				case c.entities[r.Target] != r.Entity:
					msg = "target is not in the context"
				default:
					continue
				}
				errs = append(errs, &RelationshipError{Entity: e.LogicalName, Target: r.Target, Relationship: r.LogicalName, Message: msg})
			}
		}
	}
	globals := make(map[string]struct{}, len(c.Enums))
	for _, en := range c.Enums {
		if _, ok := globals[en.GlobalName]; ok {
			errs = append(errs, &ValidationError{Message: "duplicate global enum " + en.GlobalName})
		}
		globals[en.GlobalName] = struct{}{}
	}
	return errors.Join(errs...)
}
