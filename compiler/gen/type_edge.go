package gen

import (
	"github.com/syssam/xrmgen/compiler/load"
)

// =============================================================================
// Relationship methods
// =============================================================================

// O2M indicates if this relationship is a one-to-many relationship.
func (r Relationship) O2M() bool { return r.Kind == OneToMany }

// M2O indicates if this relationship is a many-to-one relationship.
func (r Relationship) M2O() bool { return r.Kind == ManyToOne }

// M2M indicates if this relationship is a many-to-many relationship.
func (r Relationship) M2M() bool { return r.Kind == ManyToMany }

// Resolved reports if the target entity was linked.
func (r Relationship) Resolved() bool { return r.Entity != nil }

// Constant returns the constant name of the relationship.
func (r Relationship) Constant() string { return "Rel" + r.Name }

// TargetName returns the code name of the target entity once resolved,
// and the raw target logical name otherwise.
func (r Relationship) TargetName() string {
	if r.Entity != nil {
		return r.Entity.Name
	}
	return r.Target
}

// =============================================================================
// Construction
// =============================================================================

// newRelationships builds the relationship stubs of one kind. Targets are
// kept as logical names; linking happens in Resolve.
func newRelationships(owner string, kind RelationshipKind, defs []*load.Relationship) []*Relationship {
	rels := make([]*Relationship, 0, len(defs))
	for _, d := range defs {
		if d == nil {
			continue
		}
		r := &Relationship{
			Kind:                 kind,
			LogicalName:          d.SchemaName,
			Name:                 codeName(d.SchemaName),
			ReferencedAttribute:  d.ReferencedAttribute,
			ReferencingAttribute: d.ReferencingAttribute,
			IntersectEntity:      d.IntersectEntityName,
		}
		switch kind {
		case OneToMany:
			r.Target = d.ReferencingEntity
		case ManyToOne:
			r.Target = d.ReferencedEntity
		case ManyToMany:
			r.Target = d.ManyToManyTarget(owner)
		}
		rels = append(rels, r)
	}
	return rels
}
