package gen

// Resolve links the mapped entities together and returns a new, fully
// resolved entity set. The input is left untouched.
//
// Resolution runs in two passes. The first prunes every relationship whose
// target is not part of the set, independently for each kind. The second
// points the surviving relationships at the new entities, and rewrites the
// LookupSingleType of lookup fields to the code name of their target. Lookups
// whose target is missing keep the raw logical name.
func Resolve(entities []*Entity) []*Entity {
	index := make(map[string]*Entity, len(entities))
	resolved := make([]*Entity, 0, len(entities))
	for _, e := range entities {
		c := e.clone()
		index[c.LogicalName] = c
		resolved = append(resolved, c)
	}
	// Pruning must see the whole set before any relationship is linked.
	for _, e := range resolved {
		e.OneToMany = prune(e.OneToMany, index)
		e.ManyToOne = prune(e.ManyToOne, index)
		e.ManyToMany = prune(e.ManyToMany, index)
	}
	for _, e := range resolved {
		for _, kind := range []RelationshipKind{OneToMany, ManyToOne, ManyToMany} {
			for _, r := range e.Relationships(kind) {
				r.Entity = index[r.Target]
			}
		}
		for _, f := range e.Fields {
			if f.LookupSingleType == "" {
				continue
			}
			if target, ok := index[f.LookupSingleType]; ok && target.Name != "" {
				f.LookupSingleType = target.Name
			}
		}
	}
	return resolved
}

func prune(rels []*Relationship, index map[string]*Entity) []*Relationship {
	kept := make([]*Relationship, 0, len(rels))
	for _, r := range rels {
		if _, ok := index[r.Target]; ok {
			kept = append(kept, r)
		}
	}
	return kept
}

// clone returns a copy of the entity that owns its fields and relationships.
// Enums are shared: they are not touched after mapping.
func (e *Entity) clone() *Entity {
	c := *e
	c.Fields = make([]*Field, len(e.Fields))
	for i, f := range e.Fields {
		fc := *f
		c.Fields[i] = &fc
	}
	c.OneToMany = cloneRelationships(e.OneToMany)
	c.ManyToOne = cloneRelationships(e.ManyToOne)
	c.ManyToMany = cloneRelationships(e.ManyToMany)
	c.Enums = append([]*Enum(nil), e.Enums...)
	return &c
}

func cloneRelationships(rels []*Relationship) []*Relationship {
	out := make([]*Relationship, len(rels))
	for i, r := range rels {
		rc := *r
		rc.Entity = nil
		out[i] = &rc
	}
	return out
}
