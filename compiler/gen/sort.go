package gen

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortEntities orders the entities and their collections in place:
// entities, their enums and their fields by display name, one-to-many and
// many-to-one relationships by logical name. Display name ties fall back to
// the logical name so that the order is total. Many-to-many relationships and
// enum options keep their mapping order. Sorting is idempotent.
func SortEntities(entities []*Entity) {
	c := newCollator()
	slices.SortStableFunc(entities, func(a, b *Entity) int {
		return c.compare(a.DisplayName, a.LogicalName, b.DisplayName, b.LogicalName)
	})
	for _, e := range entities {
		slices.SortStableFunc(e.Enums, func(a, b *Enum) int {
			return c.compare(a.DisplayName, a.LogicalName, b.DisplayName, b.LogicalName)
		})
		slices.SortStableFunc(e.Fields, func(a, b *Field) int {
			return c.compare(a.DisplayName, a.LogicalName, b.DisplayName, b.LogicalName)
		})
		slices.SortStableFunc(e.OneToMany, byLogicalName)
		slices.SortStableFunc(e.ManyToOne, byLogicalName)
	}
}

// SortEnums orders global enums by display name.
func SortEnums(enums []*Enum) {
	c := newCollator()
	slices.SortStableFunc(enums, func(a, b *Enum) int {
		return c.compare(a.DisplayName, a.GlobalName, b.DisplayName, b.GlobalName)
	})
}

func byLogicalName(a, b *Relationship) int {
	return cmp.Compare(a.LogicalName, b.LogicalName)
}

// collator compares display names the way users expect them listed.
// A collate.Collator is not safe for concurrent use, so one is created
// per sort.
type collator struct {
	c *collate.Collator
}

func newCollator() collator {
	return collator{c: collate.New(language.English)}
}

func (c collator) compare(display1, key1, display2, key2 string) int {
	if r := c.c.CompareString(display1, display2); r != 0 {
		return r
	}
	if r := cmp.Compare(display1, display2); r != 0 {
		return r
	}
	return cmp.Compare(key1, key2)
}
