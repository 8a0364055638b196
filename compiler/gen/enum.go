package gen

// GlobalEnums collects the global option sets of the entities. Entities are
// walked in the given order and the first enum seen for a global name is
// kept; later ones with the same name are discarded. Local enums stay with
// their entity.
func GlobalEnums(entities []*Entity) []*Enum {
	var (
		enums []*Enum
		seen  = make(map[string]struct{})
	)
	for _, e := range entities {
		for _, en := range e.Enums {
			if !en.IsGlobal {
				continue
			}
			if _, ok := seen[en.GlobalName]; ok {
				continue
			}
			seen[en.GlobalName] = struct{}{}
			enums = append(enums, en)
		}
	}
	return enums
}
