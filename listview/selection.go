package listview

// Selection tracks selected entities by identity. It does not know which
// entities are currently materialized: bulk operations receive the visible set.
type Selection struct {
	multi    bool
	keys     map[string]struct{}
	order    []string
	onChange func(keys []string)
}

func NewSelection(multi bool, onChange func(keys []string)) *Selection {
	return &Selection{
		multi:    multi,
		keys:     map[string]struct{}{},
		onChange: onChange,
	}
}

func (s *Selection) Multi() bool {
	return s.multi
}

func (s *Selection) Toggle(e Entity) bool {
	if !e.selectable() {
		return false
	}

	if s.IsSelected(e) {
		s.remove(e.ID)
	} else {
		if !s.multi {
			s.reset()
		}
		s.add(e.ID)
	}

	s.changed()
	return true
}

// SelectAll toggles the whole visible set: when every visible entity is
// already selected they are all deselected, otherwise all of them get selected.
// Entities outside visible are never touched.
func (s *Selection) SelectAll(visible []Entity) bool {
	if !s.multi {
		return false
	}

	candidates := selectable(visible)
	if len(candidates) == 0 {
		return false
	}

	if s.IsAllSelected(candidates) {
		for _, e := range candidates {
			s.remove(e.ID)
		}
	} else {
		for _, e := range candidates {
			s.add(e.ID)
		}
	}

	s.changed()
	return true
}

func (s *Selection) Clear() bool {
	if len(s.order) == 0 {
		return false
	}
	s.reset()
	s.changed()
	return true
}

func (s *Selection) IsSelected(e Entity) bool {
	return s.Has(e.ID)
}

func (s *Selection) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s *Selection) IsAllSelected(visible []Entity) bool {
	candidates := selectable(visible)
	if len(candidates) == 0 {
		return false
	}
	for _, e := range candidates {
		if !s.IsSelected(e) {
			return false
		}
	}
	return true
}

func (s *Selection) IsSomeSelected(visible []Entity) bool {
	selected := 0
	candidates := selectable(visible)
	for _, e := range candidates {
		if s.IsSelected(e) {
			selected++
		}
	}
	return selected > 0 && selected < len(candidates)
}

func (s *Selection) Len() int {
	return len(s.order)
}

// Keys returns the selected identities in selection order.
func (s *Selection) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

func (s *Selection) add(key string) {
	if s.Has(key) {
		return
	}
	s.keys[key] = struct{}{}
	s.order = append(s.order, key)
}

func (s *Selection) remove(key string) {
	if !s.Has(key) {
		return
	}
	delete(s.keys, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Selection) reset() {
	s.keys = map[string]struct{}{}
	s.order = nil
}

func (s *Selection) changed() {
	if s.onChange != nil {
		s.onChange(s.Keys())
	}
}

func selectable(entities []Entity) []Entity {
	result := make([]Entity, 0, len(entities))
	seen := map[string]bool{}
	for _, e := range entities {
		if !e.selectable() || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		result = append(result, e)
	}
	return result
}
