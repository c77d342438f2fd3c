package store

import "bwtui/internal/model"

// ItemStore holds the last successfully listed vault snapshot. It is only ever
// replaced as a whole; a failed refresh leaves the previous snapshot in place.
type ItemStore struct {
	items []model.Item
	byID  map[string]int
}

func NewItemStore() *ItemStore {
	return &ItemStore{byID: map[string]int{}}
}

// Load replaces the held collection. The slice is copied so callers can't mutate it.
func (s *ItemStore) Load(items []model.Item) {
	cp := make([]model.Item, len(items))
	copy(cp, items)
	byID := make(map[string]int, len(cp))
	for i, it := range cp {
		byID[it.ID] = i
	}
	s.items = cp
	s.byID = byID
}

// Items returns the ordered snapshot. Treat it as read-only.
func (s *ItemStore) Items() []model.Item { return s.items }

func (s *ItemStore) Len() int { return len(s.items) }

func (s *ItemStore) FindByID(id string) (model.Item, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.Item{}, false
	}
	return s.items[i], true
}
