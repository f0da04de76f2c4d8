// Package catalog holds the in-memory product catalog the console renders from.
package catalog

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/iyhunko/inventory-console/internal/model"
)

// Store is the ordered, id-keyed product collection. It performs no I/O.
type Store struct {
	mu       sync.RWMutex
	products []model.Product
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the contents with the mapped remote records. Malformed records are skipped
// and returned; they never blank the rest of the catalog.
func (s *Store) Load(items []model.RemoteProduct) []error {
	mapped := make([]model.Product, 0, len(items))
	seen := make(map[model.ID]struct{}, len(items))
	var skipped []error

	for i, item := range items {
		p, err := mapRemote(i, item)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		if _, dup := seen[p.ID]; dup {
			skipped = append(skipped, &MappingError{Index: i, ID: p.ID, Field: "id", Reason: "duplicate id"})
			continue
		}
		seen[p.ID] = struct{}{}
		mapped = append(mapped, p)
	}

	for _, err := range skipped {
		slog.Warn("skipped malformed catalog record", slog.Any("err", err))
	}

	s.mu.Lock()
	s.products = mapped
	s.mu.Unlock()

	return skipped
}

func mapRemote(index int, item model.RemoteProduct) (model.Product, error) {
	var id model.ID
	if item.ID != nil {
		id = *item.ID
	}
	if item.DecodeErr != nil {
		return model.Product{}, &MappingError{Index: index, ID: id, Field: item.DecodeErr.Field, Reason: item.DecodeErr.Error()}
	}

	fail := func(field, reason string) (model.Product, error) {
		return model.Product{}, &MappingError{Index: index, ID: id, Field: field, Reason: reason}
	}
	switch {
	case id == "":
		return fail("id", "")
	case item.Title == nil:
		return fail("title", "")
	case strings.TrimSpace(*item.Title) == "":
		return fail("title", "empty field title")
	case item.Category == nil:
		return fail("category", "")
	case strings.TrimSpace(*item.Category) == "":
		return fail("category", "empty field category")
	case item.Price == nil:
		return fail("price", "")
	case *item.Price < 0:
		return fail("price", "negative price")
	case item.Description == nil:
		return fail("description", "")
	case strings.TrimSpace(*item.Description) == "":
		return fail("description", "empty field description")
	case item.Rating != nil && item.Rating.Count != nil && *item.Rating.Count < 0:
		return fail("rating.count", "negative stock")
	}

	p := model.Product{
		ID:          id,
		Name:        *item.Title,
		Category:    *item.Category,
		Price:       *item.Price,
		Description: *item.Description,
		Image:       model.PlaceholderImage,
	}
	if item.Image != nil && *item.Image != "" {
		p.Image = *item.Image
	}
	if item.Rating != nil && item.Rating.Count != nil {
		p.Stock = *item.Rating.Count
	}
	return p, nil
}

// Insert prepends p. Id uniqueness is the caller's responsibility.
func (s *Store) Insert(p model.Product) {
	s.InsertAt(0, p)
}

// InsertAt places p at index, clamped to the current bounds.
func (s *Store) InsertAt(index int, p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index = max(0, min(index, len(s.products)))
	s.products = slices.Insert(s.products, index, p)
}

// Replace swaps the record with the given id for p, keeping its position.
func (s *Store) Replace(id model.ID, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	s.products[i] = p
	return nil
}

// Remove deletes the record with the given id and returns it with the index it occupied.
func (s *Store) Remove(id model.ID) (model.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Product{}, -1, &NotFoundError{ID: id}
	}
	removed := s.products[i]
	s.products = slices.Delete(s.products, i, i+1)
	return removed, i, nil
}

// ReassignID renames a record in place.
func (s *Store) ReassignID(oldID, newID model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(oldID)
	if i < 0 {
		return &NotFoundError{ID: oldID}
	}
	if oldID != newID && s.indexOf(newID) >= 0 {
		return &ConflictError{ID: newID}
	}
	s.products[i].ID = newID
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(id model.ID) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Product{}, false
	}
	return s.products[i], true
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Snapshot returns a point-in-time copy of the catalog.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{products: slices.Clone(s.products)}
}

func (s *Store) indexOf(id model.ID) int {
	return slices.IndexFunc(s.products, func(p model.Product) bool {
		return p.ID == id
	})
}
