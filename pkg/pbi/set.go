package pbi

// Keyed is implemented by entities whose identity is a comparable key.
// Two entities of the same kind are equal iff their keys are equal,
// regardless of any other field differences.
type Keyed[K comparable] interface {
	Key() K
}

// Set is an unordered, duplicate-free collection of entities keyed by
// identity. Adding an entity whose key is already present replaces the
// stored entity, so a Set never holds two snapshots of the same resource.
type Set[K comparable, E Keyed[K]] map[K]E

// NewSet builds a Set from the given entities.
func NewSet[K comparable, E Keyed[K]](entities ...E) Set[K, E] {
	set := make(Set[K, E], len(entities))
	for _, entity := range entities {
		set.Add(entity)
	}

	return set
}

// Add inserts or replaces the entity with the same identity key.
func (s Set[K, E]) Add(entity E) {
	s[entity.Key()] = entity
}

// Contains reports whether an entity with the same identity key is present.
func (s Set[K, E]) Contains(entity E) bool {
	_, ok := s[entity.Key()]

	return ok
}

// Get returns the entity stored under the given key.
func (s Set[K, E]) Get(key K) (E, bool) {
	entity, ok := s[key]

	return entity, ok
}

// Len returns the number of entities in the set.
func (s Set[K, E]) Len() int {
	return len(s)
}

// Values returns the entities in unspecified order.
func (s Set[K, E]) Values() []E {
	values := make([]E, 0, len(s))
	for _, entity := range s {
		values = append(values, entity)
	}

	return values
}
