package mapper

// Keyed is implemented by every entity stored in a Collection.
type Keyed interface {
	comparable
	EntityKey() string
}

// Collection is an insertion-ordered set of entities addressable by key.
type Collection[T Keyed] struct {
	order []string
	items map[string]T
}

// NewCollection creates an empty collection.
func NewCollection[T Keyed]() *Collection[T] {
	return &Collection[T]{items: make(map[string]T)}
}

// Add inserts item. Returns false if an item with the same key exists.
func (c *Collection[T]) Add(item T) bool {
	key := item.EntityKey()
	if _, exists := c.items[key]; exists {
		return false
	}
	c.items[key] = item
	c.order = append(c.order, key)
	return true
}

// Find returns the item with the given key.
func (c *Collection[T]) Find(key string) (T, bool) {
	item, ok := c.items[key]
	return item, ok
}

// Remove deletes the item with the given key.
func (c *Collection[T]) Remove(key string) bool {
	if _, ok := c.items[key]; !ok {
		return false
	}
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Each calls fn for every item in insertion order until fn returns false.
func (c *Collection[T]) Each(fn func(T) bool) {
	// Iterate over a snapshot so fn may mutate the collection.
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	for _, k := range keys {
		item, ok := c.items[k]
		if !ok {
			continue
		}
		if !fn(item) {
			return
		}
	}
}

// Items returns the items in insertion order.
func (c *Collection[T]) Items() []T {
	out := make([]T, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.items[k])
	}
	return out
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	return len(c.order)
}
