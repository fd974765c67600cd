package aggregator

// Counter is a frequency counter that remembers the order in which keys were first seen.
type Counter[K comparable] struct {
	counts map[K]uint64
	order  []K
}

// NewCounter creates an empty counter.
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{counts: make(map[K]uint64)}
}

// Inc adds one to the count for key, creating the entry on first use.
func (c *Counter[K]) Inc(key K) {
	c.Add(key, 1)
}

// Add adds n to the count for key, creating the entry on first use.
func (c *Counter[K]) Add(key K, n uint64) {
	count, ok := c.counts[key]
	if !ok {
		c.order = append(c.order, key)
	}
	c.counts[key] = count + n
}

// Get returns the count for key, or zero.
func (c *Counter[K]) Get(key K) uint64 {
	return c.counts[key]
}

// Keys returns the keys in first-seen order.
func (c *Counter[K]) Keys() []K {
	keys := make([]K, len(c.order))
	copy(keys, c.order)
	return keys
}

// Len returns the number of distinct keys.
func (c *Counter[K]) Len() int {
	return len(c.order)
}

// Total returns the sum of all counts.
func (c *Counter[K]) Total() uint64 {
	var total uint64
	for _, n := range c.counts {
		total += n
	}
	return total
}
