package citations

// OccurrenceCounter assigns zero-based occurrence indices per citation
// number in document order. One counter belongs to one render; reset it
// before rendering new document content. Not safe for concurrent use.
type OccurrenceCounter struct {
	counts map[string]int
}

// NewOccurrenceCounter returns an empty counter
func NewOccurrenceCounter() *OccurrenceCounter {
	return &OccurrenceCounter{counts: make(map[string]int)}
}

// Next returns the next occurrence index for number
func (c *OccurrenceCounter) Next(number string) int {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	idx := c.counts[number]
	c.counts[number] = idx + 1
	return idx
}

// Reset forgets every count
func (c *OccurrenceCounter) Reset() {
	c.counts = make(map[string]int)
}

// Snapshot returns how many times each number has been seen
func (c *OccurrenceCounter) Snapshot() map[string]int {
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}
