package analysis

import "sort"

// Count is one entry of a ranked histogram.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// counter tallies keys and remembers the order they were first seen in,
// which breaks ties when ranking.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns the n most frequent keys. A negative n returns them all.
func (c *counter) top(n int) []Count {
	out := make([]Count, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, Count{Key: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
