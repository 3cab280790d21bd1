package analytics

// visitorSet is a set of IP addresses.
type visitorSet map[string]struct{}

func (s visitorSet) add(ip string) {
	s[ip] = struct{}{}
}

func (s visitorSet) size() int64 {
	return int64(len(s))
}

// categoryCounter accumulates per-label clicks and visitors, remembering the order
// in which labels first appeared.
type categoryCounter struct {
	order    []string
	clicks   map[string]int64
	visitors map[string]visitorSet
}

func newCategoryCounter() *categoryCounter {
	return &categoryCounter{
		clicks:   make(map[string]int64),
		visitors: make(map[string]visitorSet),
	}
}

func (c *categoryCounter) add(label, ip string) {
	set, ok := c.visitors[label]
	if !ok {
		set = make(visitorSet)
		c.visitors[label] = set
		c.order = append(c.order, label)
	}
	set.add(ip)
	c.clicks[label]++
}

func (c *categoryCounter) result() []CategoryStats {
	stats := make([]CategoryStats, 0, len(c.order))
	for _, label := range c.order {
		stats = append(stats, CategoryStats{
			Label:          label,
			Clicks:         c.clicks[label],
			UniqueVisitors: c.visitors[label].size(),
		})
	}
	return stats
}
