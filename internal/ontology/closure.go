package ontology

// Closure answers descendant queries for one root term. Edges point from
// child to parent; Compute walks them backwards from the root.
type Closure struct {
	terms    map[string]struct{}
	children map[string][]string
	below    map[string]struct{}
	root     string
}

func NewClosure() *Closure {
	return &Closure{
		terms:    make(map[string]struct{}),
		children: make(map[string][]string),
		below:    make(map[string]struct{}),
	}
}

func (c *Closure) AddTerm(id string) {
	c.terms[id] = struct{}{}
}

// AddEdge records that child is_a (or part_of) parent.
func (c *Closure) AddEdge(child, parent string) {
	c.children[parent] = append(c.children[parent], child)
}

// Compute collects root and everything reachable below it.
func (c *Closure) Compute(root string) {
	c.root = root
	c.below = map[string]struct{}{root: {}}
	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range c.children[cur] {
			if _, seen := c.below[child]; seen {
				continue
			}
			c.below[child] = struct{}{}
			queue = append(queue, child)
		}
	}
}

// IsBiologicalProcess reports whether term is the process root or one of
// its descendants. Only meaningful when Compute ran with that root.
func (c *Closure) IsBiologicalProcess(term string) bool {
	_, ok := c.below[term]
	return ok
}

func (c *Closure) Size() int { return len(c.below) }

func (c *Closure) TermCount() int { return len(c.terms) }
