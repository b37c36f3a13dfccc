package depgraph

import "sort"

// DetectCycles finds dependency cycles using Tarjan's strongly connected
// components algorithm over forward adjacency, implemented iteratively with
// an explicit frame stack so stack depth stays bounded on large graphs.
// Only components of size >= 2 are cycles. Output order is deterministic:
// components and their members are sorted lexicographically.
func DetectCycles(g *Graph) [][]string {
	index := make(map[string]int, len(g.Nodes))
	lowlink := make(map[string]int, len(g.Nodes))
	onStack := make(map[string]bool, len(g.Nodes))
	var stack []string
	counter := 0

	var cycles [][]string

	type frame struct {
		node string
		edge int
	}

	for _, root := range g.Paths() {
		if _, visited := index[root]; visited {
			continue
		}

		frames := []frame{{node: root}}
		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			v := f.node

			if f.edge == 0 {
				index[v] = counter
				lowlink[v] = counter
				counter++
				stack = append(stack, v)
				onStack[v] = true
			}

			descended := false
			neighbors := g.Forward[v]
			for f.edge < len(neighbors) {
				w := neighbors[f.edge].To
				f.edge++
				if _, visited := index[w]; !visited {
					frames = append(frames, frame{node: w})
					descended = true
					break
				}
				if onStack[w] && index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
			if descended {
				continue
			}

			// v is fully explored: propagate lowlink to the parent frame,
			// then check whether v roots a component
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].node
				if lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}

			if lowlink[v] == index[v] {
				var component []string
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					component = append(component, w)
					if w == v {
						break
					}
				}
				if len(component) >= 2 {
					sort.Strings(component)
					cycles = append(cycles, component)
				}
			}
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles
}
