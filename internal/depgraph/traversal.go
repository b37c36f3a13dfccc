package depgraph

import "sort"

// AffectedFiles returns the unique files that transitively depend on start,
// up to maxDepth hops over reverse adjacency. Breadth-first with an explicit
// FIFO queue and a visited set, so it terminates on cycles. The result is
// sorted and excludes start itself. Increasing maxDepth never shrinks the
// result.
func AffectedFiles(g *Graph, start string, maxDepth int) []string {
	if !g.HasNode(start) || maxDepth < 1 {
		return nil
	}

	type item struct {
		node  string
		depth int
	}
	visited := map[string]bool{start: true}
	queue := []item{{start, 0}}
	var affected []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth == maxDepth {
			continue
		}
		for _, dependent := range g.Reverse[cur.node] {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			affected = append(affected, dependent)
			queue = append(queue, item{dependent, cur.depth + 1})
		}
	}

	sort.Strings(affected)
	return affected
}

// FindPath returns the shortest (by hop count) import path from source to
// target over forward adjacency, or nil if target is unreachable. The path
// includes both endpoints and never repeats a node.
func FindPath(g *Graph, source string, target string) []string {
	if !g.HasNode(source) || !g.HasNode(target) {
		return nil
	}
	if source == target {
		return []string{source}
	}

	predecessor := map[string]string{source: ""}
	queue := []string{source}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.Forward[cur] {
			if _, seen := predecessor[e.To]; seen {
				continue
			}
			predecessor[e.To] = cur
			if e.To == target {
				// Walk back to the source
				path := []string{target}
				for at := cur; at != ""; at = predecessor[at] {
					path = append(path, at)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, e.To)
		}
	}
	return nil
}

// ImportanceScore is a fan-in/API-surface heuristic used for
// prioritization: 2 x reverse dependents + exported symbol count.
func ImportanceScore(g *Graph, path string) int {
	facts, ok := g.Nodes[path]
	if !ok {
		return 0
	}
	return 2*len(g.Reverse[path]) + len(facts.Exports)
}
