package paths

import (
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Graph is the static adjacency the cache searches over.
type Graph interface {
	Len() int
	Neighbors(id int) []int
}

const (
	unresolved  = -2
	unreachable = -1
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corridor_path_cache_lookups_total",
		Help: "Distance/path cache lookups by table and result",
	}, []string{"table", "result"})

	distanceHits   = cacheLookups.WithLabelValues("distance", "hit")
	distanceMisses = cacheLookups.WithLabelValues("distance", "miss")
	pathHits       = cacheLookups.WithLabelValues("path", "hit")
	pathMisses     = cacheLookups.WithLabelValues("path", "miss")
)

// Cache memoizes shortest distances and one canonical shortest path per
// cell pair. The board topology never changes within a session, so entries
// are never invalidated.
//
// Both tables are dense N×N and symmetric: resolving (a,b) also resolves
// (b,a), with the path reversed. A Cache is not safe for concurrent use.
type Cache struct {
	g     Graph
	n     int
	dist  []int   // n*n; unresolved, unreachable or the hop count
	paths [][]int // n*n; nil until resolved
	known []bool  // n*n; path entry resolved (possibly unreachable)
}

func New(g Graph) *Cache {
	n := g.Len()
	dist := make([]int, n*n)
	for i := range dist {
		dist[i] = unresolved
	}
	return &Cache{
		g:     g,
		n:     n,
		dist:  dist,
		paths: make([][]int, n*n),
		known: make([]bool, n*n),
	}
}

// Distance returns the hop count between a and b. ok is false when b cannot
// be reached from a.
func (c *Cache) Distance(a, b int) (int, bool) {
	if a == b {
		return 0, true
	}
	d := c.dist[a*c.n+b]
	if d == unresolved {
		distanceMisses.Inc()
		c.resolveDistances(a)
		d = c.dist[a*c.n+b]
	} else {
		distanceHits.Inc()
	}
	if d == unreachable {
		return 0, false
	}
	return d, true
}

// Path returns the canonical shortest path from a to b, both endpoints
// included. ok is false when b cannot be reached from a. The returned slice
// is shared with the cache and must not be modified.
func (c *Cache) Path(a, b int) ([]int, bool) {
	if a == b {
		return []int{a}, true
	}
	idx := a*c.n + b
	if !c.known[idx] {
		pathMisses.Inc()
		c.registerPath(a, b, c.search(a, b))
	} else {
		pathHits.Inc()
	}
	p := c.paths[idx]
	return p, p != nil
}

// resolveDistances runs one BFS from a and fills row a (and column a) for
// every pair not resolved yet.
func (c *Cache) resolveDistances(a int) {
	depth := make([]int, c.n)
	for i := range depth {
		depth[i] = unreachable
	}
	depth[a] = 0
	queue := []int{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range c.g.Neighbors(cur) {
			if depth[nb] == unreachable {
				depth[nb] = depth[cur] + 1
				queue = append(queue, nb)
			}
		}
	}
	for b, d := range depth {
		if b == a {
			continue
		}
		c.registerDistance(a, b, d)
	}
}

func (c *Cache) registerDistance(a, b, d int) {
	if c.dist[a*c.n+b] != unresolved {
		return
	}
	c.dist[a*c.n+b] = d
	c.dist[b*c.n+a] = d
}

// search is a BFS from a that stops as soon as b is discovered. Neighbors
// are expanded in adjacency order, which makes the returned path canonical.
func (c *Cache) search(a, b int) []int {
	prev := make([]int, c.n)
	for i := range prev {
		prev[i] = -1
	}
	visited := make([]bool, c.n)
	visited[a] = true
	queue := []int{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range c.g.Neighbors(cur) {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			prev[nb] = cur
			if nb == b {
				return walkBack(prev, b)
			}
			queue = append(queue, nb)
		}
	}
	return nil
}

func (c *Cache) registerPath(a, b int, p []int) {
	if c.known[a*c.n+b] {
		return
	}
	c.known[a*c.n+b] = true
	c.known[b*c.n+a] = true
	if p == nil {
		c.registerDistance(a, b, unreachable)
		return
	}
	c.paths[a*c.n+b] = p
	rev := slices.Clone(p)
	slices.Reverse(rev)
	c.paths[b*c.n+a] = rev
	c.registerDistance(a, b, len(p)-1)
}

// walkBack rebuilds the path ending at end from BFS parent pointers.
func walkBack(prev []int, end int) []int {
	var p []int
	for cur := end; cur != -1; cur = prev[cur] {
		p = append(p, cur)
	}
	slices.Reverse(p)
	return p
}

// Nearest returns the cell of from closest to target and its distance.
// Ties keep the earliest entry; unreachable cells are ignored. ok is false
// when none of from can reach target.
func (c *Cache) Nearest(from []int, target int) (best, dist int, ok bool) {
	best, dist = -1, 0
	for _, f := range from {
		d, reachable := c.Distance(f, target)
		if !reachable {
			continue
		}
		if !ok || d < dist {
			best, dist, ok = f, d, true
		}
	}
	return best, dist, ok
}

// BestPathTowardUsed returns the corridor needed to connect target to the
// network already in used. With an empty network it is the cached shortest
// path from base. Otherwise a BFS grows outward from target and stops at
// the first used cell, so only the marginal segment is paid for. The path
// runs from the joining cell to target; a target already in used yields
// just [target].
func (c *Cache) BestPathTowardUsed(base, target int, used map[int]bool) ([]int, bool) {
	if len(used) == 0 {
		return c.Path(base, target)
	}
	if used[target] {
		return []int{target}, true
	}

	prev := make([]int, c.n)
	for i := range prev {
		prev[i] = -1
	}
	visited := make([]bool, c.n)
	visited[target] = true
	queue := []int{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range c.g.Neighbors(cur) {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			prev[nb] = cur
			if used[nb] {
				// walkBack yields target..nb; flip so the joining cell leads.
				p := walkBack(prev, nb)
				slices.Reverse(p)
				return p, true
			}
			queue = append(queue, nb)
		}
	}
	return nil, false
}
