package routing

import (
	"math"

	"github.com/e-kotov/nvdb2osmpbf/pkg/graph"
)

// MinHeap is a concrete-typed min-heap for Dijkstra's priority queue.
// Avoids interface boxing overhead of container/heap.
type MinHeap struct {
	items []PQItem
}

// PQItem is a priority queue entry.
type PQItem struct {
	Node uint32
	Dist uint32
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node, dist uint32) {
	h.items = append(h.items, PQItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) PeekDist() uint32 {
	if len(h.items) == 0 {
		return math.MaxUint32
	}
	return h.items[0].Dist
}

func (h *MinHeap) Reset() {
	h.items = h.items[:0]
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Dist >= h.items[parent].Dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].Dist < h.items[smallest].Dist {
			smallest = left
		}
		if right < n && h.items[right].Dist < h.items[smallest].Dist {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// ShortestPaths runs single-source Dijkstra from source over g, returning
// the travel-time distance (milliseconds) to every node reachable from it;
// unreached nodes carry math.MaxUint32. Used by the --verify step to
// cross-check pkg/graph's weakly connected component against actual
// directed reachability — a produced network can have a connected
// undirected shape but a one-way-tagged dead end a router could never
// leave.
func ShortestPaths(g *graph.Graph, source uint32) []uint32 {
	dist := make([]uint32, g.NumNodes)
	for i := range dist {
		dist[i] = math.MaxUint32
	}
	if g.NumNodes == 0 {
		return dist
	}
	dist[source] = 0

	var pq MinHeap
	pq.Push(source, 0)

	for pq.Len() > 0 {
		item := pq.Pop()
		u, d := item.Node, item.Dist
		if d > dist[u] {
			continue
		}

		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			newDist := d + g.Weight[e]
			if newDist < dist[v] {
				dist[v] = newDist
				pq.Push(v, newDist)
			}
		}
	}

	return dist
}

// Reachable counts how many entries in a ShortestPaths result are
// actually reached (distance < math.MaxUint32).
func Reachable(dist []uint32) int {
	n := 0
	for _, d := range dist {
		if d < math.MaxUint32 {
			n++
		}
	}
	return n
}
