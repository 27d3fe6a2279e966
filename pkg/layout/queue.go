package layout

import (
	"container/heap"
	"sort"
)

// Node is anything that can sit in an invalidation queue.
type Node interface {
	comparable
	// Depth is the distance from the root (root = 0).
	Depth() int
}

type queueItem[N Node] struct {
	node  N
	depth int
	seq   uint64
	index int
}

type itemHeap[N Node] []*queueItem[N]

func (h itemHeap[N]) Len() int { return len(h) }

func (h itemHeap[N]) Less(i, j int) bool {
	if h[i].depth != h[j].depth {
		return h[i].depth < h[j].depth
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap[N]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *itemHeap[N]) Push(x any) {
	it := x.(*queueItem[N])
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *itemHeap[N]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// Queue is a de-duplicated invalidation queue that dequeues shallower
// nodes first, and nodes of equal depth in insertion order. Depth is read
// once at enqueue time. The zero value is ready to use.
type Queue[N Node] struct {
	items itemHeap[N]
	index map[N]*queueItem[N]
	seq   uint64
}

// Enqueue adds n. It returns false if n was already queued.
func (q *Queue[N]) Enqueue(n N) bool {
	if q.index == nil {
		q.index = make(map[N]*queueItem[N])
	}
	if _, ok := q.index[n]; ok {
		return false
	}
	q.seq++
	it := &queueItem[N]{node: n, depth: n.Depth(), seq: q.seq}
	heap.Push(&q.items, it)
	q.index[n] = it
	return true
}

// Dequeue removes and returns the shallowest node.
func (q *Queue[N]) Dequeue() (N, bool) {
	if len(q.items) == 0 {
		var zero N
		return zero, false
	}
	it := heap.Pop(&q.items).(*queueItem[N])
	delete(q.index, it.node)
	return it.node, true
}

// Peek returns the node Dequeue would return without removing it.
func (q *Queue[N]) Peek() (N, bool) {
	if len(q.items) == 0 {
		var zero N
		return zero, false
	}
	return q.items[0].node, true
}

// Remove drops n from the queue. It returns false if n was not queued.
func (q *Queue[N]) Remove(n N) bool {
	it, ok := q.index[n]
	if !ok {
		return false
	}
	heap.Remove(&q.items, it.index)
	delete(q.index, n)
	return true
}

// Contains reports whether n is queued.
func (q *Queue[N]) Contains(n N) bool {
	_, ok := q.index[n]
	return ok
}

// Len returns the number of queued nodes.
func (q *Queue[N]) Len() int {
	return len(q.items)
}

// Clear empties the queue.
func (q *Queue[N]) Clear() {
	q.items = nil
	q.index = nil
}

// Snapshot returns the queued nodes in dequeue order without modifying
// the queue.
func (q *Queue[N]) Snapshot() []N {
	items := make([]*queueItem[N], len(q.items))
	copy(items, q.items)
	sort.Slice(items, func(i, j int) bool {
		if items[i].depth != items[j].depth {
			return items[i].depth < items[j].depth
		}
		return items[i].seq < items[j].seq
	})
	out := make([]N, len(items))
	for i, it := range items {
		out[i] = it.node
	}
	return out
}
