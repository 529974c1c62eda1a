package symsearch

import "container/heap"

// CostBucket holds the state sets queued at one cost.
type CostBucket[S any] struct {
	Cost         int
	Sets         []S
	IndexInQueue int
}

type costHeap[S any] struct {
	items      []*CostBucket[S]
	descending bool
}

func (queue costHeap[S]) Len() int { return len(queue.items) }
func (queue costHeap[S]) Less(i, j int) bool {
	if queue.descending {
		return queue.items[i].Cost > queue.items[j].Cost
	}
	return queue.items[i].Cost < queue.items[j].Cost
}
func (queue costHeap[S]) Swap(i, j int) {
	queue.items[i], queue.items[j] = queue.items[j], queue.items[i]
	queue.items[i].IndexInQueue = i
	queue.items[j].IndexInQueue = j
}

func (queue *costHeap[S]) Push(x any) {
	item := x.(*CostBucket[S])
	item.IndexInQueue = len(queue.items)
	queue.items = append(queue.items, item)
}

func (queue *costHeap[S]) Pop() any {
	old := queue.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	queue.items = old[:n-1]
	return item
}

// BucketQueue is a cost-indexed worklist of state sets. Sets pushed at a
// cost already queued are appended to that cost's bucket, so each cost is
// popped once with everything queued for it.
type BucketQueue[S any] struct {
	heap   costHeap[S]
	byCost map[int]*CostBucket[S]
}

// NewBucketQueue returns a queue popping the lowest cost first, or the
// highest cost first when descending is set.
func NewBucketQueue[S any](descending bool) *BucketQueue[S] {
	q := &BucketQueue[S]{
		heap:   costHeap[S]{descending: descending},
		byCost: make(map[int]*CostBucket[S]),
	}
	heap.Init(&q.heap)
	return q
}

// Push queues sets at cost.
func (q *BucketQueue[S]) Push(cost int, sets ...S) {
	if item, ok := q.byCost[cost]; ok {
		item.Sets = append(item.Sets, sets...)
		return
	}
	item := &CostBucket[S]{Cost: cost, Sets: append([]S(nil), sets...)}
	heap.Push(&q.heap, item)
	q.byCost[cost] = item
}

// Pop removes and returns the next bucket.
func (q *BucketQueue[S]) Pop() (int, []S) {
	item := heap.Pop(&q.heap).(*CostBucket[S])
	delete(q.byCost, item.Cost)
	return item.Cost, item.Sets
}

// Peek returns the next bucket without removing it.
func (q *BucketQueue[S]) Peek() (int, []S, bool) {
	if len(q.heap.items) == 0 {
		return 0, nil, false
	}
	item := q.heap.items[0]
	return item.Cost, item.Sets, true
}

// Len returns the number of queued costs.
func (q *BucketQueue[S]) Len() int { return len(q.heap.items) }
