package timer

import "container/heap"

// regHeap implements container/heap.Interface for Registration,
// sorted by TriggerAt (earliest first).
type regHeap []Registration

func (h regHeap) Len() int           { return len(h) }
func (h regHeap) Less(i, j int) bool { return h[i].TriggerAt.Before(h[j].TriggerAt) }
func (h regHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *regHeap) Push(x any) {
	*h = append(*h, x.(Registration))
}

func (h *regHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// heapUpsert adds r, dropping any earlier entry with the same ID.
func heapUpsert(h *regHeap, r Registration) {
	heapRemoveByID(h, r.ID)
	heap.Push(h, r)
}

// heapPop removes and returns the earliest registration. Panics if empty.
func heapPop(h *regHeap) Registration {
	return heap.Pop(h).(Registration)
}

// heapRemoveByID removes the registration with the given ID.
func heapRemoveByID(h *regHeap, id int) bool {
	for i, r := range *h {
		if r.ID == id {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
