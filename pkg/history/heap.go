package history

import (
	"container/heap"

	"github.com/odvcencio/pushdate/pkg/object"
)

type hashMinHeap []object.Hash

func (h hashMinHeap) Len() int           { return len(h) }
func (h hashMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h hashMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hashMinHeap) Push(x any) {
	*h = append(*h, x.(object.Hash))
}

func (h *hashMinHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (h *hashMinHeap) push(x object.Hash) { heap.Push(h, x) }
func (h *hashMinHeap) pop() object.Hash  { return heap.Pop(h).(object.Hash) }
