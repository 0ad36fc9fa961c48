package search

import "container/heap"

// frontierItem references a node in the engine's arena. seq is the push
// order and only breaks ties between equal priorities.
type frontierItem struct {
	node     int
	priority int
	seq      uint64
}

// frontier is a min-heap over (priority, seq)
type frontier struct {
	items []frontierItem
	seq   uint64
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	if f.items[i].priority != f.items[j].priority {
		return f.items[i].priority < f.items[j].priority
	}
	return f.items[i].seq < f.items[j].seq
}

func (f *frontier) Swap(i, j int) { f.items[i], f.items[j] = f.items[j], f.items[i] }

func (f *frontier) Push(x any) { f.items = append(f.items, x.(frontierItem)) }

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	item := old[n-1]
	f.items = old[:n-1]
	return item
}

// push adds a node with the next sequence number
func (f *frontier) push(node, priority int) {
	heap.Push(f, frontierItem{node: node, priority: priority, seq: f.seq})
	f.seq++
}

// pop removes the entry with the lowest priority, oldest first on ties
func (f *frontier) pop() frontierItem {
	return heap.Pop(f).(frontierItem)
}
