package kdtree

import (
	"sort"

	datastructures "github.com/deepfabric/go-datastructures"
)

type priorityItem struct {
	index       int
	distSquared float64
}

// Compare orders by distSquared, then by index.
func (p priorityItem) Compare(other datastructures.Comparable) int {
	o := other.(priorityItem)
	switch {
	case p.distSquared < o.distSquared:
		return -1
	case p.distSquared > o.distSquared:
		return 1
	case p.index < o.index:
		return -1
	case p.index > o.index:
		return 1
	}
	return 0
}

// priorityQueue keeps the maxSize closest items seen so far, ordered by
// ascending distSquared. Items of equal distance keep their insertion order.
type priorityQueue struct {
	items   []priorityItem
	maxSize int
}

func (q *priorityQueue) reset(maxSize int) {
	if maxSize < 0 {
		maxSize = 0
	}
	if cap(q.items) < maxSize {
		q.items = make([]priorityItem, 0, maxSize)
	}
	q.items = q.items[:0]
	q.maxSize = maxSize
}

func (q *priorityQueue) Len() int { return len(q.items) }

func (q *priorityQueue) full() bool { return len(q.items) >= q.maxSize }

// worst returns the largest retained distSquared. Only valid when Len() > 0.
func (q *priorityQueue) worst() float64 { return q.items[len(q.items)-1].distSquared }

// insert places item at its sorted position and drops the last one if the
// queue overflows. It returns false if item did not make it into the queue.
func (q *priorityQueue) insert(item priorityItem) bool {
	newPlace := sort.Search(len(q.items), func(i int) bool {
		return q.items[i].distSquared > item.distSquared
	})
	if newPlace >= q.maxSize {
		return false
	}
	if len(q.items) < q.maxSize {
		q.items = append(q.items, priorityItem{})
	}
	copy(q.items[newPlace+1:], q.items[newPlace:len(q.items)-1])
	q.items[newPlace] = item
	return true
}
