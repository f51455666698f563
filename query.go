package kdtree

import (
	"math"
	"sort"
)

type searchItem struct {
	node int
	//lower bound of the distance from the center to any point under node
	planeDist float64
}

// Searcher runs queries against one tree with its own scratch space.
// Distinct Searchers may query the same balanced tree concurrently; a single
// Searcher may not be shared between goroutines.
type Searcher struct {
	tree  *KdTree
	stack []searchItem
	queue priorityQueue
}

func (t *KdTree) NewSearcher() *Searcher {
	return &Searcher{tree: t}
}

func (s *Searcher) resetStack() []searchItem {
	numIndexed := len(s.tree.planes)
	if cap(s.stack) < numIndexed {
		s.stack = make([]searchItem, 0, numIndexed)
	}
	return s.stack[:0]
}

// Inside returns the indices of points within radius of center, boundary
// inclusive, in no particular order.
func (s *Searcher) Inside(center Point, radius float64) (indices []int) {
	indices = s.appendInside(nil, center, radius)
	return
}

func (s *Searcher) appendInside(indices []int, center Point, radius float64) []int {
	t := s.tree
	if t.root == noChild || radius < 0 {
		return indices
	}
	radiusSquared := radius * radius
	bound := radius + t.epsilon

	stack := s.resetStack()
	stack = append(stack, searchItem{node: t.root})
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		plane := &t.planes[item.node]

		if SquaredDistance(t.points[plane.orgIndex], center, t.NumDims) <= radiusSquared {
			indices = append(indices, plane.orgIndex)
		}

		signedDist := center.GetValue(plane.splitDim) + plane.distance
		if signedDist == 0 {
			if plane.left != noChild {
				stack = append(stack, searchItem{node: plane.left})
			}
			if plane.right != noChild {
				stack = append(stack, searchItem{node: plane.right})
			}
			continue
		}
		near, far := plane.left, plane.right
		if signedDist > 0 {
			near, far = far, near
		}
		//push far first so that near is explored first
		if far != noChild && math.Abs(signedDist) < bound {
			stack = append(stack, searchItem{node: far})
		}
		if near != noChild {
			stack = append(stack, searchItem{node: near})
		}
	}
	s.stack = stack
	return indices
}

// Outside returns, in ascending order, the indices of all points that Inside
// does not report. Points added after the last Balance are always outside.
func (s *Searcher) Outside(center Point, radius float64) (indices []int) {
	numPoints := len(s.tree.points)
	insidePoints := s.appendInside(make([]int, 0, 16), center, radius)
	sort.Ints(insidePoints)

	indices = make([]int, 0, numPoints-len(insidePoints))
	next := 0
	for _, idx := range insidePoints {
		for ; next < idx; next++ {
			indices = append(indices, next)
		}
		next = idx + 1
	}
	for ; next < numPoints; next++ {
		indices = append(indices, next)
	}
	return
}

// NearestNeighbours returns up to k indices ordered by ascending distance to
// center. It returns nothing if k <= 0.
func (s *Searcher) NearestNeighbours(center Point, k int) (indices []int) {
	s.nearest(center, k)
	indices = make([]int, len(s.queue.items))
	for i, item := range s.queue.items {
		indices[i] = item.index
	}
	return
}

// nearest leaves the k closest points to center in s.queue.
func (s *Searcher) nearest(center Point, k int) {
	t := s.tree
	if t.root == noChild || k <= 0 {
		s.queue.reset(0)
		return
	}
	s.queue.reset(min(k, len(t.planes)))
	queue := &s.queue
	within := func(dist float64) bool {
		return !queue.full() || dist < math.Sqrt(queue.worst())+t.epsilon
	}

	stack := s.resetStack()
	stack = append(stack, searchItem{node: t.root})
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		//the bound may have shrunk since item was pushed
		if !within(item.planeDist) {
			continue
		}
		plane := &t.planes[item.node]
		queue.insert(priorityItem{
			index:       plane.orgIndex,
			distSquared: SquaredDistance(t.points[plane.orgIndex], center, t.NumDims),
		})

		signedDist := center.GetValue(plane.splitDim) + plane.distance
		if signedDist == 0 {
			if plane.left != noChild {
				stack = append(stack, searchItem{node: plane.left, planeDist: item.planeDist})
			}
			if plane.right != noChild {
				stack = append(stack, searchItem{node: plane.right, planeDist: item.planeDist})
			}
			continue
		}
		near, far := plane.left, plane.right
		if signedDist > 0 {
			near, far = far, near
		}
		absDist := math.Abs(signedDist)
		//push far first so that near is explored first
		if far != noChild && within(absDist) {
			stack = append(stack, searchItem{node: far, planeDist: math.Max(absDist, item.planeDist)})
		}
		if near != noChild {
			stack = append(stack, searchItem{node: near, planeDist: item.planeDist})
		}
	}
	s.stack = stack
}

func (t *KdTree) Inside(center Point, radius float64) []int {
	return t.searcher.Inside(center, radius)
}

func (t *KdTree) Outside(center Point, radius float64) []int {
	return t.searcher.Outside(center, radius)
}

func (t *KdTree) NearestNeighbours(center Point, k int) []int {
	return t.searcher.NearestNeighbours(center, k)
}
