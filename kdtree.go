package kdtree

import (
	"github.com/juju/loggo"
	"github.com/keegancsmith/nth"
)

const (
	MaxDims int = 8
	// Epsilon is the default tolerance added to the pruning radius so that
	// points lying on a splitting plane are not missed due to rounding.
	Epsilon float64 = 1e-6

	noChild int = -1
)

var logger = loggo.GetLogger("kdtree")

type splittingPlane struct {
	//negated coordinate of the point along splitDim
	distance float64
	left     int
	right    int
	//index into KdTree.points
	orgIndex int
	splitDim int
}

// balanceDescriptor is a pending range planes[start:end+1] and the plane that
// shall point at the node this range produces.
type balanceDescriptor struct {
	start       int
	end         int
	depth       int
	leftParent  int
	rightParent int
}

// KdTree is an array-backed k-d tree. Points are appended and become visible
// to queries after the next Balance.
//
// A KdTree is not safe for concurrent use. Once balanced, concurrent readers
// may query it through their own Searcher as long as nobody appends or
// balances meanwhile.
type KdTree struct {
	NumDims int

	points     []Point
	planes     []splittingPlane
	root       int
	pointAdded bool
	epsilon    float64

	balancingStack []balanceDescriptor
	searcher       *Searcher
}

type Option func(t *KdTree)

// WithCapacity reserves room for size points.
func WithCapacity(size int) Option {
	return func(t *KdTree) { t.Reserve(size) }
}

// WithEpsilon overrides the pruning tolerance.
func WithEpsilon(eps float64) Option {
	return func(t *KdTree) {
		if eps >= 0 {
			t.epsilon = eps
		}
	}
}

func NewKdTree(numDims int, opts ...Option) (t *KdTree) {
	if numDims <= 0 || numDims > MaxDims {
		logger.Warningf("invalid number of dimensions %d, want [1, %d]", numDims, MaxDims)
		return
	}
	t = &KdTree{
		NumDims:    numDims,
		root:       noChild,
		pointAdded: true,
		epsilon:    Epsilon,
	}
	t.searcher = t.NewSearcher()
	for _, opt := range opts {
		opt(t)
	}
	return
}

// Clear drops all points and the tree built over them.
func (t *KdTree) Clear() {
	clear(t.points)
	t.points = t.points[:0]
	t.planes = t.planes[:0]
	t.root = noChild
	t.pointAdded = true
}

func (t *KdTree) NumPoints() int { return len(t.points) }

// NumIndexed returns the number of points covered by the last Balance.
func (t *KdTree) NumIndexed() int { return len(t.planes) }

// Point returns the point added at idx. Indices are stable until Clear.
func (t *KdTree) Point(idx int) Point { return t.points[idx] }

func (t *KdTree) Points() []Point { return t.points }

func (t *KdTree) AddPoint(point Point) {
	t.points = append(t.points, point)
	t.pointAdded = true
}

func (t *KdTree) AddPoints(points []Point) {
	required := len(t.points) + len(points)
	if cap(t.points) < required {
		grown := make([]Point, len(t.points), (required+1)*2)
		copy(grown, t.points)
		t.points = grown
	}
	t.points = append(t.points, points...)
	t.pointAdded = true
}

func (t *KdTree) Reserve(size int) {
	if cap(t.points) < size {
		grown := make([]Point, len(t.points), size)
		copy(grown, t.points)
		t.points = grown
	}
	if cap(t.planes) < size {
		grown := make([]splittingPlane, len(t.planes), size)
		copy(grown, t.planes)
		t.planes = grown
	}
}

// Balance rebuilds the splitting-plane table from all points added so far.
// It does nothing if no point was added since the previous Balance.
func (t *KdTree) Balance() {
	if len(t.points) == 0 || !t.pointAdded {
		return
	}
	numPoints := len(t.points)
	if cap(t.planes) < numPoints {
		t.planes = make([]splittingPlane, numPoints)
	}
	t.planes = t.planes[:numPoints]
	for i := range t.planes {
		t.planes[i] = splittingPlane{left: noChild, right: noChild, orgIndex: i}
	}

	//pending ranges are disjoint, at most one of them empty
	if cap(t.balancingStack) < numPoints+1 {
		t.balancingStack = make([]balanceDescriptor, 0, numPoints+1)
	}
	stack := t.balancingStack[:0]
	stack = append(stack, balanceDescriptor{
		start:       0,
		end:         numPoints - 1,
		depth:       0,
		leftParent:  noChild,
		rightParent: noChild,
	})

	all := &planeArray{planes: t.planes, points: t.points}
	t.root = noChild
	for len(stack) > 0 {
		desc := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if desc.start > desc.end {
			continue
		}
		splitDim := desc.depth % t.NumDims
		median := (desc.start + desc.end) / 2

		all.byDim = splitDim
		nth.Element(all.SubArray(desc.start, desc.end+1), median-desc.start)
		if t.root == noChild {
			t.root = median
		}

		plane := &t.planes[median]
		plane.distance = -t.points[plane.orgIndex].GetValue(splitDim)
		plane.splitDim = splitDim
		plane.left = noChild
		plane.right = noChild
		if desc.leftParent != noChild {
			t.planes[desc.leftParent].left = median
		}
		if desc.rightParent != noChild {
			t.planes[desc.rightParent].right = median
		}

		if median > desc.start {
			stack = append(stack, balanceDescriptor{
				start:       desc.start,
				end:         median - 1,
				depth:       desc.depth + 1,
				leftParent:  median,
				rightParent: noChild,
			})
		}
		stack = append(stack, balanceDescriptor{
			start:       median + 1,
			end:         desc.end,
			depth:       desc.depth + 1,
			leftParent:  noChild,
			rightParent: median,
		})
	}
	t.balancingStack = stack
	t.pointAdded = false
	logger.Tracef("balanced %d points over %d dims, root %d", numPoints, t.NumDims, t.root)
}
