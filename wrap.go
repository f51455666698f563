package kdtree

import (
	"math"
	"sort"

	datastructures "github.com/deepfabric/go-datastructures"
	"github.com/pkg/errors"
)

// ErrInvalidPeriod is returned by the wrap-around queries when the period is
// missing a dimension or has a non-positive component.
var ErrInvalidPeriod = errors.New("invalid wrap period")

func (s *Searcher) checkPeriod(period Point) (err error) {
	numDims := s.tree.NumDims
	if period == nil || period.Dims() < numDims {
		dims := 0
		if period != nil {
			dims = period.Dims()
		}
		err = errors.Wrapf(ErrInvalidPeriod, "got %d dims, want %d", dims, numDims)
	} else {
		for dim := 0; dim < numDims; dim++ {
			//also rejects NaN
			if val := period.GetValue(dim); !(val > 0) || math.IsInf(val, 1) {
				err = errors.Wrapf(ErrInvalidPeriod, "dim %d is %v", dim, val)
				break
			}
		}
	}
	if err != nil {
		logger.Warningf("rejected wrap query: %v", err)
	}
	return
}

// forEachShift calls fn with center translated by every combination of
// -1, 0 and +1 periods along each of the numDims axes.
func forEachShift(center, period Point, numDims int, fn func(shifted Vec)) {
	shifted := make(Vec, numDims)
	offsets := make([]int, numDims)
	for dim := range offsets {
		offsets[dim] = -1
	}
	for {
		for dim := 0; dim < numDims; dim++ {
			shifted[dim] = center.GetValue(dim) + float64(offsets[dim])*period.GetValue(dim)
		}
		fn(shifted)

		dim := 0
		for ; dim < numDims; dim++ {
			if offsets[dim] < 1 {
				offsets[dim]++
				break
			}
			offsets[dim] = -1
		}
		if dim == numDims {
			return
		}
	}
}

// InsideWrap is Inside over a domain that wraps around with the given
// per-axis period. Indices are unique and ascending.
func (s *Searcher) InsideWrap(center Point, radius float64, period Point) (indices []int, err error) {
	if err = s.checkPeriod(period); err != nil {
		return
	}
	forEachShift(center, period, s.tree.NumDims, func(shifted Vec) {
		indices = s.appendInside(indices, shifted, radius)
	})
	sort.Ints(indices)
	indices = uniqueInts(indices)
	return
}

// NearestNeighboursWrap is NearestNeighbours over a domain that wraps around
// with the given per-axis period. Points are expected to lie within one
// period of the origin of the domain.
//
// Each point is measured by its closest periodic image, and the result holds
// at most k indices ordered by ascending distance. It is not the union of the
// 3^NumDims shifted queries sorted by index, which could hold up to 3^NumDims*k
// entries.
func (s *Searcher) NearestNeighboursWrap(center Point, k int, period Point) (indices []int, err error) {
	if err = s.checkPeriod(period); err != nil || k <= 0 {
		return
	}
	var candidates []priorityItem
	forEachShift(center, period, s.tree.NumDims, func(shifted Vec) {
		s.nearest(shifted, k)
		candidates = append(candidates, s.queue.items...)
	})

	//keep the closest image of each point
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].index != candidates[j].index {
			return candidates[i].index < candidates[j].index
		}
		return candidates[i].distSquared < candidates[j].distSquared
	})
	oa := datastructures.NewOrderedArray(k)
	for i, item := range candidates {
		if i == 0 || item.index != candidates[i-1].index {
			oa.Put(item)
		}
	}
	items := oa.Finalize()
	indices = make([]int, len(items))
	for i, item := range items {
		indices[i] = item.(priorityItem).index
	}
	return
}

// uniqueInts drops adjacent duplicates in place.
func uniqueInts(a []int) []int {
	if len(a) == 0 {
		return a
	}
	j := 1
	for i := 1; i < len(a); i++ {
		if a[i] != a[j-1] {
			a[j] = a[i]
			j++
		}
	}
	return a[:j]
}

func (t *KdTree) InsideWrap(center Point, radius float64, period Point) ([]int, error) {
	return t.searcher.InsideWrap(center, radius, period)
}

func (t *KdTree) NearestNeighboursWrap(center Point, k int, period Point) ([]int, error) {
	return t.searcher.NearestNeighboursWrap(center, k, period)
}
