package kdtree

import (
	"math"
	"reflect"
	"sort"
	"testing"

	"github.com/pkg/errors"
)

func torusSquaredDistance(lhs, rhs, period Point, numDims int) (dist float64) {
	for dim := 0; dim < numDims; dim++ {
		d := math.Abs(lhs.GetValue(dim) - rhs.GetValue(dim))
		d = math.Min(d, period.GetValue(dim)-d)
		dist += d * d
	}
	return
}

func TestForEachShift(t *testing.T) {
	for numDims := 1; numDims <= 3; numDims++ {
		center := make(Vec, numDims)
		period := make(Vec, numDims)
		for dim := range period {
			period[dim] = float64(dim + 1)
		}
		seen := make(map[[3]float64]bool)
		forEachShift(center, period, numDims, func(shifted Vec) {
			var key [3]float64
			copy(key[:], shifted)
			for dim, val := range shifted {
				if val != 0 && math.Abs(val) != period[dim] {
					t.Errorf("unexpected shift %v", shifted)
				}
			}
			seen[key] = true
		})
		if want := int(math.Pow(3, float64(numDims))); len(seen) != want {
			t.Errorf("dims %v: %v distinct shifts, want %v", numDims, len(seen), want)
		}
	}
}

func TestKdInsideWrapDedup(t *testing.T) {
	period := NewVec(10, 10)
	points := []Point{NewVec(0.5, 0.5), NewVec(9.5, 9.5), NewVec(5, 5), NewVec(9.5, 0.5), NewVec(0.5, 5)}
	kdt := newBalancedTree(t, 2, points)

	got, err := kdt.InsideWrap(NewVec(0, 0), 1, period)
	if err != nil {
		t.Fatalf("InsideWrap() error = %v", err)
	}
	if !reflect.DeepEqual(got, []int{0, 1, 3}) {
		t.Errorf("InsideWrap() = %v, want [0 1 3]", got)
	}

	//a radius larger than the domain matches every image, still each index once
	got, err = kdt.InsideWrap(NewVec(0, 0), 25, period)
	if err != nil {
		t.Fatalf("InsideWrap() error = %v", err)
	}
	if !reflect.DeepEqual(got, []int{0, 1, 2, 3, 4}) {
		t.Errorf("InsideWrap() = %v, want all once", got)
	}
}

func TestKdInsideWrapRandom(t *testing.T) {
	for numDims := 1; numDims <= 3; numDims++ {
		period := make(Vec, numDims)
		for dim := range period {
			period[dim] = 100
		}
		points := NewRandPoints(numDims, 100, 800, int64(80+numDims))
		kdt := newBalancedTree(t, numDims, points)
		centers := NewRandPoints(numDims, 100, 10, int64(90+numDims))
		for _, center := range centers {
			radius := 18.5
			got, err := kdt.InsideWrap(center, radius, period)
			if err != nil {
				t.Fatalf("InsideWrap() error = %v", err)
			}
			var want []int
			for i, p := range points {
				if torusSquaredDistance(p, center, period, numDims) <= radius*radius {
					want = append(want, i)
				}
			}
			if len(got) != len(want) || (len(want) > 0 && !reflect.DeepEqual(got, want)) {
				t.Errorf("dims %v center %v: found %v matchs, however %v expected", numDims, center, len(got), len(want))
			}
		}
	}
}

func TestKdNearestNeighboursWrap(t *testing.T) {
	for numDims := 1; numDims <= 3; numDims++ {
		period := make(Vec, numDims)
		for dim := range period {
			period[dim] = 50
		}
		points := NewRandPoints(numDims, 50, 600, int64(110+numDims))
		kdt := newBalancedTree(t, numDims, points)
		centers := NewRandPoints(numDims, 50, 10, int64(120+numDims))
		for _, k := range []int{1, 4, 12} {
			for _, center := range centers {
				got, err := kdt.NearestNeighboursWrap(center, k, period)
				if err != nil {
					t.Fatalf("NearestNeighboursWrap() error = %v", err)
				}
				var want []float64
				for _, p := range points {
					want = append(want, torusSquaredDistance(p, center, period, numDims))
				}
				sort.Float64s(want)
				if len(got) != k {
					t.Fatalf("dims %v k %v: found %v matchs, however %v expected", numDims, k, len(got), k)
				}
				seen := make(map[int]bool)
				for i, idx := range got {
					if seen[idx] {
						t.Errorf("index %v returned twice", idx)
					}
					seen[idx] = true
					d := torusSquaredDistance(points[idx], center, period, numDims)
					if math.Abs(d-want[i]) > 1e-9 {
						t.Errorf("dims %v k %v: neighbour %v at %v, want %v", numDims, k, i, d, want[i])
					}
				}
			}
		}
	}
}

func TestKdNearestNeighboursWrapCorner(t *testing.T) {
	period := NewVec(10, 10)
	points := []Point{NewVec(9.9, 9.9), NewVec(3, 3), NewVec(0.5, 0.2)}
	kdt := newBalancedTree(t, 2, points)
	got, err := kdt.NearestNeighboursWrap(NewVec(0.1, 0.1), 2, period)
	if err != nil {
		t.Fatalf("NearestNeighboursWrap() error = %v", err)
	}
	if !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("NearestNeighboursWrap() = %v, want [0 2]", got)
	}
	if got, _ = kdt.NearestNeighboursWrap(NewVec(0.1, 0.1), 0, period); len(got) != 0 {
		t.Errorf("k=0: found %v matchs, however 0 expected", len(got))
	}
}

func TestKdNearestNeighboursWrapTies(t *testing.T) {
	period := NewVec(10, 10)
	//every point but the last lies one unit away on the torus
	points := []Point{NewVec(9, 0), NewVec(0, 9), NewVec(1, 0), NewVec(0, 1), NewVec(5, 5)}
	kdt := newBalancedTree(t, 2, points)

	got, err := kdt.NearestNeighboursWrap(NewVec(0, 0), 3, period)
	if err != nil {
		t.Fatalf("NearestNeighboursWrap() error = %v", err)
	}
	if !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("NearestNeighboursWrap() = %v, want [0 1 2]", got)
	}

	got, err = kdt.NearestNeighboursWrap(NewVec(0, 0), 10, period)
	if err != nil {
		t.Fatalf("NearestNeighboursWrap() error = %v", err)
	}
	if !reflect.DeepEqual(got, []int{0, 1, 2, 3, 4}) {
		t.Errorf("NearestNeighboursWrap() = %v, want every point once", got)
	}
}

func TestKdWrapInvalidPeriod(t *testing.T) {
	kdt := newBalancedTree(t, 2, NewRandPoints(2, 10, 20, 131))
	tests := []struct {
		name   string
		period Point
	}{
		{"nil", nil},
		{"missing dim", NewVec(10)},
		{"zero", NewVec(10, 0)},
		{"negative", NewVec(-1, 10)},
		{"nan", NewVec(10, math.NaN())},
		{"inf", NewVec(math.Inf(1), 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := kdt.InsideWrap(NewVec(1, 1), 2, tt.period); errors.Cause(err) != ErrInvalidPeriod {
				t.Errorf("InsideWrap() error = %v, want ErrInvalidPeriod", err)
			}
			if _, err := kdt.NearestNeighboursWrap(NewVec(1, 1), 2, tt.period); errors.Cause(err) != ErrInvalidPeriod {
				t.Errorf("NearestNeighboursWrap() error = %v, want ErrInvalidPeriod", err)
			}
		})
	}
}

func TestUniqueInts(t *testing.T) {
	tests := []struct {
		in, want []int
	}{
		{nil, nil},
		{[]int{1}, []int{1}},
		{[]int{1, 1, 2, 3, 3, 3, 4}, []int{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		if got := uniqueInts(append([]int(nil), tt.in...)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("uniqueInts(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
