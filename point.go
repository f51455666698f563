package kdtree

type Point interface {
	// Return the value X_{dim}, dim is started from 0
	GetValue(dim int) float64
	Dims() int
}

// Vec is a plain coordinate vector satisfying Point.
type Vec []float64

func NewVec(vals ...float64) (v Vec) {
	v = make(Vec, len(vals))
	copy(v, vals)
	return
}

func (v Vec) GetValue(dim int) float64 { return v[dim] }
func (v Vec) Dims() int                { return len(v) }

// Sub returns v - p over the dimensions of v.
func (v Vec) Sub(p Point) (res Vec) {
	res = make(Vec, len(v))
	for dim := range v {
		res[dim] = v[dim] - p.GetValue(dim)
	}
	return
}

// Add returns v + p over the dimensions of v.
func (v Vec) Add(p Point) (res Vec) {
	res = make(Vec, len(v))
	for dim := range v {
		res[dim] = v[dim] + p.GetValue(dim)
	}
	return
}

func (v Vec) Scale(s float64) (res Vec) {
	res = make(Vec, len(v))
	for dim := range v {
		res[dim] = v[dim] * s
	}
	return
}

func SquaredDistance(lhs, rhs Point, numDims int) (dist float64) {
	for dim := 0; dim < numDims; dim++ {
		d := lhs.GetValue(dim) - rhs.GetValue(dim)
		dist += d * d
	}
	return
}

// IsInside reports whether point lies within radius of center, boundary inclusive.
func IsInside(point, center Point, radius float64, numDims int) (isInside bool) {
	if radius < 0 {
		return
	}
	isInside = SquaredDistance(point, center, numDims) <= radius*radius
	return
}

// planeArray orders planes[begin:end] by the byDim value of the points they reference.
type planeArray struct {
	planes []splittingPlane
	points []Point
	byDim  int
}

// Len is part of sort.Interface.
func (s *planeArray) Len() int {
	return len(s.planes)
}

// Swap is part of sort.Interface.
func (s *planeArray) Swap(i, j int) {
	s.planes[i], s.planes[j] = s.planes[j], s.planes[i]
}

// Less is part of sort.Interface.
func (s *planeArray) Less(i, j int) bool {
	return s.GetValue(i) < s.GetValue(j)
}

func (s *planeArray) GetValue(idx int) float64 {
	return s.points[s.planes[idx].orgIndex].GetValue(s.byDim)
}

func (s *planeArray) SubArray(begin, end int) *planeArray {
	return &planeArray{
		planes: s.planes[begin:end],
		points: s.points,
		byDim:  s.byDim,
	}
}
