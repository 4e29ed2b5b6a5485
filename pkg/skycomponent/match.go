package skycomponent

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"radiosky/internal/models"
)

// Match pairs component I of one list with component J of another.
type Match struct {
	I, J       int
	Separation float64
}

// skyPoint is a unit vector on the celestial sphere, tagged with the index of
// the component it came from.
type skyPoint struct {
	v     [3]float64
	index int
}

// Compare implements the kdtree.Comparable interface
func (p skyPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.v[d] - c.(skyPoint).v[d]
}

// Dims returns the number of dimensions for the KD-tree
func (p skyPoint) Dims() int { return 3 }

// Distance returns the squared chord length between two points
func (p skyPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(skyPoint)
	dx := p.v[0] - q.v[0]
	dy := p.v[1] - q.v[1]
	dz := p.v[2] - q.v[2]
	return dx*dx + dy*dy + dz*dz
}

// skyPoints satisfies kdtree.Interface
type skyPoints []skyPoint

func (p skyPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p skyPoints) Len() int                              { return len(p) }
func (p skyPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method
func (p skyPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(skyPlane{skyPoints: p, Dim: d}, kdtree.MedianOfMedians(skyPlane{skyPoints: p, Dim: d}))
}

// skyPlane implements sort.Interface and kdtree.SortSlicer for skyPoints
type skyPlane struct {
	skyPoints
	kdtree.Dim
}

func (p skyPlane) Less(i, j int) bool {
	return p.skyPoints[i].v[p.Dim] < p.skyPoints[j].v[p.Dim]
}

func (p skyPlane) Slice(start, end int) kdtree.SortSlicer {
	return skyPlane{skyPoints: p.skyPoints[start:end], Dim: p.Dim}
}

func (p skyPlane) Swap(i, j int) {
	p.skyPoints[i], p.skyPoints[j] = p.skyPoints[j], p.skyPoints[i]
}

// FindSkycomponentMatches pairs every component of a with its nearest
// neighbour in b, keeping pairs separated by at most tolerance radians.
// Matches are ordered by I. Nil components are ignored.
func FindSkycomponentMatches(a, b []*models.Skycomponent, tolerance float64) []Match {
	points := make(skyPoints, 0, len(b))
	for j, comp := range b {
		if comp != nil {
			points = append(points, skyPoint{v: comp.Direction().UnitVector(), index: j})
		}
	}
	matches := make([]Match, 0)
	if len(points) == 0 {
		return matches
	}
	tree := kdtree.New(points, false)

	for i, comp := range a {
		if comp == nil {
			continue
		}
		q := skyPoint{v: comp.Direction().UnitVector(), index: -1}
		nearest, dist2 := tree.Nearest(q)
		if nearest == nil {
			continue
		}
		// chord length c relates to the arc by c = 2 sin(θ/2)
		sep := 2 * math.Asin(math.Min(1, math.Sqrt(dist2)/2))
		if sep <= tolerance {
			matches = append(matches, Match{I: i, J: nearest.(skyPoint).index, Separation: sep})
		}
	}
	return matches
}
