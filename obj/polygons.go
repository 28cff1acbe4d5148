package obj

import (
	"github.com/mogaika/polyobj/mesh"
)

// Polygon is a resolved output face: corner ids in winding order, anchored
// at the original index of the first face it absorbed.
type Polygon struct {
	Corners []int
	Face    int
}

// ReconstructPolygons merges triangles across edges marked synthetic by the
// added_edges attribute back into their original polygons. Meshes without
// the attribute pass through with every face at its stored arity.
func ReconstructPolygons(m *mesh.Mesh) ([]Polygon, error) {
	idx, err := buildAttrIndex(m)
	if err != nil {
		return nil, err
	}
	return resolvePolygons(m, idx), nil
}

type edgeRef struct {
	face  int
	local int
}

// resolvePolygons is best-effort: any inconsistency in the synthetic-edge
// metadata (one-sided marking, more than two incident faces, matching
// winding on both sides, or a splice that would revisit a vertex) leaves
// the implicated faces unmerged.
func resolvePolygons(m *mesh.Mesh, idx *attrIndex) []Polygon {
	numFaces := m.NumFaces()

	polys := make([][]int, numFaces)
	for f := 0; f < numFaces; f++ {
		polys[f] = append([]int(nil), m.Face(f)...)
	}

	if idx.addedEdges == nil {
		out := make([]Polygon, numFaces)
		for f := range polys {
			out[f] = Polygon{Corners: polys[f], Face: f}
		}
		return out
	}

	posOf := func(corner int) int {
		return idx.pos.ValueIndex(corner)
	}

	// Edge index over position value indices, built once per encode.
	edges := make(map[[2]int][]edgeRef, m.NumCorners())
	for f := 0; f < numFaces; f++ {
		face := m.Face(f)
		for e := 0; e < len(face); e++ {
			u, v := posOf(face[e]), posOf(face[(e+1)%len(face)])
			if u == v {
				continue
			}
			key := [2]int{u, v}
			if u > v {
				key = [2]int{v, u}
			}
			edges[key] = append(edges[key], edgeRef{face: f, local: e})
		}
	}

	masks := make([]int32, numFaces)
	for f := 0; f < numFaces; f++ {
		masks[f] = faceValue(idx.addedEdges, m.Face(f))
	}

	parent := make([]int, numFaces)
	for f := range parent {
		parent[f] = f
	}
	var find func(int) int
	find = func(f int) int {
		if parent[f] != f {
			parent[f] = find(parent[f])
		}
		return parent[f]
	}

	synthetic := func(ref edgeRef) bool {
		return masks[ref.face]&(1<<uint(ref.local)) != 0
	}

	for f := 0; f < numFaces; f++ {
		face := m.Face(f)
		for e := 0; e < len(face); e++ {
			self := edgeRef{face: f, local: e}
			if !synthetic(self) {
				continue
			}
			u, v := posOf(face[e]), posOf(face[(e+1)%len(face)])
			if u == v {
				continue
			}
			key := [2]int{u, v}
			if u > v {
				key = [2]int{v, u}
			}
			refs := edges[key]
			if len(refs) != 2 {
				continue
			}
			other := refs[0]
			if other == self {
				other = refs[1]
			}
			// The edge merges only when both sides mark it synthetic.
			if !synthetic(other) {
				continue
			}
			// Opposite winding required: the neighbor must walk the edge
			// as (v, u).
			oface := m.Face(other.face)
			if posOf(oface[other.local]) != v {
				continue
			}

			ra, rb := find(f), find(other.face)
			if ra == rb {
				continue
			}
			keep, drop := ra, rb
			if drop < keep {
				keep, drop = drop, keep
			}
			merged := spliceBoundaries(polys[keep], polys[drop], posOf, u, v)
			if merged == nil {
				continue
			}
			polys[keep] = merged
			polys[drop] = nil
			parent[drop] = keep
		}
	}

	out := make([]Polygon, 0, numFaces)
	for f := 0; f < numFaces; f++ {
		if polys[f] != nil && find(f) == f {
			out = append(out, Polygon{Corners: polys[f], Face: f})
		}
	}
	return out
}

// spliceBoundaries removes the shared edge {u, v} and joins the two cyclic
// boundaries at its endpoints, keeping a's starting corner and winding.
// Returns nil when the edge is not on both boundaries with opposite
// direction, or when the joined boundary would visit a vertex twice.
func spliceBoundaries(a, b []int, posOf func(int) int, u, v int) []int {
	ai := -1
	for i := range a {
		x, y := posOf(a[i]), posOf(a[(i+1)%len(a)])
		if (x == u && y == v) || (x == v && y == u) {
			ai = i
			break
		}
	}
	if ai < 0 {
		return nil
	}
	x, y := posOf(a[ai]), posOf(a[(ai+1)%len(a)])

	bj := -1
	for j := range b {
		if posOf(b[j]) == y && posOf(b[(j+1)%len(b)]) == x {
			bj = j
			break
		}
	}
	if bj < 0 {
		return nil
	}

	merged := make([]int, 0, len(a)+len(b)-2)
	merged = append(merged, a[:ai+1]...)
	for k := 2; k < len(b); k++ {
		merged = append(merged, b[(bj+k)%len(b)])
	}
	merged = append(merged, a[ai+1:]...)

	seen := make(map[int]struct{}, len(merged))
	for _, corner := range merged {
		p := posOf(corner)
		if _, dup := seen[p]; dup {
			return nil
		}
		seen[p] = struct{}{}
	}
	return merged
}
