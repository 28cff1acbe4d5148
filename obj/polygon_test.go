package obj_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/polyobj/mesh"
	"github.com/mogaika/polyobj/obj"
)

// buildTriMesh assembles a triangulated mesh from shared positions. masks,
// when non-nil, become the added_edges attribute with one value per face.
func buildTriMesh(positions []mgl32.Vec3, tris [][3]int, masks []int32) *mesh.Mesh {
	m := mesh.NewMesh()
	posCorners := make([]int, 0, 3*len(tris))
	for _, tri := range tris {
		m.AddFace(3)
		posCorners = append(posCorners, tri[0], tri[1], tri[2])
	}
	m.AddAttribute(mesh.NewVec3Attribute(mesh.Position, positions, posCorners))

	if masks != nil {
		corners := make([]int, 0, 3*len(tris))
		for i := range tris {
			corners = append(corners, i, i, i)
		}
		m.AddAttribute(mesh.NewIntAttribute(mesh.AttrAddedEdges, masks, corners))
	}
	return m
}

func polygonPositions(m *mesh.Mesh, p obj.Polygon) []int {
	pos := m.AttributeByKind(mesh.Position)
	out := make([]int, len(p.Corners))
	for i, c := range p.Corners {
		out[i] = pos.ValueIndex(c)
	}
	return out
}

var quadPositions = []mgl32.Vec3{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
}

func TestQuadMerge(t *testing.T) {
	m := buildTriMesh(quadPositions,
		[][3]int{{0, 1, 2}, {0, 2, 3}},
		[]int32{1 << 2, 1 << 0})

	polys, err := obj.ReconstructPolygons(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != 1 {
		t.Fatalf("Got %d polygons, expected 1", len(polys))
	}
	got := polygonPositions(m, polys[0])
	want := []int{0, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Polygon boundary %v, expected %v", got, want)
			break
		}
	}
}

func TestDisagreementKeepsTriangles(t *testing.T) {
	// Only one side of the shared edge marks it synthetic.
	m := buildTriMesh(quadPositions,
		[][3]int{{0, 1, 2}, {0, 2, 3}},
		[]int32{1 << 2, 0})

	polys, err := obj.ReconstructPolygons(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != 2 {
		t.Fatalf("Got %d polygons, expected 2", len(polys))
	}
	for i, p := range polys {
		if len(p.Corners) != 3 {
			t.Errorf("Polygon %d has %d corners, expected 3", i, len(p.Corners))
		}
	}
}

func TestWindingMismatchKeepsTriangles(t *testing.T) {
	// Second triangle flipped: both faces walk the shared edge in the
	// same direction, so the boundaries cannot be spliced.
	m := buildTriMesh(quadPositions,
		[][3]int{{0, 1, 2}, {3, 2, 0}},
		[]int32{1 << 2, 1 << 1})

	polys, err := obj.ReconstructPolygons(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != 2 {
		t.Fatalf("Got %d polygons, expected 2", len(polys))
	}
}

func TestNoMarkersPassthrough(t *testing.T) {
	m := buildTriMesh(quadPositions,
		[][3]int{{0, 1, 2}, {0, 2, 3}},
		nil)

	polys, err := obj.ReconstructPolygons(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != 2 {
		t.Fatalf("Got %d polygons, expected 2", len(polys))
	}
	for i, p := range polys {
		if p.Face != i {
			t.Errorf("Polygon %d anchored at face %d", i, p.Face)
		}
	}
}

var octagonPositions = []mgl32.Vec3{
	{0, 0, 0}, {1, 0, 0}, {2, 1, 0}, {2, 2, 0},
	{1, 3, 0}, {0, 3, 0}, {-1, 2, 0}, {-1, 1, 0},
}

// octagonTris is a fan triangulation with the interior edges marked the way
// the decoder marks them: bit 0 for the edge into the fan apex, bit 2 for
// the edge back out.
func octagonTris() ([][3]int, []int32) {
	tris := make([][3]int, 6)
	masks := make([]int32, 6)
	for i := 0; i < 6; i++ {
		tris[i] = [3]int{0, i + 1, i + 2}
		if i > 0 {
			masks[i] |= 1 << 0
		}
		if i < 5 {
			masks[i] |= 1 << 2
		}
	}
	return tris, masks
}

func TestOctagonTransitiveMerge(t *testing.T) {
	tris, masks := octagonTris()
	m := buildTriMesh(octagonPositions, tris, masks)

	polys, err := obj.ReconstructPolygons(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != 1 {
		t.Fatalf("Got %d polygons, expected 1", len(polys))
	}
	if len(polys[0].Corners) != 8 {
		t.Fatalf("Got %d corners, expected 8", len(polys[0].Corners))
	}

	got := polygonPositions(m, polys[0])
	for i := range got {
		if got[i] != i {
			t.Errorf("Polygon boundary %v, expected 0..7 in order", got)
			break
		}
	}
}

func TestMergeKeepsSurvivorOrder(t *testing.T) {
	// Two quads with an unrelated triangle between them. The merged quads
	// must stay at the positions of their first triangles.
	positions := append(append([]mgl32.Vec3{}, quadPositions...),
		mgl32.Vec3{5, 0, 0}, mgl32.Vec3{6, 0, 0}, mgl32.Vec3{6, 1, 0}, mgl32.Vec3{5, 1, 0},
		mgl32.Vec3{9, 0, 0}, mgl32.Vec3{10, 0, 0}, mgl32.Vec3{10, 1, 0})

	tris := [][3]int{
		{0, 1, 2},
		{8, 9, 10},
		{0, 2, 3},
		{4, 5, 6},
		{4, 6, 7},
	}
	masks := []int32{1 << 2, 0, 1 << 0, 1 << 2, 1 << 0}

	m := buildTriMesh(positions, tris, masks)
	polys, err := obj.ReconstructPolygons(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != 3 {
		t.Fatalf("Got %d polygons, expected 3", len(polys))
	}
	wantAnchors := []int{0, 1, 3}
	wantCorners := []int{4, 3, 4}
	for i, p := range polys {
		if p.Face != wantAnchors[i] {
			t.Errorf("Polygon %d anchored at face %d, expected %d", i, p.Face, wantAnchors[i])
		}
		if len(p.Corners) != wantCorners[i] {
			t.Errorf("Polygon %d has %d corners, expected %d", i, len(p.Corners), wantCorners[i])
		}
	}
}
