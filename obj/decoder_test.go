package obj_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/mogaika/polyobj/mesh"
	"github.com/mogaika/polyobj/obj"
)

const quadObj = `# comment line
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestDecodeQuad(t *testing.T) {
	m, err := obj.NewDecoder().DecodeFromBuffer([]byte(quadObj))
	if err != nil {
		t.Fatal(err)
	}
	if m.NumFaces() != 2 {
		t.Fatalf("Got %d faces, expected 2 after triangulation", m.NumFaces())
	}

	pos := m.AttributeByKind(mesh.Position)
	if pos == nil || pos.Len() != 4 {
		t.Fatal("Bad position attribute")
	}
	if tex := m.AttributeByKind(mesh.TexCoord); tex == nil || tex.Len() != 4 {
		t.Fatal("Bad texture coordinate attribute")
	}
	if norm := m.AttributeByKind(mesh.Normal); norm == nil || norm.Len() != 1 {
		t.Fatal("Bad normal attribute")
	}

	added := m.NamedAttribute(mesh.AttrAddedEdges)
	if added == nil {
		t.Fatal("Missing added_edges attribute")
	}
	wantMasks := []int32{1 << 2, 1 << 0}
	for i := 0; i < m.NumFaces(); i++ {
		face := m.Face(i)
		mask := added.Int(added.ValueIndex(face[0]))
		if mask != wantMasks[i] {
			t.Errorf("Face %d mask %d, expected %d", i, mask, wantMasks[i])
		}
	}
}

func TestDecodeTrianglesHaveNoMarkers(t *testing.T) {
	data := `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`
	m, err := obj.NewDecoder().DecodeFromBuffer([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if m.NumFaces() != 1 {
		t.Fatalf("Got %d faces, expected 1", m.NumFaces())
	}
	if m.NamedAttribute(mesh.AttrAddedEdges) != nil {
		t.Error("Triangle-only input should not carry added_edges")
	}
	if m.NamedAttribute(mesh.AttrMaterial) != nil {
		t.Error("Input without usemtl should not carry a material attribute")
	}
	if m.NamedAttribute(mesh.AttrSubObject) != nil {
		t.Error("Input without o/g should not carry a sub_obj attribute")
	}
}

func TestDecodeMaterials(t *testing.T) {
	data := `v 0 0 0
v 1 0 0
v 0 1 0
usemtl stone
f 1 2 3
usemtl grass
f 1 2 3
usemtl stone
f 1 2 3
`
	m, err := obj.NewDecoder().DecodeFromBuffer([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	mat := m.NamedAttribute(mesh.AttrMaterial)
	if mat == nil {
		t.Fatal("Missing material attribute")
	}
	// first-occurrence ids without a library
	if mat.Len() != 2 {
		t.Errorf("Material attribute size %d, expected 2", mat.Len())
	}
	if v, _ := mat.Meta("stone"); v != "0" {
		t.Errorf("Material 'stone' mapped to %q, expected 0", v)
	}
	if v, _ := mat.Meta("grass"); v != "1" {
		t.Errorf("Material 'grass' mapped to %q, expected 1", v)
	}

	wantIDs := []int32{0, 1, 0}
	for i := 0; i < m.NumFaces(); i++ {
		face := m.Face(i)
		if got := mat.Int(mat.ValueIndex(face[0])); got != wantIDs[i] {
			t.Errorf("Face %d material %d, expected %d", i, got, wantIDs[i])
		}
	}
}

func TestDecodeSubObjects(t *testing.T) {
	data := `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
o wheel
f 1 2 3
o chassis
f 1 2 3
`
	m, err := obj.NewDecoder().DecodeFromBuffer([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	sub := m.NamedAttribute(mesh.AttrSubObject)
	if sub == nil {
		t.Fatal("Missing sub_obj attribute")
	}
	// implicit unnamed group for the face before the first o
	if sub.Len() != 3 {
		t.Errorf("Sub-object attribute size %d, expected 3", sub.Len())
	}
	if v, _ := sub.Meta("wheel"); v != "1" {
		t.Errorf("Sub-object 'wheel' mapped to %q, expected 1", v)
	}
	if v, _ := sub.Meta("chassis"); v != "2" {
		t.Errorf("Sub-object 'chassis' mapped to %q, expected 2", v)
	}
	if name, ok := sub.KeyByValue("0"); ok {
		t.Errorf("Unnamed group should not have a recorded name, got %q", name)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"NoFaces", "v 0 0 0\n"},
		{"UnknownDirective", "v 0 0 0\nvp 1 2 3\n"},
		{"ShortVertex", "v 0 0\n"},
		{"BadFloat", "v 0 x 0\n"},
		{"RefOutOfRange", "v 0 0 0\nf 1 2 3\n"},
		{"RefZero", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"TwoCornerFace", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"MixedRefsInFace", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/1 2/1 3\n"},
		{"MixedRefsAcrossFaces", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1 2 3\nf 1/1 2/1 3/1\n"},
	}
	for _, c := range cases {
		if _, err := obj.NewDecoder().DecodeFromBuffer([]byte(c.data)); err == nil {
			t.Errorf("%s: expected decode error", c.name)
		}
	}
}

func TestDecodeFromFileWithLibrary(t *testing.T) {
	dir := t.TempDir()

	mtl := `newmtl red
Kd 1 0 0
newmtl green
Kd 0 1 0
newmtl blue
Kd 0 0 1
`
	if err := ioutil.WriteFile(filepath.Join(dir, "palette.mtl"), []byte(mtl), 0644); err != nil {
		t.Fatal(err)
	}

	data := `mtllib palette.mtl
v 0 0 0
v 1 0 0
v 0 1 0
usemtl green
f 1 2 3
`
	path := filepath.Join(dir, "model.obj")
	if err := ioutil.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := obj.NewDecoder().DecodeFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	mat := m.NamedAttribute(mesh.AttrMaterial)
	if mat == nil {
		t.Fatal("Missing material attribute")
	}
	// the library defines 3 materials, so the value list covers all of them
	if mat.Len() != 3 {
		t.Errorf("Material attribute size %d, expected 3", mat.Len())
	}
	if v, _ := mat.Meta("green"); v != "1" {
		t.Errorf("Material 'green' mapped to %q, expected library index 1", v)
	}
	if file, _ := mat.Meta(mesh.MetaFileName); file != "palette.mtl" {
		t.Errorf("Library file recorded as %q", file)
	}
	face := m.Face(0)
	if got := mat.Int(mat.ValueIndex(face[0])); got != 1 {
		t.Errorf("Face material %d, expected 1", got)
	}
}

func TestDecodeMissingLibraryFallsBack(t *testing.T) {
	dir := t.TempDir()
	data := `mtllib nope.mtl
v 0 0 0
v 1 0 0
v 0 1 0
usemtl green
f 1 2 3
`
	path := filepath.Join(dir, "model.obj")
	if err := ioutil.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := obj.NewDecoder().DecodeFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	mat := m.NamedAttribute(mesh.AttrMaterial)
	if mat == nil || mat.Len() != 1 {
		t.Fatal("Expected first-occurrence material ids for missing library")
	}
}

func TestDecodeFromFileMissing(t *testing.T) {
	if _, err := obj.NewDecoder().DecodeFromFile(filepath.Join(os.TempDir(), "does-not-exist-polyobj.obj")); err == nil {
		t.Error("Expected error for missing file")
	}
}
