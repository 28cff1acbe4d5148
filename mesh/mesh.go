package mesh

// Mesh owns an ordered face list and a set of attributes. Faces reference
// corners by id; corner ids are assigned consecutively by AddFace. The obj
// package treats meshes as read-only for the duration of one encode call.
type Mesh struct {
	faces [][]int
	attrs []*Attribute

	numCorners int
}

func NewMesh() *Mesh {
	return &Mesh{}
}

// AddFace appends a face with the given corner count and returns its
// corner ids.
func (m *Mesh) AddFace(corners int) []int {
	face := make([]int, corners)
	for i := range face {
		face[i] = m.numCorners + i
	}
	m.numCorners += corners
	m.faces = append(m.faces, face)
	return face
}

func (m *Mesh) NumFaces() int    { return len(m.faces) }
func (m *Mesh) Face(i int) []int { return m.faces[i] }
func (m *Mesh) NumCorners() int  { return m.numCorners }

func (m *Mesh) AddAttribute(a *Attribute) {
	m.attrs = append(m.attrs, a)
}

func (m *Mesh) NumAttributes() int        { return len(m.attrs) }
func (m *Mesh) Attribute(i int) *Attribute { return m.attrs[i] }

// AttributeByKind returns the first attribute of the kind, or nil.
func (m *Mesh) AttributeByKind(kind AttrKind) *Attribute {
	for _, a := range m.attrs {
		if a.kind == kind {
			return a
		}
	}
	return nil
}

// NamedAttribute returns the generic attribute whose metadata name matches,
// or nil.
func (m *Mesh) NamedAttribute(name string) *Attribute {
	for _, a := range m.attrs {
		if a.kind == Generic && a.Name() == name {
			return a
		}
	}
	return nil
}
