package obj

import (
	"github.com/pkg/errors"

	"github.com/mogaika/polyobj/mesh"
)

// attrIndex resolves the mesh attributes the encoder works with: the three
// geometric attributes emitted as value lists plus the reserved generic
// attributes consumed for grouping and reconstruction.
type attrIndex struct {
	pos  *mesh.Attribute
	tex  *mesh.Attribute
	norm *mesh.Attribute

	material   *mesh.Attribute
	subObj     *mesh.Attribute
	addedEdges *mesh.Attribute
}

func buildAttrIndex(m *mesh.Mesh) (*attrIndex, error) {
	idx := &attrIndex{
		pos:        m.AttributeByKind(mesh.Position),
		tex:        m.AttributeByKind(mesh.TexCoord),
		norm:       m.AttributeByKind(mesh.Normal),
		material:   m.NamedAttribute(mesh.AttrMaterial),
		subObj:     m.NamedAttribute(mesh.AttrSubObject),
		addedEdges: m.NamedAttribute(mesh.AttrAddedEdges),
	}

	if idx.pos == nil {
		return nil, errors.Errorf("Mesh has no position attribute")
	}

	for i := 0; i < m.NumAttributes(); i++ {
		a := m.Attribute(i)
		if a.CornerCount() < m.NumCorners() {
			return nil, errors.Errorf("Attribute %d covers %d of %d corners",
				i, a.CornerCount(), m.NumCorners())
		}
		for corner := 0; corner < m.NumCorners(); corner++ {
			if vi := a.ValueIndex(corner); vi < 0 || vi >= a.Len() {
				return nil, errors.Errorf("Attribute %d corner %d references value %d outside of %d values",
					i, corner, vi, a.Len())
			}
		}
	}

	return idx, nil
}

// faceValue returns the per-face value of a generic attribute, read through
// the face's first corner. Per-face attributes map every corner of a face
// to the same value index.
func faceValue(a *mesh.Attribute, face []int) int32 {
	return a.Int(a.ValueIndex(face[0]))
}
