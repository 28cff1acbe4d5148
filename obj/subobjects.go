package obj

import (
	"strconv"

	"github.com/mogaika/polyobj/mesh"

	"github.com/mogaika/polyobj/utils"
)

// subObjects assigns every sub-object group id a printable name: the one
// recorded in the attribute metadata when present, otherwise a synthesized
// placeholder unique within this encode.
type subObjects struct {
	attr  *mesh.Attribute
	names map[int32]string
}

func partitionSubObjects(m *mesh.Mesh, idx *attrIndex, polys []Polygon) *subObjects {
	s := &subObjects{attr: idx.subObj}
	if s.attr == nil {
		return s
	}
	s.names = make(map[int32]string)
	var rng utils.RandomNameGenerator
	for _, p := range polys {
		id := faceValue(s.attr, m.Face(p.Face))
		if _, seen := s.names[id]; seen {
			continue
		}
		if name, ok := s.attr.KeyByValue(strconv.Itoa(int(id))); ok {
			s.names[id] = name
		} else {
			s.names[id] = rng.RandomName()
		}
	}
	return s
}

func (s *subObjects) present() bool { return s.attr != nil }

func (s *subObjects) faceGroup(m *mesh.Mesh, face int) int32 {
	return faceValue(s.attr, m.Face(face))
}

func (s *subObjects) name(id int32) string { return s.names[id] }
