package obj

import (
	"fmt"
	"strconv"

	"github.com/mogaika/polyobj/mesh"
)

// materialGroups holds the ordered set of material ids actually referenced
// by the output faces. The set may be a strict subset of whatever the
// upstream material library defines; only referenced ids are emitted.
type materialGroups struct {
	attr  *mesh.Attribute
	order []int32
	slots map[int32]int
}

func groupMaterials(m *mesh.Mesh, idx *attrIndex, polys []Polygon) *materialGroups {
	g := &materialGroups{attr: idx.material}
	if g.attr == nil {
		return g
	}
	g.slots = make(map[int32]int)
	for _, p := range polys {
		id := faceValue(g.attr, m.Face(p.Face))
		if _, seen := g.slots[id]; !seen {
			g.slots[id] = len(g.order)
			g.order = append(g.order, id)
		}
	}
	return g
}

func (g *materialGroups) present() bool { return g.attr != nil }

func (g *materialGroups) faceMaterial(m *mesh.Mesh, face int) int32 {
	return faceValue(g.attr, m.Face(face))
}

// name recovers the material name recorded in the attribute metadata,
// falling back to a stable synthesized one.
func (g *materialGroups) name(id int32) string {
	if name, ok := g.attr.KeyByValue(strconv.Itoa(int(id))); ok {
		return name
	}
	return fmt.Sprintf("material_%d", id)
}

// libraryFile is the mtllib reference carried over from decode, if any.
func (g *materialGroups) libraryFile() string {
	if g.attr == nil {
		return ""
	}
	file, _ := g.attr.Meta(mesh.MetaFileName)
	return file
}
