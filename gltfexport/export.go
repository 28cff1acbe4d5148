// Package gltfexport writes meshes as binary glTF. Faces are emitted at
// triangle level (glTF has no polygon primitive), one glTF mesh per
// sub-object group and one primitive per material within a group.
package gltfexport

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/polyobj/mesh"
)

type vertexKey struct {
	pos, tex, norm int
}

type primitiveBuild struct {
	material int32
	indices  []uint32
}

type groupBuild struct {
	id    int32
	verts map[vertexKey]uint32
	order []vertexKey
	prims []*primitiveBuild
}

func ExportDocument(m *mesh.Mesh) (*gltf.Document, error) {
	if m == nil || m.NumFaces() == 0 {
		return nil, errors.Errorf("Mesh has no faces")
	}
	pos := m.AttributeByKind(mesh.Position)
	if pos == nil {
		return nil, errors.Errorf("Mesh has no position attribute")
	}
	tex := m.AttributeByKind(mesh.TexCoord)
	norm := m.AttributeByKind(mesh.Normal)
	matAttr := m.NamedAttribute(mesh.AttrMaterial)
	subAttr := m.NamedAttribute(mesh.AttrSubObject)

	perFaceValue := func(a *mesh.Attribute, face []int) int32 {
		if a == nil {
			return 0
		}
		return a.Int(a.ValueIndex(face[0]))
	}

	groups := make(map[int32]*groupBuild)
	groupOrder := make([]*groupBuild, 0, 1)

	for f := 0; f < m.NumFaces(); f++ {
		face := m.Face(f)
		g := groups[perFaceValue(subAttr, face)]
		if g == nil {
			g = &groupBuild{
				id:    perFaceValue(subAttr, face),
				verts: make(map[vertexKey]uint32),
			}
			groups[g.id] = g
			groupOrder = append(groupOrder, g)
		}

		matID := perFaceValue(matAttr, face)
		var prim *primitiveBuild
		for _, p := range g.prims {
			if p.material == matID {
				prim = p
				break
			}
		}
		if prim == nil {
			prim = &primitiveBuild{material: matID}
			g.prims = append(g.prims, prim)
		}

		corner := func(c int) uint32 {
			key := vertexKey{pos: pos.ValueIndex(c), tex: -1, norm: -1}
			if tex != nil {
				key.tex = tex.ValueIndex(c)
			}
			if norm != nil {
				key.norm = norm.ValueIndex(c)
			}
			if vi, ok := g.verts[key]; ok {
				return vi
			}
			vi := uint32(len(g.order))
			g.verts[key] = vi
			g.order = append(g.order, key)
			return vi
		}

		// Simple fan for faces above arity 3.
		for i := 0; i < len(face)-2; i++ {
			prim.indices = append(prim.indices,
				corner(face[0]), corner(face[i+1]), corner(face[i+2]))
		}
	}

	doc := gltf.NewDocument()

	materialIndex := make(map[int32]uint32)
	materialOf := func(id int32) *uint32 {
		if matAttr == nil {
			return nil
		}
		if mi, ok := materialIndex[id]; ok {
			return gltf.Index(mi)
		}
		name, ok := matAttr.KeyByValue(strconv.Itoa(int(id)))
		if !ok {
			name = fmt.Sprintf("material_%d", id)
		}
		doc.Materials = append(doc.Materials, &gltf.Material{Name: name})
		mi := uint32(len(doc.Materials) - 1)
		materialIndex[id] = mi
		return gltf.Index(mi)
	}

	for iGroup, g := range groupOrder {
		positions := make([][3]float32, len(g.order))
		var texcoords [][2]float32
		var normals [][3]float32
		if tex != nil {
			texcoords = make([][2]float32, len(g.order))
		}
		if norm != nil {
			normals = make([][3]float32, len(g.order))
		}
		for i, key := range g.order {
			positions[i] = pos.Vec3(key.pos)
			if tex != nil {
				texcoords[i] = tex.Vec2(key.tex)
			}
			if norm != nil {
				normals[i] = norm.Vec3(key.norm)
			}
		}

		attributes := make(map[string]uint32)
		attributes["POSITION"] = modeler.WritePosition(doc, positions)
		if tex != nil {
			attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, texcoords)
		}
		if norm != nil {
			attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
		}

		name := fmt.Sprintf("group_%d", iGroup)
		if subAttr != nil {
			if recorded, ok := subAttr.KeyByValue(strconv.Itoa(int(g.id))); ok {
				name = recorded
			}
		}

		gltfMesh := &gltf.Mesh{Name: name}
		for _, prim := range g.prims {
			indicesAccessor := modeler.WriteIndices(doc, prim.indices)
			gltfMesh.Primitives = append(gltfMesh.Primitives, &gltf.Primitive{
				Indices:    &indicesAccessor,
				Attributes: attributes,
				Material:   materialOf(prim.material),
			})
		}

		doc.Meshes = append(doc.Meshes, gltfMesh)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: name,
			Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
		})
	}

	return doc, nil
}

// Export writes the mesh as binary glTF (glb).
func Export(w io.Writer, m *mesh.Mesh) error {
	doc, err := ExportDocument(m)
	if err != nil {
		return err
	}
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
