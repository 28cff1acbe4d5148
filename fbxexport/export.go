// Package fbxexport writes meshes as binary FBX. Unlike glTF, FBX carries
// polygons natively, so reconstructed quads and n-gons survive the export
// through negative-terminated polygon vertex indices.
package fbxexport

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mogaika/fbx/builders/bfbx73"
	"github.com/pkg/errors"

	"github.com/mogaika/polyobj/mesh"
	"github.com/mogaika/polyobj/obj"
	"github.com/mogaika/polyobj/utils/fbxbuilder"
)

func Export(w io.Writer, m *mesh.Mesh, name string) error {
	polys, err := obj.ReconstructPolygons(m)
	if err != nil {
		return errors.Wrapf(err, "Failed to resolve polygons")
	}

	pos := m.AttributeByKind(mesh.Position)
	tex := m.AttributeByKind(mesh.TexCoord)
	norm := m.AttributeByKind(mesh.Normal)
	matAttr := m.NamedAttribute(mesh.AttrMaterial)

	f := fbxbuilder.NewFBXBuilder(name + ".fbx")

	vertices := make([]float64, 0, pos.Len()*3)
	for i := 0; i < pos.Len(); i++ {
		v := pos.Vec3(i)
		vertices = append(vertices, float64(v[0]), float64(v[1]), float64(v[2]))
	}

	indexes := make([]int32, 0, m.NumCorners())
	normals := make([]float64, 0)
	uv := make([]float64, 0)
	uvindexes := make([]int32, 0)
	materialSlots := make([]int32, 0, len(polys))
	materialOrder := make([]int32, 0)
	slotOf := make(map[int32]int32)

	for _, p := range polys {
		for i, corner := range p.Corners {
			vi := int32(pos.ValueIndex(corner))
			if i == len(p.Corners)-1 {
				vi = -vi - 1 // polygon terminator
			}
			indexes = append(indexes, vi)

			if norm != nil {
				n := norm.Vec3(norm.ValueIndex(corner))
				normals = append(normals, float64(n[0]), float64(n[1]), float64(n[2]))
			}
			if tex != nil {
				uvindexes = append(uvindexes, int32(tex.ValueIndex(corner)))
			}
		}
		if matAttr != nil {
			id := matAttr.Int(matAttr.ValueIndex(m.Face(p.Face)[0]))
			slot, ok := slotOf[id]
			if !ok {
				slot = int32(len(materialOrder))
				slotOf[id] = slot
				materialOrder = append(materialOrder, id)
			}
			materialSlots = append(materialSlots, slot)
		}
	}

	if tex != nil {
		for i := 0; i < tex.Len(); i++ {
			t := tex.Vec2(i)
			uv = append(uv, float64(t[0]), float64(t[1]))
		}
	}

	geometryId := f.GenerateId()
	geometryLayer := bfbx73.Layer(0).AddNodes(
		bfbx73.Version(100),
	)
	geometry := bfbx73.Geometry(geometryId, "\x00\x01Geometry", "Mesh").AddNodes(
		bfbx73.Properties70().AddNodes(
			bfbx73.P("Color", "ColorRGB", "Color", "", float64(1), float64(1), float64(1)),
		),
		bfbx73.GeometryVersion(124),
		bfbx73.Vertices(vertices),
		bfbx73.PolygonVertexIndex(indexes),
		geometryLayer,
	)

	if norm != nil {
		geometry.AddNode(
			bfbx73.LayerElementNormal(0).AddNodes(
				bfbx73.Version(101),
				bfbx73.Name(""),
				bfbx73.MappingInformationType("ByPolygonVertex"),
				bfbx73.ReferenceInformationType("Direct"),
				bfbx73.Normals(normals),
			),
		)
		geometryLayer.AddNode(
			bfbx73.LayerElement().AddNodes(
				bfbx73.Type("LayerElementNormal"),
				bfbx73.TypedIndex(0),
			),
		)
	}

	if tex != nil {
		geometry.AddNode(
			bfbx73.LayerElementUV(0).AddNodes(
				bfbx73.Version(101),
				bfbx73.Name(""),
				bfbx73.MappingInformationType("ByPolygonVertex"),
				bfbx73.ReferenceInformationType("IndexToDirect"),
				bfbx73.UV(uv),
				bfbx73.UVIndex(uvindexes),
			),
		)
		geometryLayer.AddNode(
			bfbx73.LayerElement().AddNodes(
				bfbx73.Type("LayerElementUV"),
				bfbx73.TypedIndex(0),
			),
		)
	}

	if matAttr != nil {
		geometry.AddNode(
			bfbx73.LayerElementMaterial(0).AddNodes(
				bfbx73.Version(101),
				bfbx73.Name(""),
				bfbx73.MappingInformationType("ByPolygon"),
				bfbx73.ReferenceInformationType("IndexToDirect"),
				bfbx73.Materials(materialSlots),
			),
		)
	} else {
		geometry.AddNode(
			bfbx73.LayerElementMaterial(0).AddNodes(
				bfbx73.Version(101),
				bfbx73.Name(""),
				bfbx73.MappingInformationType("AllSame"),
				bfbx73.ReferenceInformationType("IndexToDirect"),
				bfbx73.Materials([]int32{0}),
			),
		)
	}
	geometryLayer.AddNode(
		bfbx73.LayerElement().AddNodes(
			bfbx73.Type("LayerElementMaterial"),
			bfbx73.TypedIndex(0),
		),
	)

	modelId := f.GenerateId()
	model := bfbx73.Model(modelId, name+"\x00\x01Model", "Mesh").AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("InheritType", "enum", "", "", int32(1)),
			bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)

	f.AddObjects(geometry, model)
	f.AddConnections(
		bfbx73.C("OO", geometryId, modelId),
		bfbx73.C("OO", modelId, 0),
	)

	for _, id := range materialOrder {
		matName, ok := matAttr.KeyByValue(strconv.Itoa(int(id)))
		if !ok {
			matName = fmt.Sprintf("material_%d", id)
		}
		materialId := f.GenerateId()
		material := bfbx73.Material(materialId, matName+"\x00\x01Material", "").AddNodes(
			bfbx73.Version(102),
			bfbx73.ShadingModel("lambert"),
			bfbx73.MultiLayer(0),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("AmbientColor", "Color", "", "A", float64(0), float64(0), float64(0)),
				bfbx73.P("DiffuseColor", "Color", "", "A", float64(1), float64(1), float64(1)),
				bfbx73.P("Emissive", "Vector3D", "Vector", "", float64(0), float64(0), float64(0)),
				bfbx73.P("Ambient", "Vector3D", "Vector", "", float64(0), float64(0), float64(0)),
				bfbx73.P("Diffuse", "Vector3D", "Vector", "", float64(1), float64(1), float64(1)),
				bfbx73.P("Opacity", "double", "Number", "", float64(1)),
			),
		)
		f.AddObjects(material)
		f.AddConnections(bfbx73.C("OO", materialId, modelId))
	}

	return f.Write(w)
}
