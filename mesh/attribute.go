package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

type AttrKind int

const (
	Position AttrKind = iota
	Normal
	TexCoord
	Generic
)

// Reserved metadata keys and well-known generic attribute names.
const (
	MetaName     = "name"
	MetaFileName = "file_name"

	AttrMaterial   = "material"
	AttrSubObject  = "sub_obj"
	AttrAddedEdges = "added_edges"
)

// Attribute is a tagged variant over AttrKind. Only the value storage
// matching the kind is populated: vec3 for Position/Normal, vec2 for
// TexCoord, ints for Generic. corners maps every mesh corner id to an
// index into the value list.
type Attribute struct {
	kind AttrKind

	vec3 []mgl32.Vec3
	vec2 []mgl32.Vec2
	ints []int32

	corners []int
	meta    map[string]string
}

func NewVec3Attribute(kind AttrKind, values []mgl32.Vec3, corners []int) *Attribute {
	return &Attribute{kind: kind, vec3: values, corners: corners}
}

func NewVec2Attribute(values []mgl32.Vec2, corners []int) *Attribute {
	return &Attribute{kind: TexCoord, vec2: values, corners: corners}
}

func NewIntAttribute(name string, values []int32, corners []int) *Attribute {
	a := &Attribute{kind: Generic, ints: values, corners: corners}
	if name != "" {
		a.SetMeta(MetaName, name)
	}
	return a
}

func (a *Attribute) Kind() AttrKind { return a.kind }

// Len is the value list size.
func (a *Attribute) Len() int {
	switch a.kind {
	case Position, Normal:
		return len(a.vec3)
	case TexCoord:
		return len(a.vec2)
	default:
		return len(a.ints)
	}
}

func (a *Attribute) CornerCount() int { return len(a.corners) }

// ValueIndex returns the value list index referenced by the corner.
func (a *Attribute) ValueIndex(corner int) int { return a.corners[corner] }

func (a *Attribute) Vec3(i int) mgl32.Vec3 { return a.vec3[i] }
func (a *Attribute) Vec2(i int) mgl32.Vec2 { return a.vec2[i] }
func (a *Attribute) Int(i int) int32       { return a.ints[i] }

func (a *Attribute) Name() string {
	name, _ := a.Meta(MetaName)
	return name
}

func (a *Attribute) Meta(key string) (string, bool) {
	if a.meta == nil {
		return "", false
	}
	v, ok := a.meta[key]
	return v, ok
}

func (a *Attribute) SetMeta(key, value string) {
	if a.meta == nil {
		a.meta = make(map[string]string)
	}
	a.meta[key] = value
}

// KeyByValue performs the reverse metadata lookup: the first key (in
// unspecified order) whose entry equals value, skipping reserved keys.
// Used to recover material and sub-object names from their numeric ids.
func (a *Attribute) KeyByValue(value string) (string, bool) {
	for k, v := range a.meta {
		if k == MetaName || k == MetaFileName {
			continue
		}
		if v == value {
			return k, true
		}
	}
	return "", false
}
