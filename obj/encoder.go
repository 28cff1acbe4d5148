// Package obj converts meshes to Wavefront OBJ text and back. The encoder
// reconstructs the original polygons of a triangulated mesh from the
// added_edges attribute, emits only the materials actually referenced by
// faces, and preserves named sub-object partitions.
package obj

import (
	"os"

	"github.com/pkg/errors"

	"github.com/mogaika/polyobj/mesh"
)

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// EncodeToBuffer serializes the mesh. The mesh is borrowed read-only for
// the duration of the call; no state survives between calls.
func (e *Encoder) EncodeToBuffer(m *mesh.Mesh) ([]byte, error) {
	if m == nil || m.NumFaces() == 0 {
		return nil, errors.Errorf("Mesh has no faces")
	}
	idx, err := buildAttrIndex(m)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to index attributes")
	}

	polys := resolvePolygons(m, idx)
	mats := groupMaterials(m, idx, polys)
	subs := partitionSubObjects(m, idx, polys)

	le := &lineEmitter{m: m, idx: idx, mats: mats, subs: subs}
	return le.emit(polys), nil
}

// EncodeToFile encodes fully in memory first, so a failed encode never
// leaves a partially written file behind the path.
func (e *Encoder) EncodeToFile(m *mesh.Mesh, path string) error {
	data, err := e.EncodeToBuffer(m)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to open %q for writing", path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrapf(err, "Failed to write %q", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "Failed to close %q", path)
	}
	return nil
}
