package obj

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/mogaika/polyobj/mesh"
)

// lineEmitter is the only component that produces text. Directive order is
// fixed: mtllib, v, vt, vn, then the interleaved o/usemtl/f stream.
type lineEmitter struct {
	m    *mesh.Mesh
	idx  *attrIndex
	mats *materialGroups
	subs *subObjects

	buf bytes.Buffer
}

func (le *lineEmitter) line(format string, args ...interface{}) {
	fmt.Fprintf(&le.buf, format+"\n", args...)
}

// formatFloat is shortest-round-trip for float32, so emitted values carry
// exactly the precision of the source value.
func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func (le *lineEmitter) emit(polys []Polygon) []byte {
	if file := le.mats.libraryFile(); file != "" {
		le.line("mtllib %s", file)
	}

	for i := 0; i < le.idx.pos.Len(); i++ {
		v := le.idx.pos.Vec3(i)
		le.line("v %s %s %s", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
	}
	if le.idx.tex != nil {
		for i := 0; i < le.idx.tex.Len(); i++ {
			vt := le.idx.tex.Vec2(i)
			le.line("vt %s %s", formatFloat(vt[0]), formatFloat(vt[1]))
		}
	}
	if le.idx.norm != nil {
		for i := 0; i < le.idx.norm.Len(); i++ {
			vn := le.idx.norm.Vec3(i)
			le.line("vn %s %s %s", formatFloat(vn[0]), formatFloat(vn[1]), formatFloat(vn[2]))
		}
	}

	haveTex := le.idx.tex != nil
	haveNorm := le.idx.norm != nil

	var curSub, curMat int32
	subSet, matSet := false, false

	for _, p := range polys {
		if le.subs.present() {
			if id := le.subs.faceGroup(le.m, p.Face); !subSet || id != curSub {
				le.line("o %s", le.subs.name(id))
				curSub, subSet = id, true
			}
		}
		if le.mats.present() {
			if id := le.mats.faceMaterial(le.m, p.Face); !matSet || id != curMat {
				le.line("usemtl %s", le.mats.name(id))
				curMat, matSet = id, true
			}
		}

		var sb strings.Builder
		sb.WriteString("f")
		for _, corner := range p.Corners {
			pi := le.idx.pos.ValueIndex(corner) + 1
			switch {
			case haveTex && haveNorm:
				fmt.Fprintf(&sb, " %d/%d/%d", pi, le.idx.tex.ValueIndex(corner)+1, le.idx.norm.ValueIndex(corner)+1)
			case haveNorm:
				fmt.Fprintf(&sb, " %d//%d", pi, le.idx.norm.ValueIndex(corner)+1)
			case haveTex:
				fmt.Fprintf(&sb, " %d/%d", pi, le.idx.tex.ValueIndex(corner)+1)
			default:
				fmt.Fprintf(&sb, " %d", pi)
			}
		}
		le.line("%s", sb.String())
	}

	return le.buf.Bytes()
}
