package obj

import (
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/mogaika/polyobj/config"
	"github.com/mogaika/polyobj/mesh"
)

const (
	tokenWord = iota
	tokenNewline
	tokenComment
)

var objLexer *lexmachine.Lexer

func init() {
	objLexer = lexmachine.NewLexer()
	objLexer.Add([]byte(`#[^\n]*`), getToken(tokenComment))
	objLexer.Add([]byte(`(\n|\r|\n\r)+`), getToken(tokenNewline))
	objLexer.Add([]byte(`[ \t]+`), skip)
	objLexer.Add([]byte(`[^ \t\r\n#]+`), getToken(tokenWord))
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

// Decoder parses Wavefront OBJ text into a mesh. Faces above arity 3 are
// fan-triangulated, and the edges introduced by that triangulation are
// recorded in the added_edges attribute so the encoder can undo it.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) DecodeFromBuffer(data []byte) (*mesh.Mesh, error) {
	return d.decode(data, "")
}

// DecodeFromFile additionally resolves mtllib references relative to the
// file, sizing the material attribute by the library definition order.
func (d *Decoder) DecodeFromFile(path string) (*mesh.Mesh, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %q", path)
	}
	return d.decode(data, filepath.Dir(path))
}

func (d *Decoder) decode(data []byte, dir string) (*mesh.Mesh, error) {
	scanner, err := objLexer.Scanner(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	st := newDecodeState(dir)

	words := make([]string, 0, 8)
	lastLine := 1
	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := itok.(*lexmachine.Token)
		lastLine = tok.StartLine

		switch tok.Type {
		case tokenComment:
		case tokenWord:
			words = append(words, string(tok.Lexeme))
		case tokenNewline:
			if len(words) > 0 {
				if err := st.directive(words, tok.StartLine); err != nil {
					return nil, err
				}
				words = words[:0]
			}
		}
	}
	if len(words) > 0 {
		if err := st.directive(words, lastLine); err != nil {
			return nil, err
		}
	}

	return st.build()
}

type cornerRef struct {
	pos, tex, norm int
}

type faceRec struct {
	corners  [3]cornerRef
	added    int32
	material int32
	group    int32
}

type decodeState struct {
	dir string

	positions []mgl32.Vec3
	texcoords []mgl32.Vec2
	normals   []mgl32.Vec3
	faces     []faceRec

	hasTex  bool
	hasNorm bool

	anyPolygons bool

	mtlFile  string
	libNames []string
	libIDs   map[string]int32
	matIDs   map[string]int32
	nextMat  int32
	curMat   int32

	seenMaterial bool
	seenGroup    bool
	groupNames   []string
	groupIDs     map[string]int32
	curGroup     int32
}

func newDecodeState(dir string) *decodeState {
	return &decodeState{
		dir:      dir,
		matIDs:   make(map[string]int32),
		groupIDs: make(map[string]int32),
		curGroup: -1,
	}
}

func (st *decodeState) directive(words []string, line int) error {
	switch words[0] {
	case "v":
		v, err := parseFloats3(words[1:])
		if err != nil {
			return errors.Wrapf(err, "Invalid vertex on line %d", line)
		}
		st.positions = append(st.positions, v)
	case "vt":
		if len(words) < 3 {
			return errors.Errorf("Invalid texture coordinate on line %d", line)
		}
		u, err0 := parseFloat(words[1])
		v, err1 := parseFloat(words[2])
		if err0 != nil || err1 != nil {
			return errors.Errorf("Invalid texture coordinate on line %d", line)
		}
		st.texcoords = append(st.texcoords, mgl32.Vec2{u, v})
	case "vn":
		v, err := parseFloats3(words[1:])
		if err != nil {
			return errors.Wrapf(err, "Invalid normal on line %d", line)
		}
		st.normals = append(st.normals, v)
	case "f":
		return st.face(words[1:], line)
	case "o", "g":
		st.group(config.DecodeName(strings.Join(words[1:], " ")))
	case "usemtl":
		st.useMaterial(config.DecodeName(strings.Join(words[1:], " ")))
	case "mtllib":
		st.materialLibrary(strings.Join(words[1:], " "))
	case "s":
		// smoothing groups are not preserved
	default:
		return errors.Errorf("Unsupported directive %q on line %d", words[0], line)
	}
	return nil
}

func parseFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

func parseFloats3(words []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if len(words) < 3 {
		return v, errors.Errorf("Expected 3 values, got %d", len(words))
	}
	for i := 0; i < 3; i++ {
		f, err := parseFloat(words[i])
		if err != nil {
			return v, errors.Errorf("Bad value %q", words[i])
		}
		v[i] = f
	}
	return v, nil
}

// parseRef parses a face corner reference "p", "p/t", "p//n" or "p/t/n"
// into 0-based indices, -1 for absent parts.
func (st *decodeState) parseRef(word string, line int) (cornerRef, error) {
	ref := cornerRef{pos: -1, tex: -1, norm: -1}
	parts := strings.Split(word, "/")
	if len(parts) > 3 {
		return ref, errors.Errorf("Invalid face reference %q on line %d", word, line)
	}
	idx := [3]int{-1, -1, -1}
	limits := [3]int{len(st.positions), len(st.texcoords), len(st.normals)}
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return ref, errors.Errorf("Invalid face reference %q on line %d", word, line)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 || n > limits[i] {
			return ref, errors.Errorf("Face reference %q out of range on line %d", word, line)
		}
		idx[i] = n - 1
	}
	ref.pos, ref.tex, ref.norm = idx[0], idx[1], idx[2]
	return ref, nil
}

func (st *decodeState) face(words []string, line int) error {
	if len(words) < 3 {
		return errors.Errorf("Face with %d corners on line %d", len(words), line)
	}

	refs := make([]cornerRef, len(words))
	for i, word := range words {
		ref, err := st.parseRef(word, line)
		if err != nil {
			return err
		}
		refs[i] = ref
	}

	withTex, withNorm := refs[0].tex >= 0, refs[0].norm >= 0
	for _, ref := range refs[1:] {
		if (ref.tex >= 0) != withTex || (ref.norm >= 0) != withNorm {
			return errors.Errorf("Inconsistent face reference format on line %d", line)
		}
	}
	if len(st.faces) == 0 {
		st.hasTex, st.hasNorm = withTex, withNorm
	} else if withTex != st.hasTex || withNorm != st.hasNorm {
		return errors.Errorf("Inconsistent face reference format on line %d", line)
	}

	if st.curGroup < 0 {
		// implicit unnamed group at the point of first occurrence
		st.curGroup = st.allocGroup("")
	}

	// Fan triangulation. Edge bits mark the fan edges added here so the
	// encoder can merge the triangles back: bit e covers the edge from
	// corner e to corner e+1 (mod 3).
	n := len(refs)
	if n > 3 {
		st.anyPolygons = true
	}
	for i := 0; i < n-2; i++ {
		var added int32
		if i > 0 {
			added |= 1 << 0
		}
		if i < n-3 {
			added |= 1 << 2
		}
		st.faces = append(st.faces, faceRec{
			corners:  [3]cornerRef{refs[0], refs[i+1], refs[i+2]},
			added:    added,
			material: st.curMat,
			group:    st.curGroup,
		})
	}
	return nil
}

func (st *decodeState) allocGroup(name string) int32 {
	if id, ok := st.groupIDs[name]; ok {
		return id
	}
	id := int32(len(st.groupNames))
	st.groupIDs[name] = id
	st.groupNames = append(st.groupNames, name)
	return id
}

func (st *decodeState) group(name string) {
	st.seenGroup = true
	st.curGroup = st.allocGroup(name)
}

func (st *decodeState) useMaterial(name string) {
	st.seenMaterial = true
	if id, ok := st.matIDs[name]; ok {
		st.curMat = id
		return
	}
	var id int32
	if st.libIDs != nil {
		if libID, ok := st.libIDs[name]; ok {
			id = libID
		} else {
			id = st.nextMat
			st.nextMat++
		}
	} else {
		id = st.nextMat
		st.nextMat++
	}
	st.matIDs[name] = id
	st.curMat = id
}

func (st *decodeState) materialLibrary(file string) {
	if st.mtlFile != "" {
		return
	}
	st.mtlFile = file
	if st.dir == "" {
		return
	}
	// Best effort: a missing library just means first-occurrence ids.
	names, err := parseMaterialLibrary(filepath.Join(st.dir, file))
	if err != nil {
		return
	}
	st.libNames = names
	st.libIDs = make(map[string]int32, len(names))
	for i, name := range names {
		st.libIDs[config.DecodeName(name)] = int32(i)
	}
	st.nextMat = int32(len(names))
}

func (st *decodeState) build() (*mesh.Mesh, error) {
	if len(st.faces) == 0 {
		return nil, errors.Errorf("No faces decoded")
	}

	m := mesh.NewMesh()
	numCorners := 3 * len(st.faces)

	posCorners := make([]int, 0, numCorners)
	var texCorners, normCorners []int
	if st.hasTex {
		texCorners = make([]int, 0, numCorners)
	}
	if st.hasNorm {
		normCorners = make([]int, 0, numCorners)
	}

	for _, f := range st.faces {
		m.AddFace(3)
		for _, c := range f.corners {
			posCorners = append(posCorners, c.pos)
			if st.hasTex {
				texCorners = append(texCorners, c.tex)
			}
			if st.hasNorm {
				normCorners = append(normCorners, c.norm)
			}
		}
	}

	m.AddAttribute(mesh.NewVec3Attribute(mesh.Position, st.positions, posCorners))
	if st.hasTex {
		m.AddAttribute(mesh.NewVec2Attribute(st.texcoords, texCorners))
	}
	if st.hasNorm {
		m.AddAttribute(mesh.NewVec3Attribute(mesh.Normal, st.normals, normCorners))
	}

	if st.seenMaterial {
		m.AddAttribute(st.buildMaterialAttribute())
	}
	if st.seenGroup {
		m.AddAttribute(st.buildSubObjectAttribute())
	}
	if st.anyPolygons {
		m.AddAttribute(st.buildAddedEdgesAttribute())
	}

	return m, nil
}

// buildMaterialAttribute sizes the value list by the library definition
// count when a library was resolved, else by the referenced set. The two
// sizes legitimately differ: a decode without library context reports only
// what faces reference.
func (st *decodeState) buildMaterialAttribute() *mesh.Attribute {
	size := len(st.libNames)
	for _, f := range st.faces {
		if int(f.material)+1 > size {
			size = int(f.material) + 1
		}
	}
	values := make([]int32, size)
	for i := range values {
		values[i] = int32(i)
	}
	corners := make([]int, 0, 3*len(st.faces))
	for _, f := range st.faces {
		corners = append(corners, int(f.material), int(f.material), int(f.material))
	}
	a := mesh.NewIntAttribute(mesh.AttrMaterial, values, corners)
	for name, id := range st.matIDs {
		a.SetMeta(name, strconv.Itoa(int(id)))
	}
	if st.mtlFile != "" {
		a.SetMeta(mesh.MetaFileName, st.mtlFile)
	}
	return a
}

func (st *decodeState) buildSubObjectAttribute() *mesh.Attribute {
	values := make([]int32, len(st.groupNames))
	for i := range values {
		values[i] = int32(i)
	}
	corners := make([]int, 0, 3*len(st.faces))
	for _, f := range st.faces {
		corners = append(corners, int(f.group), int(f.group), int(f.group))
	}
	a := mesh.NewIntAttribute(mesh.AttrSubObject, values, corners)
	for id, name := range st.groupNames {
		if name != "" {
			a.SetMeta(name, strconv.Itoa(id))
		}
	}
	return a
}

func (st *decodeState) buildAddedEdgesAttribute() *mesh.Attribute {
	values := make([]int32, len(st.faces))
	corners := make([]int, 0, 3*len(st.faces))
	for i, f := range st.faces {
		values[i] = f.added
		corners = append(corners, i, i, i)
	}
	return mesh.NewIntAttribute(mesh.AttrAddedEdges, values, corners)
}
