package web

import (
	"bytes"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mogaika/polyobj/fbxexport"
	"github.com/mogaika/polyobj/gltfexport"
	"github.com/mogaika/polyobj/mesh"
	"github.com/mogaika/polyobj/obj"
	"github.com/mogaika/polyobj/status"
	"github.com/mogaika/polyobj/webutils"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func decodeUpload(r *http.Request) (*mesh.Mesh, string, error) {
	data, name, err := webutils.ReadFormFile(r, "file")
	if err != nil {
		return nil, "", err
	}
	m, err := obj.NewDecoder().DecodeFromBuffer(data)
	if err != nil {
		return nil, "", errors.Wrapf(err, "Failed to decode %q", name)
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" {
		base = "mesh"
	}
	return m, base, nil
}

func HandlerConvert(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]

	m, base, err := decodeUpload(r)
	if err != nil {
		status.Error("Conversion failed: %v", err)
		webutils.WriteError(w, err)
		return
	}
	status.Progress(0.5, "Decoded %q: %d faces", base, m.NumFaces())

	var out bytes.Buffer
	switch format {
	case "obj":
		data, err := obj.NewEncoder().EncodeToBuffer(m)
		if err == nil {
			out.Write(data)
		}
		if err != nil {
			status.Error("Conversion failed: %v", err)
			webutils.WriteError(w, err)
			return
		}
	case "glb":
		if err := gltfexport.Export(&out, m); err != nil {
			status.Error("Conversion failed: %v", err)
			webutils.WriteError(w, err)
			return
		}
	case "fbx":
		if err := fbxexport.Export(&out, m, base); err != nil {
			status.Error("Conversion failed: %v", err)
			webutils.WriteError(w, err)
			return
		}
	default:
		webutils.WriteError(w, errors.Errorf("Unknown format %q", format))
		return
	}

	status.Progress(1.0, "Converted %q to %s", base, format)
	webutils.WriteFile(w, &out, base+"."+format)
}

func HandlerInspect(w http.ResponseWriter, r *http.Request) {
	m, base, err := decodeUpload(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	polys, err := obj.ReconstructPolygons(m)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	type attrInfo struct {
		Kind   int    `json:"kind"`
		Name   string `json:"name,omitempty"`
		Values int    `json:"values"`
	}
	info := struct {
		Name       string     `json:"name"`
		Faces      int        `json:"faces"`
		Polygons   int        `json:"polygons"`
		Attributes []attrInfo `json:"attributes"`
	}{
		Name:     base,
		Faces:    m.NumFaces(),
		Polygons: len(polys),
	}
	for i := 0; i < m.NumAttributes(); i++ {
		a := m.Attribute(i)
		info.Attributes = append(info.Attributes, attrInfo{
			Kind:   int(a.Kind()),
			Name:   a.Name(),
			Values: a.Len(),
		})
	}
	webutils.WriteJson(w, info)
}

func HandlerWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	status.NewClient(conn)
}
