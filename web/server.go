// Package web exposes the converter over http: upload a wavefront obj file
// and download it back with polygons reconstructed, or converted to glb or
// fbx. Conversion progress is broadcast on the /ws endpoint.
package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func StartServer(addr string) error {
	r := mux.NewRouter()
	r.HandleFunc("/convert/{format}", HandlerConvert)
	r.HandleFunc("/json/inspect", HandlerInspect)
	r.HandleFunc("/ws", HandlerWebsocket)

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
