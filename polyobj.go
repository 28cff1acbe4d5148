package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mogaika/polyobj/config"
	"github.com/mogaika/polyobj/fbxexport"
	"github.com/mogaika/polyobj/gltfexport"
	"github.com/mogaika/polyobj/obj"
	"github.com/mogaika/polyobj/utils"
	"github.com/mogaika/polyobj/web"
)

func main() {
	var in, out, listen, cfgPath, encoding string
	var dump bool
	flag.StringVar(&in, "in", "", "Input .obj file")
	flag.StringVar(&out, "out", "", "Output file (.obj, .glb or .fbx)")
	flag.StringVar(&listen, "listen", "", "Address of conversion server, e.g. :8000")
	flag.StringVar(&cfgPath, "cfg", "", "Path to yaml config file")
	flag.StringVar(&encoding, "encoding", "", "Charmap for non-utf8 names, e.g. 'Windows 1252'")
	flag.BoolVar(&dump, "dump", false, "Dump decoded mesh structure")
	flag.Parse()

	if cfgPath != "" {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		if listen == "" {
			listen = cfg.Listen
		}
	}
	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatal(err)
		}
	}

	if in == "" {
		if listen != "" {
			if err := web.StartServer(listen); err != nil {
				log.Fatal(err)
			}
			return
		}
		flag.PrintDefaults()
		return
	}

	m, err := obj.NewDecoder().DecodeFromFile(in)
	if err != nil {
		log.Fatalf("Failed to decode %q: %v", in, err)
	}
	log.Printf("Decoded %q: %d faces, %d attributes", in, m.NumFaces(), m.NumAttributes())

	if dump {
		utils.Dump(m)
	}

	if out == "" {
		return
	}

	switch strings.ToLower(filepath.Ext(out)) {
	case ".obj":
		if err := obj.NewEncoder().EncodeToFile(m, out); err != nil {
			log.Fatalf("Failed to encode %q: %v", out, err)
		}
	case ".glb":
		f, err := os.Create(out)
		if err != nil {
			log.Fatalf("Failed to create %q: %v", out, err)
		}
		if err := gltfexport.Export(f, m); err != nil {
			f.Close()
			log.Fatalf("Failed to export %q: %v", out, err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("Failed to close %q: %v", out, err)
		}
	case ".fbx":
		f, err := os.Create(out)
		if err != nil {
			log.Fatalf("Failed to create %q: %v", out, err)
		}
		base := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
		if err := fbxexport.Export(f, m, base); err != nil {
			f.Close()
			log.Fatalf("Failed to export %q: %v", out, err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("Failed to close %q: %v", out, err)
		}
	default:
		log.Fatalf("Unknown output format %q", filepath.Ext(out))
	}

	log.Printf("Wrote %q", out)
}
