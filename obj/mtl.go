package obj

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// parseMaterialLibrary returns the names of materials defined in a .mtl
// file, in definition order. Nothing beyond newmtl is interpreted; the
// count and order are all the decoder needs to size the material attribute
// by the library definition.
func parseMaterialLibrary(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open material library %q", path)
	}
	defer f.Close()

	names := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "newmtl") {
			names = append(names, strings.TrimSpace(line[len("newmtl"):]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read material library %q", path)
	}
	return names, nil
}
