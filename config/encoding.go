package config

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

var currentCharMap *charmap.Charmap = charmap.Windows1252

// SetEncoding selects the charmap used to decode non-UTF-8 name bytes in
// parsed files (object and material names written by legacy exporters).
func SetEncoding(name string) error {
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				currentCharMap = cm
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := make([]string, 0)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}

// DecodeName passes valid UTF-8 through unchanged and reinterprets anything
// else with the configured charmap.
func DecodeName(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	if decoded, err := currentCharMap.NewDecoder().String(s); err == nil {
		return decoded
	}
	return s
}
