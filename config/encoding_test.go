package config_test

import (
	"testing"

	"github.com/mogaika/polyobj/config"
)

func TestSetEncoding(t *testing.T) {
	if err := config.SetEncoding("Windows 1251"); err != nil {
		t.Fatal(err)
	}
	if got := config.GetEncoding().String(); got != "Windows 1251" {
		t.Errorf("GetEncoding() = %q", got)
	}
	if err := config.SetEncoding("No Such Encoding"); err == nil {
		t.Error("Expected error for unknown encoding")
	}
	// unknown name must not clobber the selection
	if got := config.GetEncoding().String(); got != "Windows 1251" {
		t.Errorf("GetEncoding() = %q after failed SetEncoding", got)
	}
	if err := config.SetEncoding("Windows 1252"); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeName(t *testing.T) {
	if err := config.SetEncoding("Windows 1252"); err != nil {
		t.Fatal(err)
	}
	if got := config.DecodeName("plain_ascii"); got != "plain_ascii" {
		t.Errorf("DecodeName changed valid utf8: %q", got)
	}
	// 0xE9 is é in Windows 1252 and invalid as utf8
	if got := config.DecodeName("caf\xe9"); got != "café" {
		t.Errorf("DecodeName(caf\\xe9) = %q", got)
	}
}

func TestListEncodings(t *testing.T) {
	list := config.ListEncodings()
	if len(list) == 0 {
		t.Fatal("No encodings listed")
	}
	found := false
	for _, name := range list {
		if name == "Windows 1252" {
			found = true
		}
	}
	if !found {
		t.Error("Windows 1252 missing from encoding list")
	}
}
