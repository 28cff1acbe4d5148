package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config carries tool-level settings loaded from a yaml file. Zero value is
// usable; empty fields keep their defaults.
type Config struct {
	// Listen is the web service address, e.g. ":8000".
	Listen string `yaml:"listen"`
	// NameEncoding selects the charmap for non-UTF-8 names, e.g.
	// "Windows 1252".
	NameEncoding string `yaml:"name_encoding"`
}

func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read config %q", path)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse config %q", path)
	}
	if cfg.NameEncoding != "" {
		if err := SetEncoding(cfg.NameEncoding); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
