package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AsdlRC is the shape of a discovered .asdlrc.
type AsdlRC struct {
	LibRoots      []string          `yaml:"lib_roots"`
	BackendConfig string            `yaml:"backend_config"`
	Env           map[string]string `yaml:"env"`
}

// Discover walks upward from startDir looking for a .asdlrc file, returning
// it (and the directory it was found in) on the first hit. Returns ok=false
// if none of startDir's ancestors (including itself) carries one.
func Discover(startDir string) (rc *AsdlRC, dir string, ok bool) {
	dir = startDir

	for {
		candidate := filepath.Join(dir, ".asdlrc")

		if data, err := os.ReadFile(candidate); err == nil {
			var parsed AsdlRC
			if yaml.Unmarshal(data, &parsed) == nil {
				return &parsed, dir, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", false
		}

		dir = parent
	}
}
