package macro

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML layout of a macro catalog:
//
//	macros:
//	  - id: info
//	    body: inlineContents
//	  - id: toc
type catalogFile struct {
	Macros []Definition `yaml:"macros"`
}

// Load reads a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return NewCatalog()
		}
		return nil, fmt.Errorf("failed to decode macro catalog: %w", err)
	}
	return NewCatalog(file.Macros...)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open macro catalog: %w", err)
	}
	defer f.Close()

	catalog, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}
