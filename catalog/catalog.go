// Package catalog resolves named raster sources from YAML data-catalog
// definitions and serves clipped reads of those sources. Catalog files
// map a source name to a descriptor:
//
//	dem:
//	  path: rasters/dem.nc
//	  type: raster
//	  variable: elevation
//	  epsg: 3857
//	  nodata: -9999
//
// Relative paths resolve against the catalog file's directory.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNotFound reports a source name absent from every loaded catalog.
var ErrNotFound = errors.New("catalog: source not found")

// Source describes one catalog entry.
type Source struct {
	Path     string  `yaml:"path"`
	Type     string  `yaml:"type"`
	Variable string  `yaml:"variable"`
	EPSG     int     `yaml:"epsg"`
	Nodata   float64 `yaml:"nodata"`
}

// DataCatalog is a merged view over one or more catalog files. Later
// files override earlier entries of the same name.
type DataCatalog struct {
	sources map[string]Source
}

// Load reads and merges the given catalog files.
func Load(paths ...string) (*DataCatalog, error) {
	dc := &DataCatalog{sources: make(map[string]Source)}
	for _, fp := range paths {
		b, err := os.ReadFile(fp)
		if err != nil {
			return nil, fmt.Errorf("catalog.Load: %w", err)
		}
		var m map[string]Source
		if err := yaml.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("catalog.Load %s: %w", fp, err)
		}
		dir := filepath.Dir(fp)
		for name, s := range m {
			if !filepath.IsAbs(s.Path) {
				s.Path = filepath.Join(dir, s.Path)
			}
			dc.sources[name] = s
		}
	}
	return dc, nil
}

// Has reports whether name is present.
func (dc *DataCatalog) Has(name string) bool {
	_, ok := dc.sources[name]
	return ok
}

// Resolve returns the descriptor for name, its path already
// absolutized against the defining catalog file.
func (dc *DataCatalog) Resolve(name string) (Source, error) {
	s, ok := dc.sources[name]
	if !ok {
		return Source{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s, nil
}
