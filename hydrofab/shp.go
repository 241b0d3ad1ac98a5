package hydrofab

import (
	"fmt"

	"github.com/ctessum/geom/encoding/shp"
)

// ReadShapefile loads features and the named attribute columns from a
// shapefile. The id column is always read; listed fields land in each
// feature's Fields map.
func ReadShapefile(fp string, fields ...string) (*Collection, error) {
	dec, err := shp.NewDecoder(fp)
	if err != nil {
		return nil, fmt.Errorf("hydrofab.ReadShapefile %s: %v", fp, err)
	}
	defer dec.Close()
	sr, err := dec.SR()
	if err != nil {
		return nil, fmt.Errorf("hydrofab.ReadShapefile %s: %v", fp, err)
	}

	cols := append([]string{"id"}, fields...)
	c := &Collection{SR: sr}
	for {
		g, vals, more := dec.DecodeRowFields(cols...)
		if !more {
			break
		}
		f := Feature{ID: vals["id"], Geom: g, Fields: make(map[string]string, len(fields))}
		for _, k := range fields {
			f.Fields[k] = vals[k]
		}
		c.Features = append(c.Features, f)
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("hydrofab.ReadShapefile %s: %v", fp, err)
	}
	return c, nil
}
