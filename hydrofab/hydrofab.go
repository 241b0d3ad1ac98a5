// Package hydrofab carries hydrologic network (hydrofabric) vector
// collections: catchment divides, nexus points and flowpaths, keyed by
// their id attribute. Collections are read-only inputs to the model
// builders; operations return new collections.
package hydrofab

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// Feature is a single hydrofabric element.
type Feature struct {
	ID     string
	Geom   geom.Geom
	Fields map[string]string
}

// Collection is an ordered set of features sharing one spatial
// reference.
type Collection struct {
	SR       *proj.SR
	Features []Feature
}

func (c *Collection) Len() int { return len(c.Features) }

// Find returns the first feature matching id.
func (c *Collection) Find(id string) (Feature, bool) {
	for _, f := range c.Features {
		if f.ID == id {
			return f, true
		}
	}
	return Feature{}, false
}

// Filter returns the features matching id, in input order, sharing
// the collection's spatial reference.
func (c *Collection) Filter(id string) *Collection {
	o := &Collection{SR: c.SR}
	for _, f := range c.Features {
		if f.ID == id {
			o.Features = append(o.Features, f)
		}
	}
	return o
}

// ToSR reprojects every feature into dst.
func (c *Collection) ToSR(dst *proj.SR) (*Collection, error) {
	if c.SR == nil || dst == nil {
		return nil, fmt.Errorf("hydrofab.ToSR: spatial reference not set")
	}
	if c.SR == dst {
		return c, nil
	}
	ct, err := c.SR.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("hydrofab.ToSR: %v", err)
	}
	o := &Collection{SR: dst, Features: make([]Feature, len(c.Features))}
	for i, f := range c.Features {
		gg, err := f.Geom.Transform(ct)
		if err != nil {
			return nil, fmt.Errorf("hydrofab.ToSR %s: %v", f.ID, err)
		}
		o.Features[i] = Feature{ID: f.ID, Geom: gg, Fields: f.Fields}
	}
	return o, nil
}

// Concat returns a's features followed by b's, with b reprojected
// into a's spatial reference.
func Concat(a, b *Collection) (*Collection, error) {
	bb, err := b.ToSR(a.SR)
	if err != nil {
		return nil, err
	}
	o := &Collection{SR: a.SR, Features: make([]Feature, 0, a.Len()+bb.Len())}
	o.Features = append(o.Features, a.Features...)
	o.Features = append(o.Features, bb.Features...)
	return o, nil
}

// Bounds returns the extent of all features, or nil for an empty
// collection.
func (c *Collection) Bounds() *geom.Bounds {
	var b *geom.Bounds
	for _, f := range c.Features {
		fb := f.Geom.Bounds()
		if b == nil {
			cp := *fb
			b = &cp
			continue
		}
		b.Min.X = math.Min(b.Min.X, fb.Min.X)
		b.Min.Y = math.Min(b.Min.Y, fb.Min.Y)
		b.Max.X = math.Max(b.Max.X, fb.Max.X)
		b.Max.Y = math.Max(b.Max.Y, fb.Max.Y)
	}
	return b
}
