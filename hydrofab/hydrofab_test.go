package hydrofab

import (
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilter(t *testing.T) {
	c := &Collection{Features: []Feature{
		{ID: "wb-1", Geom: geom.Point{X: 1, Y: 1}},
		{ID: "wb-2", Geom: geom.Point{X: 2, Y: 2}},
		{ID: "wb-1", Geom: geom.Point{X: 3, Y: 3}},
	}}

	f, ok := c.Find("wb-2")
	require.True(t, ok)
	assert.Equal(t, geom.Point{X: 2, Y: 2}, f.Geom)

	_, ok = c.Find("wb-9")
	assert.False(t, ok)

	sel := c.Filter("wb-1")
	require.Equal(t, 2, sel.Len())
	assert.Equal(t, geom.Point{X: 1, Y: 1}, sel.Features[0].Geom)
	assert.Equal(t, geom.Point{X: 3, Y: 3}, sel.Features[1].Geom)
	assert.Equal(t, 0, c.Filter("wb-9").Len())
}

func TestBounds(t *testing.T) {
	c := &Collection{Features: []Feature{
		{ID: "a", Geom: geom.LineString{{X: 0, Y: 5}, {X: 10, Y: 15}}},
		{ID: "b", Geom: geom.Point{X: -3, Y: 20}},
	}}
	b := c.Bounds()
	require.NotNil(t, b)
	assert.Equal(t, -3., b.Min.X)
	assert.Equal(t, 5., b.Min.Y)
	assert.Equal(t, 10., b.Max.X)
	assert.Equal(t, 20., b.Max.Y)

	assert.Nil(t, (&Collection{}).Bounds())
}

func TestToSRAndConcat(t *testing.T) {
	geo, err := SRFromEPSG(4326)
	require.NoError(t, err)
	merc, err := SRFromEPSG(3857)
	require.NoError(t, err)

	b := &Collection{SR: geo, Features: []Feature{
		{ID: "nx-1", Geom: geom.Point{X: -90, Y: 0}},
	}}
	bb, err := b.ToSR(merc)
	require.NoError(t, err)
	p := bb.Features[0].Geom.(geom.Point)
	assert.InDelta(t, -10018754.17, p.X, 1)
	assert.InDelta(t, 0, p.Y, 1)

	a := &Collection{SR: merc, Features: []Feature{
		{ID: "wb-1", Geom: geom.Point{X: 100, Y: 200}},
	}}
	cat, err := Concat(a, b)
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())
	assert.Equal(t, "wb-1", cat.Features[0].ID)
	q := cat.Features[1].Geom.(geom.Point)
	assert.InDelta(t, -10018754.17, q.X, 1)

	_, err = (&Collection{}).ToSR(merc)
	assert.Error(t, err)
}

func TestSRFromEPSG(t *testing.T) {
	for _, epsg := range []int{4326, 3857, 5070, 32614, 32722} {
		sr, err := SRFromEPSG(epsg)
		require.NoError(t, err, "EPSG:%d", epsg)
		assert.NotNil(t, sr)
	}
	_, err := SRFromEPSG(99999)
	assert.Error(t, err)
}

func TestProjectPoint(t *testing.T) {
	// web mercator
	p, err := ProjectPoint(-97, 30, 3857)
	require.NoError(t, err)
	assert.InDelta(t, -10797990.6, p.X, 10)
	assert.InDelta(t, 3503549.8, p.Y, 10)

	// UTM zone 14N: east of the central meridian, mid latitudes
	q, err := ProjectPoint(-97, 30, 32614)
	require.NoError(t, err)
	assert.Greater(t, q.X, 500000.)
	assert.Less(t, q.X, 900000.)
	assert.Greater(t, q.Y, 3.2e6)
	assert.Less(t, q.Y, 3.4e6)

	_, err = ProjectPoint(-97, 30, 99999)
	assert.Error(t, err)
}

func TestProjectPointUTMZoneMismatch(t *testing.T) {
	// -97 sits in zone 14; asking for zone 15 must not return
	// zone-14 coordinates labelled EPSG:32615
	_, err := ProjectPoint(-97, 30, 32615)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zone 14")
	assert.Contains(t, err.Error(), "32615")

	// southern hemisphere: -51 is zone 22, request zone 23
	_, err = ProjectPoint(-51, -23, 32723)
	assert.Error(t, err)
}
