package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanAreaGeoJSON = `{
	"type": "Polygon",
	"coordinates": [[[-46.50,-23.50],[-46.50,-23.51],[-46.49,-23.51],[-46.49,-23.50],[-46.50,-23.50]]]
}`

func TestParseGeoJSON_BarePolygon(t *testing.T) {
	poly, raw, err := ParseGeoJSON([]byte(cleanAreaGeoJSON))
	require.NoError(t, err)
	require.NotNil(t, poly)
	assert.NotEmpty(t, raw)
	assert.NoError(t, poly.Validate())
}

func TestParseGeoJSON_Envelope(t *testing.T) {
	envelope := `{"geometry": ` + cleanAreaGeoJSON + `, "lang": "pt"}`
	poly, _, err := ParseGeoJSON([]byte(envelope))
	require.NoError(t, err)
	assert.NoError(t, poly.Validate())
}

func TestValidate_TooFewVertices(t *testing.T) {
	bad := `{"type":"Polygon","coordinates":[[[-46.5,-23.5],[-46.5,-23.51],[-46.5,-23.5]]]}`
	poly, _, err := ParseGeoJSON([]byte(bad))
	require.NoError(t, err)
	assert.Error(t, poly.Validate())
}

func TestValidate_UnclosedRing(t *testing.T) {
	bad := `{"type":"Polygon","coordinates":[[[-46.5,-23.5],[-46.5,-23.51],[-46.49,-23.51],[-46.49,-23.50]]]}`
	poly, _, err := ParseGeoJSON([]byte(bad))
	require.NoError(t, err)
	assert.Error(t, poly.Validate())
}

func TestValidate_OutsideBrazil(t *testing.T) {
	bad := `{"type":"Polygon","coordinates":[[[2.3,48.8],[2.3,48.9],[2.4,48.9],[2.4,48.8],[2.3,48.8]]]}`
	poly, _, err := ParseGeoJSON([]byte(bad))
	require.NoError(t, err)
	assert.Error(t, poly.Validate())
}

func TestValidate_AreaBoundary(t *testing.T) {
	poly, _, err := ParseGeoJSON([]byte(cleanAreaGeoJSON))
	require.NoError(t, err)
	assert.Less(t, poly.AreaHa(), 10000.0)
}

func TestHashGeoJSON_OrderIndependent(t *testing.T) {
	a := `{"type":"Polygon","coordinates":[[1,2]]}`
	b := `{"coordinates":[[1,2]],"type":"Polygon"}`

	ha, err := HashGeoJSON([]byte(a))
	require.NoError(t, err)
	hb, err := HashGeoJSON([]byte(b))
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
}

func TestHashGeoJSON_DifferentCoordinatesDiffer(t *testing.T) {
	a := `{"type":"Polygon","coordinates":[[1,2]]}`
	b := `{"type":"Polygon","coordinates":[[1,2.000001]]}`

	ha, err := HashGeoJSON([]byte(a))
	require.NoError(t, err)
	hb, err := HashGeoJSON([]byte(b))
	require.NoError(t, err)

	assert.NotEqual(t, ha, hb)
}

func TestCentroidFormat(t *testing.T) {
	poly, _, err := ParseGeoJSON([]byte(cleanAreaGeoJSON))
	require.NoError(t, err)
	c := poly.Centroid()
	assert.Regexp(t, `^-?\d+\.\d{6}, -?\d+\.\d{6}$`, c)
}
