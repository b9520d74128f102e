package spatial

import (
	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// EncodeGeoJSON renders reduced points as a GeoJSON FeatureCollection, the
// format the map layer consumed.
func EncodeGeoJSON(points []Point) ([]byte, error) {
	features := make([]*geojson.Feature, len(points))
	for i, p := range points {
		features[i] = &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat}),
			Properties: map[string]interface{}{
				"status": p.Status,
				"count":  p.Count,
			},
		}
	}

	data, err := (&geojson.FeatureCollection{Features: features}).MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "spatial: encode geojson")
	}
	return data, nil
}
