package pipeline

import (
	"fmt"
	"os"

	geojson "github.com/paulmach/go.geojson"

	"github.com/e-kotov/nvdb2osmpbf/pkg/feature"
	"github.com/e-kotov/nvdb2osmpbf/pkg/nvdb"
	"github.com/e-kotov/nvdb2osmpbf/pkg/topology"
)

// writeDebugGeoJSON dumps the produced ways and feature nodes as a
// GeoJSON FeatureCollection, gated behind -dump-geojson, for visual
// sanity-checking of a run without a full PBF viewer.
func writeDebugGeoJSON(path string, segments []*nvdb.Segment, ways []topology.Way, featureNodes []feature.Node) error {
	fc := geojson.NewFeatureCollection()

	for _, way := range ways {
		var line [][]float64
		for _, idx := range way.SegmentIndices {
			seg := segments[idx]
			for i, c := range seg.Geometry {
				// Skip the first point of every segment after the
				// first: it duplicates the previous segment's last
				// point (the shared junction/interior coordinate).
				if i == 0 && len(line) > 0 {
					continue
				}
				line = append(line, []float64{c.Lon, c.Lat})
			}
		}
		if len(line) < 2 {
			continue
		}
		f := geojson.NewLineStringFeature(line)
		for k, v := range way.Tags {
			f.SetProperty(k, v)
		}
		fc.AddFeature(f)
	}

	for _, n := range featureNodes {
		f := geojson.NewPointFeature([]float64{n.Lon, n.Lat})
		for k, v := range n.Tags {
			f.SetProperty(k, v)
		}
		fc.AddFeature(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("pipeline: marshal debug geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("pipeline: write debug geojson: %w", err)
	}
	return nil
}
