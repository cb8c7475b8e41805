// Command nvdb2osmpbf transforms an NVDB road-network export into an
// OSM PBF file. It reads a newline-delimited JSON fixture (see
// fixture.go) in place of a geodatabase connection, runs the full
// ingestion-tagging-extraction-simplification-emission pipeline, and
// writes the result to disk, optionally alongside a GeoJSON debug dump.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/e-kotov/nvdb2osmpbf/pkg/graph"
	osmparser "github.com/e-kotov/nvdb2osmpbf/pkg/osm"
	"github.com/e-kotov/nvdb2osmpbf/pkg/pipeline"
	"github.com/e-kotov/nvdb2osmpbf/pkg/routing"
	"github.com/e-kotov/nvdb2osmpbf/pkg/topology"
)

func main() {
	input := flag.String("input", "", "Path to a newline-delimited JSON fixture file")
	output := flag.String("output", "out.osm.pbf", "Output .osm.pbf file path")
	method := flag.String("method", "refname", "Way grouping method: recursive, route, refname, linear, segment")
	startNodeID := flag.Int64("start-node-id", 1, "First node ID assigned")
	startWayID := flag.Int64("start-way-id", 1, "First way ID assigned")
	dumpGeoJSON := flag.String("dump-geojson", "", "If set, also write a GeoJSON debug dump to this path")
	verify := flag.Bool("verify", false, "After writing, read the PBF back and sanity-check network connectivity and POI placement")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: nvdb2osmpbf --input <fixture.ndjson> [--output out.osm.pbf] [--method refname]")
		os.Exit(1)
	}

	start := time.Now()
	log.Printf("Loading fixture %s...", *input)
	geometries, columns, err := loadFixture(*input)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}
	log.Printf("Loaded %d rows, %d columns", len(geometries), len(columns))

	cfg := pipeline.Config{
		Method:           topology.Method(*method),
		StartNodeID:      *startNodeID,
		StartWayID:       *startWayID,
		OutputPath:       *output,
		DebugGeoJSONPath: *dumpGeoJSON,
	}

	if ok := pipeline.Run(geometries, columns, cfg, pipeline.StdLogger{}); !ok {
		log.Fatalf("Pipeline run failed, see log above")
	}

	info, err := os.Stat(*output)
	if err != nil {
		log.Fatalf("Failed to stat output file: %v", err)
	}
	log.Printf("Done in %s. Output: %s (%.1f KB)", time.Since(start).Round(time.Millisecond), *output, float64(info.Size())/1024)

	if *verify {
		if err := verifyOutput(*output); err != nil {
			log.Fatalf("Verify failed: %v", err)
		}
	}
}

// verifyOutput re-reads the produced PBF and sanity-checks the network it
// describes: that it forms one (largely) connected component once car
// ferries are folded in as ordinary edges, and that every tagged POI node
// pkg/feature placed actually sits on a road the network graph contains.
// It never mutates the output and is not part of the ingestion pipeline
// itself — a deliberately small cross-check, not a router.
func verifyOutput(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	log.Printf("Verify: re-reading %s...", path)
	result, err := osmparser.Parse(context.Background(), f)
	if err != nil {
		return fmt.Errorf("parse produced pbf: %w", err)
	}

	g := graph.Build(result)
	log.Printf("Verify: graph has %d nodes, %d directed edges (%d ferry)", g.NumNodes, g.NumEdges, g.FerryEdgeCount())

	largest := graph.LargestComponent(g)
	if g.NumNodes > 0 {
		pct := 100 * float64(len(largest)) / float64(g.NumNodes)
		log.Printf("Verify: largest weakly connected component covers %d/%d nodes (%.1f%%)", len(largest), g.NumNodes, pct)
		if pct < 90 {
			log.Printf("Verify: warning — network is fragmented, largest component covers only %.1f%% of nodes", pct)
		}
	}

	if g.NumNodes == 0 || len(result.POIs) == 0 {
		log.Printf("Verify: %d POI nodes, skipping road-snap check", len(result.POIs))
		return nil
	}

	snapper := routing.NewSnapper(g)
	var unsnapped int
	for _, poi := range result.POIs {
		if _, err := snapper.Snap(poi.Lat, poi.Lon); err != nil {
			unsnapped++
		}
	}
	log.Printf("Verify: %d/%d POI nodes snap onto the road network", len(result.POIs)-unsnapped, len(result.POIs))
	if unsnapped > 0 {
		log.Printf("Verify: warning — %d POI nodes are not near any road edge", unsnapped)
	}

	return nil
}
