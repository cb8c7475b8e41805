// Package pipeline is the single entry point external callers use: it
// wires geomutil, wkb, nvdb, tagmap, feature, topology, and pbfwriter
// into a straight-line, single-pass transform from raw geometries and
// attribute columns to an OSM PBF file, converting any fatal error
// into a boolean success flag at the outermost boundary.
package pipeline

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"

	"github.com/e-kotov/nvdb2osmpbf/pkg/feature"
	"github.com/e-kotov/nvdb2osmpbf/pkg/geomutil"
	"github.com/e-kotov/nvdb2osmpbf/pkg/nvdb"
	"github.com/e-kotov/nvdb2osmpbf/pkg/pbfwriter"
	"github.com/e-kotov/nvdb2osmpbf/pkg/tagmap"
	"github.com/e-kotov/nvdb2osmpbf/pkg/topology"
)

// Logger is the diagnostic side-channel for ingestion and pipeline
// progress messages; it is the same seam nvdb.Logger uses so one
// implementation serves both.
type Logger = nvdb.Logger

// StdLogger adapts the standard library logger, matching the
// teacher's cmd/preprocess.
type StdLogger = nvdb.StdLogger

// Config configures a single pipeline run.
type Config struct {
	// Method selects the topology-simplifier grouping/chaining
	// strategy; unknown values default to "refname" (topology.Simplify
	// does this).
	Method topology.Method

	// StartNodeID and StartWayID are the first IDs this run assigns;
	// both monotonically increase, so repeated runs can produce
	// non-overlapping ID spaces by choosing disjoint starting values.
	StartNodeID int64
	StartWayID  int64

	// OutputPath is where the PBF stream is written.
	OutputPath string

	// DebugGeoJSONPath, if non-empty, also writes a GeoJSON
	// FeatureCollection dump of the produced ways/feature-nodes
	// (pkg/pipeline/debugdump.go) for visual inspection.
	DebugGeoJSONPath string
}

// Run executes the full pipeline: ingestion, tagging, feature
// extraction, topology simplification, and three-pass PBF emission. It
// returns false on any fatal error (bad input shape, a writer
// failure); per-row and per-cell errors are logged and skipped, not
// fatal.
func Run(geometries [][]byte, columns []nvdb.Column, cfg Config, logger Logger) bool {
	if logger == nil {
		logger = StdLogger{}
	}

	if len(geometries) == 0 {
		logger.Printf("pipeline: no input rows, aborting")
		return false
	}

	segments, err := nvdb.BuildSegments(geometries, columns, logger)
	if err != nil {
		logger.Printf("pipeline: %v", err)
		return false
	}
	if len(segments) == 0 {
		logger.Printf("pipeline: every row failed to decode, aborting")
		return false
	}
	logger.Printf("pipeline: ingested %d segments", len(segments))

	tagmap.Tag(segments)
	logger.Printf("pipeline: tagged %d segments", len(segments))

	featureNodes, nextNodeID := feature.Extract(segments, cfg.StartNodeID)
	logger.Printf("pipeline: extracted %d feature nodes", len(featureNodes))

	ways := topology.Simplify(segments, cfg.Method)
	logger.Printf("pipeline: simplified into %d ways", len(ways))

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		logger.Printf("pipeline: %v", fmt.Errorf("create output: %w", err))
		return false
	}
	closed := false
	defer func() {
		if !closed {
			f.Close()
		}
	}()

	w := pbfwriter.New(f)
	setBoundingBox(w, segments, featureNodes)

	nodeID := nextNodeID
	wayID := cfg.StartWayID

	// Pass 0: feature nodes, in creation order, at their assigned IDs.
	for _, n := range featureNodes {
		if err := w.WriteNode(pbfwriter.Node{ID: n.ID, Lon: n.Lon, Lat: n.Lat, Tags: n.Tags}); err != nil {
			logger.Printf("pipeline: %v", fmt.Errorf("write feature node: %w", err))
			return false
		}
	}

	// Pass 1: junction nodes, one per distinct CoordHash at a way
	// boundary (first-segment start, last-segment end, or an internal
	// segment-to-segment boundary).
	junctionID := make(map[geomutil.CoordHash]int64)
	assignJunction := func(hash geomutil.CoordHash, pos geomutil.Coord) error {
		if _, ok := junctionID[hash]; ok {
			return nil
		}
		id := nodeID
		nodeID++
		junctionID[hash] = id
		return w.WriteNode(pbfwriter.Node{ID: id, Lon: pos.Lon, Lat: pos.Lat})
	}
	for _, way := range ways {
		first := segments[way.SegmentIndices[0]]
		if err := assignJunction(first.StartNode, first.Geometry[0]); err != nil {
			logger.Printf("pipeline: %v", fmt.Errorf("write junction node: %w", err))
			return false
		}
		for _, idx := range way.SegmentIndices {
			seg := segments[idx]
			last := seg.Geometry[len(seg.Geometry)-1]
			if err := assignJunction(seg.EndNode, last); err != nil {
				logger.Printf("pipeline: %v", fmt.Errorf("write junction node: %w", err))
				return false
			}
		}
	}
	logger.Printf("pipeline: assigned %d junction nodes", len(junctionID))

	// Pass 2: interior nodes. A segment's interior coordinate that
	// happens to land on another segment's endpoint (CoordHash already
	// a junction) reuses that ID instead of allocating a new one.
	interiorIDs := make(map[int][]int64)
	interiorCount := 0
	for _, way := range ways {
		for _, idx := range way.SegmentIndices {
			if _, done := interiorIDs[idx]; done {
				continue
			}
			seg := segments[idx]
			interior := seg.Geometry[1 : len(seg.Geometry)-1]
			ids := make([]int64, 0, len(interior))
			for _, c := range interior {
				hash := geomutil.Hash(c)
				if jid, ok := junctionID[hash]; ok {
					ids = append(ids, jid)
					continue
				}
				id := nodeID
				nodeID++
				interiorCount++
				if err := w.WriteNode(pbfwriter.Node{ID: id, Lon: c.Lon, Lat: c.Lat}); err != nil {
					logger.Printf("pipeline: %v", fmt.Errorf("write interior node: %w", err))
					return false
				}
				ids = append(ids, id)
			}
			seg.InternalNodeIDs = ids
			interiorIDs[idx] = ids
		}
	}
	logger.Printf("pipeline: assigned %d interior nodes", interiorCount)

	// Pass 3: ways. Node-ID list = first-segment start junction, then
	// each segment's interior IDs followed by its end junction,
	// deduplicating consecutive equal IDs.
	for _, way := range ways {
		first := segments[way.SegmentIndices[0]]
		nodeIDs := []int64{junctionID[first.StartNode]}
		for _, idx := range way.SegmentIndices {
			seg := segments[idx]
			nodeIDs = append(nodeIDs, interiorIDs[idx]...)
			nodeIDs = append(nodeIDs, junctionID[seg.EndNode])
		}
		nodeIDs = dedupConsecutive(nodeIDs)

		if err := w.WriteWay(pbfwriter.Way{ID: wayID, NodeIDs: nodeIDs, Tags: way.Tags}); err != nil {
			logger.Printf("pipeline: %v", fmt.Errorf("write way: %w", err))
			return false
		}
		wayID++
	}

	if err := w.Close(); err != nil {
		logger.Printf("pipeline: %v", fmt.Errorf("close writer: %w", err))
		return false
	}
	closed = true
	if err := f.Close(); err != nil {
		logger.Printf("pipeline: %v", fmt.Errorf("close output file: %w", err))
		return false
	}

	if cfg.DebugGeoJSONPath != "" {
		if err := writeDebugGeoJSON(cfg.DebugGeoJSONPath, segments, ways, featureNodes); err != nil {
			logger.Printf("pipeline: geojson dump failed (non-fatal): %v", err)
		}
	}

	logger.Printf("pipeline: wrote %d ways, %d feature nodes, %d junction nodes, %d interior nodes to %s",
		len(ways), len(featureNodes), len(junctionID), interiorCount, cfg.OutputPath)
	return true
}


func dedupConsecutive(ids []int64) []int64 {
	if len(ids) == 0 {
		return ids
	}
	out := ids[:1]
	for _, id := range ids[1:] {
		if id == out[len(out)-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}

func setBoundingBox(w *pbfwriter.Writer, segments []*nvdb.Segment, featureNodes []feature.Node) {
	points := make(orb.MultiPoint, 0, len(featureNodes))
	for _, seg := range segments {
		for _, c := range seg.Geometry {
			points = append(points, orb.Point{c.Lon, c.Lat})
		}
	}
	for _, n := range featureNodes {
		points = append(points, orb.Point{n.Lon, n.Lat})
	}

	bound := points.Bound()
	w.SetBoundingBox(bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1])
}
