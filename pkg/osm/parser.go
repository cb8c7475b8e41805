package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/e-kotov/nvdb2osmpbf/pkg/geomutil"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// RawEdge represents a directed edge parsed from OSM data.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	Weight     uint32 // travel time in milliseconds
	Ferry      bool   // carried over a route=ferry way
}

// POI is a tagged, way-independent node — the feature nodes
// pkg/feature emits (crossings, barriers, speed cameras, rest areas,
// parking pockets) are the only nodes in a produced PBF that carry
// tags, so any tagged node read back is one of them.
type POI struct {
	ID   osm.NodeID
	Lat  float64
	Lon  float64
	Tags osm.Tags
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Edges   []RawEdge
	POIs    []POI
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !carHighways[hw] {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	// Skip restricted access.
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}

	return true
}

// isFerryRoutable returns true if the way is a route=ferry way a car can
// board. NVDB models car ferries as ordinary Farjeled segments, and
// map_highway (pkg/tagmap) emits route=ferry + motor_vehicle access for
// them, so this module treats ferries as a distinct routable mode rather
// than excluding them outright.
func isFerryRoutable(tags osm.Tags) bool {
	if tags.Find("route") != "ferry" {
		return false
	}
	return tags.Find("motor_vehicle") != "no"
}

// isRoutable returns true if the way should contribute edges at all:
// either a car-accessible road or a car-boardable ferry.
func isRoutable(tags osm.Tags) bool {
	return isCarAccessible(tags) || isFerryRoutable(tags)
}

// defaultSpeedKmh gives a fallback travel speed per highway class, used
// only when a way carries no maxspeed tag.
var defaultSpeedKmh = map[string]float64{
	"motorway":       110,
	"motorway_link":  70,
	"trunk":          90,
	"trunk_link":     50,
	"primary":        70,
	"primary_link":   50,
	"secondary":      60,
	"secondary_link": 50,
	"tertiary":       50,
	"tertiary_link":  40,
	"unclassified":   40,
	"residential":    30,
	"living_street":  10,
	"service":        20,
}

// ferryDefaultSpeedKmh is the fallback speed for route=ferry ways, which
// carry no highway tag and so never match defaultSpeedKmh.
const ferryDefaultSpeedKmh = 20.0

// speedKmh returns the way's effective speed: the numeric leading value
// of its maxspeed tag (pkg/tagmap's map_maxspeed output) if present,
// else a highway-class or ferry fallback.
func speedKmh(tags osm.Tags) float64 {
	if v := tags.Find("maxspeed"); v != "" {
		if kmh, ok := parseMaxspeedKmh(v); ok {
			return kmh
		}
	}
	if tags.Find("route") == "ferry" {
		return ferryDefaultSpeedKmh
	}
	if kmh, ok := defaultSpeedKmh[tags.Find("highway")]; ok {
		return kmh
	}
	return 30
}

// parseMaxspeedKmh parses the plain numeric km/h form map_maxspeed emits
// ("90"); non-numeric values ("none", "walk", "50 mph") are left to the
// fallback table rather than guessed at.
func parseMaxspeedKmh(v string) (float64, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, false
	}
	return float64(n), true
}

// directionFlags returns (forward, backward) based on highway type and oneway tags.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	// Default: bidirectional.
	forward = true
	backward = true

	hw := tags.Find("highway")

	// Implied oneway for motorways and roundabouts.
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	// Explicit oneway tag overrides.
	oneway := tags.Find("oneway")
	switch oneway {
	case "yes", "true", "1":
		forward = true
		backward = false
	case "-1", "reverse":
		forward = false
		backward = true
	case "no":
		forward = true
		backward = true
	case "reversible":
		// Time-dependent — skip entirely.
		forward = false
		backward = false
	}

	return forward, backward
}

// wayInfo holds parsed way data collected during Pass 1.
type wayInfo struct {
	NodeIDs  []osm.NodeID
	Forward  bool
	Backward bool
	SpeedKmh float64
	Ferry    bool
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only edges with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox BBox // if non-zero, filter edges to this bounding box
}

// Parse reads an OSM PBF file and returns directed edges for car routing.
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()
	// Pass 1: Scan ways to collect referenced node IDs and way info.
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		obj := scanner.Object()
		w, ok := obj.(*osm.Way)
		if !ok {
			continue
		}

		if !isRoutable(w.Tags) {
			continue
		}

		if len(w.Nodes) < 2 {
			continue
		}

		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}

		ways = append(ways, wayInfo{
			NodeIDs:  nodeIDs,
			Forward:  fwd,
			Backward: bwd,
			SpeedKmh: speedKmh(w.Tags),
			Ferry:    isFerryRoutable(w.Tags),
		})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referencedNodes))

	// Pass 2: Scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))
	var pois []POI

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		obj := scanner.Object()
		n, ok := obj.(*osm.Node)
		if !ok {
			continue
		}

		// A tagged node is a pkg/feature POI: junction and interior
		// nodes pkg/pbfwriter emits always carry empty tags.
		if len(n.Tags) > 0 {
			pois = append(pois, POI{ID: n.ID, Lat: n.Lat, Lon: n.Lon, Tags: n.Tags})
		}

		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}

		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 2 complete: %d node coordinates collected, %d POI nodes", len(nodeLat), len(pois))

	// Build edges from ways.
	var edges []RawEdge
	var skippedEdges int
	var bboxFiltered int

	for _, w := range ways {
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID := w.NodeIDs[i]
			toID := w.NodeIDs[i+1]

			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]

			if !fromOk || !toOk {
				skippedEdges++
				continue
			}

			// Bounding box filter: skip edges with any endpoint outside.
			if useBBox && (!opt.BBox.Contains(fromLat, fromLon) || !opt.BBox.Contains(toLat, toLon)) {
				bboxFiltered++
				continue
			}

			dist := geomutil.DistanceMeters(
				geomutil.Coord{Lat: fromLat, Lon: fromLon},
				geomutil.Coord{Lat: toLat, Lon: toLon},
			)
			// Weight is travel time in milliseconds (distance / speed),
			// not raw distance: map_maxspeed (pkg/tagmap) now gives most
			// roads a real maxspeed tag, so a fast motorway edge should
			// outrank a short but slow residential shortcut.
			speedMps := w.SpeedKmh / 3.6
			weight := uint32(math.Round(dist / speedMps * 1000))
			if weight == 0 {
				weight = 1 // avoid zero-weight edges
			}

			if w.Forward {
				edges = append(edges, RawEdge{
					FromNodeID: fromID,
					ToNodeID:   toID,
					Weight:     weight,
					Ferry:      w.Ferry,
				})
			}
			if w.Backward {
				edges = append(edges, RawEdge{
					FromNodeID: toID,
					ToNodeID:   fromID,
					Weight:     weight,
					Ferry:      w.Ferry,
				})
			}
		}
	}

	if skippedEdges > 0 {
		log.Printf("Warning: skipped %d edges due to missing node coordinates", skippedEdges)
	}
	if bboxFiltered > 0 {
		log.Printf("Filtered %d edges outside bounding box", bboxFiltered)
	}
	log.Printf("Built %d directed edges", len(edges))

	return &ParseResult{
		Edges:   edges,
		POIs:    pois,
		NodeLat: nodeLat,
		NodeLon: nodeLon,
	}, nil
}
