package pbfwriter

import (
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// These functions hand-encode the OSM PBF wire messages
// (fileformat.proto's Blob/BlobHeader, osmformat.proto's HeaderBlock/
// PrimitiveBlock/PrimitiveGroup/DenseNodes/Way/Info) directly against
// their published field numbers, using protowire as the low-level
// varint/length-delimited primitive encoder. Field numbers and wire
// types below are the stable, public OSM PBF schema also read by
// github.com/paulmach/osm/osmpbf and m4o.io/pbf.

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendZigZagField(b []byte, num protowire.Number, v int64) []byte {
	return appendVarintField(b, num, protowire.EncodeZigZag(v))
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// marshalBlobHeader encodes fileformat.proto's BlobHeader: required
// string type=1, required int32 datasize=3.
func marshalBlobHeader(blobType string, datasize int) []byte {
	var b []byte
	b = appendStringField(b, 1, blobType)
	b = appendVarintField(b, 3, uint64(datasize))
	return b
}

// marshalBlob encodes fileformat.proto's Blob using zlib compression:
// optional int32 raw_size=2, optional bytes zlib_data=3.
func marshalBlob(rawLen int, zlibData []byte) []byte {
	var b []byte
	b = appendVarintField(b, 2, uint64(rawLen))
	b = appendBytesField(b, 3, zlibData)
	return b
}

// marshalHeaderBBox encodes osmformat.proto's HeaderBBox: required
// sint64 left/right/top/bottom in nanodegrees.
func marshalHeaderBBox(minLon, minLat, maxLon, maxLat float64) []byte {
	var b []byte
	b = appendZigZagField(b, 1, nanodegrees(minLon))
	b = appendZigZagField(b, 2, nanodegrees(maxLon))
	b = appendZigZagField(b, 3, nanodegrees(maxLat))
	b = appendZigZagField(b, 4, nanodegrees(minLat))
	return b
}

// marshalHeaderBlock encodes osmformat.proto's HeaderBlock: optional
// HeaderBBox bbox=1, optional string writingprogram=16/source=17.
func marshalHeaderBlock(bbox []byte) []byte {
	var b []byte
	b = appendBytesField(b, 1, bbox)
	b = appendStringField(b, 16, "nvdb2osmpbf")
	b = appendStringField(b, 17, "NVDB")
	return b
}

// marshalInfo encodes osmformat.proto's Info with the minimal
// metadata-free contract: version=1 int32 (0), visible=6 bool (true).
// No timestamp/changeset/uid/user are written.
func marshalInfo() []byte {
	var b []byte
	b = appendVarintField(b, 1, 0)
	b = appendVarintField(b, 6, 1)
	return b
}

// sortedKeys returns tags' keys in a stable order so successive encodes
// of the same tag map are byte-identical (and tests are deterministic).
func sortedKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stringTable accumulates one PrimitiveBlock's worth of interned
// strings, index 0 reserved for the empty string per osmformat.proto
// convention.
type stringTable struct {
	strings []string
	index   map[string]uint32
}

func newStringTable() *stringTable {
	return &stringTable{strings: []string{""}, index: map[string]uint32{"": 0}}
}

func (t *stringTable) intern(s string) uint32 {
	if i, ok := t.index[s]; ok {
		return i
	}
	i := uint32(len(t.strings))
	t.strings = append(t.strings, s)
	t.index[s] = i
	return i
}

func (t *stringTable) marshal() []byte {
	var b []byte
	for _, s := range t.strings {
		b = appendStringField(b, 1, s)
	}
	return b
}

// marshalDenseNodes encodes osmformat.proto's DenseNodes: delta+zigzag
// packed id/lat/lon arrays, a parallel DenseInfo with version=0 and
// visible=true, and a flat 0-terminated keys_vals index stream per node.
func marshalDenseNodes(nodes []pendingNode, st *stringTable) []byte {
	var ids, lats, lons, versions, visibles, keysVals []byte
	var prevID, prevLat, prevLon int64

	for _, n := range nodes {
		ids = protowire.AppendVarint(ids, protowire.EncodeZigZag(n.id-prevID))
		prevID = n.id

		lat := nanodegrees(n.lat)
		lon := nanodegrees(n.lon)
		lats = protowire.AppendVarint(lats, protowire.EncodeZigZag(lat-prevLat))
		prevLat = lat
		lons = protowire.AppendVarint(lons, protowire.EncodeZigZag(lon-prevLon))
		prevLon = lon

		versions = protowire.AppendVarint(versions, 0)
		visibles = protowire.AppendVarint(visibles, 1)

		for _, k := range sortedKeys(n.tags) {
			keysVals = protowire.AppendVarint(keysVals, uint64(st.intern(k)))
			keysVals = protowire.AppendVarint(keysVals, uint64(st.intern(n.tags[k])))
		}
		keysVals = protowire.AppendVarint(keysVals, 0)
	}

	var denseInfo []byte
	denseInfo = appendBytesField(denseInfo, 1, versions)
	denseInfo = appendBytesField(denseInfo, 6, visibles)

	var b []byte
	b = appendBytesField(b, 1, ids)
	b = appendBytesField(b, 5, denseInfo)
	b = appendBytesField(b, 8, lats)
	b = appendBytesField(b, 9, lons)
	b = appendBytesField(b, 10, keysVals)
	return b
}

// marshalWay encodes osmformat.proto's Way: plain-varint int64 id=1,
// packed uint32 keys=2/vals=3 (parallel arrays, not interleaved), an
// Info at field4, and delta+zigzag packed sint64 refs=8.
func marshalWay(w pendingWay, st *stringTable) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(w.id))

	if len(w.tags) > 0 {
		keys := sortedKeys(w.tags)
		var keyIdx, valIdx []byte
		for _, k := range keys {
			keyIdx = protowire.AppendVarint(keyIdx, uint64(st.intern(k)))
			valIdx = protowire.AppendVarint(valIdx, uint64(st.intern(w.tags[k])))
		}
		b = appendBytesField(b, 2, keyIdx)
		b = appendBytesField(b, 3, valIdx)
	}

	b = appendBytesField(b, 4, marshalInfo())

	var refs []byte
	var prev int64
	for _, id := range w.nodeIDs {
		refs = protowire.AppendVarint(refs, protowire.EncodeZigZag(id-prev))
		prev = id
	}
	b = appendBytesField(b, 8, refs)
	return b
}

// marshalPrimitiveBlock encodes osmformat.proto's PrimitiveBlock with a
// single PrimitiveGroup and granularity=1, so stored lat/lon/bbox
// values are exactly nanodegree integers rather than the format's
// usual granularity=100 scaled units.
func marshalPrimitiveBlock(st *stringTable, group []byte) []byte {
	var b []byte
	b = appendBytesField(b, 1, st.marshal())
	b = appendBytesField(b, 2, group)
	b = appendVarintField(b, 17, 1)
	return b
}

// marshalNodeGroup wraps DenseNodes at PrimitiveGroup field 2.
func marshalNodeGroup(dense []byte) []byte {
	return appendBytesField(nil, 2, dense)
}

// marshalWayGroup wraps each Way at PrimitiveGroup field 3.
func marshalWayGroup(ways [][]byte) []byte {
	var b []byte
	for _, w := range ways {
		b = appendBytesField(b, 3, w)
	}
	return b
}

func nanodegrees(deg float64) int64 {
	return roundInt64(deg * 1e9)
}

func roundInt64(x float64) int64 {
	if x < 0 {
		return int64(x - 0.5)
	}
	return int64(x + 0.5)
}
