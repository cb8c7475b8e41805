// Package pbfwriter is a low-level OSM PBF encoder exposing
// write(node|way) calls and a bounding-box setter. It streams nodes
// and ways into batched PrimitiveBlock blobs, writing the header blob
// (with bounding box) as soon as the first element is written, so the
// output file can be read by any streaming OSM PBF consumer as it
// grows.
package pbfwriter

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
)

// groupSize caps how many nodes or ways accumulate before a
// PrimitiveBlock is flushed, matching the block sizes common OSM PBF
// writers (osmium, osmconvert) use to keep blobs stream-friendly.
const groupSize = 8000

// Node is a caller-facing node: an assigned ID, a position, and tags.
type Node struct {
	ID   int64
	Lon  float64
	Lat  float64
	Tags map[string]string
}

// Way is a caller-facing way: an assigned ID, its ordered node-ID
// list, and a shared tag map.
type Way struct {
	ID      int64
	NodeIDs []int64
	Tags    map[string]string
}

type pendingNode struct {
	id       int64
	lon, lat float64
	tags     map[string]string
}

type pendingWay struct {
	id      int64
	nodeIDs []int64
	tags    map[string]string
}

// Writer assembles an OSM PBF stream: SetBoundingBox must be called
// before the first WriteNode/WriteWay. Nodes must all be written
// before the first way; callers driving a three-pass node/junction/way
// emission already satisfy this ordering.
type Writer struct {
	w             io.Writer
	headerWritten bool
	minLon        float64
	minLat        float64
	maxLon        float64
	maxLat        float64

	pendingNodes []pendingNode
	pendingWays  []pendingWay
}

// New returns a Writer that writes the PBF byte stream to w.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// SetBoundingBox records the bounding box in decimal degrees; it is
// converted to nanodegrees (round(deg*1e9)) when the header blob is
// written.
func (wr *Writer) SetBoundingBox(minLon, minLat, maxLon, maxLat float64) {
	wr.minLon, wr.minLat, wr.maxLon, wr.maxLat = minLon, minLat, maxLon, maxLat
}

// WriteNode enqueues a node, flushing a PrimitiveBlock once groupSize
// nodes have accumulated.
func (wr *Writer) WriteNode(n Node) error {
	if err := wr.ensureHeader(); err != nil {
		return err
	}
	wr.pendingNodes = append(wr.pendingNodes, pendingNode{id: n.ID, lon: n.Lon, lat: n.Lat, tags: n.Tags})
	if len(wr.pendingNodes) >= groupSize {
		return wr.flushNodes()
	}
	return nil
}

// WriteWay enqueues a way, flushing a PrimitiveBlock once groupSize
// ways have accumulated. The first WriteWay call flushes any pending
// nodes first, so node and way blobs never interleave out of order.
func (wr *Writer) WriteWay(w Way) error {
	if err := wr.ensureHeader(); err != nil {
		return err
	}
	if len(wr.pendingNodes) > 0 {
		if err := wr.flushNodes(); err != nil {
			return err
		}
	}
	wr.pendingWays = append(wr.pendingWays, pendingWay{id: w.ID, nodeIDs: w.NodeIDs, tags: w.Tags})
	if len(wr.pendingWays) >= groupSize {
		return wr.flushWays()
	}
	return nil
}

// Close flushes any buffered nodes and ways. It does not close the
// underlying io.Writer.
func (wr *Writer) Close() error {
	if err := wr.ensureHeader(); err != nil {
		return err
	}
	if err := wr.flushNodes(); err != nil {
		return err
	}
	return wr.flushWays()
}

func (wr *Writer) ensureHeader() error {
	if wr.headerWritten {
		return nil
	}
	wr.headerWritten = true
	bbox := marshalHeaderBBox(wr.minLon, wr.minLat, wr.maxLon, wr.maxLat)
	return wr.writeBlob("OSMHeader", marshalHeaderBlock(bbox))
}

func (wr *Writer) flushNodes() error {
	if len(wr.pendingNodes) == 0 {
		return nil
	}
	st := newStringTable()
	dense := marshalDenseNodes(wr.pendingNodes, st)
	block := marshalPrimitiveBlock(st, marshalNodeGroup(dense))
	wr.pendingNodes = wr.pendingNodes[:0]
	return wr.writeBlob("OSMData", block)
}

func (wr *Writer) flushWays() error {
	if len(wr.pendingWays) == 0 {
		return nil
	}
	st := newStringTable()
	ways := make([][]byte, len(wr.pendingWays))
	for i, w := range wr.pendingWays {
		ways[i] = marshalWay(w, st)
	}
	block := marshalPrimitiveBlock(st, marshalWayGroup(ways))
	wr.pendingWays = wr.pendingWays[:0]
	return wr.writeBlob("OSMData", block)
}

// writeBlob zlib-compresses payload and writes it as a length-prefixed
// BlobHeader followed by the Blob itself, per fileformat.proto's
// framing: a 4-byte big-endian BlobHeader length, the BlobHeader, then
// the Blob.
func (wr *Writer) writeBlob(blobType string, payload []byte) error {
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(payload); err != nil {
		return fmt.Errorf("pbfwriter: zlib compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("pbfwriter: zlib close: %w", err)
	}

	blob := marshalBlob(len(payload), compressed.Bytes())
	header := marshalBlobHeader(blobType, len(blob))

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(header)))
	if _, err := wr.w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("pbfwriter: write blob-header length: %w", err)
	}
	if _, err := wr.w.Write(header); err != nil {
		return fmt.Errorf("pbfwriter: write blob header: %w", err)
	}
	if _, err := wr.w.Write(blob); err != nil {
		return fmt.Errorf("pbfwriter: write blob: %w", err)
	}
	return nil
}
