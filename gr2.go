// Package gr2 reads Granny2 (GR2) binary asset files, a closed-format
// container carrying rigged-mesh, skeletal-animation, and art-tool
// metadata, and materialises their contents as an in-memory tree of
// typed nodes.
//
// Load runs a four-stage pipeline: container decoding (magic
// identification, header/file-info validation, sectorisation), Oodle-1
// arithmetic decompression of compressed sectors, a pointer-fixup and
// endianness-marshalling pass over the decompressed arena, and a
// type-driven element parse that walks a type description and a data
// stream in lockstep to build the Node tree returned from Root.
package gr2

import (
	"fmt"
	"os"

	"github.com/opengr2/gr2/internal/core"
	"github.com/opengr2/gr2/internal/types"
	"github.com/opengr2/gr2/internal/vptr"
)

// defaultMaxArenaSize bounds the sum of a file's decompressed sector
// lengths that a load accepts. The check runs once core.Load has
// built the arena: an oversized file is rejected, but the arena
// allocation itself is not limited by it.
const defaultMaxArenaSize = 512 << 20

// LoadOptions configures a Load call. The zero value is the default
// configuration Load itself uses.
type LoadOptions struct {
	// Logger receives optional trace lines; nil means no tracing.
	Logger Logger

	// MaxArenaSize caps the sum of decompressed sector lengths a load
	// accepts; a larger arena fails the load after it has been built.
	// Zero means defaultMaxArenaSize (512 MiB).
	MaxArenaSize uint64

	// StrictTag rejects a file whose FileInfo.Tag is not in the
	// registry KnownTag checks against.
	StrictTag bool
}

// Reader is the loaded, queryable result of Load: the decompressed
// arena, the sector table, the virtual-pointer table, the flat element
// index, and the root Node. All of its fields are populated in one
// shot by Load/Open and are immutable and safe for concurrent read
// traversal thereafter.
type Reader struct {
	opts LoadOptions

	mismatchEndian bool
	is64           bool

	header   core.Header
	fileInfo core.FileInfo
	sectors  []core.SectorDesc

	arena         []byte
	sectorOffsets []uint32
	vptr          *vptr.Table

	root     *Node
	elements []*Node

	crc32Computed uint32
}

// Load parses buf as a complete GR2 file using the default options.
func Load(buf []byte) (*Reader, error) {
	return LoadOptions{}.Load(buf)
}

// Open reads filename into memory and loads it with the default
// options.
func Open(filename string) (*Reader, error) {
	//nolint:gosec // G304: caller-provided path is the whole point of this API
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, wrapStage(fmt.Errorf("gr2: read %s: %w", filename, err))
	}
	return Load(data)
}

// Load runs the container pipeline, then the type/element parse, over
// buf using o's configuration. Each call produces a fresh Reader and
// leaves buf untouched.
func (o LoadOptions) Load(buf []byte) (*Reader, error) {
	res, err := core.Load(buf)
	if err != nil {
		return nil, wrapStage(err)
	}

	maxArena := o.MaxArenaSize
	if maxArena == 0 {
		maxArena = defaultMaxArenaSize
	}
	if uint64(len(res.Arena)) > maxArena {
		return nil, wrapStage(fmt.Errorf("gr2: decompressed arena of %d bytes exceeds MaxArenaSize %d", len(res.Arena), maxArena))
	}

	if o.StrictTag && !KnownTag(res.FileInfo.Tag) {
		return nil, wrapStage(fmt.Errorf("gr2: tag 0x%x is not a recognised structure-data version", res.FileInfo.Tag))
	}

	r := &Reader{
		opts:           o,
		mismatchEndian: res.MismatchEndianness,
		is64:           res.Is64,
		header:         res.Header,
		fileInfo:       res.FileInfo,
		sectors:        res.Sectors,
		arena:          res.Arena,
		sectorOffsets:  res.SectorOffsets,
		vptr:           res.VPtr,
		crc32Computed:  core.ComputeCRC32(computeCRCRegion(buf, res.FileInfo.FileInfoSize)),
	}

	r.logf("sectors decompressed: %d, arena %d bytes", len(r.sectors), len(r.arena))

	if err := r.parseElements(); err != nil {
		return nil, wrapStage(err)
	}
	r.logf("element parse complete: %d elements indexed", len(r.elements))

	return r, nil
}

// computeCRCRegion returns the slice ComputeCRC32 is run over: the
// file's bytes following the fixed header and the file info, which is
// the region FileInfo's own stored CRC32 is documented to cover.
func computeCRCRegion(buf []byte, fileInfoSize uint32) []byte {
	start := uint64(core.HeaderSize) + uint64(fileInfoSize)
	if uint64(len(buf)) < start {
		return nil
	}
	return buf[start:]
}

func (r *Reader) logf(format string, args ...any) {
	logger := r.opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	logger.Debugf(format, args...)
}

// refAddr resolves a FileInfo Reference (sector, byte position) to an
// address inside the reassembled arena.
func (r *Reader) refAddr(ref core.Reference) (uint64, error) {
	if int(ref.Sector) >= len(r.sectorOffsets) {
		return 0, fmt.Errorf("gr2: reference names sector %d, have %d", ref.Sector, len(r.sectorOffsets))
	}
	addr := uint64(r.sectorOffsets[ref.Sector]) + uint64(ref.Position)
	if addr > uint64(len(r.arena)) {
		return 0, fmt.Errorf("%w: root reference offset", ErrOutOfBounds)
	}
	return addr, nil
}

// parseElements invokes the type/element parser over the file's type
// and root references, attaching the resulting fields under a
// synthetic "Root" inline node and building the flat element index
// from everything the parser actually constructed.
func (r *Reader) parseElements() error {
	root := &Node{Kind: types.KindInline, Name: "Root", Size: 1}
	r.root = root

	if r.fileInfo.SectorCount == 0 {
		return nil
	}

	typeAddr, err := r.refAddr(r.fileInfo.Type)
	if err != nil {
		return err
	}
	dataAddr, err := r.refAddr(r.fileInfo.Root)
	if err != nil {
		return err
	}

	parser := types.NewParser(&r.arena, r.vptr, r.is64)
	fields, _, err := parser.ParseFields(typeAddr, dataAddr)
	if err != nil {
		return err
	}
	root.Children = fields

	for _, c := range fields {
		appendElements(c, &r.elements)
	}
	return nil
}

// appendElements walks n and everything it transitively owns
// (Children, Refs, Ref), appending each element to out in depth-first
// pre-order: a node comes before everything it owns. The flat index is
// built here, after
// the parse, so the parser itself carries no index plumbing through
// its recursive calls.
func appendElements(n *Node, out *[]*Node) {
	if n == nil {
		return
	}
	*out = append(*out, n)
	for _, c := range n.Children {
		appendElements(c, out)
	}
	for _, ref := range n.Refs {
		appendElements(ref, out)
	}
	appendElements(n.Ref, out)
}

// Root returns the synthetic top-level Node every load creates; its
// Children are the file's top-level parsed fields.
func (r *Reader) Root() *Node { return r.root }

// Len reports how many elements the type/element parser constructed
// (the size of the flat index), not counting the synthetic Root node.
func (r *Reader) Len() int { return len(r.elements) }

// ElementByIndex returns the i-th element of the flat index (the
// depth-first pre-order of the tree under Root), or nil if i is out of
// range.
func (r *Reader) ElementByIndex(i int) *Node {
	if i < 0 || i >= len(r.elements) {
		return nil
	}
	return r.elements[i]
}

// Walk traverses the element tree depth-first starting at Root,
// calling fn with each node's slash-separated path (by field name) and
// the node itself. Array and reference-array synthetic elements are
// named "field[i]", matching the internal parser's own naming.
func (r *Reader) Walk(fn func(path string, n *Node)) {
	walkNode(r.root, "", fn)
}

func walkNode(n *Node, prefix string, fn func(string, *Node)) {
	if n == nil {
		return
	}
	path := prefix + n.Name
	fn(path, n)

	// Nameless wrappers (a resolved reference target, an array element
	// group) stay transparent in paths rather than contributing an
	// empty segment.
	childPrefix := path + "/"
	if n.Name == "" {
		childPrefix = prefix
	}
	for _, c := range n.Children {
		walkNode(c, childPrefix, fn)
	}
	for _, ref := range n.Refs {
		walkNode(ref, childPrefix, fn)
	}
	walkNode(n.Ref, childPrefix, fn)
}

// Tag returns FileInfo.Tag, the structure-data version RAD's tooling
// uses to decide whether a schema migration is needed. This reader
// performs no migration; Tag is exposed for callers that want to make
// their own compatibility decision.
func (r *Reader) Tag() uint32 { return r.fileInfo.Tag }

// PointerSize returns 4 or 8, the pointer width the file's magic
// declared.
func (r *Reader) PointerSize() int {
	if r.is64 {
		return 8
	}
	return 4
}

// CRC32Valid reports whether the file's stored FileInfo.CRC32 matches
// the CRC32 this reader computed over the bytes following the file
// info.
// The checksum is diagnostic only: a mismatch is recorded here but
// never fails a load.
func (r *Reader) CRC32Valid() bool {
	return r.crc32Computed == r.fileInfo.CRC32
}

// Format returns the FileInfo format version (6 or 7).
func (r *Reader) Format() int32 { return r.fileInfo.Format }

// SectorCount returns the number of sectors the file declared.
func (r *Reader) SectorCount() int { return len(r.sectors) }

// Free releases the Reader's owned buffers: the arena, sector table,
// virtual-pointer table, and element index. It is always safe to call,
// including after a failed Load (which never returns a non-nil Reader)
// or multiple times. Nodes and Raw views obtained from this Reader
// must not be used after Free.
func (r *Reader) Free() {
	r.arena = nil
	r.sectorOffsets = nil
	r.sectors = nil
	r.vptr = nil
	r.elements = nil
	r.root = nil
}
