package types

import (
	"encoding/binary"
	"fmt"

	"github.com/opengr2/gr2/internal/vptr"
)

// Node is one parsed element in the tree a Parser builds: a named,
// typed value together with whatever children or raw bytes its Kind
// carries. Only the fields relevant to Kind are meaningful; see the
// per-Kind notes on Parser's methods for which ones.
type Node struct {
	Kind Kind
	Name string

	// Size is the element's array arity: the fixed length for an
	// inline array field, or the runtime count read from the data
	// stream for a *ToArray/ArrayOfReferences kind. It is 1 for every
	// other kind.
	Size uint32

	// Children holds field nodes for KindInline, and one synthetic
	// per-element node for KindReferenceToArray and
	// KindReferenceToVariantArray. Nil for every other kind, including
	// an unresolved (null) reference.
	Children []*Node

	// Refs holds one resolved element per entry of a
	// KindArrayOfReferences field; a nil entry is a null pointer.
	Refs []*Node

	// Ref holds the resolved target of a KindReference or
	// KindVariantReference field; nil if the pointer was null. A
	// KindEmptyReference never resolves its pointer, so its Ref is
	// always nil.
	Ref *Node

	// Raw is a non-owning view into the parser's arena holding the
	// inline bytes for a scalar or KindTransform field. A KindString
	// field leaves it nil; its text is in Str.
	Raw []byte

	// Str holds the decoded text of a KindString field once its
	// pointer has been resolved; empty (and unset) for a null string.
	Str    string
	HasStr bool
}

// Parser walks a type-node descriptor sequence against a data stream
// in lockstep, building a Node tree. Both streams live in the same
// arena: the fully reassembled, byte-order-corrected, pointer-fixed-up
// image a container reader hands it.
type Parser struct {
	Arena *[]byte
	VPtr  *vptr.Table
	Is64  bool

	depth    int
	maxDepth int
}

// defaultMaxDepth bounds recursion against a pathological or
// adversarial file whose references cycle back on themselves; GR2
// element trees are shallow in practice (a handful of levels).
const defaultMaxDepth = 64

// NewParser builds a Parser over arena, resolving pointer-sized fields
// through table.
func NewParser(arena *[]byte, table *vptr.Table, is64 bool) *Parser {
	return &Parser{Arena: arena, VPtr: table, Is64: is64, maxDepth: defaultMaxDepth}
}

func (p *Parser) bytes() []byte { return *p.Arena }

func (p *Parser) ptrWidth() uint64 {
	if p.Is64 {
		return 8
	}
	return 4
}

// readFieldPtr reads one pointer-sized field (a vptr handle, zero
// meaning null) at offset and returns it widened to uint64 along with
// the offset just past it.
func (p *Parser) readFieldPtr(offset uint64) (handle uint64, next uint64, err error) {
	data := p.bytes()
	if p.Is64 {
		if offset+8 > uint64(len(data)) {
			return 0, 0, fmt.Errorf("types: data stream truncated reading a pointer at %d", offset)
		}
		return binary.LittleEndian.Uint64(data[offset : offset+8]), offset + 8, nil
	}
	if offset+4 > uint64(len(data)) {
		return 0, 0, fmt.Errorf("types: data stream truncated reading a pointer at %d", offset)
	}
	return uint64(binary.LittleEndian.Uint32(data[offset : offset+4])), offset + 4, nil
}

func (p *Parser) readCount(offset uint64) (uint32, uint64, error) {
	data := p.bytes()
	if offset+4 > uint64(len(data)) {
		return 0, 0, fmt.Errorf("types: data stream truncated reading a count at %d", offset)
	}
	return binary.LittleEndian.Uint32(data[offset : offset+4]), offset + 4, nil
}

// readPtrWidthInt reads one pointer-width field as a plain integer,
// not a virtual-pointer handle. It is used for the byte offset fields
// carried by KindVariantReference and KindReferenceToVariantArray.
func (p *Parser) readPtrWidthInt(offset uint64) (uint64, uint64, error) {
	return p.readFieldPtr(offset)
}

// resolvePtr decodes a field's raw handle value into an arena address.
// ok is false for a null pointer (handle 0) or a handle the table
// doesn't recognise, which this parser treats the same way a GR2
// reader would treat a dangling reference: an absent value, not a
// hard error.
func (p *Parser) resolvePtr(handle uint64) (addr uint64, ok bool) {
	return p.VPtr.Decode(uint32(handle))
}

func (p *Parser) nodeName(node TypeNode) string {
	if addr, ok := p.resolvePtr(node.NameHandle); ok {
		return p.readCString(addr)
	}
	return ""
}

func (p *Parser) readCString(addr uint64) string {
	data := p.bytes()
	if addr >= uint64(len(data)) {
		return ""
	}
	end := addr
	for end < uint64(len(data)) && data[end] != 0 {
		end++
	}
	return string(data[addr:end])
}

// ParseFields decodes one null-terminated run of TypeNode descriptors
// starting at typeOffset against the data stream starting at
// dataOffset, returning one Node per field and the data offset just
// past the last field (the struct's total byte width).
func (p *Parser) ParseFields(typeOffset, dataOffset uint64) ([]*Node, uint64, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, 0, fmt.Errorf("types: element tree exceeds maximum nesting depth")
	}

	var fields []*Node
	to := typeOffset
	do := dataOffset
	for {
		desc, ok, err := ParseTypeNode(p.bytes(), &to, p.Is64)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			break
		}

		node, next, err := p.parseField(desc, do)
		if err != nil {
			return nil, 0, err
		}
		fields = append(fields, node)
		do = next
	}
	return fields, do, nil
}

func (p *Parser) parseField(desc TypeNode, dataOffset uint64) (*Node, uint64, error) {
	name := p.nodeName(desc)

	switch desc.Type {
	case KindInline:
		return p.parseInline(desc, name, dataOffset)
	case KindReference:
		return p.parseReference(desc, name, dataOffset)
	case KindReferenceToArray:
		return p.parseReferenceToArray(desc, name, dataOffset)
	case KindArrayOfReferences:
		return p.parseArrayOfReferences(desc, name, dataOffset)
	case KindVariantReference:
		return p.parseVariantReference(desc, name, dataOffset)
	case KindReferenceToVariantArray:
		return p.parseReferenceToVariantArray(desc, name, dataOffset)
	case KindEmptyReference:
		return p.parseEmptyReference(desc, name, dataOffset)
	case KindString:
		return p.parseString(desc, name, dataOffset)
	case KindRemoved:
		return &Node{Kind: KindRemoved, Name: name, Size: 1}, dataOffset, nil
	default:
		return p.parseScalar(desc, name, dataOffset)
	}
}

func arrayArity(desc TypeNode) uint32 {
	if desc.ArraySize > 0 {
		return uint32(desc.ArraySize)
	}
	return 1
}

// parseInline consumes no data of its own: its children are parsed
// against the parent's data cursor, and the cursor lands wherever the
// last child left it.
func (p *Parser) parseInline(desc TypeNode, name string, dataOffset uint64) (*Node, uint64, error) {
	node := &Node{Kind: KindInline, Name: name, Size: 1}

	childTypeAddr, ok := p.resolvePtr(desc.ChildrenHandle)
	if !ok {
		return node, dataOffset, nil
	}
	fields, next, err := p.ParseFields(childTypeAddr, dataOffset)
	if err != nil {
		return nil, 0, err
	}
	node.Children = fields
	return node, next, nil
}

// resolveStructAt parses one instance of the struct described by the
// type descriptor at typeAddr, located at data address addr. haveType
// is false when the descriptor carried no children pointer, in which
// case there is nothing to recurse into.
func (p *Parser) resolveStructAt(typeAddr uint64, haveType bool, addr uint64) (*Node, error) {
	if !haveType {
		return nil, nil
	}
	fields, _, err := p.ParseFields(typeAddr, addr)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindInline, Children: fields, Size: 1}, nil
}

// resolveStruct resolves a data handle to an arena address and, if
// non-null, parses one instance of the struct described by
// childTypeAddr at that address.
func (p *Parser) resolveStruct(childTypeAddr uint64, haveType bool, dataHandle uint64) (*Node, error) {
	addr, ok := p.resolvePtr(dataHandle)
	if !ok {
		return nil, nil
	}
	return p.resolveStructAt(childTypeAddr, haveType, addr)
}

// parseReference binds a single pointer field, decoded and, if the
// descriptor carries a children type, recursed into at the resolved
// address.
func (p *Parser) parseReference(desc TypeNode, name string, dataOffset uint64) (*Node, uint64, error) {
	childTypeAddr, haveType := p.resolvePtr(desc.ChildrenHandle)
	handle, next, err := p.readFieldPtr(dataOffset)
	if err != nil {
		return nil, 0, err
	}
	ref, err := p.resolveStruct(childTypeAddr, haveType, handle)
	if err != nil {
		return nil, 0, err
	}
	return &Node{Kind: KindReference, Name: name, Size: 1, Ref: ref}, next, nil
}

// parseEmptyReference consumes a pointer-sized field but never
// recurses, even when the descriptor carries a children pointer: only
// kinds 1 through 7 parse children.
func (p *Parser) parseEmptyReference(desc TypeNode, name string, dataOffset uint64) (*Node, uint64, error) {
	_, next, err := p.readFieldPtr(dataOffset)
	if err != nil {
		return nil, 0, err
	}
	return &Node{Kind: KindEmptyReference, Name: name, Size: 1}, next, nil
}

func (p *Parser) parseReferenceToArray(desc TypeNode, name string, dataOffset uint64) (*Node, uint64, error) {
	childTypeAddr, haveType := p.resolvePtr(desc.ChildrenHandle)

	count, do, err := p.readCount(dataOffset)
	if err != nil {
		return nil, 0, err
	}
	handle, do, err := p.readFieldPtr(do)
	if err != nil {
		return nil, 0, err
	}

	node := &Node{Kind: KindReferenceToArray, Name: name, Size: count}
	baseAddr, ok := p.resolvePtr(handle)
	if !ok || !haveType || count == 0 {
		return node, do, nil
	}

	elemAddr := baseAddr
	for i := uint32(0); i < count; i++ {
		fields, next, err := p.ParseFields(childTypeAddr, elemAddr)
		if err != nil {
			return nil, 0, err
		}
		node.Children = append(node.Children, &Node{Kind: KindInline, Name: fmt.Sprintf("%s[%d]", name, i), Children: fields, Size: 1})
		elemAddr = next
	}
	return node, do, nil
}

func (p *Parser) parseArrayOfReferences(desc TypeNode, name string, dataOffset uint64) (*Node, uint64, error) {
	childTypeAddr, haveType := p.resolvePtr(desc.ChildrenHandle)

	count, do, err := p.readCount(dataOffset)
	if err != nil {
		return nil, 0, err
	}
	handle, do, err := p.readFieldPtr(do)
	if err != nil {
		return nil, 0, err
	}

	node := &Node{Kind: KindArrayOfReferences, Name: name, Size: count}
	tableAddr, ok := p.resolvePtr(handle)
	if !ok || count == 0 {
		return node, do, nil
	}

	width := p.ptrWidth()
	node.Refs = make([]*Node, count)
	for i := uint32(0); i < count; i++ {
		elemHandle, _, err := p.readFieldPtr(tableAddr + uint64(i)*width)
		if err != nil {
			return nil, 0, err
		}
		ref, err := p.resolveStruct(childTypeAddr, haveType, elemHandle)
		if err != nil {
			return nil, 0, err
		}
		node.Refs[i] = ref
	}
	return node, do, nil
}

// parseVariantReference binds a (offset, ptr) pair: ptr decodes to a
// base address, and children, described by this field's own static
// type descriptor, start at base+offset.
func (p *Parser) parseVariantReference(desc TypeNode, name string, dataOffset uint64) (*Node, uint64, error) {
	offset, do, err := p.readPtrWidthInt(dataOffset)
	if err != nil {
		return nil, 0, err
	}
	dataHandle, do, err := p.readFieldPtr(do)
	if err != nil {
		return nil, 0, err
	}

	childTypeAddr, haveType := p.resolvePtr(desc.ChildrenHandle)
	node := &Node{Kind: KindVariantReference, Name: name, Size: 1}

	baseAddr, ok := p.resolvePtr(dataHandle)
	if !ok {
		return node, do, nil
	}
	ref, err := p.resolveStructAt(childTypeAddr, haveType, baseAddr+offset)
	if err != nil {
		return nil, 0, err
	}
	node.Ref = ref
	return node, do, nil
}

// parseReferenceToVariantArray binds (size, offset, ptr): ptr decodes
// to the array base, base+offset is where the size contiguous
// elements begin, each described by this field's own static type
// descriptor.
func (p *Parser) parseReferenceToVariantArray(desc TypeNode, name string, dataOffset uint64) (*Node, uint64, error) {
	count, do, err := p.readCount(dataOffset)
	if err != nil {
		return nil, 0, err
	}
	offset, do, err := p.readPtrWidthInt(do)
	if err != nil {
		return nil, 0, err
	}
	handle, do, err := p.readFieldPtr(do)
	if err != nil {
		return nil, 0, err
	}

	childTypeAddr, haveType := p.resolvePtr(desc.ChildrenHandle)
	node := &Node{Kind: KindReferenceToVariantArray, Name: name, Size: count}

	baseAddr, ok := p.resolvePtr(handle)
	if !ok || !haveType || count == 0 {
		return node, do, nil
	}

	elemAddr := baseAddr + offset
	for i := uint32(0); i < count; i++ {
		fields, next, err := p.ParseFields(childTypeAddr, elemAddr)
		if err != nil {
			return nil, 0, err
		}
		node.Children = append(node.Children, &Node{Kind: KindInline, Name: fmt.Sprintf("%s[%d]", name, i), Children: fields, Size: 1})
		elemAddr = next
	}
	return node, do, nil
}

func (p *Parser) parseString(desc TypeNode, name string, dataOffset uint64) (*Node, uint64, error) {
	handle, next, err := p.readFieldPtr(dataOffset)
	if err != nil {
		return nil, 0, err
	}
	node := &Node{Kind: KindString, Name: name, Size: 1}
	if addr, ok := p.resolvePtr(handle); ok {
		node.Str = p.readCString(addr)
		node.HasStr = true
	}
	return node, next, nil
}

func (p *Parser) parseScalar(desc TypeNode, name string, dataOffset uint64) (*Node, uint64, error) {
	info := ElementTypeInfo[desc.Type]
	elemWidth := info.Size32
	if p.Is64 {
		elemWidth = info.Size64
	}
	size := arrayArity(desc)
	width := uint64(elemWidth) * uint64(size)

	data := p.bytes()
	if dataOffset+width > uint64(len(data)) {
		return nil, 0, fmt.Errorf("types: data stream truncated reading %s field %q", desc.Type, name)
	}

	node := &Node{Kind: desc.Type, Name: name, Size: size, Raw: data[dataOffset : dataOffset+width]}
	return node, dataOffset + width, nil
}
