// Package types implements type-node descriptor decoding and the
// type-driven element tree parser: the stage that walks a type
// description and a data stream in lockstep to build a tree of typed
// values.
package types

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrBadTypeID is returned when a type-node descriptor's type id falls
// outside the known 0..22 range.
var ErrBadTypeID = errors.New("types: type id out of range")

// ErrInvalidArraySize is returned when a pointer-bearing kind declares
// a non-zero array size in its type-node descriptor.
var ErrInvalidArraySize = errors.New("types: array size is invalid for this kind")

// Kind enumerates the closed set of 23 GR2 element types.
type Kind uint32

// The 23 known element kinds, in their on-disk numeric order.
const (
	KindNone Kind = iota
	KindInline
	KindReference
	KindReferenceToArray
	KindArrayOfReferences
	KindVariantReference
	KindRemoved
	KindReferenceToVariantArray
	KindString
	KindTransform
	KindReal32
	KindInt8
	KindUint8
	KindBinormalInt8
	KindNormalUint8
	KindInt16
	KindUint16
	KindBinormalInt16
	KindNormalUint16
	KindInt32
	KindUint32
	KindReal16
	KindEmptyReference

	kindCount // 23
)

// String names a Kind the way the format's own naming does, for
// diagnostics and the CLI dumper.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

var kindNames = [kindCount]string{
	"None", "Inline", "Reference", "ReferenceToArray", "ArrayOfReferences",
	"VariantReference", "Removed", "ReferenceToVariantArray", "String",
	"Transform", "Real32", "Int8", "Uint8", "BinormalInt8", "NormalUint8",
	"Int16", "Uint16", "BinormalInt16", "NormalUint16", "Int32", "Uint32",
	"Real16", "EmptyReference",
}

// TypeSize holds, per Kind, the binding width consumed while parsing
// one occurrence of the type in 32-bit and 64-bit layouts, and the
// stride a marshal pass must swap it in (4 for a full word, 2 for a
// 16-bit unit, 0 or 1 for no swap).
type TypeSize struct {
	Size32   uint32
	Size64   uint32
	SwapSize uint32
}

// ElementTypeInfo is the fixed per-kind storage-width table, indexed
// by Kind.
var ElementTypeInfo = [kindCount]TypeSize{
	{0, 0, 0},    // None
	{0, 0, 0},    // Inline
	{4, 8, 0},    // Reference
	{8, 12, 4},   // ReferenceToArray
	{8, 12, 4},   // ArrayOfReferences
	{8, 16, 0},   // VariantReference
	{0, 0, 0},    // Removed
	{12, 20, 4},  // ReferenceToVariantArray
	{4, 8, 4},    // String
	{68, 68, 4},  // Transform
	{4, 4, 4},    // Real32
	{1, 1, 1},    // Int8
	{1, 1, 1},    // Uint8
	{1, 1, 1},    // BinormalInt8
	{1, 1, 1},    // NormalUint8
	{2, 2, 2},    // Int16
	{2, 2, 2},    // Uint16
	{2, 2, 2},    // BinormalInt16
	{2, 2, 2},    // NormalUint16
	{4, 4, 4},    // Int32
	{4, 4, 4},    // Uint32
	{2, 2, 2},    // Real16
	{4, 8, 0},    // EmptyReference
}

// CanHaveChildren reports whether a type descriptor of this kind may
// carry a non-null children pointer.
func (k Kind) CanHaveChildren() bool {
	switch k {
	case KindReferenceToArray, KindInline, KindArrayOfReferences, KindReferenceToVariantArray,
		KindVariantReference, KindReference:
		return true
	default:
		return false
	}
}

// IsArraySizeValid reports whether size is an acceptable array-size
// field for a type descriptor of this kind. Pointer-bearing kinds
// carry their element count elsewhere and must declare a zero array
// size here.
func (k Kind) IsArraySizeValid(size int32) bool {
	switch k {
	case KindReference, KindReferenceToArray, KindArrayOfReferences, KindVariantReference,
		KindReferenceToVariantArray, KindEmptyReference, KindString:
		return size == 0
	default:
		return true
	}
}

const (
	typeNodeHeadSize  = 4  // leading type field, all a terminator carries
	typeNodeExtraSize = 12 // extra[12]
)

// TypeNode is one descriptor in the null-terminated type-node
// sequence: a field's type, its name and children pointers (as raw
// virtual-pointer handles, not yet decoded), its array arity, and an
// extra trailing pointer-sized field whose purpose is unused by this
// reader.
type TypeNode struct {
	Type           Kind
	NameHandle     uint64
	ChildrenHandle uint64
	ArraySize      int32
	Extra          [12]byte
	Extra4         uint64
}

// ParseTypeNode reads one descriptor from data at *offset, advancing
// *offset past it. ok is false once the terminating type==0 descriptor
// is reached; err is non-nil if the type id exceeds the known range.
func ParseTypeNode(data []byte, offset *uint64, is64 bool) (node TypeNode, ok bool, err error) {
	o := *offset
	if o+typeNodeHeadSize > uint64(len(data)) {
		return TypeNode{}, false, fmt.Errorf("types: type-node stream truncated at offset %d", o)
	}

	rawType := binary.LittleEndian.Uint32(data[o : o+4])
	if rawType == 0 {
		return TypeNode{}, false, nil
	}
	if rawType >= uint32(kindCount) {
		return TypeNode{}, false, fmt.Errorf("%w: %d", ErrBadTypeID, rawType)
	}
	o += 4

	var n TypeNode
	n.Type = Kind(rawType)

	n.NameHandle, o, err = readPtr(data, o, is64)
	if err != nil {
		return TypeNode{}, false, err
	}
	n.ChildrenHandle, o, err = readPtr(data, o, is64)
	if err != nil {
		return TypeNode{}, false, err
	}
	if is64 {
		// 8 bytes of padding follow the children pointer on 64-bit.
		o += 8
	}

	if o+4 > uint64(len(data)) {
		return TypeNode{}, false, fmt.Errorf("types: type-node stream truncated reading array size")
	}
	n.ArraySize = int32(binary.LittleEndian.Uint32(data[o : o+4]))
	o += 4

	if o+typeNodeExtraSize > uint64(len(data)) {
		return TypeNode{}, false, fmt.Errorf("types: type-node stream truncated reading extra bytes")
	}
	copy(n.Extra[:], data[o:o+typeNodeExtraSize])
	o += typeNodeExtraSize

	n.Extra4, o, err = readPtr(data, o, is64)
	if err != nil {
		return TypeNode{}, false, err
	}

	if !n.Type.IsArraySizeValid(n.ArraySize) {
		return TypeNode{}, false, fmt.Errorf("%w: %d for %s", ErrInvalidArraySize, n.ArraySize, n.Type)
	}

	*offset = o
	return n, true, nil
}

func readPtr(data []byte, offset uint64, is64 bool) (uint64, uint64, error) {
	if is64 {
		if offset+8 > uint64(len(data)) {
			return 0, 0, fmt.Errorf("types: type-node stream truncated reading a 64-bit pointer")
		}
		return binary.LittleEndian.Uint64(data[offset : offset+8]), offset + 8, nil
	}
	if offset+4 > uint64(len(data)) {
		return 0, 0, fmt.Errorf("types: type-node stream truncated reading a 32-bit pointer")
	}
	return uint64(binary.LittleEndian.Uint32(data[offset : offset+4])), offset + 4, nil
}
