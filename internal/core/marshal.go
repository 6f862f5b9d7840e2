package core

import (
	"fmt"

	"github.com/opengr2/gr2/internal/types"
)

// marshalElements swaps count consecutive instances of the struct
// described by the type-node sequence at typeOffset, starting at
// dataOffset. It mirrors the type/element parser's own field walk
// closely enough to compute each field's width, but only swaps bytes;
// it never resolves pointers, since fix-ups have not run yet.
func marshalElements(arena []byte, typeOffset, dataOffset uint64, count uint32, is64 bool) error {
	do := dataOffset
	for i := uint32(0); i < count; i++ {
		next, err := marshalStruct(arena, typeOffset, do, is64)
		if err != nil {
			return err
		}
		do = next
	}
	return nil
}

// marshalStruct walks one null-terminated run of type-node descriptors,
// swapping each field's bytes in place and returning the data offset
// just past the struct.
func marshalStruct(arena []byte, typeOffset, dataOffset uint64, is64 bool) (uint64, error) {
	to := typeOffset
	do := dataOffset
	for {
		desc, ok, err := types.ParseTypeNode(arena, &to, is64)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}

		width := fieldWidth(desc, is64)

		// INLINE recursion would need to dereference this field's
		// children pointer, but no fix-up has run yet at marshal time:
		// every pointer-sized field in the arena, including a type
		// node's own children pointer, is still a raw placeholder. An
		// inline substructure's own primitives get their byte-swap from
		// their own marshal record instead.
		if width > 0 {
			if do+uint64(width) > uint64(len(arena)) {
				return 0, fmt.Errorf("%w: marshal field at %d", ErrOutOfBounds, do)
			}
			swapField(arena[do:do+uint64(width)], types.ElementTypeInfo[desc.Type].SwapSize)
		}
		do += uint64(width)
	}
	return do, nil
}

func fieldWidth(desc types.TypeNode, is64 bool) uint32 {
	info := types.ElementTypeInfo[desc.Type]
	w := info.Size32
	if is64 {
		w = info.Size64
	}
	if desc.ArraySize > 0 {
		switch desc.Type {
		case types.KindReal32, types.KindInt8, types.KindUint8, types.KindBinormalInt8, types.KindNormalUint8,
			types.KindInt16, types.KindUint16, types.KindBinormalInt16, types.KindNormalUint16,
			types.KindInt32, types.KindUint32, types.KindReal16, types.KindTransform:
			w *= uint32(desc.ArraySize)
		}
	}
	return w
}

func swapField(data []byte, swapSize uint32) {
	switch swapSize {
	case 4:
		Swap1(data)
	case 2:
		// Swap2 only touches complete 4-byte groups, which would skip a
		// lone 2-byte field or the odd tail of a 16-bit array; swap
		// each 2-byte unit directly instead.
		for i := 0; i+1 < len(data); i += 2 {
			data[i], data[i+1] = data[i+1], data[i]
		}
	}
}
