package core

import (
	"fmt"

	"github.com/opengr2/gr2/internal/oodle"
	"github.com/opengr2/gr2/internal/utils"
	"github.com/opengr2/gr2/internal/vptr"
)

// oodleExtraPad is the zero-padded tail Compression_UnOodle1's staging
// buffer needs: the arithmetic decoder's refill step reads one byte
// past the logical end of the compressed stream.
const oodleExtraPad = 4

// Result is everything a load produces: the reassembled arena, the
// per-sector offsets into it, the decoded header/file info, and the
// virtual-pointer table fix-ups patched against the arena.
type Result struct {
	MismatchEndianness bool
	Is64               bool
	Header             Header
	FileInfo           FileInfo
	Sectors            []SectorDesc
	Arena              []byte
	SectorOffsets      []uint32
	VPtr               *vptr.Table
}

// Load runs the full container pipeline: magic classification, header
// and file-info ingest, sector decompression, and pointer fix-up and
// marshal application. It does not parse the element tree; that is
// the caller's next step once it has a Result's arena, sector offsets,
// and virtual-pointer table.
func Load(input []byte) (*Result, error) {
	if len(input) < HeaderSize {
		return nil, fmt.Errorf("%w: input is only %d bytes", ErrBadFormat, len(input))
	}

	var magic [16]byte
	copy(magic[:], input[:16])
	flags, ok := LookupMagic(magic)
	if !ok {
		return nil, ErrBadMagic
	}

	is64 := flags&FlagBit64 != 0
	extra16 := flags&FlagExtra16 != 0
	mismatch := HostIsBigEndian() != (flags&FlagBigEndian != 0)

	header, err := ParseHeader(input)
	if err != nil {
		return nil, err
	}
	if mismatch {
		header.SizeWithSectors = SwapUint32(header.SizeWithSectors)
	}
	if header.Format != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadFormat, header.Format)
	}

	fileInfo, err := loadFileInfo(input, extra16, mismatch)
	if err != nil {
		return nil, err
	}

	sectorTableOffset := uint64(HeaderSize) + uint64(fileInfo.FileInfoSize)
	sectorTableLen := uint64(fileInfo.SectorCount) * SectorSize
	if !utils.CheckBounds(sectorTableOffset, sectorTableLen, uint64(len(input))) {
		return nil, fmt.Errorf("%w: sector table", ErrOutOfBounds)
	}

	sectors := make([]SectorDesc, fileInfo.SectorCount)
	var arenaSize uint64
	for i := range sectors {
		raw := utils.GetBuffer(int(SectorSize))
		copy(raw, input[sectorTableOffset+uint64(i)*SectorSize:sectorTableOffset+uint64(i+1)*SectorSize])
		if mismatch {
			Swap1(raw)
		}
		sd, err := ParseSectorDesc(raw)
		utils.ReleaseBuffer(raw)
		if err != nil {
			return nil, err
		}
		if !utils.CheckBounds(uint64(sd.DataOffset), uint64(sd.SourceLen()), uint64(len(input))) {
			return nil, fmt.Errorf("%w: sector %d", ErrOutOfBounds, i)
		}
		sectors[i] = sd
		arenaSize += uint64(sd.DecompressLen)
	}

	arena := make([]byte, arenaSize)
	sectorOffsets := make([]uint32, len(sectors))
	var ofs uint64
	for i, sd := range sectors {
		sectorOffsets[i] = uint32(ofs)
		dst := arena[ofs : ofs+uint64(sd.DecompressLen)]

		if sd.CompressType == CompressionNone {
			copy(dst, input[sd.DataOffset:uint64(sd.DataOffset)+uint64(sd.DecompressLen)])
		} else {
			if sd.CompressType != CompressionOodle1 {
				return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, sd.CompressType)
			}
			// A zero compressed length is a valid no-op: the sector's
			// arena region keeps its zero fill.
			if sd.CompressedLen > 0 {
				comp := make([]byte, sd.CompressedLen+oodleExtraPad)
				copy(comp, input[sd.DataOffset:uint64(sd.DataOffset)+uint64(sd.CompressedLen)])
				if mismatch {
					Swap1(comp[:sd.CompressedLen])
				}
				if err := oodle.Decompress(comp, dst, sd.OodleStop0, sd.OodleStop1); err != nil {
					return nil, fmt.Errorf("oodle1: sector %d: %w", i, err)
				}
			}
		}

		if mismatch {
			stop0 := uint64(sd.OodleStop0)
			stop1 := uint64(sd.OodleStop1)
			if stop0 > uint64(len(dst)) {
				stop0 = uint64(len(dst))
			}
			if stop1 > uint64(len(dst)) {
				stop1 = uint64(len(dst))
			}
			if stop0 > stop1 {
				return nil, fmt.Errorf("%w: sector %d oodle stop offsets out of order", ErrOutOfBounds, i)
			}
			Swap1(dst[:stop0])
			Swap2(dst[stop0:stop1])
		}

		ofs += uint64(sd.DecompressLen)
	}

	for i, sd := range sectors {
		if err := applyMarshals(arena, sectorOffsets, uint32(i), sd, input, mismatch, is64); err != nil {
			return nil, err
		}
	}

	vp := vptr.New()
	for i, sd := range sectors {
		if err := applyFixUps(arena, sectorOffsets, uint32(i), sd, input, mismatch, vp); err != nil {
			return nil, err
		}
	}

	return &Result{
		MismatchEndianness: mismatch,
		Is64:               is64,
		Header:             header,
		FileInfo:           fileInfo,
		Sectors:            sectors,
		Arena:              arena,
		SectorOffsets:      sectorOffsets,
		VPtr:               vp,
	}, nil
}

func loadFileInfo(input []byte, extra16, mismatch bool) (FileInfo, error) {
	required := ExpectedFileInfoSize(extra16)
	if uint64(len(input)) < uint64(HeaderSize)+uint64(required) {
		return FileInfo{}, fmt.Errorf("%w: input too small for file info", ErrBadFormat)
	}

	raw := utils.GetBuffer(int(HeaderSize) + int(required))
	copy(raw, input[:uint64(HeaderSize)+uint64(required)])
	if mismatch {
		Swap1(raw[HeaderSize:])
	}

	fi, err := ParseFileInfo(raw, extra16)
	utils.ReleaseBuffer(raw)
	if err != nil {
		return FileInfo{}, err
	}
	if fi.FileInfoSize != required {
		return FileInfo{}, fmt.Errorf("%w: file info size %d, want %d", ErrBadFormat, fi.FileInfoSize, required)
	}
	if fi.Format != 6 && fi.Format != 7 {
		return FileInfo{}, fmt.Errorf("%w: format %d", ErrBadFormat, fi.Format)
	}
	if uint64(len(input)) != uint64(fi.TotalSize) {
		return FileInfo{}, fmt.Errorf("%w: total size %d, have %d bytes", ErrSizeMismatch, fi.TotalSize, len(input))
	}
	return fi, nil
}

// applyFixUps rewrites each pointer-sized field a sector's fix-up table
// names: the field's raw bytes are replaced by a virtual-pointer
// handle that resolves to the (sector, offset) the fix-up names. Only
// the low 4 bytes of the field are written, matching the on-disk
// record's own width; on a 64-bit layout the field's high 4 bytes are
// left as the zero-filled placeholder the exporter wrote.
func applyFixUps(arena []byte, sectorOffsets []uint32, srcSector uint32, sd SectorDesc, input []byte, mismatch bool, vp *vptr.Table) error {
	for k := uint32(0); k < sd.FixupCount; k++ {
		pos := uint64(sd.FixupOffset) + uint64(k)*FixUpSize
		if !utils.CheckBounds(pos, FixUpSize, uint64(len(input))) {
			return fmt.Errorf("%w: fix-up record %d in sector %d", ErrOutOfBounds, k, srcSector)
		}
		raw := utils.GetBuffer(int(FixUpSize))
		copy(raw, input[pos:pos+FixUpSize])
		if mismatch {
			Swap1(raw)
		}
		fd, err := ParseFixUp(raw)
		utils.ReleaseBuffer(raw)
		if err != nil {
			return err
		}
		if int(fd.DstSector) >= len(sectorOffsets) {
			return fmt.Errorf("%w: fix-up destination sector %d", ErrOutOfBounds, fd.DstSector)
		}

		dstAddr := uint64(sectorOffsets[fd.DstSector]) + uint64(fd.DstOffset)
		if dstAddr > uint64(len(arena)) {
			return fmt.Errorf("%w: fix-up destination offset", ErrOutOfBounds)
		}
		handle := vp.Encode(dstAddr)

		srcAddr := uint64(sectorOffsets[srcSector]) + uint64(fd.SrcOffset)
		if srcAddr+4 > uint64(len(arena)) {
			return fmt.Errorf("%w: fix-up source offset", ErrOutOfBounds)
		}
		arena[srcAddr] = byte(handle)
		arena[srcAddr+1] = byte(handle >> 8)
		arena[srcAddr+2] = byte(handle >> 16)
		arena[srcAddr+3] = byte(handle >> 24)
	}
	return nil
}

// applyMarshals walks each sector's marshal table, byte-swapping runs
// of typed primitive data in place so that every value in the arena
// ends up in host byte order. It is a no-op when the host and file
// endianness already agree.
func applyMarshals(arena []byte, sectorOffsets []uint32, srcSector uint32, sd SectorDesc, input []byte, mismatch, is64 bool) error {
	for k := uint32(0); k < sd.MarshalCount; k++ {
		pos := uint64(sd.MarshalOffset) + uint64(k)*MarshalSize
		if !utils.CheckBounds(pos, MarshalSize, uint64(len(input))) {
			return fmt.Errorf("%w: marshal record %d in sector %d", ErrOutOfBounds, k, srcSector)
		}
		if !mismatch {
			continue
		}
		raw := utils.GetBuffer(int(MarshalSize))
		copy(raw, input[pos:pos+MarshalSize])
		Swap1(raw)
		md, err := ParseMarshal(raw)
		utils.ReleaseBuffer(raw)
		if err != nil {
			return err
		}
		if int(md.DstSector) >= len(sectorOffsets) {
			return fmt.Errorf("%w: marshal destination sector %d", ErrOutOfBounds, md.DstSector)
		}

		typeAddr := uint64(sectorOffsets[md.DstSector]) + uint64(md.DstOffset)
		srcAddr := uint64(sectorOffsets[srcSector]) + uint64(md.SrcOffset)
		if err := marshalElements(arena, typeAddr, srcAddr, md.Count, is64); err != nil {
			return err
		}
	}
	return nil
}
