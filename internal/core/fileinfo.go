package core

import (
	"encoding/binary"
	"fmt"
)

// Reference locates a byte position inside a decompressed sector.
type Reference struct {
	Sector   uint32
	Position uint32
}

// FileInfoBaseSize is the on-disk size of FileInfo when the magic
// lacks the extra-16 flag (0x38).
const FileInfoBaseSize = 0x38

// FileInfoExtra16Size is the on-disk size when the magic carries the
// extra-16 flag (0x48).
const FileInfoExtra16Size = 0x48

// FileInfo follows Header and describes the sector table and the
// type/root entry points.
type FileInfo struct {
	Format       int32
	TotalSize    uint32
	CRC32        uint32
	FileInfoSize uint32
	SectorCount  uint32
	Type         Reference
	Root         Reference
	Tag          uint32
	Extra        []byte // 16 bytes, or 32 with the extra-16 flag
}

// ParseFileInfo reads FileInfo starting at data[HeaderSize:]. extra16
// selects the on-disk record size (0x38 vs 0x48); the returned
// FileInfo.FileInfoSize must still be checked by the caller against
// the expected size for the magic's flags. On endianness mismatch the
// caller must word-swap data[HeaderSize:HeaderSize+size] before
// calling this function; the whole block swaps as one, unlike
// Header's single-field swap.
func ParseFileInfo(data []byte, extra16 bool) (FileInfo, error) {
	size := FileInfoBaseSize
	if extra16 {
		size = FileInfoExtra16Size
	}

	if len(data) < HeaderSize+size {
		return FileInfo{}, fmt.Errorf("core: %d bytes is not enough to hold header and file info", len(data))
	}

	d := data[HeaderSize:]
	var fi FileInfo
	fi.Format = int32(binary.LittleEndian.Uint32(d[0:4]))
	fi.TotalSize = binary.LittleEndian.Uint32(d[4:8])
	fi.CRC32 = binary.LittleEndian.Uint32(d[8:12])
	fi.FileInfoSize = binary.LittleEndian.Uint32(d[12:16])
	fi.SectorCount = binary.LittleEndian.Uint32(d[16:20])
	fi.Type = Reference{Sector: binary.LittleEndian.Uint32(d[20:24]), Position: binary.LittleEndian.Uint32(d[24:28])}
	fi.Root = Reference{Sector: binary.LittleEndian.Uint32(d[28:32]), Position: binary.LittleEndian.Uint32(d[32:36])}
	fi.Tag = binary.LittleEndian.Uint32(d[36:40])

	extraLen := size - 40
	fi.Extra = append([]byte(nil), d[40:40+extraLen]...)

	return fi, nil
}

// ExpectedFileInfoSize returns the on-disk record size a magic's
// extra-16 flag implies.
func ExpectedFileInfoSize(extra16 bool) uint32 {
	if extra16 {
		return FileInfoExtra16Size
	}
	return FileInfoBaseSize
}
