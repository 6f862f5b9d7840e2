package core

import "hash/crc32"

// ComputeCRC32 computes the IEEE CRC32 of the file content that
// follows FileInfo, mirroring the "CRC32 of the file after the file
// info" the format stores in FileInfo.CRC32. It is a diagnostic value
// only: a mismatch never fails a load.
func ComputeCRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
