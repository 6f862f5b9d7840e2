// Package vptr implements the virtual pointer table: an append-only
// handle-to-address indirection that lets a GR2 reader neutralise raw
// in-file pointer values instead of retaining them.
package vptr

// Table is a monotonically growing sequence of decoded arena
// addresses. Handle 0 is reserved for null; every other handle is
// 1-plus-the-table-length at the time of encoding.
type Table struct {
	addrs []uint64
}

// New returns an empty virtual pointer table.
func New() *Table {
	return &Table{}
}

// Encode appends addr and returns the handle that refers to it.
func (t *Table) Encode(addr uint64) uint32 {
	t.addrs = append(t.addrs, addr)
	return uint32(len(t.addrs))
}

// Decode resolves handle back to its address. Handle 0, or any handle
// beyond the table's current length, resolves to (0, false).
func (t *Table) Decode(handle uint32) (addr uint64, ok bool) {
	if handle == 0 || int(handle) > len(t.addrs) {
		return 0, false
	}
	return t.addrs[handle-1], true
}

// Len reports how many addresses have been encoded so far.
func (t *Table) Len() int {
	return len(t.addrs)
}
