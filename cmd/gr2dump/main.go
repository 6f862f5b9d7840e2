// Command gr2dump loads a GR2 file and prints its element tree: one
// line of file metadata, then every element's path, kind, and size.
package main

import (
	"fmt"
	"os"

	"github.com/opengr2/gr2"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: gr2dump <file.gr2>\n")
		os.Exit(1)
	}

	r, err := gr2.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "gr2dump: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("format=%d tag=0x%x pointer-size=%d sectors=%d elements=%d crc32-valid=%v\n",
		r.Format(), r.Tag(), r.PointerSize(), r.SectorCount(), r.Len(), r.CRC32Valid())

	r.Walk(func(path string, n *gr2.Node) {
		if n == nil {
			return
		}
		fmt.Printf("%-40s kind=%-24s size=%d\n", path, n.Kind, n.Size)
	})

	os.Exit(0)
}
