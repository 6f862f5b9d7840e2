package gr2_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/opengr2/gr2"
	"github.com/opengr2/gr2/internal/gr2test"
)

const (
	headerSize       = 32
	fileInfoBaseSize = 0x38
	sectorSize       = 44
	fixupSize        = 12
)

// buildSingleField assembles a one-sector, uncompressed file whose root
// holds one KindReal32 field "v" with array_size=3, matching the
// minimal end-to-end round trip the format exists to support.
func buildSingleField(t *testing.T) []byte {
	t.Helper()

	header := gr2test.Header(gr2test.MagicLE32F6, 0, 0)

	name := gr2test.CString("v")                          // offset 0, len 2
	pad := gr2test.Pad(2)                                 // offset 2, len 2 -> type node starts 4-aligned
	typeNode := gr2test.Concat(gr2test.TypeNode32(uint32(gr2.KindReal32), 0, 0, 3), gr2test.TypeTerminator())
	fieldData := gr2test.Concat(gr2test.Float32LE(1), gr2test.Float32LE(2), gr2test.Float32LE(3))
	sectorData := gr2test.Concat(name, pad, typeNode, fieldData) // 2+2+36+12 = 52

	const (
		nameOffset     = 0
		typeNodeOffset = 4
		namePtrOffset  = typeNodeOffset + 4 // past the type-node's leading type field
		dataOffset     = typeNodeOffset + 36
	)

	sectorTableOff := uint32(headerSize + fileInfoBaseSize)
	sectorDataOff := sectorTableOff + uint32(sectorSize)
	fixupTableOff := sectorDataOff + uint32(len(sectorData))
	totalSize := fixupTableOff + uint32(fixupSize)

	sector := gr2test.SectorDesc(0 /* CompressionNone */, sectorDataOff, uint32(len(sectorData)), uint32(len(sectorData)), 4, 0, 0, fixupTableOff, 1, 0, 0)
	fixup := gr2test.FixUp(namePtrOffset, 0, nameOffset)
	fileInfo := gr2test.FileInfo(6, totalSize, 0, fileInfoBaseSize, 1, 0, typeNodeOffset, 0, dataOffset, 0, make([]byte, 16))

	return gr2test.Concat(header, fileInfo, sector, sectorData, fixup)
}

func TestLoadSingleFieldRoundTrip(t *testing.T) {
	r, err := gr2.Load(buildSingleField(t))
	require.NoError(t, err)

	require.Equal(t, int32(6), r.Format())
	require.Equal(t, 4, r.PointerSize())
	require.Equal(t, 1, r.SectorCount())
	require.False(t, r.CRC32Valid(), "the fixture stores a zero CRC32, which should never match")

	root := r.Root()
	require.Len(t, root.Children, 1)
	f := root.Children[0]
	require.Equal(t, gr2.KindReal32, f.Kind)
	require.Equal(t, "v", f.Name)
	require.EqualValues(t, 3, f.Size)

	want := []float32{1, 2, 3}
	if diff := cmp.Diff(want, f.Float32s()); diff != "" {
		t.Fatalf("Float32s() mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, 1, r.Len())
	require.Same(t, f, r.ElementByIndex(0))
	require.Nil(t, r.ElementByIndex(1))

	var paths []string
	r.Walk(func(path string, n *gr2.Node) { paths = append(paths, path) })
	wantPaths := []string{"Root", "Root/v"}
	if diff := cmp.Diff(wantPaths, paths); diff != "" {
		t.Fatalf("Walk paths mismatch (-want +got):\n%s", diff)
	}

	r.Free()
	require.Equal(t, 0, r.Len())
	require.Nil(t, r.Root())
}

func TestLoadOptionsMaxArenaSize(t *testing.T) {
	buf := buildSingleField(t)
	_, err := gr2.LoadOptions{MaxArenaSize: 1}.Load(buf)
	require.Error(t, err, "the decompressed arena exceeds MaxArenaSize")
}

func TestLoadOptionsStrictTagRejectsUnknownTag(t *testing.T) {
	buf := buildSingleField(t) // built with Tag=0, which is not in the known registry
	_, err := gr2.LoadOptions{StrictTag: true}.Load(buf)
	require.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := gr2.Open("/nonexistent/path/that/should/never/exist.gr2")
	require.Error(t, err)
}

func TestLoadWrapsSentinelErrors(t *testing.T) {
	_, err := gr2.Load(make([]byte, 4))
	require.ErrorIs(t, err, gr2.ErrBadFormat)

	var stageErr *gr2.Error
	require.ErrorAs(t, err, &stageErr)
}

func TestLoggerFuncReceivesTraceLines(t *testing.T) {
	var lines []string
	logger := gr2.LoggerFunc(func(format string, args ...any) {
		lines = append(lines, format)
	})
	_, err := (gr2.LoadOptions{Logger: logger}).Load(buildSingleField(t))
	require.NoError(t, err)
	require.NotEmpty(t, lines)
}
