package gr2

// FileInfo.Tag carries the version of the structure data contained in
// the file: RAD's own GR2 DLL converts an old tag to the current one
// before parsing rather than exposing a migration path to callers.
// This reader does not migrate between tag versions. KnownTag is
// purely informational, an open registry in the same shape as the
// magic registry, seeded with two illustrative tag values that have not
// been checked against a real asset.
const (
	TagGranny2_9         uint32 = 0x80000037
	TagGranny2_9_Variant uint32 = 0x80000038
)

var knownTags = map[uint32]bool{
	TagGranny2_9:         true,
	TagGranny2_9_Variant: true,
}

// KnownTag reports whether tag appears in the registry of documented
// GR2 structure-data versions. An unknown tag is not itself a load
// failure unless LoadOptions.StrictTag is set.
func KnownTag(tag uint32) bool {
	return knownTags[tag]
}
