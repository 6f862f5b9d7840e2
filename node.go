package gr2

import "github.com/opengr2/gr2/internal/types"

// Node is one parsed element in the tree Load builds: a named, typed
// value together with whatever children, references, or raw bytes its
// Kind carries. It is the root package's alias for the type/element
// parser's own node type, so every accessor defined there (Float32s,
// Int32s, Transforms, Child, ...) is available directly on a Node
// returned from Root, Walk, or ElementByIndex.
type Node = types.Node

// NodeKind is the closed set of 23 GR2 element type ids a Node's Kind
// field takes on.
type NodeKind = types.Kind

// The NodeKind constants, re-exported for callers that want to switch
// on Kind without importing the internal types package.
const (
	KindNone                    = types.KindNone
	KindInline                  = types.KindInline
	KindReference               = types.KindReference
	KindReferenceToArray        = types.KindReferenceToArray
	KindArrayOfReferences       = types.KindArrayOfReferences
	KindVariantReference        = types.KindVariantReference
	KindRemoved                 = types.KindRemoved
	KindReferenceToVariantArray = types.KindReferenceToVariantArray
	KindString                  = types.KindString
	KindTransform               = types.KindTransform
	KindReal32                  = types.KindReal32
	KindInt8                    = types.KindInt8
	KindUint8                   = types.KindUint8
	KindBinormalInt8            = types.KindBinormalInt8
	KindNormalUint8             = types.KindNormalUint8
	KindInt16                   = types.KindInt16
	KindUint16                  = types.KindUint16
	KindBinormalInt16           = types.KindBinormalInt16
	KindNormalUint16            = types.KindNormalUint16
	KindInt32                   = types.KindInt32
	KindUint32                  = types.KindUint32
	KindReal16                  = types.KindReal16
	KindEmptyReference          = types.KindEmptyReference
)

// Transform is the decoded form of a KindTransform field: a flags word
// selecting which components are meaningful, a translation vector, a
// rotation quaternion, and a 3x3 scale/shear matrix.
type Transform = types.Transform
