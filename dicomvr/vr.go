// Package dicomvr implements the VR (value representation) primitives:
// the fixed closed set of two-letter codes and the properties that drive
// how the stream reader and value store decode and bound each one.
package dicomvr

// VR is a two-character value representation code.
type VR string

// Kind classifies how a VR's value is represented in memory.
type Kind int

const (
	// KindStrings is a VM-many array of short strings (backslash-separated
	// on the wire).
	KindStrings Kind = iota
	// KindText is a single text block; VM is always 1 even if the raw
	// bytes contain a backslash.
	KindText
	// KindBytes is a single opaque byte buffer; VM is always 1.
	KindBytes
	KindInt16s
	KindInt32s
	KindInt64s
	KindUint16s
	KindUint32s
	KindUint64s
	KindFloat32s
	KindFloat64s
	// KindSequence is a nested Sequence value.
	KindSequence
)

// Props describes one VR's wire and in-memory properties.
type Props struct {
	Kind Kind
	// ElementSize is the fixed per-value byte width for numeric kinds, 0
	// otherwise.
	ElementSize int
	// ShortLengthHeader is true when the explicit encoding of this VR uses
	// a 16-bit length (no two reserved bytes); false means two reserved
	// bytes followed by a 32-bit length.
	ShortLengthHeader bool
	// MaxCharacters is the maximum character count of a single value for
	// string/text VRs; 0 means unbounded.
	MaxCharacters int
	// Multivalued is true if this VR's values may be backslash-separated
	// into more than one value.
	Multivalued bool
}

// the closed set of VRs this library understands, per spec section 3.
var table = map[VR]Props{
	"AE": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 16, Multivalued: true},
	"AS": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 4, Multivalued: true},
	"AT": {Kind: KindUint32s, ElementSize: 4, ShortLengthHeader: true, Multivalued: true},
	"CS": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 16, Multivalued: true},
	"DA": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 8, Multivalued: true},
	"DS": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 16, Multivalued: true},
	"DT": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 26, Multivalued: true},
	"FL": {Kind: KindFloat32s, ElementSize: 4, ShortLengthHeader: true, Multivalued: true},
	"FD": {Kind: KindFloat64s, ElementSize: 8, ShortLengthHeader: true, Multivalued: true},
	"IS": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 12, Multivalued: true},
	"LO": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 64, Multivalued: true},
	"LT": {Kind: KindText, ShortLengthHeader: true, MaxCharacters: 10240},
	"OB": {Kind: KindBytes},
	"OD": {Kind: KindBytes},
	"OF": {Kind: KindBytes},
	"OV": {Kind: KindBytes},
	"OW": {Kind: KindBytes},
	"PN": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 64 * 3, Multivalued: true},
	"SH": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 16, Multivalued: true},
	"SL": {Kind: KindInt32s, ElementSize: 4, ShortLengthHeader: true, Multivalued: true},
	"SQ": {Kind: KindSequence},
	"SS": {Kind: KindInt16s, ElementSize: 2, ShortLengthHeader: true, Multivalued: true},
	"ST": {Kind: KindText, ShortLengthHeader: true, MaxCharacters: 1024},
	"SV": {Kind: KindInt64s, ElementSize: 8},
	"TM": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 16, Multivalued: true},
	"UC": {Kind: KindBytes},
	"UI": {Kind: KindStrings, ShortLengthHeader: true, MaxCharacters: 64, Multivalued: true},
	"UL": {Kind: KindUint32s, ElementSize: 4, ShortLengthHeader: true, Multivalued: true},
	"UN": {Kind: KindBytes},
	"UR": {Kind: KindText},
	"US": {Kind: KindUint16s, ElementSize: 2, ShortLengthHeader: true, Multivalued: true},
	"UT": {Kind: KindText},
	"UV": {Kind: KindUint64s, ElementSize: 8},
}

// IsValid reports whether vr is a member of the closed VR set.
func IsValid(vr VR) bool {
	_, ok := table[vr]
	return ok
}

// PropsOf returns the properties of vr. ok is false if vr is not a member
// of the closed set.
func PropsOf(vr VR) (p Props, ok bool) {
	p, ok = table[vr]
	return
}
