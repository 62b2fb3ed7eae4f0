package dicom

import (
	"github.com/tanager-health/dicomcore/dicomerr"
	"github.com/tanager-health/dicomcore/dicomvr"
)

// Value is the sum type holding the decoded value of one Element,
// discriminated by the VR's Kind. Exactly one of the internal arms is
// populated, per the Kind tag; accessors only ever read the matching arm
// (the reference library's copy_value_* routines sometimes read the wrong
// union arm -- this is the corrected behavior spec.md section 9 calls for).
type Value struct {
	kind      dicomvr.Kind
	vr        dicomvr.VR
	destroyed bool

	strs []string // KindStrings (VM entries) and KindText (always 1 entry)
	byts []byte   // KindBytes

	i16 []int16
	i32 []int32
	i64 []int64
	u16 []uint16
	u32 []uint32
	u64 []uint64
	f32 []float32
	f64 []float64

	seq *Sequence // KindSequence
}

func (v *Value) checkAlive() error {
	if v == nil || v.destroyed {
		return dicomerr.New(dicomerr.Malformed, "use of a destroyed or nil value")
	}
	return nil
}

// Destroy invalidates v: every accessor on a destroyed value returns an
// error rather than silently returning stale or zero data. If v holds a
// sequence, destroying v recursively destroys that sequence (and, through
// it, every item dataset and element it owns). Destroy is idempotent.
func (v *Value) Destroy() {
	if v == nil || v.destroyed {
		return
	}
	v.destroyed = true
	if v.seq != nil {
		v.seq.Destroy()
	}
	v.strs, v.byts = nil, nil
	v.i16, v.i32, v.i64 = nil, nil, nil
	v.u16, v.u32, v.u64 = nil, nil, nil
	v.f32, v.f64 = nil, nil
	v.seq = nil
}

// Kind reports the value's VR-driven representation kind.
func (v *Value) Kind() dicomvr.Kind { return v.kind }

// VR reports the VR the value was constructed or decoded for.
func (v *Value) VR() dicomvr.VR { return v.vr }

// VM returns the value multiplicity.
func (v *Value) VM() int {
	switch v.kind {
	case dicomvr.KindStrings:
		return len(v.strs)
	case dicomvr.KindText, dicomvr.KindBytes, dicomvr.KindSequence:
		return 1
	case dicomvr.KindInt16s:
		return len(v.i16)
	case dicomvr.KindInt32s:
		return len(v.i32)
	case dicomvr.KindInt64s:
		return len(v.i64)
	case dicomvr.KindUint16s:
		return len(v.u16)
	case dicomvr.KindUint32s:
		return len(v.u32)
	case dicomvr.KindUint64s:
		return len(v.u64)
	case dicomvr.KindFloat32s:
		return len(v.f32)
	case dicomvr.KindFloat64s:
		return len(v.f64)
	}
	return 0
}

// Length returns the declared element length this value implies, computed
// per VR kind and rounded up to even to account for the conceptual
// odd-length padding byte (which this library never materializes).
func (v *Value) Length() uint32 {
	switch v.kind {
	case dicomvr.KindStrings:
		total := 0
		for _, s := range v.strs {
			total += len(s)
		}
		if len(v.strs) > 1 {
			total += 2 * (len(v.strs) - 1)
		}
		return evenUp(total)
	case dicomvr.KindText:
		return evenUp(len(v.strs[0]))
	case dicomvr.KindBytes:
		return evenUp(len(v.byts))
	case dicomvr.KindInt16s:
		return uint32(len(v.i16) * 2)
	case dicomvr.KindInt32s:
		return uint32(len(v.i32) * 4)
	case dicomvr.KindInt64s:
		return uint32(len(v.i64) * 8)
	case dicomvr.KindUint16s:
		return uint32(len(v.u16) * 2)
	case dicomvr.KindUint32s:
		return uint32(len(v.u32) * 4)
	case dicomvr.KindUint64s:
		return uint32(len(v.u64) * 8)
	case dicomvr.KindFloat32s:
		return uint32(len(v.f32) * 4)
	case dicomvr.KindFloat64s:
		return uint32(len(v.f64) * 8)
	case dicomvr.KindSequence:
		return v.seq.declaredLength()
	}
	return 0
}

func evenUp(n int) uint32 {
	if n%2 != 0 {
		n++
	}
	return uint32(n)
}

// Clone deep-copies v; a cloned sequence recursively clones every item
// dataset and element so the clone shares no mutable state with v.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	c := &Value{kind: v.kind, vr: v.vr}
	c.strs = append([]string(nil), v.strs...)
	c.byts = append([]byte(nil), v.byts...)
	c.i16 = append([]int16(nil), v.i16...)
	c.i32 = append([]int32(nil), v.i32...)
	c.i64 = append([]int64(nil), v.i64...)
	c.u16 = append([]uint16(nil), v.u16...)
	c.u32 = append([]uint32(nil), v.u32...)
	c.u64 = append([]uint64(nil), v.u64...)
	c.f32 = append([]float32(nil), v.f32...)
	c.f64 = append([]float64(nil), v.f64...)
	if v.seq != nil {
		c.seq = v.seq.Clone()
	}
	return c
}

// --- constructors ---

func stringsProps(vr dicomvr.VR, wantKind dicomvr.Kind) (dicomvr.Props, error) {
	props, ok := dicomvr.PropsOf(vr)
	if !ok {
		return dicomvr.Props{}, dicomerr.New(dicomerr.InvalidVR, "%q is not a member of the VR set", vr)
	}
	if props.Kind != wantKind {
		return dicomvr.Props{}, dicomerr.New(dicomerr.InvalidVR, "VR %s does not hold a %v value", vr, wantKind)
	}
	return props, nil
}

// NewStringsValue builds a string-vector value for a multi-valued string
// VR (AE, AS, CS, DA, DT, IS, DS, LO, PN, SH, TM, UI). An empty values list
// yields VM=1 with a single empty string.
func NewStringsValue(vr dicomvr.VR, values []string) (*Value, error) {
	props, err := stringsProps(vr, dicomvr.KindStrings)
	if err != nil {
		return nil, err
	}
	for _, s := range values {
		if props.MaxCharacters > 0 && len(s) > props.MaxCharacters {
			return nil, dicomerr.New(dicomerr.ValueTooLong, "value %q exceeds %s's %d-character capacity", s, vr, props.MaxCharacters)
		}
	}
	if len(values) == 0 {
		values = []string{""}
	}
	return &Value{kind: dicomvr.KindStrings, vr: vr, strs: append([]string(nil), values...)}, nil
}

// NewTextValue builds a single-text-block value (LT, ST, UR, UT). VM is
// always 1, even if value contains a backslash -- the separator is not
// honored for these VRs.
func NewTextValue(vr dicomvr.VR, value string) (*Value, error) {
	props, err := stringsProps(vr, dicomvr.KindText)
	if err != nil {
		return nil, err
	}
	if props.MaxCharacters > 0 && len(value) > props.MaxCharacters {
		return nil, dicomerr.New(dicomerr.ValueTooLong, "value exceeds %s's %d-character capacity", vr, props.MaxCharacters)
	}
	return &Value{kind: dicomvr.KindText, vr: vr, strs: []string{value}}, nil
}

// NewBytesValue builds an opaque-byte-buffer value (OB, OD, OF, OV, OW,
// UC, UN). VM is always 1.
func NewBytesValue(vr dicomvr.VR, data []byte) (*Value, error) {
	if _, err := stringsProps(vr, dicomvr.KindBytes); err != nil {
		return nil, err
	}
	return &Value{kind: dicomvr.KindBytes, vr: vr, byts: append([]byte(nil), data...)}, nil
}

// NewInt16sValue builds an SS value.
func NewInt16sValue(vr dicomvr.VR, values []int16) (*Value, error) {
	if _, err := stringsProps(vr, dicomvr.KindInt16s); err != nil {
		return nil, err
	}
	return &Value{kind: dicomvr.KindInt16s, vr: vr, i16: append([]int16(nil), values...)}, nil
}

// NewInt32sValue builds an SL value.
func NewInt32sValue(vr dicomvr.VR, values []int32) (*Value, error) {
	if _, err := stringsProps(vr, dicomvr.KindInt32s); err != nil {
		return nil, err
	}
	return &Value{kind: dicomvr.KindInt32s, vr: vr, i32: append([]int32(nil), values...)}, nil
}

// NewInt64sValue builds an SV value.
func NewInt64sValue(vr dicomvr.VR, values []int64) (*Value, error) {
	if _, err := stringsProps(vr, dicomvr.KindInt64s); err != nil {
		return nil, err
	}
	return &Value{kind: dicomvr.KindInt64s, vr: vr, i64: append([]int64(nil), values...)}, nil
}

// NewUint16sValue builds a US value.
func NewUint16sValue(vr dicomvr.VR, values []uint16) (*Value, error) {
	if _, err := stringsProps(vr, dicomvr.KindUint16s); err != nil {
		return nil, err
	}
	return &Value{kind: dicomvr.KindUint16s, vr: vr, u16: append([]uint16(nil), values...)}, nil
}

// NewUint32sValue builds a UL value.
func NewUint32sValue(vr dicomvr.VR, values []uint32) (*Value, error) {
	if _, err := stringsProps(vr, dicomvr.KindUint32s); err != nil {
		return nil, err
	}
	return &Value{kind: dicomvr.KindUint32s, vr: vr, u32: append([]uint32(nil), values...)}, nil
}

// NewUint64sValue builds a UV value.
func NewUint64sValue(vr dicomvr.VR, values []uint64) (*Value, error) {
	if _, err := stringsProps(vr, dicomvr.KindUint64s); err != nil {
		return nil, err
	}
	return &Value{kind: dicomvr.KindUint64s, vr: vr, u64: append([]uint64(nil), values...)}, nil
}

// NewFloat32sValue builds an FL value.
func NewFloat32sValue(vr dicomvr.VR, values []float32) (*Value, error) {
	if _, err := stringsProps(vr, dicomvr.KindFloat32s); err != nil {
		return nil, err
	}
	return &Value{kind: dicomvr.KindFloat32s, vr: vr, f32: append([]float32(nil), values...)}, nil
}

// NewFloat64sValue builds an FD value.
func NewFloat64sValue(vr dicomvr.VR, values []float64) (*Value, error) {
	if _, err := stringsProps(vr, dicomvr.KindFloat64s); err != nil {
		return nil, err
	}
	return &Value{kind: dicomvr.KindFloat64s, vr: vr, f64: append([]float64(nil), values...)}, nil
}

// NewSequenceValue builds a sequence-valued value (SQ). On success seq is
// owned by the returned Value.
func NewSequenceValue(seq *Sequence) (*Value, error) {
	if seq == nil {
		return nil, dicomerr.New(dicomerr.Malformed, "nil sequence")
	}
	return &Value{kind: dicomvr.KindSequence, vr: "SQ", seq: seq}, nil
}

// --- accessors; each only reads the arm matching v.Kind() ---

// Strings returns the string-vector payload.
func (v *Value) Strings() ([]string, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.kind != dicomvr.KindStrings {
		return nil, dicomerr.New(dicomerr.Malformed, "value kind %v is not a string vector", v.kind)
	}
	return append([]string(nil), v.strs...), nil
}

// Text returns the single-text-block payload.
func (v *Value) Text() (string, error) {
	if err := v.checkAlive(); err != nil {
		return "", err
	}
	if v.kind != dicomvr.KindText {
		return "", dicomerr.New(dicomerr.Malformed, "value kind %v is not a text block", v.kind)
	}
	return v.strs[0], nil
}

// Bytes returns the opaque-byte-buffer payload.
func (v *Value) Bytes() ([]byte, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.kind != dicomvr.KindBytes {
		return nil, dicomerr.New(dicomerr.Malformed, "value kind %v is not a byte buffer", v.kind)
	}
	return append([]byte(nil), v.byts...), nil
}

// Int16s returns the SS payload.
func (v *Value) Int16s() ([]int16, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.kind != dicomvr.KindInt16s {
		return nil, dicomerr.New(dicomerr.Malformed, "value kind %v is not int16", v.kind)
	}
	return append([]int16(nil), v.i16...), nil
}

// Int32s returns the SL payload.
func (v *Value) Int32s() ([]int32, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.kind != dicomvr.KindInt32s {
		return nil, dicomerr.New(dicomerr.Malformed, "value kind %v is not int32", v.kind)
	}
	return append([]int32(nil), v.i32...), nil
}

// Int64s returns the SV payload.
func (v *Value) Int64s() ([]int64, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.kind != dicomvr.KindInt64s {
		return nil, dicomerr.New(dicomerr.Malformed, "value kind %v is not int64", v.kind)
	}
	return append([]int64(nil), v.i64...), nil
}

// Uint16s returns the US payload.
func (v *Value) Uint16s() ([]uint16, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.kind != dicomvr.KindUint16s {
		return nil, dicomerr.New(dicomerr.Malformed, "value kind %v is not uint16", v.kind)
	}
	return append([]uint16(nil), v.u16...), nil
}

// Uint32s returns the UL payload.
func (v *Value) Uint32s() ([]uint32, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.kind != dicomvr.KindUint32s {
		return nil, dicomerr.New(dicomerr.Malformed, "value kind %v is not uint32", v.kind)
	}
	return append([]uint32(nil), v.u32...), nil
}

// Uint64s returns the UV payload.
func (v *Value) Uint64s() ([]uint64, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.kind != dicomvr.KindUint64s {
		return nil, dicomerr.New(dicomerr.Malformed, "value kind %v is not uint64", v.kind)
	}
	return append([]uint64(nil), v.u64...), nil
}

// Float32s returns the FL payload.
func (v *Value) Float32s() ([]float32, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.kind != dicomvr.KindFloat32s {
		return nil, dicomerr.New(dicomerr.Malformed, "value kind %v is not float32", v.kind)
	}
	return append([]float32(nil), v.f32...), nil
}

// Float64s returns the FD payload.
func (v *Value) Float64s() ([]float64, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.kind != dicomvr.KindFloat64s {
		return nil, dicomerr.New(dicomerr.Malformed, "value kind %v is not float64", v.kind)
	}
	return append([]float64(nil), v.f64...), nil
}

// SequenceValue returns the nested sequence.
func (v *Value) SequenceValue() (*Sequence, error) {
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	if v.kind != dicomvr.KindSequence {
		return nil, dicomerr.New(dicomerr.Malformed, "value kind %v is not a sequence", v.kind)
	}
	return v.seq, nil
}
