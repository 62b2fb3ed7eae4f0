package dicom

import (
	"strings"

	"github.com/tanager-health/dicomcore/dicomdict"
	"github.com/tanager-health/dicomcore/dicomerr"
	"github.com/tanager-health/dicomcore/dicomio"
	"github.com/tanager-health/dicomcore/dicomtag"
	"github.com/tanager-health/dicomcore/dicomvr"
)

// undefinedLength is the sentinel length value (0xFFFFFFFF) marking a
// sequence or encapsulated pixel-data element whose content is delimited
// by an item/sequence-delimiter tag rather than a declared byte count.
const undefinedLength = uint32(0xFFFFFFFF)

// readTag reads one 32-bit tag as a (group, element) pair.
func readTag(r *dicomio.Reader) dicomtag.Tag {
	group := r.ReadUInt16()
	element := r.ReadUInt16()
	return dicomtag.Tag{Group: group, Element: element}
}

// readItemHeader reads a tag expected to be one of the three item/
// delimiter framing tags, plus its 32-bit length.
func readItemHeader(r *dicomio.Reader) (dicomtag.Tag, uint32, error) {
	tag := readTag(r)
	if tag != dicomtag.Item && tag != dicomtag.ItemDelimitationItem && tag != dicomtag.SequenceDelimitationItem {
		return tag, 0, dicomerr.New(dicomerr.UnexpectedToken, "expected an item or delimiter tag, found %s", tag)
	}
	length := r.ReadUInt32()
	if err := r.Error(); err != nil {
		return tag, 0, err
	}
	return tag, length, nil
}

// readElementHeader reads the VR (when explicit) and declared length
// following a tag already consumed by the caller.
func readElementHeader(r *dicomio.Reader, tag dicomtag.Tag, implicit dicomio.IsImplicitVR) (dicomvr.VR, uint32, error) {
	var vr dicomvr.VR
	var length uint32

	if implicit == dicomio.ImplicitVR {
		if entry, ok := dicomdict.Find(tag); ok {
			vr = entry.VR
		} else {
			vr = "UN"
		}
		length = r.ReadUInt32()
	} else {
		vr = dicomvr.VR(r.ReadString(2))
		if !dicomvr.IsValid(vr) {
			return "", 0, dicomerr.New(dicomerr.InvalidVR, "%q is not a member of the VR set (tag %s)", vr, tag)
		}
		props, _ := dicomvr.PropsOf(vr)
		if props.ShortLengthHeader {
			length = uint32(r.ReadUInt16())
			if length == 0xffff {
				length = undefinedLength
			}
		} else {
			reserved := r.ReadUInt16()
			if reserved != 0 {
				return "", 0, dicomerr.New(dicomerr.UnexpectedToken, "reserved bytes after VR %s (tag %s) are non-zero", vr, tag)
			}
			length = r.ReadUInt32()
		}
	}

	if err := r.Error(); err != nil {
		return "", 0, err
	}
	if length != undefinedLength && length%2 != 0 {
		return "", 0, dicomerr.New(dicomerr.Malformed, "tag %s: odd declared length %d", tag, length)
	}
	return vr, length, nil
}

// readElement reads one complete element (header plus value), given that
// tag has already been consumed.
func readElement(r *dicomio.Reader, tag dicomtag.Tag, implicit dicomio.IsImplicitVR) (*Element, error) {
	vr, length, err := readElementHeader(r, tag, implicit)
	if err != nil {
		return nil, err
	}
	value, err := readValue(r, tag, vr, length, implicit)
	if err != nil {
		return nil, err
	}
	return NewElement(tag, value)
}

// readOneElement reads a tag and its following element, as readElement
// does, but is used where no tag has been peeked yet by the caller.
func readOneElement(r *dicomio.Reader, implicit dicomio.IsImplicitVR) (*Element, error) {
	tag := readTag(r)
	if err := r.Error(); err != nil {
		return nil, err
	}
	return readElement(r, tag, implicit)
}

func readValue(r *dicomio.Reader, tag dicomtag.Tag, vr dicomvr.VR, length uint32, implicit dicomio.IsImplicitVR) (*Value, error) {
	props, ok := dicomvr.PropsOf(vr)
	if !ok {
		return nil, dicomerr.New(dicomerr.InvalidVR, "%q is not a member of the VR set (tag %s)", vr, tag)
	}

	if props.Kind == dicomvr.KindSequence {
		seq, err := readSequence(r, implicit, length)
		if err != nil {
			return nil, err
		}
		return NewSequenceValue(seq)
	}

	if length == undefinedLength {
		return nil, dicomerr.New(dicomerr.Malformed, "tag %s: undefined length is only valid for sequences", tag)
	}

	if vr == "AT" {
		return readTagListValue(r, vr, length)
	}

	switch props.Kind {
	case dicomvr.KindStrings:
		return readStringsValue(r, vr, length)
	case dicomvr.KindText:
		return NewTextValue(vr, r.ReadString(int(length)))
	case dicomvr.KindBytes:
		return NewBytesValue(vr, r.ReadBytes(int(length)))
	case dicomvr.KindInt16s:
		vm := int(length) / props.ElementSize
		vals := make([]int16, vm)
		for i := range vals {
			vals[i] = r.ReadInt16()
		}
		return NewInt16sValue(vr, vals)
	case dicomvr.KindInt32s:
		vm := int(length) / props.ElementSize
		vals := make([]int32, vm)
		for i := range vals {
			vals[i] = r.ReadInt32()
		}
		return NewInt32sValue(vr, vals)
	case dicomvr.KindInt64s:
		vm := int(length) / props.ElementSize
		vals := make([]int64, vm)
		for i := range vals {
			vals[i] = r.ReadInt64()
		}
		return NewInt64sValue(vr, vals)
	case dicomvr.KindUint16s:
		vm := int(length) / props.ElementSize
		vals := make([]uint16, vm)
		for i := range vals {
			vals[i] = r.ReadUInt16()
		}
		return NewUint16sValue(vr, vals)
	case dicomvr.KindUint32s:
		vm := int(length) / props.ElementSize
		vals := make([]uint32, vm)
		for i := range vals {
			vals[i] = r.ReadUInt32()
		}
		return NewUint32sValue(vr, vals)
	case dicomvr.KindUint64s:
		vm := int(length) / props.ElementSize
		vals := make([]uint64, vm)
		for i := range vals {
			vals[i] = r.ReadUInt64()
		}
		return NewUint64sValue(vr, vals)
	case dicomvr.KindFloat32s:
		vm := int(length) / props.ElementSize
		vals := make([]float32, vm)
		for i := range vals {
			vals[i] = r.ReadFloat32()
		}
		return NewFloat32sValue(vr, vals)
	case dicomvr.KindFloat64s:
		vm := int(length) / props.ElementSize
		vals := make([]float64, vm)
		for i := range vals {
			vals[i] = r.ReadFloat64()
		}
		return NewFloat64sValue(vr, vals)
	}
	return nil, dicomerr.New(dicomerr.Malformed, "tag %s: unhandled VR kind for %s", tag, vr)
}

// readTagListValue decodes an AT value: each 4-byte unit is a (group,
// element) pair read as two 16-bit fields, not as one little-endian
// 32-bit integer -- reading it as a single 32-bit unit would swap the
// group and element halves for little-endian streams.
func readTagListValue(r *dicomio.Reader, vr dicomvr.VR, length uint32) (*Value, error) {
	vm := int(length) / 4
	vals := make([]uint32, vm)
	for i := range vals {
		t := readTag(r)
		vals[i] = t.Packed()
	}
	return NewUint32sValue(vr, vals)
}

// readStringsValue decodes the string-list VR classes: read the raw
// bytes, strip at most one trailing pad character (a space or a NUL), then
// split on backslash. UI values are not exempt: their trailing NUL pad is
// stripped like any other.
func readStringsValue(r *dicomio.Reader, vr dicomvr.VR, length uint32) (*Value, error) {
	raw := r.ReadString(int(length))
	trimmed := raw
	if n := len(trimmed); n > 0 {
		last := trimmed[n-1]
		if last == ' ' || last == 0 {
			trimmed = trimmed[:n-1]
		}
	}
	if trimmed == "" {
		return NewStringsValue(vr, nil)
	}
	return NewStringsValue(vr, strings.Split(trimmed, `\`))
}

// readSequence decodes a sequence value, recursing into each item
// dataset. length is the declared byte length, meaningful only when it
// is not undefinedLength.
func readSequence(r *dicomio.Reader, implicit dicomio.IsImplicitVR, length uint32) (*Sequence, error) {
	seq := NewSequence()

	readOneItem := func() (bool, error) {
		tag, itemLength, err := readItemHeader(r)
		if err != nil {
			return false, err
		}
		if tag == dicomtag.SequenceDelimitationItem {
			return true, nil
		}
		if tag != dicomtag.Item {
			return false, dicomerr.New(dicomerr.UnexpectedToken, "expected sequence item, found %s", tag)
		}
		item, err := readItemDataset(r, implicit, itemLength)
		if err != nil {
			return false, err
		}
		if err := seq.Append(item); err != nil {
			return false, err
		}
		return false, nil
	}

	if length == undefinedLength {
		for {
			done, err := readOneItem()
			if err != nil {
				seq.Destroy()
				return nil, err
			}
			if done {
				break
			}
		}
		return seq, nil
	}

	end := r.Pos() + int64(length)
	for r.Pos() < end {
		done, err := readOneItem()
		if err != nil {
			seq.Destroy()
			return nil, err
		}
		if done {
			break
		}
	}
	return seq, nil
}

// readItemDataset reads the elements of one sequence item into a fresh
// Dataset, honoring a defined or undefined item length.
func readItemDataset(r *dicomio.Reader, implicit dicomio.IsImplicitVR, itemLength uint32) (*Dataset, error) {
	ds := NewDataset()

	insertNext := func() (bool, error) {
		tag := readTag(r)
		if err := r.Error(); err != nil {
			return false, err
		}
		if tag == dicomtag.ItemDelimitationItem {
			r.Skip(4) // trailing zero length
			return true, r.Error()
		}
		elem, err := readElement(r, tag, implicit)
		if err != nil {
			return false, err
		}
		if err := ds.Insert(elem); err != nil {
			return false, err
		}
		return false, nil
	}

	if itemLength == undefinedLength {
		for {
			done, err := insertNext()
			if err != nil {
				ds.Destroy()
				return nil, err
			}
			if done {
				break
			}
		}
	} else {
		end := r.Pos() + int64(itemLength)
		for r.Pos() < end {
			done, err := insertNext()
			if err != nil {
				ds.Destroy()
				return nil, err
			}
			if done {
				break
			}
		}
	}

	ds.Lock()
	return ds, nil
}
