package dicom

import (
	"encoding/binary"
	"strconv"

	"github.com/tanager-health/dicomcore/dicomtag"
)

// Byte-level helpers for assembling synthetic Part 10 streams in tests,
// standing in for a fixture file the retrieval pack didn't include.

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func tagBytes(tag dicomtag.Tag) []byte {
	return append(le16(tag.Group), le16(tag.Element)...)
}

func padString(s string) string {
	if len(s)%2 != 0 {
		return s + " "
	}
	return s
}

// explicitShort encodes an explicit-VR element whose VR uses the 16-bit
// length header (most string/numeric VRs).
func explicitShort(tag dicomtag.Tag, vr string, value []byte) []byte {
	out := tagBytes(tag)
	out = append(out, []byte(vr)...)
	out = append(out, le16(uint16(len(value)))...)
	out = append(out, value...)
	return out
}

// explicitLong encodes an explicit-VR element whose VR uses the 2-reserved-
// byte, 32-bit length header (OB/OW/SQ/UN/UT/...).
func explicitLong(tag dicomtag.Tag, vr string, value []byte) []byte {
	out := tagBytes(tag)
	out = append(out, []byte(vr)...)
	out = append(out, 0, 0)
	out = append(out, le32(uint32(len(value)))...)
	out = append(out, value...)
	return out
}

func explicitLongUndefined(tag dicomtag.Tag, vr string) []byte {
	out := tagBytes(tag)
	out = append(out, []byte(vr)...)
	out = append(out, 0, 0)
	out = append(out, le32(undefinedLength)...)
	return out
}

func implicitElement(tag dicomtag.Tag, value []byte) []byte {
	out := tagBytes(tag)
	out = append(out, le32(uint32(len(value)))...)
	out = append(out, value...)
	return out
}

func itemBytes(value []byte) []byte {
	out := tagBytes(dicomtag.Item)
	out = append(out, le32(uint32(len(value)))...)
	out = append(out, value...)
	return out
}

func sequenceDelimiterBytes() []byte {
	out := tagBytes(dicomtag.SequenceDelimitationItem)
	out = append(out, le32(0)...)
	return out
}

func itemDelimiterBytes() []byte {
	out := tagBytes(dicomtag.ItemDelimitationItem)
	out = append(out, le32(0)...)
	return out
}

func uint16Value(v uint16) []byte { return le16(v) }

func buildFileMeta(tsUID string) []byte {
	ts := padString(tsUID)
	tsElem := explicitShort(dicomtag.TransferSyntaxUID, "UI", []byte(ts))
	groupLenElem := explicitShort(dicomtag.FileMetaGroupLength, "UL", le32(uint32(len(tsElem))))
	out := append([]byte{}, groupLenElem...)
	out = append(out, tsElem...)
	return out
}

// buildPreambleAndMeta assembles the 128-byte preamble, "DICM" magic, and
// the file-meta group naming tsUID.
func buildPreambleAndMeta(tsUID string) []byte {
	out := make([]byte, 128)
	out = append(out, []byte("DICM")...)
	out = append(out, buildFileMeta(tsUID)...)
	return out
}

// nativeGeometryElements builds the common image-geometry elements (rows=2,
// columns=2, samples=1, bits_allocated=8, bits_stored=8) in explicit VR.
func nativeGeometryElements(numberOfFrames int) []byte {
	var out []byte
	out = append(out, explicitShort(dicomtag.Rows, "US", uint16Value(2))...)
	out = append(out, explicitShort(dicomtag.Columns, "US", uint16Value(2))...)
	out = append(out, explicitShort(dicomtag.SamplesPerPixel, "US", uint16Value(1))...)
	out = append(out, explicitShort(dicomtag.BitsAllocated, "US", uint16Value(8))...)
	out = append(out, explicitShort(dicomtag.BitsStored, "US", uint16Value(8))...)
	out = append(out, explicitShort(dicomtag.PixelRepresentation, "US", uint16Value(0))...)
	out = append(out, explicitShort(dicomtag.PhotometricInterpretation, "CS", []byte(padString("MONOCHROME2")))...)
	if numberOfFrames != 1 {
		nf := padString(strconv.Itoa(numberOfFrames))
		out = append(out, explicitShort(dicomtag.NumberOfFrames, "IS", []byte(nf))...)
	}
	return out
}
