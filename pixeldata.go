package dicom

import (
	"strconv"
	"strings"

	"github.com/tanager-health/dicomcore/dicomerr"
	"github.com/tanager-health/dicomcore/dicomtag"
	"github.com/tanager-health/dicomcore/dicomuid"
	"github.com/tanager-health/dicomcore/dicomvr"
)

// BOT is the basic offset table: one byte offset per frame, measured from
// the first byte of the first frame item inside the pixel-data element
// (for encapsulated transfer syntaxes), or from the first byte of the raw
// pixel buffer (for native ones).
type BOT struct {
	Offsets []uint32
}

// NumFrames returns the number of frames the table describes.
func (b *BOT) NumFrames() int { return len(b.Offsets) }

// OffsetOf returns the byte offset of the one-based frame number.
func (b *BOT) OffsetOf(number int) (uint32, error) {
	if number < 1 || number > len(b.Offsets) {
		return 0, dicomerr.New(dicomerr.OutOfRange, "frame %d out of range (count=%d)", number, len(b.Offsets))
	}
	return b.Offsets[number-1], nil
}

// seekPixelData repositions the parser's reader at the first byte of the
// pixel-data element and re-reads its header. It fails if Parse recorded
// no pixel-data element; it does not parse further to look for one.
func (f *File) seekPixelData() (dicomvr.VR, uint32, error) {
	if !f.havePixelData {
		return "", 0, dicomerr.New(dicomerr.Malformed, "no pixel-data element was found while parsing")
	}
	if err := f.r.SeekTo(f.pixelDataOffset); err != nil {
		return "", 0, err
	}
	tag := readTag(f.r)
	if !dicomtag.IsPixelDataTag(tag) {
		return "", 0, dicomerr.New(dicomerr.Malformed, "pixel_data_offset does not point at a pixel-data element")
	}
	vr, length, err := readElementHeader(f.r, tag, f.implicit)
	if err != nil {
		return "", 0, err
	}
	return vr, length, nil
}

// ReadBOT reads the declared basic offset table. Defined only for
// encapsulated transfer syntaxes; fails with dicomerr.AbsentBOT if the
// stored table is empty, in which case the caller should fall back to
// BuildBOT.
func (f *File) ReadBOT() (*BOT, error) {
	if dicomuid.IsNative(f.transferSyntaxUID) {
		return nil, dicomerr.New(dicomerr.Malformed, "ReadBOT is only defined for encapsulated transfer syntaxes")
	}
	_, length, err := f.seekPixelData()
	if err != nil {
		return nil, err
	}
	if length != undefinedLength {
		return nil, dicomerr.New(dicomerr.Malformed, "encapsulated pixel data must have undefined length")
	}

	tag, itemLength, err := readItemHeader(f.r)
	if err != nil {
		return nil, err
	}
	if tag != dicomtag.Item {
		return nil, dicomerr.New(dicomerr.UnexpectedToken, "expected basic offset table item, found %s", tag)
	}
	if itemLength == 0 {
		return nil, dicomerr.New(dicomerr.AbsentBOT, "stored basic offset table is empty")
	}

	numOffsets := int(itemLength / 4)
	offsets := make([]uint32, numOffsets)
	for i := range offsets {
		v := f.r.ReadUInt32()
		if v == dicomtag.Item.Packed() {
			return nil, dicomerr.New(dicomerr.Malformed, "basic offset table entry %d equals the item-tag sentinel", i)
		}
		offsets[i] = v
	}
	if err := f.r.Error(); err != nil {
		return nil, err
	}
	bot := &BOT{Offsets: offsets}
	f.bot = bot
	return bot, nil
}

// BuildBOT synthesizes a basic offset table by scanning, rather than
// trusting the stored (possibly absent) table. For native transfer
// syntaxes it derives offsets arithmetically from image geometry.
func (f *File) BuildBOT() (*BOT, error) {
	var bot *BOT
	var err error
	if dicomuid.IsNative(f.transferSyntaxUID) {
		bot, err = f.buildNativeBOT()
	} else {
		bot, err = f.buildEncapsulatedBOT()
	}
	if err != nil {
		return nil, err
	}
	f.bot = bot
	return bot, nil
}

func (f *File) buildEncapsulatedBOT() (*BOT, error) {
	_, length, err := f.seekPixelData()
	if err != nil {
		return nil, err
	}
	if length != undefinedLength {
		return nil, dicomerr.New(dicomerr.Malformed, "encapsulated pixel data must have undefined length")
	}

	tag, itemLength, err := readItemHeader(f.r)
	if err != nil {
		return nil, err
	}
	if tag != dicomtag.Item {
		return nil, dicomerr.New(dicomerr.UnexpectedToken, "expected basic offset table item, found %s", tag)
	}
	f.r.Skip(int(itemLength)) // the stored table's content is irrelevant here

	numFrames, err := f.numberOfFrames()
	if err != nil {
		return nil, err
	}

	var offsets []uint32
	var consumed uint32
	for {
		tag, frameLength, err := readItemHeader(f.r)
		if err != nil {
			return nil, err
		}
		if tag == dicomtag.SequenceDelimitationItem {
			break
		}
		if tag != dicomtag.Item {
			return nil, dicomerr.New(dicomerr.UnexpectedToken, "expected frame item, found %s", tag)
		}
		offsets = append(offsets, consumed)
		f.r.Skip(int(frameLength))
		consumed += 8 + frameLength
	}

	if len(offsets) != numFrames {
		return nil, dicomerr.New(dicomerr.FrameCountMismatch, "enumerated %d frame item(s), metadata declares %d", len(offsets), numFrames)
	}
	return &BOT{Offsets: offsets}, nil
}

func (f *File) buildNativeBOT() (*BOT, error) {
	frameSize, err := f.nativeFrameSize()
	if err != nil {
		return nil, err
	}
	numFrames, err := f.numberOfFrames()
	if err != nil {
		return nil, err
	}
	offsets := make([]uint32, numFrames)
	for i := range offsets {
		offsets[i] = uint32(i) * frameSize
	}
	return &BOT{Offsets: offsets}, nil
}

// ReadFrame extracts the one-based frame by number, computing its offset
// from a cached table (building one via BuildBOT if none is cached yet).
func (f *File) ReadFrame(number int) (*Frame, error) {
	bot := f.bot
	if bot == nil {
		var err error
		bot, err = f.BuildBOT()
		if err != nil {
			return nil, err
		}
	}
	offset, err := bot.OffsetOf(number)
	if err != nil {
		return nil, err
	}

	var data []byte
	if dicomuid.IsNative(f.transferSyntaxUID) {
		data, err = f.readNativeFrameBytes(offset)
	} else {
		data, err = f.readEncapsulatedFrameBytes(offset)
	}
	if err != nil {
		return nil, err
	}

	rows, err := f.uint16Attr(dicomtag.Rows)
	if err != nil {
		return nil, err
	}
	columns, err := f.uint16Attr(dicomtag.Columns)
	if err != nil {
		return nil, err
	}
	samples, err := f.uint16Attr(dicomtag.SamplesPerPixel)
	if err != nil {
		return nil, err
	}
	bitsAllocated, err := f.uint16Attr(dicomtag.BitsAllocated)
	if err != nil {
		return nil, err
	}
	bitsStored, err := f.uint16Attr(dicomtag.BitsStored)
	if err != nil {
		return nil, err
	}
	pixelRepresentation := f.optionalUint16Attr(dicomtag.PixelRepresentation, 0)
	planarConfiguration := f.optionalUint16Attr(dicomtag.PlanarConfiguration, 0)
	photometric := f.optionalStringAttr(dicomtag.PhotometricInterpretation, "")

	return newFrame(number, data, rows, columns, samples, bitsAllocated, bitsStored, pixelRepresentation, planarConfiguration, photometric, f.transferSyntaxUID)
}

func (f *File) readEncapsulatedFrameBytes(offset uint32) ([]byte, error) {
	_, length, err := f.seekPixelData()
	if err != nil {
		return nil, err
	}
	if length != undefinedLength {
		return nil, dicomerr.New(dicomerr.Malformed, "encapsulated pixel data must have undefined length")
	}
	tag, itemLength, err := readItemHeader(f.r)
	if err != nil {
		return nil, err
	}
	if tag != dicomtag.Item {
		return nil, dicomerr.New(dicomerr.UnexpectedToken, "expected basic offset table item, found %s", tag)
	}
	f.r.Skip(int(itemLength))
	f.r.Skip(int(offset))

	tag, frameLength, err := readItemHeader(f.r)
	if err != nil {
		return nil, err
	}
	if tag != dicomtag.Item {
		return nil, dicomerr.New(dicomerr.UnexpectedToken, "expected frame item, found %s", tag)
	}
	data := f.r.ReadBytes(int(frameLength))
	if err := f.r.Error(); err != nil {
		return nil, err
	}
	return data, nil
}

func (f *File) readNativeFrameBytes(offset uint32) ([]byte, error) {
	_, _, err := f.seekPixelData()
	if err != nil {
		return nil, err
	}
	frameSize, err := f.nativeFrameSize()
	if err != nil {
		return nil, err
	}
	f.r.Skip(int(offset))
	data := f.r.ReadBytes(int(frameSize))
	if err := f.r.Error(); err != nil {
		return nil, err
	}
	return data, nil
}

// nativeFrameSize computes one frame's byte length honoring
// bits_allocated, rather than the 8-bit-per-sample assumption a buggy
// reference implementation makes.
func (f *File) nativeFrameSize() (uint32, error) {
	rows, err := f.uint16Attr(dicomtag.Rows)
	if err != nil {
		return 0, err
	}
	columns, err := f.uint16Attr(dicomtag.Columns)
	if err != nil {
		return 0, err
	}
	samples, err := f.uint16Attr(dicomtag.SamplesPerPixel)
	if err != nil {
		return 0, err
	}
	bitsAllocated, err := f.uint16Attr(dicomtag.BitsAllocated)
	if err != nil {
		return 0, err
	}
	pixels := uint32(rows) * uint32(columns) * uint32(samples)
	if bitsAllocated == 1 {
		return (pixels + 7) / 8, nil
	}
	if bitsAllocated%8 != 0 {
		return 0, dicomerr.New(dicomerr.Malformed, "bits_allocated %d is neither 1 nor a multiple of 8", bitsAllocated)
	}
	return pixels * uint32(bitsAllocated/8), nil
}

func (f *File) numberOfFrames() (int, error) {
	e := f.Dataset.Get(dicomtag.NumberOfFrames)
	if e == nil {
		return 1, nil
	}
	strs, err := e.Value().Strings()
	if err != nil || len(strs) == 0 {
		return 0, dicomerr.New(dicomerr.Malformed, "NumberOfFrames does not carry a valid IS value")
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(strs[0]))
	if convErr != nil {
		return 0, dicomerr.Wrap(dicomerr.Malformed, convErr, "parsing NumberOfFrames %q", strs[0])
	}
	return n, nil
}

func (f *File) uint16Attr(tag dicomtag.Tag) (uint16, error) {
	e := f.Dataset.Get(tag)
	if e == nil {
		return 0, dicomerr.New(dicomerr.Malformed, "missing required attribute %s", tag)
	}
	vals, err := e.Value().Uint16s()
	if err != nil || len(vals) != 1 {
		return 0, dicomerr.New(dicomerr.Malformed, "attribute %s is not a single US value", tag)
	}
	return vals[0], nil
}

func (f *File) optionalUint16Attr(tag dicomtag.Tag, fallback uint16) uint16 {
	v, err := f.uint16Attr(tag)
	if err != nil {
		return fallback
	}
	return v
}

func (f *File) optionalStringAttr(tag dicomtag.Tag, fallback string) string {
	e := f.Dataset.Get(tag)
	if e == nil {
		return fallback
	}
	strs, err := e.Value().Strings()
	if err != nil || len(strs) == 0 {
		return fallback
	}
	return strs[0]
}
