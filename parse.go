package dicom

import (
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/tanager-health/dicomcore/dicomerr"
	"github.com/tanager-health/dicomcore/dicomio"
	"github.com/tanager-health/dicomcore/dicomlog"
	"github.com/tanager-health/dicomcore/dicomtag"
	"github.com/tanager-health/dicomcore/dicomuid"
)

// File is the result of a successful Parse: the file-meta group, the main
// dataset, and enough state (transfer syntax, pixel_data_offset) to drive
// the pixel data indexer. The underlying source must not be repositioned
// by the caller between ReadBOT/BuildBOT/ReadFrame calls on the same File.
type File struct {
	r *dicomio.Reader

	Meta    *Dataset
	Dataset *Dataset

	transferSyntaxUID string
	implicit          dicomio.IsImplicitVR
	byteOrder         binary.ByteOrder

	havePixelData   bool
	pixelDataOffset int64
	pixelDataTag    dicomtag.Tag
	bot             *BOT

	closer io.Closer
}

// TransferSyntaxUID returns the UID read from the file-meta group.
func (f *File) TransferSyntaxUID() string { return f.transferSyntaxUID }

// Close releases the underlying file, if Parse was reached through
// ReadFile. It is a no-op for Files built from a caller-supplied
// io.ReadSeeker.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// Parse reads the file-meta group and main dataset from src, an already
// positioned-at-offset-zero seekable source. Parsing stops at EOF, the
// dataset-trailing-padding tag, or a pixel-data tag (whose position is
// recorded for the pixel data indexer).
func Parse(src io.ReadSeeker, opts ...ParseOption) (*File, error) {
	o := &parseOptions{}
	for _, opt := range opts {
		opt(o)
	}

	r := dicomio.NewReader(src, binary.LittleEndian, dicomio.ExplicitVR)
	meta, tsUID, err := parseFileMeta(r)
	if err != nil {
		return nil, err
	}

	implicit := dicomio.ExplicitVR
	byteOrder := binary.ByteOrder(binary.LittleEndian)
	switch {
	case dicomuid.IsImplicitVRLittleEndian(tsUID):
		implicit = dicomio.ImplicitVR
	case dicomuid.IsBigEndian(tsUID):
		byteOrder = binary.BigEndian
	}
	r.PushTransferSyntax(byteOrder, implicit)

	f := &File{
		r:                 r,
		Meta:              meta,
		transferSyntaxUID: tsUID,
		implicit:          implicit,
		byteOrder:         byteOrder,
	}

	ds := NewDataset()
	for !r.EOF() {
		headerStart := r.Pos()
		tag := readTag(r)
		if err := r.Error(); err != nil {
			ds.Destroy()
			meta.Destroy()
			return nil, err
		}

		if tag == dicomtag.DatasetTrailingPadding {
			break
		}
		if dicomtag.IsPixelDataTag(tag) {
			if err := r.SeekTo(headerStart); err != nil {
				ds.Destroy()
				meta.Destroy()
				return nil, err
			}
			f.havePixelData = true
			f.pixelDataOffset = headerStart
			f.pixelDataTag = tag
			break
		}
		if tag.Group == 0x0002 {
			ds.Destroy()
			meta.Destroy()
			return nil, dicomerr.New(dicomerr.UnexpectedToken, "file-meta element %s encountered outside the file-meta group", tag)
		}
		if o.stoppedAt(tag) {
			break
		}

		elem, err := readElement(r, tag, implicit)
		if err != nil {
			ds.Destroy()
			meta.Destroy()
			return nil, err
		}
		if !o.keepTag(elem.Tag) {
			elem.Destroy()
			continue
		}
		dicomlog.Debugf("dicom.Parse: read element %s", elem)
		if err := ds.Insert(elem); err != nil {
			ds.Destroy()
			meta.Destroy()
			return nil, err
		}
	}

	ds.Lock()
	f.Dataset = ds
	return f, nil
}

// ReadFile opens path and parses it.
func ReadFile(path string, opts ...ParseOption) (*File, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, dicomerr.Wrap(dicomerr.IOError, err, "opening %s", path)
	}
	f, err := Parse(src, opts...)
	if err != nil {
		src.Close()
		return nil, err
	}
	f.closer = src
	return f, nil
}

// parseFileMeta reads the preamble, magic, and group-0002 file-meta group
// from r, which must be positioned at the start of the file. r is left
// positioned at the first byte after the file-meta group.
func parseFileMeta(r *dicomio.Reader) (*Dataset, string, error) {
	r.PushTransferSyntax(binary.LittleEndian, dicomio.ExplicitVR)
	defer r.PopTransferSyntax()

	r.Skip(128)
	magic := r.ReadString(4)
	if err := r.Error(); err != nil {
		return nil, "", dicomerr.Wrap(dicomerr.IOError, err, "reading preamble")
	}
	if magic != "DICM" {
		return nil, "", dicomerr.New(dicomerr.NotADicomFile, "missing DICM magic")
	}

	groupLenElem, err := readOneElement(r, dicomio.ExplicitVR)
	if err != nil {
		return nil, "", err
	}
	if groupLenElem.Tag != dicomtag.FileMetaGroupLength {
		kind := groupLenElem.Tag
		groupLenElem.Destroy()
		return nil, "", dicomerr.New(dicomerr.UnexpectedToken, "expected file-meta group length element, found %s", kind)
	}
	groupLengths, err := groupLenElem.Value().Uint32s()
	if err != nil || len(groupLengths) != 1 {
		groupLenElem.Destroy()
		return nil, "", dicomerr.New(dicomerr.Malformed, "file-meta group length element does not carry a single UL value")
	}
	groupLength := groupLengths[0]

	meta := NewDataset()
	if err := meta.Insert(groupLenElem); err != nil {
		meta.Destroy()
		return nil, "", err
	}

	end := r.Pos() + int64(groupLength)
	for r.Pos() < end && !r.EOF() {
		elem, err := readOneElement(r, dicomio.ExplicitVR)
		if err != nil {
			meta.Destroy()
			return nil, "", err
		}
		if elem.Tag.Group != 0x0002 {
			tag := elem.Tag
			elem.Destroy()
			meta.Destroy()
			return nil, "", dicomerr.New(dicomerr.UnexpectedToken, "non-file-meta element %s inside the file-meta group", tag)
		}
		if err := meta.Insert(elem); err != nil {
			meta.Destroy()
			return nil, "", err
		}
	}

	tsElem := meta.Get(dicomtag.TransferSyntaxUID)
	if tsElem == nil {
		meta.Destroy()
		return nil, "", dicomerr.New(dicomerr.Malformed, "file-meta group is missing TransferSyntaxUID")
	}
	tsStrs, err := tsElem.Value().Strings()
	if err != nil || len(tsStrs) == 0 {
		meta.Destroy()
		return nil, "", dicomerr.New(dicomerr.Malformed, "TransferSyntaxUID element does not carry a string value")
	}

	meta.Lock()
	return meta, strings.TrimRight(tsStrs[0], "\x00"), nil
}
