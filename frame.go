package dicom

import "github.com/tanager-health/dicomcore/dicomerr"

// Frame is one decoded-geometry, still-encoded image frame extracted from
// a pixel-data element: the raw bytes plus the pixel geometry pulled from
// the surrounding dataset, and the transfer syntax UID the bytes are
// encoded under. This library never decompresses Data.
type Frame struct {
	Number int
	Data   []byte

	Rows                      uint16
	Columns                   uint16
	SamplesPerPixel           uint16
	BitsAllocated             uint16
	BitsStored                uint16
	HighBit                   uint16
	PixelRepresentation       uint16
	PlanarConfiguration       uint16
	PhotometricInterpretation string
	TransferSyntaxUID         string
}

// newFrame validates and constructs a Frame. data is copied into an
// owned buffer.
func newFrame(number int, data []byte, rows, columns, samplesPerPixel, bitsAllocated, bitsStored, pixelRepresentation, planarConfiguration uint16, photometricInterpretation, transferSyntaxUID string) (*Frame, error) {
	if len(data) == 0 {
		return nil, dicomerr.New(dicomerr.Malformed, "frame %d has no data", number)
	}
	if bitsAllocated != 1 && bitsAllocated%8 != 0 {
		return nil, dicomerr.New(dicomerr.Malformed, "frame %d: bits_allocated %d is neither 1 nor a multiple of 8", number, bitsAllocated)
	}
	if bitsStored != 1 && bitsStored%8 != 0 {
		return nil, dicomerr.New(dicomerr.Malformed, "frame %d: bits_stored %d is neither 1 nor a multiple of 8", number, bitsStored)
	}
	if pixelRepresentation > 1 {
		return nil, dicomerr.New(dicomerr.Malformed, "frame %d: pixel_representation must be 0 or 1, got %d", number, pixelRepresentation)
	}
	if planarConfiguration > 1 {
		return nil, dicomerr.New(dicomerr.Malformed, "frame %d: planar_configuration must be 0 or 1, got %d", number, planarConfiguration)
	}
	return &Frame{
		Number:                    number,
		Data:                      append([]byte(nil), data...),
		Rows:                      rows,
		Columns:                   columns,
		SamplesPerPixel:           samplesPerPixel,
		BitsAllocated:             bitsAllocated,
		BitsStored:                bitsStored,
		HighBit:                   bitsStored - 1,
		PixelRepresentation:       pixelRepresentation,
		PlanarConfiguration:       planarConfiguration,
		PhotometricInterpretation: string(append([]byte(nil), photometricInterpretation...)),
		TransferSyntaxUID:         string(append([]byte(nil), transferSyntaxUID...)),
	}, nil
}
