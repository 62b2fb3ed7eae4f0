package dicom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tanager-health/dicomcore/dicomerr"
	"github.com/tanager-health/dicomcore/dicomtag"
	"github.com/tanager-health/dicomcore/dicomuid"
)

const encapsulatedTS = "1.2.840.10008.1.2.4.50" // JPEG Baseline; treated as encapsulated regardless of codec

func buildEncapsulatedFile(t *testing.T, storedBOT []byte, frames [][]byte) []byte {
	t.Helper()
	out := buildPreambleAndMeta(encapsulatedTS)
	out = append(out, nativeGeometryElements(len(frames))...)
	out = append(out, explicitLongUndefined(dicomtag.PixelData, "OB")...)
	out = append(out, itemBytes(storedBOT)...)
	for _, frame := range frames {
		out = append(out, itemBytes(frame)...)
	}
	out = append(out, sequenceDelimiterBytes()...)
	return out
}

func TestReadBOTReturnsStoredOffsets(t *testing.T) {
	frame1 := []byte{1, 2, 3, 4}
	frame2 := []byte{5, 6, 7, 8}
	bot := append(le32(0), le32(uint32(8+len(frame1)))...)
	raw := buildEncapsulatedFile(t, bot, [][]byte{frame1, frame2})

	f, err := Parse(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.ReadBOT()
	require.NoError(t, err)
	require.Equal(t, 2, got.NumFrames())
	off, err := got.OffsetOf(2)
	require.NoError(t, err)
	require.Equal(t, uint32(8+len(frame1)), off)
}

func TestReadBOTFailsWhenStoredTableEmpty(t *testing.T) {
	raw := buildEncapsulatedFile(t, nil, [][]byte{{1, 2, 3, 4}})
	f, err := Parse(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.ReadBOT()
	require.Error(t, err)
	require.True(t, dicomerr.Is(err, dicomerr.AbsentBOT))
}

func TestReadBOTRejectsNativeTransferSyntax(t *testing.T) {
	f, err := Parse(bytes.NewReader(buildNativeFile(t)))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.ReadBOT()
	require.Error(t, err)
}

func TestBuildBOTSynthesizesFromFrameItemsWhenStoredTableEmpty(t *testing.T) {
	frame1 := []byte{1, 2, 3, 4}
	frame2 := []byte{5, 6, 7, 8}
	raw := buildEncapsulatedFile(t, nil, [][]byte{frame1, frame2})

	f, err := Parse(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.BuildBOT()
	require.NoError(t, err)
	require.Equal(t, []uint32{0, uint32(8 + len(frame1))}, got.Offsets)
}

func TestBuildBOTFailsOnFrameCountMismatch(t *testing.T) {
	out := buildPreambleAndMeta(encapsulatedTS)
	out = append(out, nativeGeometryElements(3)...) // declares 3 frames
	out = append(out, explicitLongUndefined(dicomtag.PixelData, "OB")...)
	out = append(out, itemBytes(nil)...)
	out = append(out, itemBytes([]byte{1, 2, 3, 4})...) // only 1 actual frame item
	out = append(out, sequenceDelimiterBytes()...)

	f, err := Parse(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.BuildBOT()
	require.Error(t, err)
	require.True(t, dicomerr.Is(err, dicomerr.FrameCountMismatch))
}

func TestReadFrameEncapsulatedReturnsCorrectBytes(t *testing.T) {
	frame1 := []byte{1, 2, 3, 4}
	frame2 := []byte{5, 6, 7, 8}
	raw := buildEncapsulatedFile(t, nil, [][]byte{frame1, frame2})

	f, err := Parse(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	f1, err := f.ReadFrame(1)
	require.NoError(t, err)
	require.Equal(t, frame1, f1.Data)
	require.Equal(t, encapsulatedTS, f1.TransferSyntaxUID)

	f2, err := f.ReadFrame(2)
	require.NoError(t, err)
	require.Equal(t, frame2, f2.Data)
}

func TestReadFrameNativeMultiFrame(t *testing.T) {
	out := buildPreambleAndMeta(dicomuid.ExplicitVRLittleEndian)
	out = append(out, nativeGeometryElements(2)...)
	out = append(out, explicitLong(dicomtag.PixelData, "OB", []byte{1, 2, 3, 4, 5, 6, 7, 8})...)

	f, err := Parse(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	f1, err := f.ReadFrame(1)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, f1.Data)

	f2, err := f.ReadFrame(2)
	require.NoError(t, err)
	require.Equal(t, []byte{5, 6, 7, 8}, f2.Data)
}

func TestReadFrameOutOfRangeFails(t *testing.T) {
	f, err := Parse(bytes.NewReader(buildNativeFile(t)))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.ReadFrame(2)
	require.Error(t, err)
	require.True(t, dicomerr.Is(err, dicomerr.OutOfRange))
}

func TestReadFrameCachesBOTAcrossCalls(t *testing.T) {
	frame1 := []byte{1, 2, 3, 4}
	frame2 := []byte{5, 6, 7, 8}
	raw := buildEncapsulatedFile(t, nil, [][]byte{frame1, frame2})

	f, err := Parse(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.ReadFrame(1)
	require.NoError(t, err)
	require.NotNil(t, f.bot)

	_, err = f.ReadFrame(2)
	require.NoError(t, err)
}

// sm_image.dcm scenario: a tiny single-frame native grayscale image, whose
// pixel data must round-trip byte for byte through Parse and ReadFrame.
func TestSmallImageScenarioEndToEnd(t *testing.T) {
	pixels := []byte{0x10, 0x20, 0x30, 0x40}
	out := buildPreambleAndMeta(dicomuid.ExplicitVRLittleEndian)
	out = append(out, nativeGeometryElements(1)...)
	out = append(out, explicitLong(dicomtag.PixelData, "OB", pixels)...)

	f, err := Parse(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	bot, err := f.BuildBOT()
	require.NoError(t, err)
	require.Equal(t, 1, bot.NumFrames())

	frame, err := f.ReadFrame(1)
	require.NoError(t, err)
	require.Equal(t, pixels, frame.Data)
	require.Equal(t, uint16(2), frame.Rows)
	require.Equal(t, uint16(2), frame.Columns)
	require.Equal(t, "MONOCHROME2", frame.PhotometricInterpretation)
}
