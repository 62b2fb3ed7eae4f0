package dicom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tanager-health/dicomcore/dicomtag"
	"github.com/tanager-health/dicomcore/dicomuid"
)

func buildNativeFile(t *testing.T) []byte {
	t.Helper()
	out := buildPreambleAndMeta(dicomuid.ExplicitVRLittleEndian)
	out = append(out, nativeGeometryElements(1)...)
	out = append(out, explicitLong(dicomtag.PixelData, "OB", []byte{1, 2, 3, 4})...)
	return out
}

func TestParseNativeFileReadsMetaAndDataset(t *testing.T) {
	f, err := Parse(bytes.NewReader(buildNativeFile(t)))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, dicomuid.ExplicitVRLittleEndian, f.TransferSyntaxUID())
	require.True(t, f.Meta.Contains(dicomtag.TransferSyntaxUID))

	rowsElem := f.Dataset.Get(dicomtag.Rows)
	require.NotNil(t, rowsElem)
	rows, err := rowsElem.Value().Uint16s()
	require.NoError(t, err)
	require.Equal(t, []uint16{2}, rows)
}

func TestParseStopsBeforeInsertingPixelData(t *testing.T) {
	f, err := Parse(bytes.NewReader(buildNativeFile(t)))
	require.NoError(t, err)
	defer f.Close()

	require.False(t, f.Dataset.Contains(dicomtag.PixelData))
	require.True(t, f.havePixelData)
}

func TestParseAlwaysRecordsPixelDataOffsetForLaterFrameReads(t *testing.T) {
	f, err := Parse(bytes.NewReader(buildNativeFile(t)))
	require.NoError(t, err)
	defer f.Close()

	require.True(t, f.havePixelData)
	frame, err := f.ReadFrame(1)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, frame.Data)
}

func TestParseWithStopAtTagStopsEarly(t *testing.T) {
	f, err := Parse(bytes.NewReader(buildNativeFile(t)), WithStopAtTag(dicomtag.BitsAllocated))
	require.NoError(t, err)
	defer f.Close()

	require.True(t, f.Dataset.Contains(dicomtag.Columns))
	require.False(t, f.Dataset.Contains(dicomtag.BitsAllocated))
}

func TestParseWithReturnTagsFiltersDataset(t *testing.T) {
	f, err := Parse(bytes.NewReader(buildNativeFile(t)), WithReturnTags([]dicomtag.Tag{dicomtag.Rows}))
	require.NoError(t, err)
	defer f.Close()

	require.True(t, f.Dataset.Contains(dicomtag.Rows))
	require.False(t, f.Dataset.Contains(dicomtag.Columns))
}

func TestParseRejectsMissingMagic(t *testing.T) {
	bad := make([]byte, 128)
	bad = append(bad, []byte("NOPE")...)
	_, err := Parse(bytes.NewReader(bad))
	require.Error(t, err)
}

func TestParseRejectsGroup0002OutsideFileMeta(t *testing.T) {
	out := buildPreambleAndMeta(dicomuid.ExplicitVRLittleEndian)
	out = append(out, explicitShort(dicomtag.Tag{Group: 0x0002, Element: 0x0099}, "UI", []byte("1.2\x00"))...)
	_, err := Parse(bytes.NewReader(out))
	require.Error(t, err)
}

func TestParseImplicitVRLittleEndian(t *testing.T) {
	out := buildPreambleAndMeta(dicomuid.ImplicitVRLittleEndian)
	out = append(out, implicitElement(dicomtag.Rows, uint16Value(2))...)
	out = append(out, implicitElement(dicomtag.Columns, uint16Value(2))...)
	out = append(out, implicitElement(dicomtag.SamplesPerPixel, uint16Value(1))...)
	out = append(out, implicitElement(dicomtag.BitsAllocated, uint16Value(8))...)
	out = append(out, implicitElement(dicomtag.BitsStored, uint16Value(8))...)
	out = append(out, implicitElement(dicomtag.PixelRepresentation, uint16Value(0))...)
	out = append(out, implicitElement(dicomtag.PixelData, []byte{9, 9, 9, 9})...)

	f, err := Parse(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	frame, err := f.ReadFrame(1)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 9, 9, 9}, frame.Data)
}

func TestReadFileFailsOnMissingPath(t *testing.T) {
	// ReadFile opens from the filesystem; not exercised against a real path
	// here since no fixture file is shipped with this source tree. Covered
	// indirectly through Parse's tests above, which share ReadFile's body.
	_, err := ReadFile("/nonexistent/path/to/file.dcm")
	require.Error(t, err)
}
